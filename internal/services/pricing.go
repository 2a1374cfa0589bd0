package services

import (
	"context"
	"time"

	"github.com/smarttoll/backend/internal/models"
)

// RateTable is the read-only rate lookup the pricing engine consults.
// Rates returns every rate of the given slot ordered by FromMinute; an empty
// slice means none is configured.
type RateTable interface {
	Rates(ctx context.Context, plazaID int64, vehicleType models.VehicleType, slot models.TimeSlot) ([]models.Rate, error)
}

// Quote is a resolved toll price.
type Quote struct {
	Rate          models.Rate     `json:"rate"`
	Amount        models.Amount   `json:"amount"`
	Slot          models.TimeSlot `json:"time_slot"`
	RequestedSlot models.TimeSlot `json:"requested_slot"`
}

// FellBack reports whether the normal rate was substituted for a missing peak rate.
func (q *Quote) FellBack() bool {
	return q.Slot != q.RequestedSlot
}

// SlotFor derives the pricing slot from the wall-clock hour of t:
// peak for [07:00, 10:00) and [17:00, 20:00), normal otherwise.
func SlotFor(t time.Time) models.TimeSlot {
	hour := t.Hour()
	if (hour >= 7 && hour < 10) || (hour >= 17 && hour < 20) {
		return models.SlotPeak
	}
	return models.SlotNormal
}

type PricingEngine struct {
	rates RateTable
	loc   *time.Location
}

func NewPricingEngine(rates RateTable, loc *time.Location) *PricingEngine {
	if loc == nil {
		loc = time.Local
	}
	return &PricingEngine{rates: rates, loc: loc}
}

// Resolve prices a crossing of plazaID by a vehicle of the given type at ts.
// A missing peak rate falls back to the normal rate; a missing normal rate is
// never replaced and yields ErrRateNotConfigured.
func (e *PricingEngine) Resolve(ctx context.Context, plazaID int64, vehicleType models.VehicleType, ts time.Time) (*Quote, error) {
	if !vehicleType.Valid() {
		return nil, newError(KindInvalidRequest, "invalid vehicle type %q", vehicleType)
	}

	local := ts.In(e.loc)
	requested := SlotFor(local)
	minute := local.Hour()*60 + local.Minute()

	rate, err := e.lookup(ctx, plazaID, vehicleType, requested, minute)
	if err != nil {
		return nil, err
	}
	if rate == nil && requested == models.SlotPeak {
		rate, err = e.lookup(ctx, plazaID, vehicleType, models.SlotNormal, minute)
		if err != nil {
			return nil, err
		}
	}
	if rate == nil {
		return nil, newError(KindRateNotConfigured, "no %s rate configured for %s at plaza %d", requested, vehicleType, plazaID)
	}

	return &Quote{
		Rate:          *rate,
		Amount:        rate.Amount,
		Slot:          rate.Slot,
		RequestedSlot: requested,
	}, nil
}

func (e *PricingEngine) lookup(ctx context.Context, plazaID int64, vehicleType models.VehicleType, slot models.TimeSlot, minute int) (*models.Rate, error) {
	rates, err := e.rates.Rates(ctx, plazaID, vehicleType, slot)
	if err != nil {
		return nil, persistenceError("load toll rates", err)
	}
	return pickRate(rates, minute), nil
}

// pickRate prefers the rate whose window covers minute, then the earliest one.
func pickRate(rates []models.Rate, minute int) *models.Rate {
	if len(rates) == 0 {
		return nil
	}
	for i := range rates {
		if rates[i].FromMinute <= minute && minute < rates[i].ToMinute {
			return &rates[i]
		}
	}
	return &rates[0]
}
