package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"github.com/smarttoll/backend/internal/models"
)

var (
	allVehicleTypes = []models.VehicleType{
		models.VehicleBike, models.VehicleCar, models.VehicleTruck, models.VehicleBus, models.VehicleHeavy,
	}
	allSlots = []models.TimeSlot{models.SlotNormal, models.SlotPeak}
)

// CachedRateTable is a Redis read-through cache in front of another RateTable.
// Redis failures degrade to the underlying table.
type CachedRateTable struct {
	next  RateTable
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedRateTable(next RateTable, redisClient *redis.Client, ttl time.Duration) *CachedRateTable {
	return &CachedRateTable{next: next, redis: redisClient, ttl: ttl}
}

func rateCacheKey(plazaID int64, vehicleType models.VehicleType, slot models.TimeSlot) string {
	return fmt.Sprintf("rates:%d:%s:%s", plazaID, vehicleType, slot)
}

func (c *CachedRateTable) Rates(ctx context.Context, plazaID int64, vehicleType models.VehicleType, slot models.TimeSlot) ([]models.Rate, error) {
	if c.redis == nil {
		return c.next.Rates(ctx, plazaID, vehicleType, slot)
	}

	key := rateCacheKey(plazaID, vehicleType, slot)
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rates []models.Rate
		if jsonErr := json.Unmarshal(data, &rates); jsonErr == nil {
			return rates, nil
		}
		log.WithField("key", key).Warn("Discarding undecodable rate cache entry")
	case err != redis.Nil:
		log.WithError(err).WithField("key", key).Warn("Rate cache read failed")
	}

	rates, err := c.next.Rates(ctx, plazaID, vehicleType, slot)
	if err != nil {
		return nil, err
	}

	// An empty list is not cached so a rate added afterwards is seen at once.
	if len(rates) == 0 {
		return rates, nil
	}
	encoded, err := json.Marshal(rates)
	if err == nil {
		if err := c.redis.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			log.WithError(err).WithField("key", key).Warn("Rate cache write failed")
		}
	}
	return rates, nil
}

// InvalidatePlaza drops every cached rate list of a plaza. It is called after
// the plaza's toll_rates rows change.
func (c *CachedRateTable) InvalidatePlaza(ctx context.Context, plazaID int64) error {
	if c.redis == nil {
		return nil
	}
	keys := make([]string, 0, len(allVehicleTypes)*len(allSlots))
	for _, vt := range allVehicleTypes {
		for _, slot := range allSlots {
			keys = append(keys, rateCacheKey(plazaID, vt, slot))
		}
	}
	return c.redis.Del(ctx, keys...).Err()
}
