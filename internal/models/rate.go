package models

import (
	"database/sql/driver"
	"fmt"
)

// TimeSlot is the pricing bucket of a crossing.
type TimeSlot string

const (
	SlotNormal TimeSlot = "normal"
	SlotPeak   TimeSlot = "peak"
)

func ParseTimeSlot(s string) (TimeSlot, error) { return parseEnum[TimeSlot]("time slot", s) }

func (s TimeSlot) Valid() bool {
	return s == SlotNormal || s == SlotPeak
}

func (s TimeSlot) Value() (driver.Value, error) { return enumValue("time slot", s) }
func (s *TimeSlot) Scan(value any) error        { return scanEnum("time slot", s, value) }

func (s *TimeSlot) UnmarshalText(b []byte) error {
	v, err := ParseTimeSlot(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MinutesPerDay bounds FromMinute/ToMinute.
const MinutesPerDay = 24 * 60

// Rate is one row of the rate table. The window is [FromMinute, ToMinute) in minute-of-day.
type Rate struct {
	ID          int64       `json:"id" db:"id"`
	PlazaID     int64       `json:"plaza_id" db:"plaza_id"`
	VehicleType VehicleType `json:"vehicle_type" db:"vehicle_type"`
	Slot        TimeSlot    `json:"time_slot" db:"time_slot"`
	FromMinute  int         `json:"from_minute" db:"from_minute"`
	ToMinute    int         `json:"to_minute" db:"to_minute"`
	Amount      Amount      `json:"amount" db:"amount"`
}

// Validate checks the invariants a rate must satisfy before it is priced against.
func (r *Rate) Validate() error {
	if !r.VehicleType.Valid() {
		return fmt.Errorf("invalid vehicle type %q", r.VehicleType)
	}
	if !r.Slot.Valid() {
		return fmt.Errorf("invalid time slot %q", r.Slot)
	}
	if r.FromMinute < 0 || r.ToMinute > MinutesPerDay || r.FromMinute >= r.ToMinute {
		return fmt.Errorf("invalid window [%d, %d)", r.FromMinute, r.ToMinute)
	}
	if r.Amount < 0 {
		return fmt.Errorf("negative amount %s", r.Amount)
	}
	return nil
}

// FormatMinute renders a minute-of-day as HH:MM.
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
