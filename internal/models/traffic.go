package models

import (
	"database/sql/driver"
	"errors"
	"time"
)

// TrafficLevel classifies an hour's vehicle count.
type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "low"
	TrafficNormal TrafficLevel = "normal"
	TrafficHigh   TrafficLevel = "high"
)

func (l TrafficLevel) Valid() bool {
	switch l {
	case TrafficLow, TrafficNormal, TrafficHigh:
		return true
	}
	return false
}

func (l TrafficLevel) Value() (driver.Value, error) { return enumValue("traffic level", l) }
func (l *TrafficLevel) Scan(value any) error        { return scanEnum("traffic level", l, value) }

// HourlyBucket is the traffic summary of one plaza for one hour of one day.
// (PlazaID, Date, Hour) identifies the bucket.
type HourlyBucket struct {
	PlazaID      int64        `json:"plaza_id" db:"plaza_id" bson:"plaza_id"`
	Date         string       `json:"date" db:"date" bson:"date"` // YYYY-MM-DD
	Hour         int          `json:"hour" db:"hour" bson:"hour"`
	VehicleCount int          `json:"vehicle_count" db:"vehicle_count" bson:"vehicle_count"`
	Revenue      Amount       `json:"revenue" db:"total_revenue" bson:"total_revenue"`
	Level        TrafficLevel `json:"traffic_level" db:"traffic_level" bson:"traffic_level"`
}

// DateLayout is the layout of HourlyBucket.Date.
const DateLayout = "2006-01-02"

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (w Window) Validate() error {
	if w.From.IsZero() || w.To.IsZero() {
		return errors.New("window bounds are required")
	}
	if !w.From.Before(w.To) {
		return errors.New("window start must be before its end")
	}
	return nil
}

// LastHours returns the window ending at now and spanning d.
func LastHours(now time.Time, d time.Duration) Window {
	return Window{From: now.Add(-d), To: now}
}
