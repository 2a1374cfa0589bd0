package models

import (
	"database/sql/driver"
	"time"
)

// VehicleType is the toll class of a vehicle.
type VehicleType string

const (
	VehicleBike  VehicleType = "bike"
	VehicleCar   VehicleType = "car"
	VehicleTruck VehicleType = "truck"
	VehicleBus   VehicleType = "bus"
	VehicleHeavy VehicleType = "heavy"
)

func ParseVehicleType(s string) (VehicleType, error) { return parseEnum[VehicleType]("vehicle type", s) }

func (t VehicleType) Valid() bool {
	switch t {
	case VehicleBike, VehicleCar, VehicleTruck, VehicleBus, VehicleHeavy:
		return true
	}
	return false
}

func (t VehicleType) Value() (driver.Value, error) { return enumValue("vehicle type", t) }
func (t *VehicleType) Scan(value any) error        { return scanEnum("vehicle type", t, value) }

func (t *VehicleType) UnmarshalText(b []byte) error {
	v, err := ParseVehicleType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// VehicleStatus controls whether a vehicle may transact.
type VehicleStatus string

const (
	VehicleActive    VehicleStatus = "active"
	VehicleInactive  VehicleStatus = "inactive"
	VehicleSuspended VehicleStatus = "suspended"
)

func ParseVehicleStatus(s string) (VehicleStatus, error) {
	return parseEnum[VehicleStatus]("vehicle status", s)
}

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleActive, VehicleInactive, VehicleSuspended:
		return true
	}
	return false
}

func (s VehicleStatus) Value() (driver.Value, error) { return enumValue("vehicle status", s) }
func (s *VehicleStatus) Scan(value any) error        { return scanEnum("vehicle status", s, value) }

func (s *VehicleStatus) UnmarshalText(b []byte) error {
	v, err := ParseVehicleStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Vehicle is a registered vehicle. OwnerID is the account that owns its wallet.
type Vehicle struct {
	ID           int64         `json:"id" db:"id"`
	Number       string        `json:"number" db:"number"`
	TagID        *string       `json:"tag_id,omitempty" db:"tag_id"`
	Type         VehicleType   `json:"type" db:"vehicle_type"`
	OwnerID      int64         `json:"owner_id" db:"owner_id"`
	Status       VehicleStatus `json:"status" db:"status"`
	RegisteredAt time.Time     `json:"registered_at" db:"registered_at"`
}

// CanTransact reports whether the vehicle is allowed through a lane.
func (v *Vehicle) CanTransact() bool {
	return v.Status == VehicleActive
}
