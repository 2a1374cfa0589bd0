package models

import (
	"database/sql/driver"
	"time"
)

// PaymentMode is how a crossing was paid.
type PaymentMode string

const (
	PaymentWallet PaymentMode = "wallet"
	PaymentCash   PaymentMode = "cash"
	PaymentUPI    PaymentMode = "upi"
)

func ParsePaymentMode(s string) (PaymentMode, error) { return parseEnum[PaymentMode]("payment mode", s) }

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentWallet, PaymentCash, PaymentUPI:
		return true
	}
	return false
}

func (m PaymentMode) Value() (driver.Value, error) { return enumValue("payment mode", m) }
func (m *PaymentMode) Scan(value any) error        { return scanEnum("payment mode", m, value) }

func (m *PaymentMode) UnmarshalText(b []byte) error {
	v, err := ParsePaymentMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// TransactionStatus is the lifecycle state of a toll transaction.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
	StatusRefunded  TransactionStatus = "refunded"
)

func ParseTransactionStatus(s string) (TransactionStatus, error) {
	return parseEnum[TransactionStatus]("transaction status", s)
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

func (s TransactionStatus) Value() (driver.Value, error) { return enumValue("transaction status", s) }
func (s *TransactionStatus) Scan(value any) error        { return scanEnum("transaction status", s, value) }

// TollTransaction records one paid crossing.
type TollTransaction struct {
	ID          string            `json:"id" db:"id"`
	VehicleID   int64             `json:"vehicle_id" db:"vehicle_id"`
	PlazaID     int64             `json:"plaza_id" db:"plaza_id"`
	LaneNo      int               `json:"lane_no" db:"lane_no"`
	Amount      Amount            `json:"amount" db:"amount"`
	PaymentMode PaymentMode       `json:"payment_mode" db:"payment_mode"`
	Status      TransactionStatus `json:"status" db:"status"`
	Slot        TimeSlot          `json:"time_slot" db:"time_slot"`
	OperatorID  *int64            `json:"operator_id,omitempty" db:"operator_id"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

// Receipt summarises a successful crossing for the lane operator.
type Receipt struct {
	TransactionID string            `json:"transaction_id"`
	VehicleNumber string            `json:"vehicle_number"`
	VehicleType   VehicleType       `json:"vehicle_type"`
	PlazaID       int64             `json:"plaza_id"`
	LaneNo        int               `json:"lane_no"`
	Amount        Amount            `json:"amount"`
	PaymentMode   PaymentMode       `json:"payment_mode"`
	Slot          TimeSlot          `json:"time_slot"`
	Status        TransactionStatus `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Balance       *Amount           `json:"wallet_balance,omitempty"`
}
