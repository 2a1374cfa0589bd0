package services

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-checkable category of a toll failure.
type ErrorKind string

const (
	KindVehicleNotFound     ErrorKind = "VehicleNotFound"
	KindVehicleInactive     ErrorKind = "VehicleInactive"
	KindRateNotConfigured   ErrorKind = "RateNotConfigured"
	KindInsufficientFunds   ErrorKind = "InsufficientFunds"
	KindWalletNotFound      ErrorKind = "WalletNotFound"
	KindInvalidAmount       ErrorKind = "InvalidAmount"
	KindPersistenceFailure  ErrorKind = "PersistenceFailure"
	KindInvalidRequest      ErrorKind = "InvalidRequest"
	KindTransactionNotFound ErrorKind = "TransactionNotFound"
	KindAlreadyRefunded     ErrorKind = "AlreadyRefunded"
	KindLedgerMismatch      ErrorKind = "LedgerMismatch"
)

// TollError carries a kind, a human-readable reason and optionally the cause.
type TollError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *TollError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *TollError) Unwrap() error { return e.Err }

// Is matches any TollError of the same kind, so the sentinels below work with errors.Is.
func (e *TollError) Is(target error) bool {
	var t *TollError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrVehicleNotFound     = &TollError{Kind: KindVehicleNotFound, Reason: "vehicle not found"}
	ErrVehicleInactive     = &TollError{Kind: KindVehicleInactive, Reason: "vehicle is not active"}
	ErrRateNotConfigured   = &TollError{Kind: KindRateNotConfigured, Reason: "toll rate not configured for this vehicle type"}
	ErrInsufficientFunds   = &TollError{Kind: KindInsufficientFunds, Reason: "insufficient wallet balance"}
	ErrWalletNotFound      = &TollError{Kind: KindWalletNotFound, Reason: "wallet not found"}
	ErrInvalidAmount       = &TollError{Kind: KindInvalidAmount, Reason: "amount must be greater than zero"}
	ErrPersistenceFailure  = &TollError{Kind: KindPersistenceFailure, Reason: "storage failure"}
	ErrInvalidRequest      = &TollError{Kind: KindInvalidRequest, Reason: "invalid request"}
	ErrTransactionNotFound = &TollError{Kind: KindTransactionNotFound, Reason: "toll transaction not found"}
	ErrAlreadyRefunded     = &TollError{Kind: KindAlreadyRefunded, Reason: "toll transaction cannot be refunded"}
	ErrLedgerMismatch      = &TollError{Kind: KindLedgerMismatch, Reason: "wallet balance does not match its ledger"}
)

func newError(kind ErrorKind, format string, args ...any) *TollError {
	return &TollError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// persistenceError wraps a storage error. TollErrors pass through unchanged.
func persistenceError(op string, err error) error {
	var te *TollError
	if errors.As(err, &te) {
		return err
	}
	return &TollError{Kind: KindPersistenceFailure, Reason: op, Err: err}
}

// KindOf returns the kind of err, or "" when err is not a TollError.
func KindOf(err error) ErrorKind {
	var te *TollError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// ReasonOf returns the human-readable reason of err.
func ReasonOf(err error) string {
	var te *TollError
	if errors.As(err, &te) {
		return te.Reason
	}
	return err.Error()
}
