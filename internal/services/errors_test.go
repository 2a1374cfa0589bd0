package services

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTollError_Is(t *testing.T) {
	err := newError(KindInsufficientFunds, "wallet balance %s is less than %s", "40.00", "50.00")

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NotErrorIs(t, err, ErrWalletNotFound)
	assert.ErrorIs(t, fmt.Errorf("process toll: %w", err), ErrInsufficientFunds)
	assert.Equal(t, "InsufficientFunds: wallet balance 40.00 is less than 50.00", err.Error())
}

func TestPersistenceError(t *testing.T) {
	t.Run("wraps driver errors", func(t *testing.T) {
		err := persistenceError("load wallet", sql.ErrConnDone)

		assert.ErrorIs(t, err, ErrPersistenceFailure)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Equal(t, KindPersistenceFailure, KindOf(err))
		assert.Equal(t, "load wallet", ReasonOf(err))
	})

	t.Run("keeps toll errors", func(t *testing.T) {
		err := persistenceError("load wallet", ErrWalletNotFound)
		assert.Equal(t, KindWalletNotFound, KindOf(err))
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, "plain", ReasonOf(errors.New("plain")))
	assert.Equal(t, KindVehicleInactive, KindOf(ErrVehicleInactive))
}
