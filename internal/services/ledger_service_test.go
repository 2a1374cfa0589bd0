package services

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/smarttoll/backend/internal/audit"
	"github.com/smarttoll/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lockWalletSQL   = "SELECT id, account_id, balance, version, updated_at FROM wallets WHERE id = \\$1 FOR UPDATE"
	insertEntrySQL  = "INSERT INTO wallet_ledger_entries"
	updateWalletSQL = "UPDATE wallets SET balance = \\$1, version = version \\+ 1, updated_at = \\$2 WHERE id = \\$3 AND version = \\$4"
)

var walletColumns = []string{"id", "account_id", "balance", "version", "updated_at"}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
}

func newTestLedger(t *testing.T) (*WalletLedger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ledger := NewWalletLedger(db, LedgerOptions{
		Now:   fixedClock,
		NewID: func() string { return "entry-1" },
	})
	return ledger, mock
}

func TestWalletLedger_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("successful debit", func(t *testing.T) {
		ledger, mock := newTestLedger(t)
		ref := "8c0f5a8e-4f4e-4a7b-9d3b-1f2e3d4c5b6a"

		mock.ExpectBegin()
		mock.ExpectQuery(lockWalletSQL).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(walletColumns).AddRow(7, 42, 10000, 3, fixedClock()))
		mock.ExpectExec(insertEntrySQL).
			WithArgs("entry-1", 7, "deduction", 5000, 5000, ref, "Toll deduction", fixedClock()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(updateWalletSQL).
			WithArgs(5000, fixedClock(), 7, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		balance, err := ledger.Debit(ctx, 7, models.FromMajor(50), &ref)
		assert.NoError(t, err)
		assert.Equal(t, models.FromMajor(50), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient funds leaves wallet untouched", func(t *testing.T) {
		ledger, mock := newTestLedger(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockWalletSQL).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(walletColumns).AddRow(7, 42, 4000, 3, fixedClock()))
		mock.ExpectRollback()

		_, err := ledger.Debit(ctx, 7, models.FromMajor(50), nil)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Contains(t, err.Error(), "40.00")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("debit of the whole balance reaches zero", func(t *testing.T) {
		ledger, mock := newTestLedger(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockWalletSQL).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(walletColumns).AddRow(7, 42, 5000, 0, fixedClock()))
		mock.ExpectExec(insertEntrySQL).
			WithArgs("entry-1", 7, "deduction", 5000, 0, nil, "Toll deduction", fixedClock()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(updateWalletSQL).
			WithArgs(0, fixedClock(), 7, 0).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		balance, err := ledger.Debit(ctx, 7, models.FromMajor(50), nil)
		assert.NoError(t, err)
		assert.Equal(t, models.Amount(0), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-positive amount is rejected before any I/O", func(t *testing.T) {
		ledger, mock := newTestLedger(t)

		_, err := ledger.Debit(ctx, 7, 0, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = ledger.Debit(ctx, 7, -100, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown wallet", func(t *testing.T) {
		ledger, mock := newTestLedger(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockWalletSQL).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(walletColumns))
		mock.ExpectRollback()

		_, err := ledger.Debit(ctx, 99, models.FromMajor(1), nil)
		assert.ErrorIs(t, err, ErrWalletNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletLedger_Debit_AuditsOwningAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger, hook := test.NewNullLogger()
	ledger := NewWalletLedger(db, LedgerOptions{
		Now:   fixedClock,
		NewID: func() string { return "entry-1" },
		Audit: audit.NewLogger(logger),
	})

	mock.ExpectBegin()
	mock.ExpectQuery(lockWalletSQL).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(walletColumns).AddRow(7, 42, 10000, 3, fixedClock()))
	mock.ExpectExec(insertEntrySQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(updateWalletSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err = ledger.Debit(context.Background(), 7, models.FromMajor(50), nil)
	require.NoError(t, err)

	require.NotNil(t, hook.LastEntry())
	var event audit.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(hook.LastEntry().Message, "AUDIT: ")), &event))
	assert.Equal(t, "LEDGER_deduction", event.EventType)
	assert.Equal(t, int64(42), event.AccountID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletLedger_DebitTx_InvalidAmountWithoutIO(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := NewWalletLedger(db, LedgerOptions{})

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	_, err = ledger.DebitTx(context.Background(), tx, 7, 0, nil, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletLedger_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("recharge", func(t *testing.T) {
		ledger, mock := newTestLedger(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockWalletSQL).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(walletColumns).AddRow(7, 42, 4000, 1, fixedClock()))
		mock.ExpectExec(insertEntrySQL).
			WithArgs("entry-1", 7, "recharge", 20000, 24000, nil, "Wallet recharge", fixedClock()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(updateWalletSQL).
			WithArgs(24000, fixedClock(), 7, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		balance, err := ledger.Credit(ctx, 7, models.FromMajor(200), models.EntryRecharge, nil)
		assert.NoError(t, err)
		assert.Equal(t, models.FromMajor(240), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deduction is not a credit type", func(t *testing.T) {
		ledger, mock := newTestLedger(t)

		_, err := ledger.Credit(ctx, 7, models.FromMajor(1), models.EntryDeduction, nil)
		assert.Equal(t, KindInvalidRequest, KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate refund maps to already refunded", func(t *testing.T) {
		ledger, mock := newTestLedger(t)
		ref := "8c0f5a8e-4f4e-4a7b-9d3b-1f2e3d4c5b6a"

		mock.ExpectBegin()
		mock.ExpectQuery(lockWalletSQL).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(walletColumns).AddRow(7, 42, 0, 1, fixedClock()))
		mock.ExpectExec(insertEntrySQL).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		_, err := ledger.Credit(ctx, 7, models.FromMajor(50), models.EntryRefund, &ref)
		assert.ErrorIs(t, err, ErrAlreadyRefunded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletLedger_updateWalletBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := NewWalletLedger(db, LedgerOptions{Now: fixedClock})
	ctx := context.Background()

	t.Run("successful update", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		mock.ExpectExec(updateWalletSQL).
			WithArgs(4000, sqlmock.AnyArg(), 7, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := ledger.updateWalletBalance(ctx, tx, 7, 4000, 1)
		assert.NoError(t, err)
	})

	t.Run("optimistic lock failure", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		mock.ExpectExec(updateWalletSQL).
			WithArgs(4000, sqlmock.AnyArg(), 7, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := ledger.updateWalletBalance(ctx, tx, 7, 4000, 1)
		assert.ErrorIs(t, err, ErrPersistenceFailure)
		assert.Contains(t, err.Error(), "optimistic lock failed")
	})

	t.Run("negative balance constraint", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		mock.ExpectExec(updateWalletSQL).
			WillReturnError(&pq.Error{Code: "23514"})

		err := ledger.updateWalletBalance(ctx, tx, 7, -1, 1)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})
}

func TestWalletLedger_Reconcile(t *testing.T) {
	ctx := context.Background()
	reconcileSQL := "SELECT w.balance, COALESCE\\(SUM\\(CASE WHEN e.entry_type = 'deduction'"

	t.Run("balanced", func(t *testing.T) {
		ledger, mock := newTestLedger(t)
		mock.ExpectQuery(reconcileSQL).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"balance", "sum"}).AddRow(5000, 5000))

		assert.NoError(t, ledger.Reconcile(ctx, 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mismatch", func(t *testing.T) {
		ledger, mock := newTestLedger(t)
		mock.ExpectQuery(reconcileSQL).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"balance", "sum"}).AddRow(5000, 4000))

		err := ledger.Reconcile(ctx, 7)
		assert.ErrorIs(t, err, ErrLedgerMismatch)
	})

	t.Run("storage error", func(t *testing.T) {
		ledger, mock := newTestLedger(t)
		mock.ExpectQuery(reconcileSQL).WillReturnError(errors.New("connection reset"))

		err := ledger.Reconcile(ctx, 7)
		assert.ErrorIs(t, err, ErrPersistenceFailure)
	})
}

func TestWalletLedger_Entries(t *testing.T) {
	ledger, mock := newTestLedger(t)
	ref := "8c0f5a8e-4f4e-4a7b-9d3b-1f2e3d4c5b6a"

	mock.ExpectQuery("SELECT id, wallet_id, entry_type, amount, balance_after, reference_txn_id, description, created_at FROM wallet_ledger_entries").
		WithArgs(7, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "entry_type", "amount", "balance_after", "reference_txn_id", "description", "created_at"}).
			AddRow("e2", 7, "deduction", 5000, 15000, ref, "Toll deduction", fixedClock()).
			AddRow("e1", 7, "recharge", 20000, 20000, nil, "Wallet recharge", fixedClock().Add(-time.Hour)))

	entries, err := ledger.Entries(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.EntryDeduction, entries[0].Type)
	assert.Equal(t, ref, *entries[0].Reference)
	assert.Nil(t, entries[1].Reference)

	var sum models.Amount
	for i := range entries {
		sum += entries[i].Signed()
	}
	assert.Equal(t, entries[0].BalanceAfter, sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, clampLimit(0))
	assert.Equal(t, 50, clampLimit(-3))
	assert.Equal(t, 10, clampLimit(10))
	assert.Equal(t, 500, clampLimit(10000))
}

// TestWalletLedger_Conservation drives a random sequence of credits and debits
// against an in-test model of the wallet and checks that every committed
// balance equals the signed sum of the entries written so far and never drops
// below zero.
func TestWalletLedger_Conservation(t *testing.T) {
	ledger, mock := newTestLedger(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	var (
		balance models.Amount
		version int
		entries []models.WalletLedgerEntry
	)
	for i := 0; i < 200; i++ {
		amount := models.Amount(rng.Int63n(20000) + 1)
		credit := rng.Intn(2) == 0

		mock.ExpectBegin()
		mock.ExpectQuery(lockWalletSQL).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(walletColumns).AddRow(7, 42, int64(balance), version, fixedClock()))

		var (
			got models.Amount
			err error
		)
		switch {
		case credit:
			mock.ExpectExec(insertEntrySQL).WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(updateWalletSQL).
				WithArgs(int64(balance+amount), fixedClock(), 7, version).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()
			got, err = ledger.Credit(ctx, 7, amount, models.EntryRecharge, nil)
			require.NoError(t, err)
			balance += amount
			version++
			entries = append(entries, models.WalletLedgerEntry{Type: models.EntryRecharge, Amount: amount, BalanceAfter: balance})
		case amount > balance:
			mock.ExpectRollback()
			_, err = ledger.Debit(ctx, 7, amount, nil)
			require.ErrorIs(t, err, ErrInsufficientFunds)
			continue
		default:
			mock.ExpectExec(insertEntrySQL).WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(updateWalletSQL).
				WithArgs(int64(balance-amount), fixedClock(), 7, version).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()
			got, err = ledger.Debit(ctx, 7, amount, nil)
			require.NoError(t, err)
			balance -= amount
			version++
			entries = append(entries, models.WalletLedgerEntry{Type: models.EntryDeduction, Amount: amount, BalanceAfter: balance})
		}

		var sum models.Amount
		for j := range entries {
			sum += entries[j].Signed()
		}
		require.Equal(t, balance, got)
		require.Equal(t, sum, got)
		require.GreaterOrEqual(t, int64(got), int64(0))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
