package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"github.com/smarttoll/backend/internal/audit"
	"github.com/smarttoll/backend/internal/models"
)

// Postgres error codes the ledger maps to domain errors.
const (
	pqForeignKeyViolation pq.ErrorCode = "23503"
	pqUniqueViolation     pq.ErrorCode = "23505"
	pqCheckViolation      pq.ErrorCode = "23514"
)

// WalletLedger applies balance changes to wallets. Each change appends one
// ledger entry and updates the cached balance inside the same SQL transaction,
// with the wallet row locked FOR UPDATE so operations on one wallet serialize.
type WalletLedger struct {
	db    *sql.DB
	audit *audit.Logger
	now   func() time.Time
	newID func() string
}

type LedgerOptions struct {
	Now   func() time.Time
	NewID func() string
	Audit *audit.Logger
}

func NewWalletLedger(db *sql.DB, opts LedgerOptions) *WalletLedger {
	l := &WalletLedger{
		db:    db,
		audit: opts.Audit,
		now:   opts.Now,
		newID: opts.NewID,
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	if l.audit == nil {
		l.audit = audit.NewLogger(nil)
	}
	return l
}

// Debit removes amount from the wallet. It fails with ErrInsufficientFunds,
// leaving the wallet untouched, when the balance is lower than amount.
func (l *WalletLedger) Debit(ctx context.Context, walletID int64, amount models.Amount, reference *string) (models.Amount, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return l.inTx(ctx, func(tx *sql.Tx) (*models.Wallet, *models.WalletLedgerEntry, error) {
		return l.apply(ctx, tx, walletID, models.EntryDeduction, amount, reference, "Toll deduction")
	})
}

// Credit adds amount to the wallet as a recharge or refund entry.
func (l *WalletLedger) Credit(ctx context.Context, walletID int64, amount models.Amount, entryType models.EntryType, reference *string) (models.Amount, error) {
	if err := checkCredit(amount, entryType); err != nil {
		return 0, err
	}
	return l.inTx(ctx, func(tx *sql.Tx) (*models.Wallet, *models.WalletLedgerEntry, error) {
		return l.apply(ctx, tx, walletID, entryType, amount, reference, describeCredit(entryType))
	})
}

// DebitTx is Debit inside a transaction owned by the caller.
func (l *WalletLedger) DebitTx(ctx context.Context, tx *sql.Tx, walletID int64, amount models.Amount, reference *string, description string) (*models.WalletLedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	_, entry, err := l.apply(ctx, tx, walletID, models.EntryDeduction, amount, reference, description)
	return entry, err
}

// CreditTx is Credit inside a transaction owned by the caller.
func (l *WalletLedger) CreditTx(ctx context.Context, tx *sql.Tx, walletID int64, amount models.Amount, entryType models.EntryType, reference *string, description string) (*models.WalletLedgerEntry, error) {
	if err := checkCredit(amount, entryType); err != nil {
		return nil, err
	}
	_, entry, err := l.apply(ctx, tx, walletID, entryType, amount, reference, description)
	return entry, err
}

// inTx runs fn in its own transaction and audits the entry once committed.
func (l *WalletLedger) inTx(ctx context.Context, fn func(tx *sql.Tx) (*models.Wallet, *models.WalletLedgerEntry, error)) (models.Amount, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, persistenceError("begin transaction", err)
	}
	defer tx.Rollback()

	wallet, entry, err := fn(tx)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, persistenceError("commit ledger entry", err)
	}

	l.audit.LogLedger(entry.WalletID, wallet.AccountID, string(entry.Type), int64(entry.Amount), int64(entry.BalanceAfter), deref(entry.Reference))
	return entry.BalanceAfter, nil
}

// apply locks the wallet, stages the entry and moves the balance. It returns
// the wallet as locked, before the move.
func (l *WalletLedger) apply(ctx context.Context, tx *sql.Tx, walletID int64, entryType models.EntryType, amount models.Amount, reference *string, description string) (*models.Wallet, *models.WalletLedgerEntry, error) {
	wallet, err := l.lockWallet(ctx, tx, walletID)
	if err != nil {
		return nil, nil, err
	}

	var next models.Amount
	if entryType.IsCredit() {
		next, err = safeAdd(wallet.Balance, amount)
		if err != nil {
			return nil, nil, err
		}
	} else {
		if wallet.Balance < amount {
			return nil, nil, &TollError{
				Kind:   KindInsufficientFunds,
				Reason: fmt.Sprintf("wallet balance %s is less than %s", wallet.Balance, amount),
			}
		}
		next = wallet.Balance - amount
	}

	entry := &models.WalletLedgerEntry{
		ID:           l.newID(),
		WalletID:     wallet.ID,
		Type:         entryType,
		Amount:       amount,
		BalanceAfter: next,
		Reference:    reference,
		Description:  description,
		CreatedAt:    l.now(),
	}
	if err := l.createLedgerEntry(ctx, tx, entry); err != nil {
		return nil, nil, err
	}
	if err := l.updateWalletBalance(ctx, tx, wallet.ID, next, wallet.Version); err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"wallet_id":     wallet.ID,
		"entry_type":    entryType,
		"amount":        amount.String(),
		"balance_after": next.String(),
	}).Debug("Ledger entry staged")
	return wallet, entry, nil
}

func (l *WalletLedger) lockWallet(ctx context.Context, tx *sql.Tx, walletID int64) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.QueryRowContext(ctx, `
		SELECT id, account_id, balance, version, updated_at
		FROM wallets
		WHERE id = $1
		FOR UPDATE`, walletID).Scan(&wallet.ID, &wallet.AccountID, &wallet.Balance, &wallet.Version, &wallet.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &TollError{Kind: KindWalletNotFound, Reason: fmt.Sprintf("wallet %d not found", walletID)}
	}
	if err != nil {
		return nil, persistenceError("lock wallet", err)
	}
	return &wallet, nil
}

func (l *WalletLedger) createLedgerEntry(ctx context.Context, tx *sql.Tx, entry *models.WalletLedgerEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger_entries (id, wallet_id, entry_type, amount, balance_after, reference_txn_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.WalletID, entry.Type, entry.Amount, entry.BalanceAfter, entry.Reference, entry.Description, entry.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && entry.Type == models.EntryRefund {
			return &TollError{Kind: KindAlreadyRefunded, Reason: fmt.Sprintf("toll transaction %s was already refunded", deref(entry.Reference)), Err: err}
		}
		return persistenceError("insert ledger entry", err)
	}
	return nil
}

func (l *WalletLedger) updateWalletBalance(ctx context.Context, tx *sql.Tx, walletID int64, newBalance models.Amount, version int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		newBalance, l.now(), walletID, version)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqCheckViolation {
			return &TollError{Kind: KindInsufficientFunds, Reason: "wallet balance cannot go negative", Err: err}
		}
		return persistenceError("update wallet balance", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistenceError("update wallet balance", err)
	}
	if rowsAffected == 0 {
		return persistenceError("update wallet balance", fmt.Errorf("optimistic lock failed for wallet %d", walletID))
	}
	return nil
}

// WalletForAccount returns the wallet owned by accountID.
func (l *WalletLedger) WalletForAccount(ctx context.Context, accountID int64) (*models.Wallet, error) {
	return walletForAccount(ctx, l.db, accountID)
}

func walletForAccount(ctx context.Context, q querier, accountID int64) (*models.Wallet, error) {
	var wallet models.Wallet
	err := q.QueryRowContext(ctx, `
		SELECT id, account_id, balance, version, updated_at
		FROM wallets
		WHERE account_id = $1`, accountID).Scan(&wallet.ID, &wallet.AccountID, &wallet.Balance, &wallet.Version, &wallet.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &TollError{Kind: KindWalletNotFound, Reason: fmt.Sprintf("no wallet for account %d", accountID)}
	}
	if err != nil {
		return nil, persistenceError("load wallet", err)
	}
	return &wallet, nil
}

// ensureWalletTx returns the id of the account's wallet, creating an empty one if needed.
func ensureWalletTx(ctx context.Context, tx *sql.Tx, accountID int64, now time.Time) (int64, error) {
	var walletID int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO wallets (account_id, balance, version, updated_at)
		VALUES ($1, 0, 0, $2)
		ON CONFLICT (account_id) DO UPDATE SET account_id = EXCLUDED.account_id
		RETURNING id`, accountID, now).Scan(&walletID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return 0, &TollError{Kind: KindWalletNotFound, Reason: fmt.Sprintf("account %d does not exist", accountID), Err: err}
		}
		return 0, persistenceError("ensure wallet", err)
	}
	return walletID, nil
}

// Balance returns the cached balance of a wallet.
func (l *WalletLedger) Balance(ctx context.Context, walletID int64) (models.Amount, error) {
	var balance models.Amount
	err := l.db.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE id = $1`, walletID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &TollError{Kind: KindWalletNotFound, Reason: fmt.Sprintf("wallet %d not found", walletID)}
	}
	if err != nil {
		return 0, persistenceError("load balance", err)
	}
	return balance, nil
}

// Entries lists the most recent ledger entries of a wallet, newest first.
func (l *WalletLedger) Entries(ctx context.Context, walletID int64, limit int) ([]models.WalletLedgerEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, wallet_id, entry_type, amount, balance_after, reference_txn_id, description, created_at
		FROM wallet_ledger_entries
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, walletID, clampLimit(limit))
	if err != nil {
		return nil, persistenceError("list ledger entries", err)
	}
	defer rows.Close()

	entries := []models.WalletLedgerEntry{}
	for rows.Next() {
		var e models.WalletLedgerEntry
		if err := rows.Scan(&e.ID, &e.WalletID, &e.Type, &e.Amount, &e.BalanceAfter, &e.Reference, &e.Description, &e.CreatedAt); err != nil {
			return nil, persistenceError("scan ledger entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list ledger entries", err)
	}
	return entries, nil
}

// Reconcile checks that the cached balance equals the signed sum of the wallet's entries.
func (l *WalletLedger) Reconcile(ctx context.Context, walletID int64) error {
	var balance, sum models.Amount
	err := l.db.QueryRowContext(ctx, `
		SELECT w.balance,
			COALESCE(SUM(CASE WHEN e.entry_type = 'deduction' THEN -e.amount ELSE e.amount END), 0)
		FROM wallets w
		LEFT JOIN wallet_ledger_entries e ON e.wallet_id = w.id
		WHERE w.id = $1
		GROUP BY w.balance`, walletID).Scan(&balance, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return &TollError{Kind: KindWalletNotFound, Reason: fmt.Sprintf("wallet %d not found", walletID)}
	}
	if err != nil {
		return persistenceError("reconcile wallet", err)
	}
	if balance != sum {
		return &TollError{
			Kind:   KindLedgerMismatch,
			Reason: fmt.Sprintf("wallet %d balance %s but ledger sums to %s", walletID, balance, sum),
		}
	}
	return nil
}

func checkCredit(amount models.Amount, entryType models.EntryType) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !entryType.IsCredit() {
		return newError(KindInvalidRequest, "%q is not a credit entry type", entryType)
	}
	return nil
}

func safeAdd(a, b models.Amount) (models.Amount, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, newError(KindInvalidAmount, "balance overflow")
	}
	return a + b, nil
}

func describeCredit(entryType models.EntryType) string {
	if entryType == models.EntryRefund {
		return "Toll refund"
	}
	return "Wallet recharge"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
