package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/smarttoll/backend/internal/audit"
	"github.com/smarttoll/backend/internal/models"
)

// TollService settles crossings: it prices them, debits the owner's wallet and
// records the toll transaction in one SQL transaction.
type TollService struct {
	db        *sql.DB
	vehicles  VehicleDirectory
	pricing   *PricingEngine
	ledger    *WalletLedger
	audit     *audit.Logger
	validator *ValidationHelper
	now       func() time.Time
	newID     func() string
}

type TollServiceOptions struct {
	Now   func() time.Time
	NewID func() string
	Audit *audit.Logger
}

func NewTollService(db *sql.DB, vehicles VehicleDirectory, pricing *PricingEngine, ledger *WalletLedger, opts TollServiceOptions) *TollService {
	s := &TollService{
		db:        db,
		vehicles:  vehicles,
		pricing:   pricing,
		ledger:    ledger,
		audit:     opts.Audit,
		validator: NewValidationHelper(),
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.audit == nil {
		s.audit = audit.NewLogger(nil)
	}
	return s
}

// ProcessRequest is a crossing event reported by a lane.
type ProcessRequest struct {
	VehicleID   int64              `json:"vehicle_id" validate:"required,gt=0"`
	PlazaID     int64              `json:"plaza_id" validate:"required,gt=0"`
	PaymentMode models.PaymentMode `json:"payment_mode" validate:"required,oneof=wallet cash upi"`
	LaneNo      int                `json:"lane_no" validate:"required,gt=0"`
	OperatorID  *int64             `json:"-"`
}

// ProcessToll settles one crossing. On any error nothing is persisted.
func (s *TollService) ProcessToll(ctx context.Context, req ProcessRequest) (*models.Receipt, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"vehicle_id":   req.VehicleID,
		"plaza_id":     req.PlazaID,
		"lane_no":      req.LaneNo,
		"payment_mode": req.PaymentMode,
	})

	vehicle, err := s.vehicles.VehicleByID(ctx, req.VehicleID)
	if err != nil {
		return nil, s.reject(logger, "TOLL", req, err)
	}
	if !vehicle.CanTransact() {
		return nil, s.reject(logger, "TOLL", req, &TollError{
			Kind:   KindVehicleInactive,
			Reason: fmt.Sprintf("vehicle %s is %s", vehicle.Number, vehicle.Status),
		})
	}

	now := s.now()
	quote, err := s.pricing.Resolve(ctx, req.PlazaID, vehicle.Type, now)
	if err != nil {
		return nil, s.reject(logger, "TOLL", req, err)
	}

	txn := &models.TollTransaction{
		ID:          s.newID(),
		VehicleID:   vehicle.ID,
		PlazaID:     req.PlazaID,
		LaneNo:      req.LaneNo,
		Amount:      quote.Amount,
		PaymentMode: req.PaymentMode,
		Status:      models.StatusCompleted,
		Slot:        quote.Slot,
		OperatorID:  req.OperatorID,
		CreatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.reject(logger, "TOLL", req, persistenceError("begin transaction", err))
	}
	defer tx.Rollback()

	var (
		balance *models.Amount
		entry   *models.WalletLedgerEntry
	)
	if req.PaymentMode == models.PaymentWallet {
		wallet, err := walletForAccount(ctx, tx, vehicle.OwnerID)
		if err != nil {
			return nil, s.reject(logger, "TOLL", req, err)
		}
		remaining := wallet.Balance
		if quote.Amount.IsPositive() {
			description := fmt.Sprintf("Toll at plaza %d lane %d", req.PlazaID, req.LaneNo)
			entry, err = s.ledger.DebitTx(ctx, tx, wallet.ID, quote.Amount, &txn.ID, description)
			if err != nil {
				return nil, s.reject(logger, "TOLL", req, err)
			}
			remaining = entry.BalanceAfter
		}
		balance = &remaining
	}

	if err := insertTollTransaction(ctx, tx, txn); err != nil {
		return nil, s.reject(logger, "TOLL", req, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.reject(logger, "TOLL", req, persistenceError("commit toll transaction", err))
	}

	if entry != nil {
		s.audit.LogLedger(entry.WalletID, vehicle.OwnerID, string(entry.Type), int64(entry.Amount), int64(entry.BalanceAfter), txn.ID)
	}
	s.audit.LogToll(txn.ID, vehicle.ID, req.PlazaID, int64(txn.Amount), string(txn.PaymentMode))
	logger.WithFields(log.Fields{
		"txn_id":    txn.ID,
		"amount":    txn.Amount.String(),
		"time_slot": txn.Slot,
		"fell_back": quote.FellBack(),
	}).Info("Toll processed")

	return &models.Receipt{
		TransactionID: txn.ID,
		VehicleNumber: vehicle.Number,
		VehicleType:   vehicle.Type,
		PlazaID:       txn.PlazaID,
		LaneNo:        txn.LaneNo,
		Amount:        txn.Amount,
		PaymentMode:   txn.PaymentMode,
		Slot:          txn.Slot,
		Status:        txn.Status,
		Timestamp:     txn.CreatedAt,
		Balance:       balance,
	}, nil
}

func insertTollTransaction(ctx context.Context, tx *sql.Tx, txn *models.TollTransaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO toll_transactions (id, vehicle_id, plaza_id, lane_no, amount, payment_mode, status, time_slot, operator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		txn.ID, txn.VehicleID, txn.PlazaID, txn.LaneNo, txn.Amount, txn.PaymentMode, txn.Status, txn.Slot, txn.OperatorID, txn.CreatedAt)
	if err != nil {
		return persistenceError("insert toll transaction", err)
	}
	return nil
}

func (s *TollService) reject(logger *log.Entry, op string, subject any, err error) error {
	logger.WithFields(log.Fields{"kind": KindOf(err)}).WithError(err).Warn("Toll operation rejected")
	s.audit.LogError(op, subject, err)
	return err
}

// RechargeWallet credits amount to the account's wallet, creating the wallet
// on first use, and returns the new balance.
func (s *TollService) RechargeWallet(ctx context.Context, accountID int64, amount models.Amount) (models.Amount, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	if accountID <= 0 {
		return 0, newError(KindInvalidRequest, "account id must be positive")
	}

	logger := log.WithFields(log.Fields{"account_id": accountID, "amount": amount.String()})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.reject(logger, "RECHARGE", accountID, persistenceError("begin transaction", err))
	}
	defer tx.Rollback()

	walletID, err := ensureWalletTx(ctx, tx, accountID, s.now())
	if err != nil {
		return 0, s.reject(logger, "RECHARGE", accountID, err)
	}
	entry, err := s.ledger.CreditTx(ctx, tx, walletID, amount, models.EntryRecharge, nil, "Wallet recharge")
	if err != nil {
		return 0, s.reject(logger, "RECHARGE", accountID, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, s.reject(logger, "RECHARGE", accountID, persistenceError("commit recharge", err))
	}

	s.audit.LogLedger(walletID, accountID, string(entry.Type), int64(entry.Amount), int64(entry.BalanceAfter), "")
	logger.WithFields(log.Fields{
		"wallet_id":     walletID,
		"balance_after": entry.BalanceAfter.String(),
	}).Info("Wallet recharged")
	return entry.BalanceAfter, nil
}

type RefundResult struct {
	TransactionID string        `json:"transaction_id"`
	WalletID      int64         `json:"wallet_id"`
	Amount        models.Amount `json:"amount"`
	Balance       models.Amount `json:"wallet_balance"`
}

// RefundToll returns the amount of a wallet-paid toll to the wallet it was
// debited from. A toll is refunded at most once.
func (s *TollService) RefundToll(ctx context.Context, txnID string) (*RefundResult, error) {
	if _, err := uuid.Parse(txnID); err != nil {
		return nil, newError(KindInvalidRequest, "invalid transaction id %q", txnID)
	}

	logger := log.WithField("txn_id", txnID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.reject(logger, "REFUND", txnID, persistenceError("begin transaction", err))
	}
	defer tx.Rollback()

	var (
		amount   models.Amount
		mode     models.PaymentMode
		walletID sql.NullInt64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT t.amount, t.payment_mode, e.wallet_id
		FROM toll_transactions t
		LEFT JOIN wallet_ledger_entries e ON e.reference_txn_id = t.id AND e.entry_type = 'deduction'
		WHERE t.id = $1`, txnID).Scan(&amount, &mode, &walletID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.reject(logger, "REFUND", txnID, &TollError{Kind: KindTransactionNotFound, Reason: fmt.Sprintf("toll transaction %s not found", txnID)})
	}
	if err != nil {
		return nil, s.reject(logger, "REFUND", txnID, persistenceError("load toll transaction", err))
	}
	if mode != models.PaymentWallet {
		return nil, s.reject(logger, "REFUND", txnID, newError(KindInvalidRequest, "%s payments are not refunded through the wallet", mode))
	}
	if !walletID.Valid {
		return nil, s.reject(logger, "REFUND", txnID, newError(KindInvalidRequest, "toll transaction %s has no wallet deduction", txnID))
	}

	var refunded bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM wallet_ledger_entries WHERE reference_txn_id = $1 AND entry_type = 'refund')`,
		txnID).Scan(&refunded)
	if err != nil {
		return nil, s.reject(logger, "REFUND", txnID, persistenceError("check refund", err))
	}
	if refunded {
		return nil, s.reject(logger, "REFUND", txnID, &TollError{Kind: KindAlreadyRefunded, Reason: fmt.Sprintf("toll transaction %s was already refunded", txnID)})
	}

	ref := txnID
	entry, err := s.ledger.CreditTx(ctx, tx, walletID.Int64, amount, models.EntryRefund, &ref, "Toll refund")
	if err != nil {
		return nil, s.reject(logger, "REFUND", txnID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.reject(logger, "REFUND", txnID, persistenceError("commit refund", err))
	}

	s.audit.LogRefund(txnID, int64(amount))
	logger.WithFields(log.Fields{
		"wallet_id":     entry.WalletID,
		"balance_after": entry.BalanceAfter.String(),
	}).Info("Toll refunded")

	return &RefundResult{
		TransactionID: txnID,
		WalletID:      entry.WalletID,
		Amount:        amount,
		Balance:       entry.BalanceAfter,
	}, nil
}

// refundExists holds for a toll transaction t that a refund entry references.
const refundExists = `EXISTS (SELECT 1 FROM wallet_ledger_entries r WHERE r.reference_txn_id = t.id AND r.entry_type = 'refund')`

// transactionStatus reports a toll as refunded once a refund entry references it.
const transactionStatus = `CASE WHEN ` + refundExists + ` THEN 'refunded' ELSE t.status END`

// GetReceipt rebuilds the receipt of a stored toll transaction.
func (s *TollService) GetReceipt(ctx context.Context, txnID string) (*models.Receipt, error) {
	if _, err := uuid.Parse(txnID); err != nil {
		return nil, newError(KindInvalidRequest, "invalid transaction id %q", txnID)
	}

	var (
		receipt models.Receipt
		balance sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT t.id, v.number, v.vehicle_type, t.plaza_id, t.lane_no, t.amount, t.payment_mode, t.time_slot,
			`+transactionStatus+`, t.created_at, e.balance_after
		FROM toll_transactions t
		JOIN vehicles v ON v.id = t.vehicle_id
		LEFT JOIN wallet_ledger_entries e ON e.reference_txn_id = t.id AND e.entry_type = 'deduction'
		WHERE t.id = $1`, txnID).Scan(
		&receipt.TransactionID, &receipt.VehicleNumber, &receipt.VehicleType, &receipt.PlazaID, &receipt.LaneNo,
		&receipt.Amount, &receipt.PaymentMode, &receipt.Slot, &receipt.Status, &receipt.Timestamp, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &TollError{Kind: KindTransactionNotFound, Reason: fmt.Sprintf("toll transaction %s not found", txnID)}
	}
	if err != nil {
		return nil, persistenceError("load receipt", err)
	}
	if balance.Valid {
		b := models.Amount(balance.Int64)
		receipt.Balance = &b
	}
	return &receipt, nil
}

// VehicleHistory lists a vehicle's tolls, newest first.
func (s *TollService) VehicleHistory(ctx context.Context, vehicleID int64, limit int) ([]models.TollTransaction, error) {
	if _, err := s.vehicles.VehicleByID(ctx, vehicleID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.vehicle_id, t.plaza_id, t.lane_no, t.amount, t.payment_mode,
			`+transactionStatus+`, t.time_slot, t.operator_id, t.created_at
		FROM toll_transactions t
		WHERE t.vehicle_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2`, vehicleID, clampLimit(limit))
	if err != nil {
		return nil, persistenceError("list toll history", err)
	}
	defer rows.Close()

	history := []models.TollTransaction{}
	for rows.Next() {
		var txn models.TollTransaction
		if err := rows.Scan(&txn.ID, &txn.VehicleID, &txn.PlazaID, &txn.LaneNo, &txn.Amount, &txn.PaymentMode,
			&txn.Status, &txn.Slot, &txn.OperatorID, &txn.CreatedAt); err != nil {
			return nil, persistenceError("scan toll transaction", err)
		}
		history = append(history, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list toll history", err)
	}
	return history, nil
}

// AccountSummary totals the completed tolls of every vehicle an account owns.
// Refunded tolls count as crossings but not towards TotalPaid.
func (s *TollService) AccountSummary(ctx context.Context, accountID int64) (*models.AccountSummary, error) {
	summary := models.AccountSummary{AccountID: accountID}
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT v.id), COUNT(t.id),
			COALESCE(SUM(CASE WHEN `+refundExists+` THEN 0 ELSE t.amount END), 0),
			MAX(t.created_at)
		FROM vehicles v
		LEFT JOIN toll_transactions t ON t.vehicle_id = v.id AND t.status = 'completed'
		WHERE v.owner_id = $1`, accountID).Scan(&summary.Vehicles, &summary.TotalTransactions, &summary.TotalPaid, &last)
	if err != nil {
		return nil, persistenceError("summarise account", err)
	}
	if last.Valid {
		summary.LastTransaction = &last.Time
	}
	return &summary, nil
}

type WalletStatement struct {
	Wallet  *models.Wallet             `json:"wallet"`
	Entries []models.WalletLedgerEntry `json:"entries"`
}

// WalletStatement returns the account's wallet with its most recent entries.
func (s *TollService) WalletStatement(ctx context.Context, accountID int64, limit int) (*WalletStatement, error) {
	wallet, err := s.ledger.WalletForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.Entries(ctx, wallet.ID, limit)
	if err != nil {
		return nil, err
	}
	return &WalletStatement{Wallet: wallet, Entries: entries}, nil
}

// LookupVehicle finds a vehicle by registration number or RFID tag.
func (s *TollService) LookupVehicle(ctx context.Context, numberOrTag string) (*models.Vehicle, error) {
	return s.vehicles.FindVehicle(ctx, numberOrTag)
}
