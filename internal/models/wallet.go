package models

import (
	"database/sql/driver"
	"time"
)

// EntryType classifies a wallet ledger entry.
type EntryType string

const (
	EntryRecharge  EntryType = "recharge"
	EntryDeduction EntryType = "deduction"
	EntryRefund    EntryType = "refund"
)

func ParseEntryType(s string) (EntryType, error) { return parseEnum[EntryType]("entry type", s) }

func (t EntryType) Valid() bool {
	switch t {
	case EntryRecharge, EntryDeduction, EntryRefund:
		return true
	}
	return false
}

// IsCredit reports whether entries of this type increase the balance.
func (t EntryType) IsCredit() bool {
	return t == EntryRecharge || t == EntryRefund
}

func (t EntryType) Value() (driver.Value, error) { return enumValue("entry type", t) }
func (t *EntryType) Scan(value any) error        { return scanEnum("entry type", t, value) }

// Wallet holds the prepaid balance of one account. Balance is a cached value
// that always equals the signed sum of the wallet's ledger entries.
type Wallet struct {
	ID        int64     `json:"id" db:"id"`
	AccountID int64     `json:"account_id" db:"account_id"`
	Balance   Amount    `json:"balance" db:"balance"`
	Version   int       `json:"version" db:"version"` // for optimistic locking
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WalletLedgerEntry is an immutable record of a balance change.
type WalletLedgerEntry struct {
	ID           string    `json:"id" db:"id"`
	WalletID     int64     `json:"wallet_id" db:"wallet_id"`
	Type         EntryType `json:"type" db:"entry_type"`
	Amount       Amount    `json:"amount" db:"amount"` // always > 0
	BalanceAfter Amount    `json:"balance_after" db:"balance_after"`
	Reference    *string   `json:"reference,omitempty" db:"reference_txn_id"`
	Description  string    `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Signed returns the entry's effect on the balance.
func (e *WalletLedgerEntry) Signed() Amount {
	if e.Type.IsCredit() {
		return e.Amount
	}
	return -e.Amount
}
