package audit

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
)

type Event struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	TransactionID string    `json:"transaction_id,omitempty"`
	AccountID     int64     `json:"account_id,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	Status        string    `json:"status"`
	Details       any       `json:"details,omitempty"`
}

// Logger writes one AUDIT line per toll, ledger movement or failure.
type Logger struct {
	entry *log.Entry
	now   func() time.Time
}

func NewLogger(logger *log.Logger) *Logger {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Logger{
		entry: logger.WithField("component", "audit"),
		now:   time.Now,
	}
}

func (a *Logger) LogToll(transactionID string, vehicleID, plazaID int64, amount int64, paymentMode string) {
	a.log(Event{
		EventType:     "TOLL",
		TransactionID: transactionID,
		Amount:        amount,
		Status:        "SUCCESS",
		Details: map[string]any{
			"vehicle_id":   vehicleID,
			"plaza_id":     plazaID,
			"payment_mode": paymentMode,
		},
	})
}

func (a *Logger) LogLedger(walletID, accountID int64, entryType string, amount, balanceAfter int64, reference string) {
	a.log(Event{
		EventType:     "LEDGER_" + entryType,
		TransactionID: reference,
		AccountID:     accountID,
		Amount:        amount,
		Status:        "SUCCESS",
		Details: map[string]any{
			"wallet_id":     walletID,
			"balance_after": balanceAfter,
		},
	})
}

func (a *Logger) LogRefund(transactionID string, amount int64) {
	a.log(Event{
		EventType:     "REFUND",
		TransactionID: transactionID,
		Amount:        amount,
		Status:        "SUCCESS",
	})
}

func (a *Logger) LogError(operation string, subject any, err error) {
	a.log(Event{
		EventType: operation,
		Status:    "FAILED",
		Details: map[string]any{
			"subject": subject,
			"error":   err.Error(),
		},
	})
}

func (a *Logger) log(event Event) {
	event.Timestamp = a.now()
	data, err := json.Marshal(event)
	if err != nil {
		a.entry.WithError(err).Error("failed to encode audit event")
		return
	}
	a.entry.Infof("AUDIT: %s", data)
}
