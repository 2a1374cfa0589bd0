package models

import "time"

// Role is the access role of a system user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "toll_operator"
	RoleUser     Role = "user"
)

func ParseRole(s string) (Role, error) { return parseEnum[Role]("role", s) }

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleUser:
		return true
	}
	return false
}

// CanOperateLane reports whether the role may process tolls at a booth.
func (r Role) CanOperateLane() bool {
	return r == RoleAdmin || r == RoleOperator
}

// AccountSummary aggregates the toll activity of one account's vehicles.
type AccountSummary struct {
	AccountID         int64      `json:"account_id"`
	Vehicles          int        `json:"vehicles"`
	TotalTransactions int        `json:"total_transactions"`
	TotalPaid         Amount     `json:"total_paid"`
	LastTransaction   *time.Time `json:"last_transaction,omitempty"`
}
