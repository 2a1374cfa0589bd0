package models

// Plaza is a toll collection point.
type Plaza struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Location string `json:"location" db:"location"`
	City     string `json:"city" db:"city"`
	State    string `json:"state" db:"state"`
	Lanes    int    `json:"lanes" db:"lanes"`
}
