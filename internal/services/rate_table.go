package services

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/smarttoll/backend/internal/models"
)

// SQLRateTable reads toll_rates. Rows that fail Rate.Validate are skipped.
type SQLRateTable struct {
	db *sql.DB
}

func NewSQLRateTable(db *sql.DB) *SQLRateTable {
	return &SQLRateTable{db: db}
}

func (t *SQLRateTable) Rates(ctx context.Context, plazaID int64, vehicleType models.VehicleType, slot models.TimeSlot) ([]models.Rate, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, plaza_id, vehicle_type, time_slot, from_minute, to_minute, amount
		FROM toll_rates
		WHERE plaza_id = $1 AND vehicle_type = $2 AND time_slot = $3
		ORDER BY from_minute`,
		plazaID, vehicleType, slot)
	if err != nil {
		return nil, fmt.Errorf("query toll rates: %w", err)
	}
	defer rows.Close()

	rates := []models.Rate{}
	for rows.Next() {
		var r models.Rate
		if err := rows.Scan(&r.ID, &r.PlazaID, &r.VehicleType, &r.Slot, &r.FromMinute, &r.ToMinute, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan toll rate: %w", err)
		}
		if err := r.Validate(); err != nil {
			log.WithError(err).WithField("rate_id", r.ID).Warn("Skipping invalid toll rate")
			continue
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}
