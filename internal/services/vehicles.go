package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/smarttoll/backend/internal/models"
)

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// VehicleDirectory resolves vehicles by id or by registration number / tag.
type VehicleDirectory interface {
	VehicleByID(ctx context.Context, id int64) (*models.Vehicle, error)
	FindVehicle(ctx context.Context, numberOrTag string) (*models.Vehicle, error)
}

type SQLVehicleDirectory struct {
	db *sql.DB
}

func NewSQLVehicleDirectory(db *sql.DB) *SQLVehicleDirectory {
	return &SQLVehicleDirectory{db: db}
}

const vehicleColumns = `id, number, tag_id, vehicle_type, owner_id, status, registered_at`

func scanVehicle(row *sql.Row) (*models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.Number, &v.TagID, &v.Type, &v.OwnerID, &v.Status, &v.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, persistenceError("load vehicle", err)
	}
	return &v, nil
}

func (d *SQLVehicleDirectory) VehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	return scanVehicle(d.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
}

// FindVehicle matches the registration number first and the RFID tag second.
func (d *SQLVehicleDirectory) FindVehicle(ctx context.Context, numberOrTag string) (*models.Vehicle, error) {
	key := NormalizeVehicleNumber(numberOrTag)
	if key == "" {
		return nil, newError(KindInvalidRequest, "vehicle number is required")
	}

	v, err := scanVehicle(d.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE number = $1`, key))
	if !errors.Is(err, ErrVehicleNotFound) {
		return v, err
	}
	return scanVehicle(d.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE tag_id = $1`, strings.TrimSpace(numberOrTag)))
}

// NormalizeVehicleNumber strips spaces and dashes and upper-cases a plate.
func NormalizeVehicleNumber(value string) string {
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "-", "")
	return strings.ToUpper(value)
}
