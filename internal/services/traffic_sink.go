package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/smarttoll/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TrafficSink stores hourly buckets keyed by (plaza, date, hour). Writing a
// bucket that already exists replaces it.
type TrafficSink interface {
	Upsert(ctx context.Context, buckets []models.HourlyBucket) error
}

// SQLTrafficSink writes buckets to the traffic_logs table.
type SQLTrafficSink struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLTrafficSink(db *sql.DB) *SQLTrafficSink {
	return &SQLTrafficSink{db: db, now: time.Now}
}

func (s *SQLTrafficSink) Upsert(ctx context.Context, buckets []models.HourlyBucket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError("begin traffic upsert", err)
	}
	defer tx.Rollback()

	updatedAt := s.now()
	for _, b := range buckets {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO traffic_logs (plaza_id, date, hour, vehicle_count, total_revenue, traffic_level, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (plaza_id, date, hour) DO UPDATE
			SET vehicle_count = EXCLUDED.vehicle_count,
				total_revenue = EXCLUDED.total_revenue,
				traffic_level = EXCLUDED.traffic_level,
				updated_at = EXCLUDED.updated_at`,
			b.PlazaID, b.Date, b.Hour, b.VehicleCount, b.Revenue, b.Level, updatedAt)
		if err != nil {
			return persistenceError(fmt.Sprintf("upsert traffic bucket %s %02d:00", b.Date, b.Hour), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistenceError("commit traffic upsert", err)
	}
	return nil
}

// BulkWriter is the part of *mongo.Collection the Mongo sink needs.
type BulkWriter interface {
	BulkWrite(ctx context.Context, writes []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
}

// MongoTrafficSink writes buckets as documents of a MongoDB collection.
type MongoTrafficSink struct {
	Collection BulkWriter
	now        func() time.Time
}

func NewMongoTrafficSink(collection BulkWriter) *MongoTrafficSink {
	return &MongoTrafficSink{Collection: collection, now: time.Now}
}

type trafficDocument struct {
	models.HourlyBucket `bson:",inline"`
	UpdatedAt           time.Time `bson:"updated_at"`
}

func (s *MongoTrafficSink) Upsert(ctx context.Context, buckets []models.HourlyBucket) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if len(buckets) == 0 {
		return nil
	}

	updatedAt := s.now()
	writes := make([]mongo.WriteModel, 0, len(buckets))
	for _, b := range buckets {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"plaza_id": b.PlazaID, "date": b.Date, "hour": b.Hour}).
			SetReplacement(trafficDocument{HourlyBucket: b, UpdatedAt: updatedAt}).
			SetUpsert(true))
	}

	if _, err := s.Collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return persistenceError("bulk upsert traffic buckets", err)
	}
	return nil
}
