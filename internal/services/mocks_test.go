package services

import (
	"context"

	"github.com/smarttoll/backend/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MockRateTable struct {
	mock.Mock
}

func (m *MockRateTable) Rates(ctx context.Context, plazaID int64, vehicleType models.VehicleType, slot models.TimeSlot) ([]models.Rate, error) {
	args := m.Called(plazaID, vehicleType, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Rate), args.Error(1)
}

type MockVehicleDirectory struct {
	mock.Mock
}

func (m *MockVehicleDirectory) VehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleDirectory) FindVehicle(ctx context.Context, numberOrTag string) (*models.Vehicle, error) {
	args := m.Called(numberOrTag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

type MockTrafficSink struct {
	mock.Mock
}

func (m *MockTrafficSink) Upsert(ctx context.Context, buckets []models.HourlyBucket) error {
	args := m.Called(buckets)
	return args.Error(0)
}

type MockBulkWriter struct {
	mock.Mock
}

func (m *MockBulkWriter) BulkWrite(ctx context.Context, writes []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	args := m.Called(writes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mongo.BulkWriteResult), args.Error(1)
}
