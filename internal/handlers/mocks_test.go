package handlers

import (
	"context"

	"github.com/smarttoll/backend/internal/models"
	"github.com/smarttoll/backend/internal/services"
	"github.com/stretchr/testify/mock"
)

type MockTollProcessor struct {
	mock.Mock
}

func (m *MockTollProcessor) ProcessToll(ctx context.Context, req services.ProcessRequest) (*models.Receipt, error) {
	args := m.Called(req)
	if r, ok := args.Get(0).(*models.Receipt); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTollProcessor) GetReceipt(ctx context.Context, txnID string) (*models.Receipt, error) {
	args := m.Called(txnID)
	if r, ok := args.Get(0).(*models.Receipt); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTollProcessor) RefundToll(ctx context.Context, txnID string) (*services.RefundResult, error) {
	args := m.Called(txnID)
	if r, ok := args.Get(0).(*services.RefundResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTollProcessor) LookupVehicle(ctx context.Context, numberOrTag string) (*models.Vehicle, error) {
	args := m.Called(numberOrTag)
	if v, ok := args.Get(0).(*models.Vehicle); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTollProcessor) VehicleHistory(ctx context.Context, vehicleID int64, limit int) ([]models.TollTransaction, error) {
	args := m.Called(vehicleID, limit)
	if h, ok := args.Get(0).([]models.TollTransaction); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) RechargeWallet(ctx context.Context, accountID int64, amount models.Amount) (models.Amount, error) {
	args := m.Called(accountID, amount)
	return args.Get(0).(models.Amount), args.Error(1)
}

func (m *MockWalletService) WalletStatement(ctx context.Context, accountID int64, limit int) (*services.WalletStatement, error) {
	args := m.Called(accountID, limit)
	if s, ok := args.Get(0).(*services.WalletStatement); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletService) AccountSummary(ctx context.Context, accountID int64) (*models.AccountSummary, error) {
	args := m.Called(accountID)
	if s, ok := args.Get(0).(*models.AccountSummary); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTrafficService struct {
	mock.Mock
}

func (m *MockTrafficService) AggregateTraffic(ctx context.Context, plazaID int64, window models.Window) ([]models.HourlyBucket, error) {
	args := m.Called(plazaID, window)
	if b, ok := args.Get(0).([]models.HourlyBucket); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockReceiptRenderer struct {
	mock.Mock
}

func (m *MockReceiptRenderer) ReceiptQR(ctx context.Context, txnID string) ([]byte, error) {
	args := m.Called(txnID)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRateCache struct {
	mock.Mock
}

func (m *MockRateCache) InvalidatePlaza(ctx context.Context, plazaID int64) error {
	return m.Called(plazaID).Error(0)
}
