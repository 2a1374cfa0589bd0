package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/smarttoll/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLRateTable_Rates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	table := NewSQLRateTable(db)

	t.Run("rates ordered by window", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, plaza_id, vehicle_type, time_slot, from_minute, to_minute, amount FROM toll_rates WHERE plaza_id = \\$1 AND vehicle_type = \\$2 AND time_slot = \\$3 ORDER BY from_minute").
			WithArgs(3, "car", "peak").
			WillReturnRows(sqlmock.NewRows([]string{"id", "plaza_id", "vehicle_type", "time_slot", "from_minute", "to_minute", "amount"}).
				AddRow(1, 3, "car", "peak", 420, 600, 6500).
				AddRow(2, 3, "car", "peak", 1020, 1200, 6500))

		rates, err := table.Rates(context.Background(), 3, models.VehicleCar, models.SlotPeak)
		require.NoError(t, err)
		require.Len(t, rates, 2)
		assert.Equal(t, models.FromMajor(65), rates[0].Amount)
		assert.Equal(t, 1020, rates[1].FromMinute)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid rows are skipped", func(t *testing.T) {
		mock.ExpectQuery("FROM toll_rates").
			WithArgs(3, "car", "normal").
			WillReturnRows(sqlmock.NewRows([]string{"id", "plaza_id", "vehicle_type", "time_slot", "from_minute", "to_minute", "amount"}).
				AddRow(1, 3, "car", "normal", 600, 420, 5000).
				AddRow(2, 3, "car", "normal", 0, 1440, 5000))

		rates, err := table.Rates(context.Background(), 3, models.VehicleCar, models.SlotNormal)
		require.NoError(t, err)
		require.Len(t, rates, 1)
		assert.Equal(t, int64(2), rates[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rates is an empty slice", func(t *testing.T) {
		mock.ExpectQuery("FROM toll_rates").
			WithArgs(3, "bus", "normal").
			WillReturnRows(sqlmock.NewRows([]string{"id", "plaza_id", "vehicle_type", "time_slot", "from_minute", "to_minute", "amount"}))

		rates, err := table.Rates(context.Background(), 3, models.VehicleBus, models.SlotNormal)
		require.NoError(t, err)
		assert.NotNil(t, rates)
		assert.Empty(t, rates)
	})
}

func TestCachedRateTable_Rates(t *testing.T) {
	ctx := context.Background()
	ttl := 5 * time.Minute
	stored := []models.Rate{carRate(models.SlotNormal, 0, 1440, 50)}
	encoded, err := json.Marshal(stored)
	require.NoError(t, err)
	key := "rates:3:car:normal"

	t.Run("miss reads through and populates the cache", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		next := &MockRateTable{}
		next.On("Rates", int64(3), models.VehicleCar, models.SlotNormal).Return(stored, nil).Once()

		redisMock.ExpectGet(key).RedisNil()
		redisMock.ExpectSet(key, encoded, ttl).SetVal("OK")

		cache := NewCachedRateTable(next, redisClient, ttl)
		rates, err := cache.Rates(ctx, 3, models.VehicleCar, models.SlotNormal)
		require.NoError(t, err)
		assert.Equal(t, stored, rates)
		next.AssertExpectations(t)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("hit skips the rate table", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		next := &MockRateTable{}

		redisMock.ExpectGet(key).SetVal(string(encoded))

		cache := NewCachedRateTable(next, redisClient, ttl)
		rates, err := cache.Rates(ctx, 3, models.VehicleCar, models.SlotNormal)
		require.NoError(t, err)
		assert.Equal(t, stored, rates)
		next.AssertNotCalled(t, "Rates", int64(3), models.VehicleCar, models.SlotNormal)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("redis failure degrades to the rate table", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		next := &MockRateTable{}
		next.On("Rates", int64(3), models.VehicleCar, models.SlotNormal).Return(stored, nil).Once()

		redisMock.ExpectGet(key).SetErr(errors.New("connection refused"))
		redisMock.ExpectSet(key, encoded, ttl).SetErr(errors.New("connection refused"))

		cache := NewCachedRateTable(next, redisClient, ttl)
		rates, err := cache.Rates(ctx, 3, models.VehicleCar, models.SlotNormal)
		require.NoError(t, err)
		assert.Equal(t, stored, rates)
	})

	t.Run("rate table errors are not cached", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		next := &MockRateTable{}
		next.On("Rates", int64(3), models.VehicleCar, models.SlotNormal).Return(nil, errors.New("db down"))

		redisMock.ExpectGet(key).RedisNil()

		cache := NewCachedRateTable(next, redisClient, ttl)
		_, err := cache.Rates(ctx, 3, models.VehicleCar, models.SlotNormal)
		assert.Error(t, err)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("empty rate list is not cached", func(t *testing.T) {
		hook := test.NewGlobal()
		defer hook.Reset()

		redisClient, redisMock := redismock.NewClientMock()
		next := &MockRateTable{}
		next.On("Rates", int64(3), models.VehicleCar, models.SlotNormal).Return([]models.Rate{}, nil).Once()
		next.On("Rates", int64(3), models.VehicleCar, models.SlotNormal).Return(stored, nil).Once()

		redisMock.ExpectGet(key).RedisNil()
		redisMock.ExpectGet(key).RedisNil()
		redisMock.ExpectSet(key, encoded, ttl).SetVal("OK")

		cache := NewCachedRateTable(next, redisClient, ttl)
		rates, err := cache.Rates(ctx, 3, models.VehicleCar, models.SlotNormal)
		require.NoError(t, err)
		assert.Empty(t, rates)

		rates, err = cache.Rates(ctx, 3, models.VehicleCar, models.SlotNormal)
		require.NoError(t, err)
		assert.Equal(t, stored, rates)

		next.AssertExpectations(t)
		assert.NoError(t, redisMock.ExpectationsWereMet())
		for _, entry := range hook.AllEntries() {
			assert.NotEqual(t, "Rate cache write failed", entry.Message)
		}
	})

	t.Run("without redis", func(t *testing.T) {
		next := &MockRateTable{}
		next.On("Rates", int64(3), models.VehicleCar, models.SlotNormal).Return(stored, nil)

		cache := NewCachedRateTable(next, nil, ttl)
		rates, err := cache.Rates(ctx, 3, models.VehicleCar, models.SlotNormal)
		require.NoError(t, err)
		assert.Equal(t, stored, rates)
	})
}

func TestCachedRateTable_InvalidatePlaza(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()

	var keys []string
	for _, vt := range allVehicleTypes {
		for _, slot := range allSlots {
			keys = append(keys, rateCacheKey(3, vt, slot))
		}
	}
	redisMock.ExpectDel(keys...).SetVal(int64(len(keys)))

	cache := NewCachedRateTable(&MockRateTable{}, redisClient, time.Minute)
	assert.NoError(t, cache.InvalidatePlaza(context.Background(), 3))
	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.Len(t, keys, 10)
}
