package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{"50", 5000, false},
		{"65.25", 6525, false},
		{" 0.5 ", 50, false},
		{"0", 0, false},
		{"1.005", 0, true},
		{"abc", 0, true},
		{"99999999999999999999", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAmount_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount Amount `json:"amount"`
	}{FromMajor(50)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"50.00"}`, string(data))

	var body struct {
		Amount Amount `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":200}`), &body))
	assert.Equal(t, FromMajor(200), body.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12.50"}`), &body))
	assert.Equal(t, Amount(1250), body.Amount)

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1.234"}`), &body))
}

func TestEnums(t *testing.T) {
	t.Run("parse is case insensitive and closed", func(t *testing.T) {
		vt, err := ParseVehicleType(" Truck ")
		require.NoError(t, err)
		assert.Equal(t, VehicleTruck, vt)

		_, err = ParseVehicleType("tractor")
		assert.Error(t, err)

		_, err = ParsePaymentMode("card")
		assert.Error(t, err)
	})

	t.Run("invalid values never reach the database", func(t *testing.T) {
		_, err := PaymentMode("card").Value()
		assert.Error(t, err)

		v, err := StatusCompleted.Value()
		require.NoError(t, err)
		assert.Equal(t, "completed", v)
	})

	t.Run("scan", func(t *testing.T) {
		var status VehicleStatus
		require.NoError(t, status.Scan([]byte("suspended")))
		assert.Equal(t, VehicleSuspended, status)

		assert.Error(t, status.Scan("scrapped"))
		assert.Error(t, status.Scan(nil))
		assert.Error(t, status.Scan(42))
	})

	t.Run("text unmarshalling", func(t *testing.T) {
		var req struct {
			Mode PaymentMode `json:"payment_mode"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"payment_mode":"UPI"}`), &req))
		assert.Equal(t, PaymentUPI, req.Mode)
		assert.Error(t, json.Unmarshal([]byte(`{"payment_mode":"cheque"}`), &req))
	})
}

func TestEntryType_Signed(t *testing.T) {
	assert.True(t, EntryRecharge.IsCredit())
	assert.True(t, EntryRefund.IsCredit())
	assert.False(t, EntryDeduction.IsCredit())

	debit := WalletLedgerEntry{Type: EntryDeduction, Amount: 5000}
	credit := WalletLedgerEntry{Type: EntryRefund, Amount: 5000}
	assert.Equal(t, Amount(-5000), debit.Signed())
	assert.Equal(t, Amount(5000), credit.Signed())
}

func TestVehicle_CanTransact(t *testing.T) {
	assert.True(t, (&Vehicle{Status: VehicleActive}).CanTransact())
	assert.False(t, (&Vehicle{Status: VehicleInactive}).CanTransact())
	assert.False(t, (&Vehicle{Status: VehicleSuspended}).CanTransact())
}

func TestRate_Validate(t *testing.T) {
	valid := Rate{VehicleType: VehicleCar, Slot: SlotPeak, FromMinute: 420, ToMinute: 600, Amount: 6500}
	assert.NoError(t, valid.Validate())

	inverted := valid
	inverted.FromMinute, inverted.ToMinute = 600, 420
	assert.Error(t, inverted.Validate())

	negative := valid
	negative.Amount = -1
	assert.Error(t, negative.Validate())

	assert.Equal(t, "07:00", FormatMinute(420))
}

func TestWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	w := LastHours(now, 24*time.Hour)
	assert.NoError(t, w.Validate())
	assert.Equal(t, now.Add(-24*time.Hour), w.From)

	assert.Error(t, Window{}.Validate())
	assert.Error(t, Window{From: now, To: now}.Validate())
}

func TestRole(t *testing.T) {
	role, err := ParseRole("TOLL_OPERATOR")
	require.NoError(t, err)
	assert.True(t, role.CanOperateLane())
	assert.False(t, RoleUser.CanOperateLane())
}
