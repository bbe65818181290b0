package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFundBonusPool(t *testing.T) {
	v, ledger, _ := setupTestVault(t)
	ledger.Mint("admin", 10_000_000)
	ledger.Mint("user1", 10_000_000)

	t.Run("Admin funds the pool", func(t *testing.T) {
		err := v.FundBonusPool("admin", 3_000_000)
		assert.NoError(t, err)

		vaultBalance, _ := ledger.BalanceOf("vault")
		assert.Equal(t, uint64(3_000_000), vaultBalance)

		events := v.GetEventsByType(EventBonusPoolFunded)
		assert.Len(t, events, 1)
	})

	t.Run("Non-admin rejected", func(t *testing.T) {
		err := v.FundBonusPool("user1", 1_000_000)
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("Zero amount rejected", func(t *testing.T) {
		err := v.FundBonusPool("admin", 0)
		assert.ErrorIs(t, err, ErrAmountNotPositive)
	})

	t.Run("Insufficient admin balance rejected", func(t *testing.T) {
		err := v.FundBonusPool("admin", 100_000_000)
		assert.Error(t, err)
	})
}

func TestSetEmergencyUnlock(t *testing.T) {
	v, _, _ := setupTestVault(t)

	t.Run("Admin toggles the flag", func(t *testing.T) {
		assert.False(t, v.Config().EmergencyUnlockEnabled)

		err := v.SetEmergencyUnlock("admin", true)
		assert.NoError(t, err)
		assert.True(t, v.Config().EmergencyUnlockEnabled)

		err = v.SetEmergencyUnlock("admin", false)
		assert.NoError(t, err)
		assert.False(t, v.Config().EmergencyUnlockEnabled)
	})

	t.Run("Non-admin rejected", func(t *testing.T) {
		err := v.SetEmergencyUnlock("user1", true)
		assert.ErrorIs(t, err, ErrAdminOnly)
	})
}
