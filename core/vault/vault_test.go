package vault

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vaultforge/reward-vault/core/token"
)

const (
	week    = uint64(7 * 24 * 60 * 60)
	month   = uint64(30 * 24 * 60 * 60)
	quarter = uint64(90 * 24 * 60 * 60)
)

// setupTestVault builds an initialized vault over a fresh ledger with the
// standard schedule and a controllable clock.
func setupTestVault(t *testing.T) (*RewardVault, *token.Token, *int64) {
	ledger := token.NewToken("Reward Token", "RWD", 7, 0)
	v := NewRewardVault("vault", ledger, nil)

	err := v.Initialize("admin", "RWD", 1000, 2500,
		[]uint64{week, month, quarter},
		[]uint32{500, 1200, 2500})
	if err != nil {
		t.Fatalf("Failed to initialize vault: %v", err)
	}

	now := new(int64)
	*now = 1000
	v.nowFn = func() time.Time { return time.Unix(*now, 0) }

	return v, ledger, now
}

func TestInitializeValidation(t *testing.T) {
	ledger := token.NewToken("Reward Token", "RWD", 7, 0)

	t.Run("Second initialization rejected", func(t *testing.T) {
		v := NewRewardVault("vault", ledger, nil)
		err := v.Initialize("admin", "RWD", 1000, 2500, []uint64{week}, []uint32{500})
		assert.NoError(t, err)

		err = v.Initialize("admin", "RWD", 1000, 2500, []uint64{week}, []uint32{500})
		assert.ErrorIs(t, err, ErrAlreadyInitialized)
	})

	t.Run("Mismatched schedule rejected", func(t *testing.T) {
		v := NewRewardVault("vault", ledger, nil)
		err := v.Initialize("admin", "RWD", 1000, 2500, []uint64{week, month}, []uint32{500})
		assert.ErrorIs(t, err, ErrInvalidLockOptions)

		err = v.Initialize("admin", "RWD", 1000, 2500, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidLockOptions)
	})

	t.Run("Penalty above 10000 bps rejected", func(t *testing.T) {
		v := NewRewardVault("vault", ledger, nil)
		err := v.Initialize("admin", "RWD", 10001, 2500, []uint64{week}, []uint32{500})
		assert.ErrorIs(t, err, ErrInvalidPenalty)

		err = v.Initialize("admin", "RWD", 1000, 10001, []uint64{week}, []uint32{500})
		assert.ErrorIs(t, err, ErrInvalidPenalty)
	})

	t.Run("Zero lock period rejected", func(t *testing.T) {
		v := NewRewardVault("vault", ledger, nil)
		err := v.Initialize("admin", "RWD", 1000, 2500, []uint64{0}, []uint32{500})
		assert.Error(t, err)
	})

	t.Run("Operations before initialization rejected", func(t *testing.T) {
		v := NewRewardVault("vault", ledger, nil)
		_, err := v.Deposit("user1", 1000, week)
		assert.ErrorIs(t, err, ErrNotInitialized)
	})
}

func TestDepositLocksForSelectedPeriod(t *testing.T) {
	v, ledger, _ := setupTestVault(t)

	ledger.Mint("user1", 10_000_000)
	position, err := v.Deposit("user1", 5_000_000, month)
	if err != nil {
		t.Fatalf("Failed to deposit: %v", err)
	}

	if position.Amount != 5_000_000 {
		t.Errorf("Expected amount 5000000, got %d", position.Amount)
	}
	if position.LockPeriod != month {
		t.Errorf("Expected lock period %d, got %d", month, position.LockPeriod)
	}
	if position.BonusBps != 1200 {
		t.Errorf("Expected bonus 1200 bps, got %d", position.BonusBps)
	}
	if v.TimeUntilMaturity("user1") == 0 {
		t.Error("Expected time until maturity > 0")
	}

	balance, _ := ledger.BalanceOf("user1")
	if balance != 5_000_000 {
		t.Errorf("Expected remaining balance 5000000, got %d", balance)
	}
	vaultBalance, _ := ledger.BalanceOf("vault")
	if vaultBalance != 5_000_000 {
		t.Errorf("Expected vault balance 5000000, got %d", vaultBalance)
	}
}

func TestDepositValidation(t *testing.T) {
	v, ledger, _ := setupTestVault(t)
	ledger.Mint("user1", 10_000_000)

	t.Run("Zero amount rejected", func(t *testing.T) {
		_, err := v.Deposit("user1", 0, week)
		assert.ErrorIs(t, err, ErrAmountNotPositive)
	})

	t.Run("Unsupported lock period rejected", func(t *testing.T) {
		_, err := v.Deposit("user1", 1_000_000, week+1)
		assert.ErrorIs(t, err, ErrUnsupportedLockPeriod)
	})

	t.Run("Insufficient balance rejected", func(t *testing.T) {
		_, err := v.Deposit("user1", 100_000_000, week)
		assert.Error(t, err)
		assert.Nil(t, v.GetVault("user1"))
	})

	t.Run("Second active vault rejected", func(t *testing.T) {
		_, err := v.Deposit("user1", 1_000_000, week)
		assert.NoError(t, err)

		_, err = v.Deposit("user1", 1_000_000, week)
		assert.ErrorIs(t, err, ErrActiveVaultExists)
	})
}

func TestBonusIncreasesWithLongerLocks(t *testing.T) {
	v, _, _ := setupTestVault(t)
	amount := uint64(10_000_000)

	weekBonus, err := v.QuoteBonusForLock(week, amount)
	if err != nil {
		t.Fatalf("Failed to quote week bonus: %v", err)
	}
	monthBonus, err := v.QuoteBonusForLock(month, amount)
	if err != nil {
		t.Fatalf("Failed to quote month bonus: %v", err)
	}
	quarterBonus, err := v.QuoteBonusForLock(quarter, amount)
	if err != nil {
		t.Fatalf("Failed to quote quarter bonus: %v", err)
	}

	if weekBonus >= monthBonus {
		t.Errorf("Expected week bonus %d < month bonus %d", weekBonus, monthBonus)
	}
	if monthBonus >= quarterBonus {
		t.Errorf("Expected month bonus %d < quarter bonus %d", monthBonus, quarterBonus)
	}
	if weekBonus != 500_000 {
		t.Errorf("Expected week bonus 500000, got %d", weekBonus)
	}
}

func TestExtendLock(t *testing.T) {
	v, ledger, now := setupTestVault(t)
	ledger.Mint("user1", 10_000_000)

	t.Run("Extend week to month re-quotes bonus", func(t *testing.T) {
		_, err := v.Deposit("user1", 5_000_000, week)
		assert.NoError(t, err)

		err = v.ExtendLock("user1", month-week)
		assert.NoError(t, err)

		position := v.GetVault("user1")
		assert.Equal(t, month, position.LockPeriod)
		assert.Equal(t, uint32(1200), position.BonusBps)
		assert.Equal(t, position.DepositedAt+int64(month), position.MaturityAt)
	})

	t.Run("Extension to unsupported total rejected", func(t *testing.T) {
		err := v.ExtendLock("user1", 1)
		assert.ErrorIs(t, err, ErrUnsupportedLockPeriod)
	})

	t.Run("Extension after maturity rejected", func(t *testing.T) {
		*now += int64(month) + 1
		err := v.ExtendLock("user1", quarter-month)
		assert.ErrorIs(t, err, ErrAlreadyMatured)
	})

	t.Run("Zero extension rejected", func(t *testing.T) {
		err := v.ExtendLock("user1", 0)
		assert.Error(t, err)
	})
}

func TestSetBeneficiary(t *testing.T) {
	v, ledger, _ := setupTestVault(t)
	ledger.Mint("user1", 10_000_000)

	err := v.SetBeneficiary("user1", "heir")
	assert.ErrorIs(t, err, ErrVaultNotFound)

	_, err = v.Deposit("user1", 5_000_000, week)
	assert.NoError(t, err)

	err = v.SetBeneficiary("user1", "heir")
	assert.NoError(t, err)
	assert.Equal(t, "heir", v.GetVault("user1").Beneficiary)
}

func TestViewsWithoutPosition(t *testing.T) {
	v, _, _ := setupTestVault(t)

	assert.False(t, v.IsMature("ghost"))
	assert.Equal(t, uint64(0), v.TimeUntilMaturity("ghost"))
	assert.Equal(t, uint64(0), v.PreviewMaturePayout("ghost"))
	assert.Nil(t, v.GetVault("ghost"))
}

func TestDepositEmitsEvent(t *testing.T) {
	v, ledger, _ := setupTestVault(t)
	ledger.Mint("user1", 10_000_000)

	var received []VaultEvent
	v.OnEvent(func(event VaultEvent) {
		received = append(received, event)
	})

	_, err := v.Deposit("user1", 5_000_000, week)
	assert.NoError(t, err)

	assert.Len(t, received, 1)
	assert.Equal(t, EventDeposited, received[0].Type)
	assert.Equal(t, "user1", received[0].Owner)
	assert.NotEmpty(t, received[0].ID)
	assert.NotEmpty(t, received[0].TxHash)

	events := v.GetEventsByType(EventDeposited)
	assert.Len(t, events, 1)
}

// failingPersister rejects every write, simulating a full or broken disk.
type failingPersister struct{}

func (failingPersister) SaveConfig(VaultConfig) error     { return errors.New("disk full") }
func (failingPersister) SavePosition(VaultPosition) error { return errors.New("disk full") }
func (failingPersister) DeletePosition(string) error      { return errors.New("disk full") }

func TestPersistenceFailureDoesNotContradictLedger(t *testing.T) {
	v, ledger, now := setupTestVault(t)
	v.SetPersister(failingPersister{})
	ledger.Mint("user1", 10_000_000)

	t.Run("Deposit succeeds despite failed write", func(t *testing.T) {
		position, err := v.Deposit("user1", 5_000_000, week)
		assert.NoError(t, err)
		assert.NotNil(t, position)
		assert.NotNil(t, v.GetVault("user1"))

		// Tokens really moved; the caller must not see a failure.
		vaultBalance, _ := ledger.BalanceOf("vault")
		assert.Equal(t, uint64(5_000_000), vaultBalance)
	})

	t.Run("Withdrawal succeeds despite failed delete", func(t *testing.T) {
		ledger.Mint("admin", 1_000_000)
		assert.NoError(t, v.FundBonusPool("admin", 250_000))

		*now += int64(week)
		payout, err := v.WithdrawMature("user1")
		assert.NoError(t, err)
		assert.Equal(t, uint64(5_250_000), payout)
		assert.Nil(t, v.GetVault("user1"))
	})
}

func TestTxHashesFollowInjectedClock(t *testing.T) {
	run := func() string {
		ledger := token.NewToken("Reward Token", "RWD", 7, 0)
		v := NewRewardVault("vault", ledger, nil)
		err := v.Initialize("admin", "RWD", 1000, 2500, []uint64{week}, []uint32{500})
		assert.NoError(t, err)
		v.nowFn = func() time.Time { return time.Unix(1000, 0) }

		ledger.Mint("user1", 1_000_000)
		_, err = v.Deposit("user1", 1_000_000, week)
		assert.NoError(t, err)

		events := v.GetEventsByType(EventDeposited)
		assert.Len(t, events, 1)
		return events[0].TxHash
	}

	first := run()
	second := run()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second, "identical history under a fixed clock must hash identically")
}

func TestRestore(t *testing.T) {
	v, _, _ := setupTestVault(t)

	fresh := NewRewardVault("vault", token.NewToken("Reward Token", "RWD", 7, 0), nil)
	err := fresh.Restore(*v.Config(), []VaultPosition{
		{Owner: "user1", Amount: 100, LockPeriod: week, BonusBps: 500, DepositedAt: 1000, MaturityAt: 1000 + int64(week)},
	})
	assert.NoError(t, err)
	assert.NotNil(t, fresh.GetVault("user1"))
	assert.Equal(t, uint64(100), fresh.GetVault("user1").Amount)

	err = fresh.Restore(*v.Config(), nil)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}
