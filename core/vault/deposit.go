package vault

import (
	"errors"

	"go.uber.org/zap"
)

// Deposit locks amount for lockPeriod seconds. lockPeriod must exactly
// match one of the configured lock options; an owner can hold at most one
// active position.
func (v *RewardVault) Deposit(owner string, amount uint64, lockPeriod uint64) (*VaultPosition, error) {
	if amount == 0 {
		return nil, ErrAmountNotPositive
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	config, err := v.requireConfig()
	if err != nil {
		return nil, err
	}

	if existing, ok := v.positions[owner]; ok && existing.Amount > 0 {
		return nil, ErrActiveVaultExists
	}

	bonusBps, err := bonusForLockPeriod(config, lockPeriod)
	if err != nil {
		return nil, err
	}

	if err := v.token.Transfer(owner, v.Address, amount); err != nil {
		v.logger.Warn("deposit transfer failed",
			zap.String("owner", owner),
			zap.Uint64("amount", amount),
			zap.Error(err))
		return nil, err
	}

	now := v.now()
	position := &VaultPosition{
		Owner:       owner,
		Amount:      amount,
		LockPeriod:  lockPeriod,
		BonusBps:    bonusBps,
		DepositedAt: now,
		MaturityAt:  now + int64(lockPeriod),
	}
	v.positions[owner] = position
	v.persistPosition(position)

	v.logger.Info("deposit locked",
		zap.String("owner", owner),
		zap.Uint64("amount", amount),
		zap.Uint64("lock_period", lockPeriod),
		zap.Uint32("bonus_bps", bonusBps))

	v.emitEvent(VaultEvent{
		Type:      EventDeposited,
		Owner:     owner,
		Amount:    amount,
		Timestamp: now,
		TxHash:    v.generateTxHash("deposit", owner, amount),
		Metadata: map[string]interface{}{
			"lock_period": lockPeriod,
			"bonus_bps":   bonusBps,
			"maturity_at": position.MaturityAt,
		},
	})

	copied := *position
	return &copied, nil
}

// SetBeneficiary records who may claim the payout after maturity if the
// owner never withdraws.
func (v *RewardVault) SetBeneficiary(owner, beneficiary string) error {
	if beneficiary == "" {
		return errors.New("beneficiary required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.requireConfig(); err != nil {
		return err
	}

	position, err := v.mustGetPosition(owner)
	if err != nil {
		return err
	}

	position.Beneficiary = beneficiary
	v.persistPosition(position)

	v.emitEvent(VaultEvent{
		Type:      EventBeneficiarySet,
		Owner:     owner,
		Timestamp: v.now(),
		Metadata: map[string]interface{}{
			"beneficiary": beneficiary,
		},
	})
	return nil
}

// ExtendLock lengthens an unmatured position by additionalLockPeriod. The
// resulting total lock must itself be a configured option; the bonus is
// re-quoted at the new tier.
func (v *RewardVault) ExtendLock(owner string, additionalLockPeriod uint64) error {
	if additionalLockPeriod == 0 {
		return errors.New("additional lock must be positive")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	config, err := v.requireConfig()
	if err != nil {
		return err
	}

	position, err := v.mustGetPosition(owner)
	if err != nil {
		return err
	}
	if v.now() >= position.MaturityAt {
		return ErrAlreadyMatured
	}

	currentTotalLock := uint64(position.MaturityAt - position.DepositedAt)
	newTotalLock := currentTotalLock + additionalLockPeriod
	newBonusBps, err := bonusForLockPeriod(config, newTotalLock)
	if err != nil {
		return err
	}

	position.LockPeriod = newTotalLock
	position.BonusBps = newBonusBps
	position.MaturityAt += int64(additionalLockPeriod)
	v.persistPosition(position)

	v.logger.Info("lock extended",
		zap.String("owner", owner),
		zap.Uint64("new_total_lock", newTotalLock),
		zap.Uint32("new_bonus_bps", newBonusBps))

	v.emitEvent(VaultEvent{
		Type:      EventLockExtended,
		Owner:     owner,
		Amount:    position.Amount,
		Timestamp: v.now(),
		Metadata: map[string]interface{}{
			"new_total_lock": newTotalLock,
			"new_bonus_bps":  newBonusBps,
			"maturity_at":    position.MaturityAt,
		},
	})
	return nil
}
