package vault

import (
	"errors"

	"go.uber.org/zap"
)

// caller must hold v.mu. Pays principal + bonus to recipient and deletes
// the position.
func (v *RewardVault) payOutMature(position *VaultPosition, recipient string, eventType VaultEventType) (uint64, error) {
	bonus, err := calculateBonus(position.Amount, position.BonusBps)
	if err != nil {
		return 0, err
	}
	if position.Amount > ^uint64(0)-bonus {
		return 0, errors.New("payout overflow")
	}
	payout := position.Amount + bonus

	if err := v.token.Transfer(v.Address, recipient, payout); err != nil {
		v.logger.Warn("payout transfer failed",
			zap.String("recipient", recipient),
			zap.Uint64("payout", payout),
			zap.Error(err))
		return 0, err
	}
	v.removePosition(position.Owner)

	v.emitEvent(VaultEvent{
		Type:      eventType,
		Owner:     position.Owner,
		Amount:    position.Amount,
		Payout:    payout,
		Bonus:     bonus,
		Timestamp: v.now(),
		TxHash:    v.generateTxHash(string(eventType), position.Owner, payout),
		Metadata: map[string]interface{}{
			"recipient": recipient,
			"bonus_bps": position.BonusBps,
		},
	})
	return payout, nil
}

// caller must hold v.mu. Pays principal minus penalty to the owner and
// deletes the position.
func (v *RewardVault) payOutPenalized(position *VaultPosition, penaltyBps uint32, eventType VaultEventType) (uint64, error) {
	penalty, err := calculatePenalty(position.Amount, penaltyBps)
	if err != nil {
		return 0, err
	}
	payout := position.Amount - penalty

	if err := v.token.Transfer(v.Address, position.Owner, payout); err != nil {
		v.logger.Warn("penalized payout transfer failed",
			zap.String("owner", position.Owner),
			zap.Uint64("payout", payout),
			zap.Error(err))
		return 0, err
	}
	v.removePosition(position.Owner)

	v.emitEvent(VaultEvent{
		Type:      eventType,
		Owner:     position.Owner,
		Amount:    position.Amount,
		Payout:    payout,
		Penalty:   penalty,
		Timestamp: v.now(),
		TxHash:    v.generateTxHash(string(eventType), position.Owner, payout),
		Metadata: map[string]interface{}{
			"penalty_bps": penaltyBps,
		},
	})
	return payout, nil
}

// WithdrawMature pays the owner principal plus the tier bonus once the
// position has matured.
func (v *RewardVault) WithdrawMature(owner string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.requireConfig(); err != nil {
		return 0, err
	}
	position, err := v.mustGetPosition(owner)
	if err != nil {
		return 0, err
	}
	if v.now() < position.MaturityAt {
		return 0, ErrNotMatured
	}

	return v.payOutMature(position, owner, EventMatureWithdrawal)
}

// DistributeMaturePayout is the relayer path: anyone may trigger the mature
// payout, which always goes to the position owner.
func (v *RewardVault) DistributeMaturePayout(owner string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.requireConfig(); err != nil {
		return 0, err
	}
	position, err := v.mustGetPosition(owner)
	if err != nil {
		return 0, err
	}
	if v.now() < position.MaturityAt {
		return 0, ErrNotMatured
	}

	return v.payOutMature(position, owner, EventPayoutDistributed)
}

// EarlyWithdraw returns the principal minus the early-withdrawal penalty.
// Only valid strictly before maturity; matured positions use WithdrawMature.
func (v *RewardVault) EarlyWithdraw(owner string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	config, err := v.requireConfig()
	if err != nil {
		return 0, err
	}
	position, err := v.mustGetPosition(owner)
	if err != nil {
		return 0, err
	}
	if v.now() >= position.MaturityAt {
		return 0, ErrAlreadyMatured
	}

	return v.payOutPenalized(position, config.EarlyWithdrawPenaltyBps, EventEarlyWithdrawal)
}

// EmergencyWithdraw returns the principal minus the emergency penalty at
// any time, but only while the admin has enabled emergency unlock.
func (v *RewardVault) EmergencyWithdraw(owner string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	config, err := v.requireConfig()
	if err != nil {
		return 0, err
	}
	position, err := v.mustGetPosition(owner)
	if err != nil {
		return 0, err
	}
	if !config.EmergencyUnlockEnabled {
		return 0, ErrEmergencyDisabled
	}

	return v.payOutPenalized(position, config.EmergencyPenaltyBps, EventEmergencyWithdraw)
}

// ClaimInheritance pays a matured position to its recorded beneficiary.
func (v *RewardVault) ClaimInheritance(beneficiary, owner string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.requireConfig(); err != nil {
		return 0, err
	}
	position, err := v.mustGetPosition(owner)
	if err != nil {
		return 0, err
	}
	if v.now() < position.MaturityAt {
		return 0, ErrNotMatured
	}
	if position.Beneficiary == "" || position.Beneficiary != beneficiary {
		return 0, ErrNotBeneficiary
	}

	return v.payOutMature(position, beneficiary, EventInheritanceClaimed)
}
