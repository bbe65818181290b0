package vault

import (
	"go.uber.org/zap"
)

// FundBonusPool moves tokens from the admin into vault custody so mature
// payouts can cover their bonuses.
func (v *RewardVault) FundBonusPool(admin string, amount uint64) error {
	if amount == 0 {
		return ErrAmountNotPositive
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	config, err := v.requireConfig()
	if err != nil {
		return err
	}
	if config.Admin != admin {
		return ErrAdminOnly
	}

	if err := v.token.Transfer(admin, v.Address, amount); err != nil {
		return err
	}

	v.logger.Info("bonus pool funded",
		zap.String("admin", admin),
		zap.Uint64("amount", amount))

	v.emitEvent(VaultEvent{
		Type:      EventBonusPoolFunded,
		Owner:     admin,
		Amount:    amount,
		Timestamp: v.now(),
		TxHash:    v.generateTxHash("fund_bonus_pool", admin, amount),
	})
	return nil
}

// SetEmergencyUnlock toggles the emergency withdrawal path.
func (v *RewardVault) SetEmergencyUnlock(admin string, enabled bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	config, err := v.requireConfig()
	if err != nil {
		return err
	}
	if config.Admin != admin {
		return ErrAdminOnly
	}

	config.EmergencyUnlockEnabled = enabled
	v.persistConfig()

	v.logger.Info("emergency unlock toggled",
		zap.String("admin", admin),
		zap.Bool("enabled", enabled))

	v.emitEvent(VaultEvent{
		Type:      EventEmergencyUnlockSet,
		Owner:     admin,
		Timestamp: v.now(),
		Metadata: map[string]interface{}{
			"enabled": enabled,
		},
	})
	return nil
}
