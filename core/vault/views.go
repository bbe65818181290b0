package vault

// Config returns a copy of the vault configuration, or nil before
// initialization.
func (v *RewardVault) Config() *VaultConfig {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.config == nil {
		return nil
	}
	config := *v.config
	config.LockOptions = make([]LockOption, len(v.config.LockOptions))
	copy(config.LockOptions, v.config.LockOptions)
	return &config
}

// GetVault returns a copy of the owner's active position, or nil if none.
func (v *RewardVault) GetVault(owner string) *VaultPosition {
	v.mu.RLock()
	defer v.mu.RUnlock()

	position, ok := v.positions[owner]
	if !ok {
		return nil
	}
	copied := *position
	return &copied
}

// GetAllPositions returns a copy of every active position.
func (v *RewardVault) GetAllPositions() []VaultPosition {
	v.mu.RLock()
	defer v.mu.RUnlock()

	positions := make([]VaultPosition, 0, len(v.positions))
	for _, position := range v.positions {
		positions = append(positions, *position)
	}
	return positions
}

// IsMature reports whether the owner's position has reached maturity.
// False when no position exists.
func (v *RewardVault) IsMature(owner string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	position, ok := v.positions[owner]
	if !ok {
		return false
	}
	return v.now() >= position.MaturityAt
}

// TimeUntilMaturity returns seconds remaining until the owner's position
// matures. Zero for matured or missing positions.
func (v *RewardVault) TimeUntilMaturity(owner string) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()

	position, ok := v.positions[owner]
	if !ok {
		return 0
	}
	now := v.now()
	if now >= position.MaturityAt {
		return 0
	}
	return uint64(position.MaturityAt - now)
}

// PreviewMaturePayout returns principal plus bonus for the owner's position
// without touching state. Zero when no position exists.
func (v *RewardVault) PreviewMaturePayout(owner string) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()

	position, ok := v.positions[owner]
	if !ok {
		return 0
	}
	bonus, err := calculateBonus(position.Amount, position.BonusBps)
	if err != nil {
		return 0
	}
	return position.Amount + bonus
}

// QuoteBonusForLock returns the bonus amount for locking amount over
// lockPeriod, per the configured schedule.
func (v *RewardVault) QuoteBonusForLock(lockPeriod uint64, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrAmountNotPositive
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	config, err := v.requireConfig()
	if err != nil {
		return 0, err
	}
	bonusBps, err := bonusForLockPeriod(config, lockPeriod)
	if err != nil {
		return 0, err
	}
	return calculateBonus(amount, bonusBps)
}
