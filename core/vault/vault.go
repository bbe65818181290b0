package vault

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const BasisPoints = 10000

// Token is the ledger surface the vault settles against. Defined here to
// break the import cycle with concrete token implementations.
type Token interface {
	Transfer(from, to string, amount uint64) error
	BalanceOf(address string) (uint64, error)
}

// Persister saves vault state on every mutation so a node can restore it
// after a restart. Implementations must be safe for concurrent use.
type Persister interface {
	SaveConfig(config VaultConfig) error
	SavePosition(position VaultPosition) error
	DeletePosition(owner string) error
}

// LockOption is one entry of the lock/bonus schedule: deposits locked for
// Period seconds earn BonusBps on maturity.
type LockOption struct {
	Period   uint64 `json:"period"`
	BonusBps uint32 `json:"bonus_bps"`
}

type VaultConfig struct {
	Admin                   string       `json:"admin"`
	TokenAddress            string       `json:"token_address"`
	EarlyWithdrawPenaltyBps uint32       `json:"early_withdraw_penalty_bps"`
	EmergencyPenaltyBps     uint32       `json:"emergency_penalty_bps"`
	EmergencyUnlockEnabled  bool         `json:"emergency_unlock_enabled"`
	LockOptions             []LockOption `json:"lock_options"`
}

// VaultPosition is one owner's active time-locked deposit. At most one
// position per owner exists at a time.
type VaultPosition struct {
	Owner       string `json:"owner"`
	Amount      uint64 `json:"amount"`
	LockPeriod  uint64 `json:"lock_period"`
	BonusBps    uint32 `json:"bonus_bps"`
	DepositedAt int64  `json:"deposited_at"`
	MaturityAt  int64  `json:"maturity_at"`
	Beneficiary string `json:"beneficiary,omitempty"`
}

// RewardVault manages time-locked token deposits with a tiered bonus
// schedule, early/emergency withdrawal penalties, and beneficiary
// inheritance. The vault holds custody under its own ledger address.
type RewardVault struct {
	Address string // vault's address on the token ledger

	config      *VaultConfig
	positions   map[string]*VaultPosition
	token       Token
	persister   Persister
	logger      *zap.Logger
	mu          sync.RWMutex
	eventsMutex sync.RWMutex
	events      []VaultEvent
	handlers    []VaultEventHandler
	nowFn       func() time.Time
}

var (
	ErrAlreadyInitialized    = errors.New("vault already initialized")
	ErrNotInitialized        = errors.New("vault not initialized")
	ErrInvalidLockOptions    = errors.New("invalid lock options")
	ErrInvalidPenalty        = errors.New("penalty exceeds 10000 bps")
	ErrUnsupportedLockPeriod = errors.New("unsupported lock period")
	ErrAmountNotPositive     = errors.New("amount must be > 0")
	ErrActiveVaultExists     = errors.New("active vault exists")
	ErrVaultNotFound         = errors.New("vault not found")
	ErrNotMatured            = errors.New("vault not matured")
	ErrAlreadyMatured        = errors.New("vault already matured")
	ErrEmergencyDisabled     = errors.New("emergency unlock disabled")
	ErrNotBeneficiary        = errors.New("not beneficiary")
	ErrAdminOnly             = errors.New("unauthorized: admin access required")
)

// NewRewardVault creates an uninitialized vault bound to a token ledger.
// address is the vault's own account on that ledger.
func NewRewardVault(address string, token Token, logger *zap.Logger) *RewardVault {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RewardVault{
		Address:   address,
		positions: make(map[string]*VaultPosition),
		token:     token,
		logger:    logger,
		events:    []VaultEvent{},
		nowFn:     time.Now,
	}
}

// SetPersister attaches a persistence backend. State already held in memory
// is not flushed; callers restore first, then attach.
func (v *RewardVault) SetPersister(p Persister) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.persister = p
}

// Initialize sets the vault configuration. It can only succeed once.
// lockPeriods and bonusBps are parallel arrays forming the schedule.
func (v *RewardVault) Initialize(admin, tokenAddress string, earlyWithdrawPenaltyBps, emergencyPenaltyBps uint32, lockPeriods []uint64, bonusBps []uint32) error {
	if admin == "" || tokenAddress == "" {
		return errors.New("admin and token address required")
	}
	if len(lockPeriods) == 0 || len(lockPeriods) != len(bonusBps) {
		return ErrInvalidLockOptions
	}
	if earlyWithdrawPenaltyBps > BasisPoints || emergencyPenaltyBps > BasisPoints {
		return ErrInvalidPenalty
	}

	options := make([]LockOption, 0, len(lockPeriods))
	for i, period := range lockPeriods {
		if period == 0 {
			return errors.New("lock period must be positive")
		}
		options = append(options, LockOption{Period: period, BonusBps: bonusBps[i]})
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.config != nil {
		return ErrAlreadyInitialized
	}

	v.config = &VaultConfig{
		Admin:                   admin,
		TokenAddress:            tokenAddress,
		EarlyWithdrawPenaltyBps: earlyWithdrawPenaltyBps,
		EmergencyPenaltyBps:     emergencyPenaltyBps,
		EmergencyUnlockEnabled:  false,
		LockOptions:             options,
	}

	v.logger.Info("vault initialized",
		zap.String("admin", admin),
		zap.String("token", tokenAddress),
		zap.Uint32("early_penalty_bps", earlyWithdrawPenaltyBps),
		zap.Uint32("emergency_penalty_bps", emergencyPenaltyBps),
		zap.Int("lock_options", len(options)))

	v.persistConfig()
	return nil
}

// Restore loads previously persisted state into a fresh vault.
func (v *RewardVault) Restore(config VaultConfig, positions []VaultPosition) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.config != nil {
		return ErrAlreadyInitialized
	}

	cfg := config
	v.config = &cfg
	for i := range positions {
		pos := positions[i]
		v.positions[pos.Owner] = &pos
	}

	v.logger.Info("vault state restored",
		zap.String("admin", cfg.Admin),
		zap.Int("positions", len(positions)))
	return nil
}

// caller must hold v.mu
func (v *RewardVault) requireConfig() (*VaultConfig, error) {
	if v.config == nil {
		return nil, ErrNotInitialized
	}
	return v.config, nil
}

// caller must hold v.mu
func (v *RewardVault) mustGetPosition(owner string) (*VaultPosition, error) {
	pos, ok := v.positions[owner]
	if !ok {
		return nil, ErrVaultNotFound
	}
	return pos, nil
}

func bonusForLockPeriod(config *VaultConfig, lockPeriod uint64) (uint32, error) {
	for _, option := range config.LockOptions {
		if option.Period == lockPeriod {
			return option.BonusBps, nil
		}
	}
	return 0, ErrUnsupportedLockPeriod
}

func calculateBonus(amount uint64, bonusBps uint32) (uint64, error) {
	if bonusBps == 0 {
		return 0, nil
	}
	if amount > ^uint64(0)/uint64(bonusBps) {
		return 0, errors.New("bonus calculation overflow")
	}
	return amount * uint64(bonusBps) / BasisPoints, nil
}

func calculatePenalty(amount uint64, penaltyBps uint32) (uint64, error) {
	if penaltyBps == 0 {
		return 0, nil
	}
	if amount > ^uint64(0)/uint64(penaltyBps) {
		return 0, errors.New("penalty calculation overflow")
	}
	return amount * uint64(penaltyBps) / BasisPoints, nil
}

func (v *RewardVault) now() int64 {
	return v.nowFn().Unix()
}

// generateTxHash generates a unique transaction hash for vault events
func (v *RewardVault) generateTxHash(operation, owner string, amount uint64) string {
	data := fmt.Sprintf("vault_%s_%s_%d_%d", operation, owner, amount, v.nowFn().UnixNano())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("0x%x", hash[:8])
}

// Persistence failures below are logged, not returned: once the token
// transfer has settled, the in-memory state is authoritative and must not
// be contradicted by a failed durability write.

// caller must hold v.mu
func (v *RewardVault) persistConfig() {
	if v.persister == nil || v.config == nil {
		return
	}
	if err := v.persister.SaveConfig(*v.config); err != nil {
		v.logger.Warn("failed to persist config", zap.Error(err))
	}
}

// caller must hold v.mu
func (v *RewardVault) persistPosition(pos *VaultPosition) {
	if v.persister == nil {
		return
	}
	if err := v.persister.SavePosition(*pos); err != nil {
		v.logger.Warn("failed to persist position",
			zap.String("owner", pos.Owner),
			zap.Error(err))
	}
}

// caller must hold v.mu
func (v *RewardVault) removePosition(owner string) {
	delete(v.positions, owner)
	if v.persister == nil {
		return
	}
	if err := v.persister.DeletePosition(owner); err != nil {
		v.logger.Warn("failed to delete persisted position",
			zap.String("owner", owner),
			zap.Error(err))
	}
}
