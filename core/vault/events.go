package vault

import (
	"github.com/google/uuid"
)

// VaultEventType represents the type of vault event
type VaultEventType string

const (
	EventDeposited          VaultEventType = "deposited"
	EventLockExtended       VaultEventType = "lock_extended"
	EventBeneficiarySet     VaultEventType = "beneficiary_set"
	EventMatureWithdrawal   VaultEventType = "mature_withdrawal"
	EventPayoutDistributed  VaultEventType = "payout_distributed"
	EventEarlyWithdrawal    VaultEventType = "early_withdrawal"
	EventEmergencyWithdraw  VaultEventType = "emergency_withdrawal"
	EventInheritanceClaimed VaultEventType = "inheritance_claimed"
	EventBonusPoolFunded    VaultEventType = "bonus_pool_funded"
	EventEmergencyUnlockSet VaultEventType = "emergency_unlock_set"
)

// VaultEvent is emitted on every vault mutation
type VaultEvent struct {
	ID        string                 `json:"id"`
	Type      VaultEventType         `json:"type"`
	Owner     string                 `json:"owner,omitempty"`
	Amount    uint64                 `json:"amount,omitempty"`
	Payout    uint64                 `json:"payout,omitempty"`
	Penalty   uint64                 `json:"penalty,omitempty"`
	Bonus     uint64                 `json:"bonus,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	TxHash    string                 `json:"tx_hash,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// VaultEventHandler is a function that handles vault events
type VaultEventHandler func(event VaultEvent)

// OnEvent registers a handler invoked for every emitted event. Handlers run
// synchronously on the mutating goroutine and must not call back into the
// vault.
func (v *RewardVault) OnEvent(handler VaultEventHandler) {
	v.eventsMutex.Lock()
	defer v.eventsMutex.Unlock()
	v.handlers = append(v.handlers, handler)
}

func (v *RewardVault) emitEvent(event VaultEvent) {
	event.ID = uuid.New().String()

	v.eventsMutex.Lock()
	v.events = append(v.events, event)
	handlers := make([]VaultEventHandler, len(v.handlers))
	copy(handlers, v.handlers)
	v.eventsMutex.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// GetEvents returns a copy of all events emitted so far
func (v *RewardVault) GetEvents() []VaultEvent {
	v.eventsMutex.RLock()
	defer v.eventsMutex.RUnlock()

	events := make([]VaultEvent, len(v.events))
	copy(events, v.events)
	return events
}

// GetEventsByType returns events filtered by type
func (v *RewardVault) GetEventsByType(eventType VaultEventType) []VaultEvent {
	v.eventsMutex.RLock()
	defer v.eventsMutex.RUnlock()

	var filtered []VaultEvent
	for _, event := range v.events {
		if event.Type == eventType {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
