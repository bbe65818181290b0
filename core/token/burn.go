package token

import (
	"errors"
	"log"
	"time"
)

func (t *Token) Burn(from string, amount uint64) error {
	if !t.validateAddress(from) {
		err := errors.New("invalid address")
		log.Printf("Burn failed: %v", err)
		return err
	}
	if amount == 0 {
		err := errors.New("amount must be > 0")
		log.Printf("Burn failed: %v", err)
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balances[from] < amount {
		err := errors.New("insufficient balance")
		log.Printf("Burn failed: %v (balance: %d, requested: %d)",
			err, t.balances[from], amount)
		return err
	}
	if t.totalSupply < amount {
		err := errors.New("burn amount exceeds total supply")
		log.Printf("Burn failed: %v", err)
		return err
	}

	oldBalance := t.balances[from]

	t.balances[from] -= amount
	t.totalSupply -= amount

	t.emitEvent(Event{
		Type:      EventBurn,
		From:      from,
		Amount:    amount,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("burn", from, amount),
		Metadata: map[string]interface{}{
			"old_balance":  oldBalance,
			"new_balance":  t.balances[from],
			"total_supply": t.totalSupply,
		},
	})

	return nil
}
