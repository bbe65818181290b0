package token

import (
	"errors"
	"log"
	"time"
)

func (t *Token) Transfer(from, to string, amount uint64) error {
	if !t.validateAddress(from) || !t.validateAddress(to) {
		err := errors.New("invalid address")
		log.Printf("Transfer failed: %v", err)
		return err
	}
	if amount == 0 {
		err := errors.New("amount must be > 0")
		log.Printf("Transfer failed: %v", err)
		return err
	}
	if from == to {
		err := errors.New("cannot transfer to same address")
		log.Printf("Transfer failed: %v", err)
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balances[from] < amount {
		err := errors.New("insufficient balance")
		log.Printf("Transfer failed: %v (balance: %d, requested: %d)",
			err, t.balances[from], amount)
		return err
	}

	// Overflow protection for recipient
	if t.balances[to] > ^uint64(0)-amount {
		err := errors.New("transfer amount causes recipient balance overflow")
		log.Printf("Transfer failed: %v", err)
		return err
	}

	oldFromBalance := t.balances[from]
	oldToBalance := t.balances[to]

	t.balances[from] -= amount
	t.balances[to] += amount

	t.emitEvent(Event{
		Type:      EventTransfer,
		From:      from,
		To:        to,
		Amount:    amount,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("transfer", from+":"+to, amount),
		Metadata: map[string]interface{}{
			"from_old_balance": oldFromBalance,
			"from_new_balance": t.balances[from],
			"to_old_balance":   oldToBalance,
			"to_new_balance":   t.balances[to],
		},
	})

	return nil
}
