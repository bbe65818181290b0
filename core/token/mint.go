package token

import (
	"errors"
	"log"
	"time"
)

func (t *Token) Mint(to string, amount uint64) error {
	if !t.validateAddress(to) {
		err := errors.New("invalid address")
		log.Printf("Mint failed: %v", err)
		return err
	}
	if amount == 0 {
		err := errors.New("amount must be > 0")
		log.Printf("Mint failed: %v", err)
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check maximum supply limit
	if t.maxSupply > 0 && t.totalSupply+amount > t.maxSupply {
		err := errors.New("mint amount would exceed maximum supply")
		log.Printf("Mint failed: %v (current: %d, requested: %d, max: %d)",
			err, t.totalSupply, amount, t.maxSupply)
		return err
	}

	// Overflow protection for recipient balance and total supply
	if t.balances[to] > ^uint64(0)-amount || t.totalSupply > ^uint64(0)-amount {
		err := errors.New("mint amount causes overflow")
		log.Printf("Mint failed: %v", err)
		return err
	}

	t.balances[to] += amount
	t.totalSupply += amount

	t.emitEvent(Event{
		Type:      EventMint,
		To:        to,
		Amount:    amount,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("mint", to, amount),
		Metadata: map[string]interface{}{
			"new_balance":  t.balances[to],
			"total_supply": t.totalSupply,
			"max_supply":   t.maxSupply,
		},
	})

	return nil
}
