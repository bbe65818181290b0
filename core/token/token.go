package token

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

type Token struct {
	Name        string
	Symbol      string
	Decimals    uint8
	totalSupply uint64
	maxSupply   uint64 // Maximum supply limit (0 = unlimited)
	balances    map[string]uint64
	mu          sync.RWMutex
	events      []Event
}

func NewToken(name, symbol string, decimals uint8, maxSupply uint64) *Token {
	return &Token{
		Name:      name,
		Symbol:    symbol,
		Decimals:  decimals,
		maxSupply: maxSupply,
		balances:  make(map[string]uint64),
		events:    []Event{},
	}
}

func (t *Token) validateAddress(address string) bool {
	return address != "" && len(address) < 256
}

// generateTxHash generates a unique transaction hash for events
func (t *Token) generateTxHash(operation, address string, amount uint64) string {
	data := fmt.Sprintf("%s_%s_%s_%d_%d",
		t.Symbol, operation, address, amount, time.Now().UnixNano())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("0x%x", hash[:8])
}
