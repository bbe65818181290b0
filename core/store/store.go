package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vaultforge/reward-vault/core/vault"
)

var (
	bucketConfig    = []byte("config")
	bucketPositions = []byte("positions")
	bucketBalances  = []byte("balances")
	bucketEvents    = []byte("events")

	keyConfig = []byte("vault_config")
)

// Store persists vault state in a bbolt database.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database at path and ensures all buckets
// exist. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketConfig, bucketPositions, bucketBalances, bucketEvents} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %v", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveConfig persists the vault configuration.
func (s *Store) SaveConfig(config vault.VaultConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketConfig).Put(keyConfig, data)
	})
}

// LoadConfig returns the persisted configuration, or nil if none was saved.
func (s *Store) LoadConfig() (*vault.VaultConfig, error) {
	var config *vault.VaultConfig
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketConfig).Get(keyConfig)
		if data == nil {
			return nil
		}
		config = &vault.VaultConfig{}
		return json.Unmarshal(data, config)
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// SavePosition persists one owner's position, keyed by owner address.
func (s *Store) SavePosition(position vault.VaultPosition) error {
	data, err := json.Marshal(position)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPositions).Put([]byte(position.Owner), data)
	})
}

// DeletePosition removes the owner's persisted position.
func (s *Store) DeletePosition(owner string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPositions).Delete([]byte(owner))
	})
}

// LoadPositions returns every persisted position.
func (s *Store) LoadPositions() ([]vault.VaultPosition, error) {
	var positions []vault.VaultPosition
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPositions).ForEach(func(_, data []byte) error {
			var position vault.VaultPosition
			if err := json.Unmarshal(data, &position); err != nil {
				return err
			}
			positions = append(positions, position)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// SaveBalances persists a snapshot of the token ledger so positions stay
// redeemable across a restart.
func (s *Store) SaveBalances(balances map[string]uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBalances)
		for address, balance := range balances {
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], balance)
			if err := bucket.Put([]byte(address), buf[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadBalances returns the persisted ledger snapshot.
func (s *Store) LoadBalances() (map[string]uint64, error) {
	balances := make(map[string]uint64)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBalances).ForEach(func(key, value []byte) error {
			if len(value) != 8 {
				return fmt.Errorf("corrupt balance entry for %q", key)
			}
			balances[string(key)] = binary.BigEndian.Uint64(value)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// AppendEvent stores a vault event keyed by its ID for later audit.
func (s *Store) AppendEvent(event vault.VaultEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := fmt.Sprintf("%020d_%s", event.Timestamp, event.ID)
		return tx.Bucket(bucketEvents).Put([]byte(key), data)
	})
}

// LoadEvents returns all persisted events in timestamp order.
func (s *Store) LoadEvents() ([]vault.VaultEvent, error) {
	var events []vault.VaultEvent
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEvents).ForEach(func(_, data []byte) error {
			var event vault.VaultEvent
			if err := json.Unmarshal(data, &event); err != nil {
				return err
			}
			events = append(events, event)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
