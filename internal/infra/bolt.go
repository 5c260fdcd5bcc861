package infra

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// NewBoltDB opens (or creates) the embedded ledger file.
func NewBoltDB(path string) (*bolt.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path is required")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	return db, nil
}
