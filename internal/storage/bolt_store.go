package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/victoravtr/LEC-Ditto/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	registryBucket   = "registry"
	snapshotsBucket  = "snapshots"
	checkpointBucket = "checkpoint"

	registryKey   = "accounts"
	checkpointKey = "scan"
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{registryBucket, snapshotsBucket, checkpointBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// ReadRegistry returns the persisted tracked-account list.
func (b *boltStore) ReadRegistry() ([]domain.TrackedAccount, bool, error) {
	var accounts []domain.TrackedAccount
	found, err := b.readJSON(registryBucket, registryKey, &accounts)
	if err != nil {
		return nil, false, fmt.Errorf("read registry: %w", err)
	}
	return accounts, found, nil
}

// WriteRegistry replaces the tracked-account list wholesale.
func (b *boltStore) WriteRegistry(accounts []domain.TrackedAccount) error {
	if err := b.writeJSON(registryBucket, registryKey, accounts); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// ReadSnapshot returns the last persisted following list for the account.
func (b *boltStore) ReadSnapshot(accountID string) ([]domain.FollowRelation, bool, error) {
	var relations []domain.FollowRelation
	found, err := b.readJSON(snapshotsBucket, accountID, &relations)
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %s: %w", accountID, err)
	}
	return relations, found, nil
}

// WriteSnapshot overwrites the stored following list for the account.
func (b *boltStore) WriteSnapshot(accountID string, relations []domain.FollowRelation) error {
	if relations == nil {
		relations = []domain.FollowRelation{}
	}
	if err := b.writeJSON(snapshotsBucket, accountID, relations); err != nil {
		return fmt.Errorf("write snapshot %s: %w", accountID, err)
	}
	return nil
}

// ReadCheckpoint returns the scan checkpoint, zero-valued when absent.
func (b *boltStore) ReadCheckpoint() (domain.Checkpoint, error) {
	var cp domain.Checkpoint
	found, err := b.readJSON(checkpointBucket, checkpointKey, &cp)
	if err != nil {
		return domain.Checkpoint{}, fmt.Errorf("read checkpoint: %w", err)
	}
	if !found {
		return domain.Checkpoint{}, nil
	}
	return cp, nil
}

// WriteCheckpoint replaces the scan checkpoint.
func (b *boltStore) WriteCheckpoint(cp domain.Checkpoint) error {
	if err := b.writeJSON(checkpointBucket, checkpointKey, cp); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// readJSON decodes the value stored under bucket/key into out. The bool
// reports whether the key existed.
func (b *boltStore) readJSON(bucket, key string, out any) (bool, error) {
	if b == nil || b.db == nil {
		return false, fmt.Errorf("store is not open")
	}

	var raw []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return fmt.Errorf("bucket %s missing", bucket)
		}
		if value := bkt.Get([]byte(key)); value != nil {
			raw = append(raw, value...)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

// writeJSON atomically replaces the value stored under bucket/key.
func (b *boltStore) writeJSON(bucket, key string, value any) error {
	if b == nil || b.db == nil {
		return fmt.Errorf("store is not open")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, key, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return fmt.Errorf("bucket %s missing", bucket)
		}
		return bkt.Put([]byte(key), raw)
	})
}
