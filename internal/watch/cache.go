// Package watch polls the confirmation queue and surfaces confirmations
// that have not been seen before, so the desktop shell can notify on new
// ones instead of re-announcing the whole queue every interval.
package watch

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
)

var bucketSeen = []byte("seen")

// Cache remembers which confirmation ids were already surfaced, keyed per
// account so switching the active account does not replay notifications.
type Cache struct {
	db *bbolt.DB
}

// OpenCache opens or creates the cache database at dbPath.
func OpenCache(dbPath string) (*Cache, error) {
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open watch cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketSeen)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize watch cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// FilterNew returns the confirmations not yet marked seen for the account.
func (c *Cache) FilterNew(account string, confirmations []steamapi.Confirmation) ([]steamapi.Confirmation, error) {
	var fresh []steamapi.Confirmation

	err := c.db.View(func(tx *bbolt.Tx) error {
		accountBucket := tx.Bucket(bucketSeen).Bucket([]byte(account))
		for _, confirmation := range confirmations {
			if accountBucket == nil || accountBucket.Get([]byte(confirmation.ID)) == nil {
				fresh = append(fresh, confirmation)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read watch cache: %w", err)
	}
	return fresh, nil
}

// MarkSeen records the confirmations as surfaced for the account.
func (c *Cache) MarkSeen(account string, confirmations []steamapi.Confirmation) error {
	if len(confirmations) == 0 {
		return nil
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		accountBucket, err := tx.Bucket(bucketSeen).CreateBucketIfNotExists([]byte(account))
		if err != nil {
			return fmt.Errorf("failed to create account bucket: %w", err)
		}
		for _, confirmation := range confirmations {
			var creationTime [8]byte
			binary.BigEndian.PutUint64(creationTime[:], uint64(confirmation.CreationTime))
			if err := accountBucket.Put([]byte(confirmation.ID), creationTime[:]); err != nil {
				return fmt.Errorf("failed to record confirmation: %w", err)
			}
		}
		return nil
	})
}

// Forget drops the seen set of one account, used when the account is
// removed from the store.
func (c *Cache) Forget(account string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		err := tx.Bucket(bucketSeen).DeleteBucket([]byte(account))
		if err != nil && err != bbolt.ErrBucketNotFound {
			return fmt.Errorf("failed to drop account bucket: %w", err)
		}
		return nil
	})
}
