package store

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/tidwall/buntdb"
)

// BuntCodeCache keeps single-use codes in a buntdb file (or ":memory:").
// Buntdb serializes writable transactions, so the get-and-delete pair inside
// Take is atomic with respect to concurrent redeemers.
type BuntCodeCache struct {
	db *buntdb.DB
}

// NewBuntCodeCache opens a buntdb-backed cache at path; use ":memory:" for a
// process-local cache with buntdb's TTL handling.
func NewBuntCodeCache(path string) (*BuntCodeCache, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &BuntCodeCache{db: db}, nil
}

// Close releases the underlying database.
func (c *BuntCodeCache) Close() error {
	return c.db.Close()
}

// Put stores the blob under handle with a TTL derived from expiresAt.
// A prior entry under the same handle is overwritten.
func (c *BuntCodeCache) Put(ctx context.Context, handle string, blob []byte, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; storing would create an entry buntdb never reaps.
		// The prior entry is still discarded.
		return c.Remove(ctx, handle)
	}
	return c.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(handle, base64.StdEncoding.EncodeToString(blob), &buntdb.SetOptions{
			Expires: true,
			TTL:     ttl,
		})
		return err
	})
}

// Take removes and returns the blob under handle within one writable
// transaction. Expired or missing entries report absent.
func (c *BuntCodeCache) Take(_ context.Context, handle string) ([]byte, bool) {
	var encoded string
	err := c.db.Update(func(tx *buntdb.Tx) error {
		v, err := tx.Get(handle)
		if err != nil {
			return err
		}
		if _, err := tx.Delete(handle); err != nil {
			return err
		}
		encoded = v
		return nil
	})
	if err != nil {
		return nil, false
	}
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return blob, true
}

// Remove deletes the entry under handle; missing entries are not an error.
func (c *BuntCodeCache) Remove(_ context.Context, handle string) error {
	err := c.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(handle)
		return err
	})
	if err == buntdb.ErrNotFound {
		return nil
	}
	return err
}
