package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CodeEntry is a stored single-use authorization code. Redeemed rows are
// marked used rather than deleted so they stay visible for audit until
// PruneExpired reaps them.
type CodeEntry struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Handle    string     `gorm:"uniqueIndex" json:"handle"`
	Blob      []byte     `json:"blob"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (CodeEntry) TableName() string {
	return "authorization_codes"
}

// GormCodeCache is a database-backed single-use code cache. The claim in Take
// is a conditional UPDATE; the row count decides the winner under concurrent
// redemption, which works on any SQL backend without advisory locks.
type GormCodeCache struct {
	DB *gorm.DB
}

// NewGormCodeCache creates a cache over an existing gorm handle and ensures
// the backing table exists.
func NewGormCodeCache(db *gorm.DB) (*GormCodeCache, error) {
	if err := db.AutoMigrate(&CodeEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate authorization_codes: %w", err)
	}
	return &GormCodeCache{DB: db}, nil
}

// OpenPostgres opens a gorm handle for the given Postgres DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Put stores the blob under handle, replacing any prior entry.
func (c *GormCodeCache) Put(ctx context.Context, handle string, blob []byte, expiresAt time.Time) error {
	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("handle = ?", handle).Delete(&CodeEntry{}).Error; err != nil {
			return err
		}
		entry := &CodeEntry{
			ID:        uuid.NewString(),
			Handle:    handle,
			Blob:      blob,
			ExpiresAt: expiresAt.UTC(),
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to save authorization code: %w", err)
		}
		return nil
	})
}

// Take claims the entry under handle. Exactly one concurrent caller observes
// RowsAffected == 1; everyone else reports absent.
func (c *GormCodeCache) Take(ctx context.Context, handle string) ([]byte, bool) {
	now := time.Now().UTC()
	result := c.DB.WithContext(ctx).Model(&CodeEntry{}).
		Where("handle = ? AND used = FALSE AND expires_at > ?", handle, now).
		Updates(map[string]interface{}{
			"used":    true,
			"used_at": now,
		})
	if result.Error != nil || result.RowsAffected == 0 {
		return nil, false
	}

	var entry CodeEntry
	if err := c.DB.WithContext(ctx).Where("handle = ?", handle).First(&entry).Error; err != nil {
		return nil, false
	}
	return entry.Blob, true
}

// Remove deletes the entry under handle; missing rows are not an error.
func (c *GormCodeCache) Remove(ctx context.Context, handle string) error {
	return c.DB.WithContext(ctx).Where("handle = ?", handle).Delete(&CodeEntry{}).Error
}

// PruneExpired removes expired and redeemed entries. Used rows are kept for
// 24 hours for audit before they become eligible.
func (c *GormCodeCache) PruneExpired(ctx context.Context) (int64, error) {
	result := c.DB.WithContext(ctx).Where(
		"(used = FALSE AND expires_at < ?) OR (used = TRUE AND used_at < ?)",
		time.Now().UTC(), time.Now().UTC().Add(-24*time.Hour),
	).Delete(&CodeEntry{})
	return result.RowsAffected, result.Error
}
