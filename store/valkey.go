package store

import (
	"context"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

// ValkeyCodeCache keeps single-use codes in Valkey (Redis-compatible), so the
// single-use guarantee holds across all pods in a cluster. Take maps to
// GETDEL, which is atomic on the server.
type ValkeyCodeCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCodeCache creates a Valkey-backed cache.
// addr example: "127.0.0.1:6379"; prefix helps namespace keys.
func NewValkeyCodeCache(addr string, prefix string) (*ValkeyCodeCache, error) {
	cli, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "oidc:code:"
	}
	return &ValkeyCodeCache{client: cli, prefix: prefix}, nil
}

func (c *ValkeyCodeCache) key(handle string) string { return c.prefix + handle }

// Close closes the connection.
func (c *ValkeyCodeCache) Close() {
	c.client.Close()
}

// Put stores the blob under handle with a TTL derived from expiresAt.
func (c *ValkeyCodeCache) Put(ctx context.Context, handle string, blob []byte, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Do(ctx, c.client.B().Set().Key(c.key(handle)).Value(string(blob)).Ex(ttl).Build()).Error()
}

// Take removes and returns the blob under handle via GETDEL.
func (c *ValkeyCodeCache) Take(ctx context.Context, handle string) ([]byte, bool) {
	v, err := c.client.Do(ctx, c.client.B().Getdel().Key(c.key(handle)).Build()).ToString()
	if err != nil {
		return nil, false
	}
	return []byte(v), true
}

// Remove deletes the entry under handle; missing keys are not an error.
func (c *ValkeyCodeCache) Remove(ctx context.Context, handle string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(c.key(handle)).Build()).Error()
}
