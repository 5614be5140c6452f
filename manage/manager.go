package manage

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/legit-games/oidc-core/logout"
)

// Manager runs the four issue pipelines and their receive mirrors over one
// Config. It holds no mutable state of its own; the code cache is the only
// shared mutable state and lives behind the CodeCache interface.
type Manager struct {
	cfg *Config
}

// NewManager builds a manager, filling unset config fields with defaults.
func NewManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = NewConfig([]byte("development-secret"))
	}
	cfg.normalize()
	return &Manager{cfg: cfg}
}

// Config exposes the effective configuration.
func (m *Manager) Config() *Config {
	return m.cfg
}

// Logout builds the end-session pipeline sharing this manager's provider,
// logger and error-display flag.
func (m *Manager) Logout() *logout.Pipeline {
	return logout.New(m.cfg.Provider, m.cfg.Logger, m.cfg.ApplicationCanDisplayErrors)
}

// newHandle returns a fresh 256-bit base64url handle for authorization codes.
func newHandle() (string, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("manage: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
