package manage

import (
	"time"

	"github.com/legit-games/oidc-core"
	"github.com/legit-games/oidc-core/format"
	"github.com/legit-games/oidc-core/hooks"
	"github.com/legit-games/oidc-core/logx"
	"github.com/legit-games/oidc-core/sign"
	"github.com/legit-games/oidc-core/store"
)

// Config is the configuration surface of the token lifecycle core. Zero
// lifetimes, cache, provider, clock and logger are filled with defaults by
// NewManager; the formats, signers and issuer are left as given.
type Config struct {
	// Issuer is stamped into and checked against the iss claim of JWS
	// credentials.
	Issuer string

	AuthorizationCodeLifetime time.Duration
	AccessTokenLifetime       time.Duration
	IdentityTokenLifetime     time.Duration
	RefreshTokenLifetime      time.Duration

	// Formats protect the opaque credential kinds.
	AuthorizationCodeFormat oidc.DataFormat
	AccessTokenFormat       oidc.DataFormat
	RefreshTokenFormat      oidc.DataFormat

	// AccessTokenSigner switches access tokens from opaque to JWS when set.
	AccessTokenSigner *sign.Signer
	// IdentityTokenSigner signs id tokens; identity tokens are disabled
	// while it is nil.
	IdentityTokenSigner *sign.Signer

	// Cache holds pending authorization codes.
	Cache oidc.CodeCache

	// Provider receives the pipeline hooks.
	Provider hooks.Provider

	// Clock is injectable for tests; defaults to time.Now.
	Clock oidc.Clock

	Logger logx.Logger

	// ApplicationCanDisplayErrors lets the host render logout errors itself
	// instead of the built-in error page.
	ApplicationCanDisplayErrors bool
}

// default lifetimes
const (
	DefaultAuthorizationCodeLifetime = 5 * time.Minute
	DefaultAccessTokenLifetime       = time.Hour
	DefaultIdentityTokenLifetime     = time.Hour
	DefaultRefreshTokenLifetime      = 14 * 24 * time.Hour
)

// NewConfig returns a config with the default lifetimes and the opaque
// formats keyed from secret. Signers, cache and provider stay unset.
func NewConfig(secret []byte) *Config {
	f := format.NewSecretFormat(secret)
	return &Config{
		AuthorizationCodeLifetime: DefaultAuthorizationCodeLifetime,
		AccessTokenLifetime:       DefaultAccessTokenLifetime,
		IdentityTokenLifetime:     DefaultIdentityTokenLifetime,
		RefreshTokenLifetime:      DefaultRefreshTokenLifetime,
		AuthorizationCodeFormat:   f,
		AccessTokenFormat:         f,
		RefreshTokenFormat:        f,
	}
}

// normalize fills the remaining zero fields with safe defaults.
func (c *Config) normalize() {
	if c.AuthorizationCodeLifetime == 0 {
		c.AuthorizationCodeLifetime = DefaultAuthorizationCodeLifetime
	}
	if c.AccessTokenLifetime == 0 {
		c.AccessTokenLifetime = DefaultAccessTokenLifetime
	}
	if c.IdentityTokenLifetime == 0 {
		c.IdentityTokenLifetime = DefaultIdentityTokenLifetime
	}
	if c.RefreshTokenLifetime == 0 {
		c.RefreshTokenLifetime = DefaultRefreshTokenLifetime
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Cache == nil {
		c.Cache = store.NewMemoryCodeCacheWithClock(c.Clock)
	}
	if c.Provider == nil {
		c.Provider = hooks.NopProvider{}
	}
	if c.Logger == nil {
		c.Logger = logx.L()
	}
}
