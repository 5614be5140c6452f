package manage

import (
	"context"

	"github.com/legit-games/oidc-core"
	"github.com/legit-games/oidc-core/hooks"
	"github.com/legit-games/oidc-core/models"
	"github.com/legit-games/oidc-core/sign"
)

type deserializeFunc = func(context.Context, string) (*models.Ticket, error)

func opaqueDeserializer(f oidc.DataFormat) deserializeFunc {
	return func(_ context.Context, credential string) (*models.Ticket, error) {
		payload, ok := f.Unprotect(credential)
		if !ok {
			return nil, nil
		}
		return models.UnmarshalTicket(payload)
	}
}

// jwsDeserializer validates the token and rebuilds fresh properties from its
// validity window. Audience and expiry are surfaced, not enforced; the token
// and validation endpoints own those checks.
func (m *Manager) jwsDeserializer(signer *sign.Signer) deserializeFunc {
	return func(_ context.Context, credential string) (*models.Ticket, error) {
		v, err := signer.Validate(credential, m.cfg.Issuer)
		if err != nil {
			return nil, err
		}
		props := &models.AuthProperties{Audiences: v.Audiences}
		if !v.ValidFrom.IsZero() {
			from := v.ValidFrom
			props.IssuedAt = &from
		}
		if !v.ValidTo.IsZero() {
			to := v.ValidTo
			props.ExpiresAt = &to
		}
		return models.NewTicket(v.Identity, props), nil
	}
}

// dispatchReceive runs one Receive* hook and classifies the context. The
// default behavior is kind-specific and stays with the caller.
func (m *Manager) dispatchReceive(
	ctx context.Context,
	kind oidc.CredentialKind,
	credential string,
	deserialize deserializeFunc,
	hook func(context.Context, *hooks.ReceiveContext) error,
) (*models.Ticket, hooks.Action, error) {
	c := &hooks.ReceiveContext{Kind: kind, Credential: credential, Deserialize: deserialize}
	if err := hook(ctx, c); err != nil {
		return nil, hooks.ActionDefault, err
	}
	switch c.Action() {
	case hooks.ActionHandled:
		return c.Ticket, hooks.ActionHandled, nil
	case hooks.ActionSkipped:
		return nil, hooks.ActionSkipped, nil
	case hooks.ActionRejected:
		return nil, hooks.ActionRejected, c.Rejection()
	}
	return nil, hooks.ActionDefault, nil
}

// ReceiveAuthorizationCode redeems a code handle. The cache take is atomic,
// so of N concurrent redeemers exactly one gets the ticket; the others (and
// any expired or forged handle) get nil without error.
func (m *Manager) ReceiveAuthorizationCode(ctx context.Context, handle string) (*models.Ticket, error) {
	deserialize := opaqueDeserializer(m.cfg.AuthorizationCodeFormat)
	ticket, action, err := m.dispatchReceive(ctx, oidc.KindCode, handle, deserialize, m.cfg.Provider.ReceiveAuthorizationCode)
	if err != nil || action != hooks.ActionDefault {
		return ticket, err
	}
	blob, ok := m.cfg.Cache.Take(ctx, handle)
	if !ok {
		return nil, nil
	}
	t, err := deserialize(ctx, string(blob))
	if err != nil {
		m.cfg.Logger.Warn("authorization code deserialization failed", "error", err)
		return nil, nil
	}
	return t, nil
}

// ReceiveAccessToken re-hydrates an access token into a ticket. A bad
// credential is a nil ticket, not an error; the endpoint layer translates
// that into invalid_grant.
func (m *Manager) ReceiveAccessToken(ctx context.Context, credential string) (*models.Ticket, error) {
	var deserialize deserializeFunc
	if m.cfg.AccessTokenSigner != nil {
		deserialize = m.jwsDeserializer(m.cfg.AccessTokenSigner)
	} else {
		deserialize = opaqueDeserializer(m.cfg.AccessTokenFormat)
	}
	return m.receiveWithDefault(ctx, oidc.KindToken, credential, deserialize, m.cfg.Provider.ReceiveAccessToken)
}

// ReceiveIdentityToken validates an id token. Returns nil while identity
// tokens are disabled.
func (m *Manager) ReceiveIdentityToken(ctx context.Context, credential string) (*models.Ticket, error) {
	if m.cfg.IdentityTokenSigner == nil {
		m.cfg.Logger.Debug("identity token signing is not configured")
		return nil, nil
	}
	deserialize := m.jwsDeserializer(m.cfg.IdentityTokenSigner)
	return m.receiveWithDefault(ctx, oidc.KindIDToken, credential, deserialize, m.cfg.Provider.ReceiveIdentityToken)
}

// ReceiveRefreshToken unprotects a refresh token.
func (m *Manager) ReceiveRefreshToken(ctx context.Context, credential string) (*models.Ticket, error) {
	deserialize := opaqueDeserializer(m.cfg.RefreshTokenFormat)
	return m.receiveWithDefault(ctx, oidc.KindRefresh, credential, deserialize, m.cfg.Provider.ReceiveRefreshToken)
}

func (m *Manager) receiveWithDefault(
	ctx context.Context,
	kind oidc.CredentialKind,
	credential string,
	deserialize deserializeFunc,
	hook func(context.Context, *hooks.ReceiveContext) error,
) (*models.Ticket, error) {
	ticket, action, err := m.dispatchReceive(ctx, kind, credential, deserialize, hook)
	if err != nil || action != hooks.ActionDefault {
		return ticket, err
	}
	t, err := deserialize(ctx, credential)
	if err != nil {
		m.cfg.Logger.Warn("credential deserialization failed", "kind", string(kind), "error", err)
		return nil, nil
	}
	return t, nil
}
