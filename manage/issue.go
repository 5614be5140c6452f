package manage

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/legit-games/oidc-core"
	"github.com/legit-games/oidc-core/errors"
	"github.com/legit-games/oidc-core/hooks"
	"github.com/legit-games/oidc-core/models"
	"github.com/legit-games/oidc-core/sign"
)

type serializeFunc = func(context.Context, *models.Ticket) (string, error)

// prepare clones the ticket, stamps the lifetime defaults and applies the
// kind's claims filter. The caller's ticket is never mutated.
func (m *Manager) prepare(ticket *models.Ticket, kind oidc.CredentialKind, lifetime time.Duration) *models.Ticket {
	t := ticket.Clone()
	if t.Properties == nil {
		t.Properties = &models.AuthProperties{}
	}
	props := t.Properties
	if props.IssuedAt == nil {
		now := m.cfg.Clock()
		props.IssuedAt = &now
	}
	if props.ExpiresAt == nil {
		exp := props.IssuedAt.Add(lifetime)
		props.ExpiresAt = &exp
	}
	if keep := models.FilterFor(kind); keep != nil {
		t.Identity = t.Identity.CloneWithFilter(keep)
	}
	return t
}

func opaqueSerializer(f oidc.DataFormat) serializeFunc {
	return func(_ context.Context, t *models.Ticket) (string, error) {
		payload, err := t.Marshal()
		if err != nil {
			return "", err
		}
		return f.Protect(payload)
	}
}

// numericClaims are emitted as JSON numbers rather than strings.
var numericClaims = map[string]struct{}{
	models.ClaimIssuedAt: {},
	"auth_time":          {},
}

func addClaim(claims jwt.MapClaims, typ, value string) {
	if _, ok := numericClaims[typ]; ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			claims[typ] = n
			return
		}
	}
	switch existing := claims[typ].(type) {
	case nil:
		claims[typ] = value
	case string:
		claims[typ] = []string{existing, value}
	case []string:
		claims[typ] = append(existing, value)
	}
}

// jwsSerializer builds the JWS payload: identity claims first, then the
// registered claims. A single audience stays a bare string; several become a
// JSON array.
func (m *Manager) jwsSerializer(signer *sign.Signer, audiences []string) serializeFunc {
	return func(_ context.Context, t *models.Ticket) (string, error) {
		claims := jwt.MapClaims{}
		for _, c := range t.Identity.Claims {
			addClaim(claims, c.Type, c.Value)
		}
		if m.cfg.Issuer != "" {
			claims[models.ClaimIssuer] = m.cfg.Issuer
		}
		switch len(audiences) {
		case 0:
		case 1:
			claims[models.ClaimAudience] = audiences[0]
		default:
			claims[models.ClaimAudience] = audiences
		}
		props := t.Properties
		if props.IssuedAt != nil {
			claims[models.ClaimNotBefore] = props.IssuedAt.Unix()
		}
		if props.ExpiresAt != nil {
			claims[models.ClaimExpirationTime] = props.ExpiresAt.Unix()
		}
		return signer.Sign(claims)
	}
}

// unionAudiences merges the two lists preserving order, first occurrence
// wins.
func unionAudiences(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, aud := range list {
			if _, ok := seen[aud]; ok {
				continue
			}
			seen[aud] = struct{}{}
			out = append(out, aud)
		}
	}
	return out
}

// dispatchCreate runs one Create* hook and classifies the context. On the
// default outcome it then runs the serializer; its failures are logged
// and collapse to an empty credential so the endpoint layer can answer with
// a protocol error instead of a 500.
func (m *Manager) dispatchCreate(
	ctx context.Context,
	kind oidc.CredentialKind,
	req *oidc.TokenRequest,
	resp *oidc.TokenResponse,
	t *models.Ticket,
	serialize serializeFunc,
	hook func(context.Context, *hooks.CreateContext) error,
) (string, hooks.Action, error) {
	c := &hooks.CreateContext{Kind: kind, Request: req, Response: resp, Ticket: t, Serialize: serialize}
	if err := hook(ctx, c); err != nil {
		return "", hooks.ActionDefault, err
	}
	switch c.Action() {
	case hooks.ActionHandled:
		return c.Credential(), hooks.ActionHandled, nil
	case hooks.ActionSkipped:
		return "", hooks.ActionSkipped, nil
	case hooks.ActionRejected:
		return "", hooks.ActionRejected, c.Rejection()
	}
	credential, err := serialize(ctx, t)
	if err != nil {
		m.cfg.Logger.Warn("credential serialization failed", "kind", string(kind), "error", err)
		return "", hooks.ActionDefault, nil
	}
	return credential, hooks.ActionDefault, nil
}

// IssueAuthorizationCode mints a single-use opaque code for the ticket. The
// returned handle references the protected ticket in the code cache; when a
// hook supplies its own handle the cache is left untouched.
func (m *Manager) IssueAuthorizationCode(ctx context.Context, ticket *models.Ticket, req *oidc.TokenRequest, resp *oidc.TokenResponse) (string, error) {
	t := m.prepare(ticket, oidc.KindCode, m.cfg.AuthorizationCodeLifetime)
	serialize := opaqueSerializer(m.cfg.AuthorizationCodeFormat)
	blob, action, err := m.dispatchCreate(ctx, oidc.KindCode, req, resp, t, serialize, m.cfg.Provider.CreateAuthorizationCode)
	if err != nil {
		return "", err
	}
	if action != hooks.ActionDefault || blob == "" {
		return blob, nil
	}
	handle, err := newHandle()
	if err != nil {
		return "", err
	}
	if err := m.cfg.Cache.Put(ctx, handle, []byte(blob), *t.Properties.ExpiresAt); err != nil {
		m.cfg.Logger.Warn("authorization code cache write failed", "error", err)
		return "", nil
	}
	return handle, nil
}

// IssueAccessToken mints an access token: JWS when an access-token signer is
// configured, opaque otherwise. The audience is the union of the request
// resources and the ticket resources.
func (m *Manager) IssueAccessToken(ctx context.Context, ticket *models.Ticket, req *oidc.TokenRequest, resp *oidc.TokenResponse) (string, error) {
	t := m.prepare(ticket, oidc.KindToken, m.cfg.AccessTokenLifetime)
	t.Identity.EnsureSubject()
	var serialize serializeFunc
	if m.cfg.AccessTokenSigner != nil {
		aud := unionAudiences(req.Resources, t.Properties.Resources)
		serialize = m.jwsSerializer(m.cfg.AccessTokenSigner, aud)
	} else {
		serialize = opaqueSerializer(m.cfg.AccessTokenFormat)
	}
	credential, _, err := m.dispatchCreate(ctx, oidc.KindToken, req, resp, t, serialize, m.cfg.Provider.CreateAccessToken)
	return credential, err
}

// IssueIdentityToken mints the id token for the client in req. The hash-link
// claims bind it to the code and access token already present on resp, and
// on the authorization_code grant the nonce is restored from the ticket that
// rode the code rather than the current request.
func (m *Manager) IssueIdentityToken(ctx context.Context, ticket *models.Ticket, req *oidc.TokenRequest, resp *oidc.TokenResponse) (string, error) {
	signer := m.cfg.IdentityTokenSigner
	if signer == nil {
		m.cfg.Logger.Debug("identity token signing is not configured")
		return "", nil
	}
	t := m.prepare(ticket, oidc.KindIDToken, m.cfg.IdentityTokenLifetime)
	id := t.Identity

	id.Add(models.ClaimIssuedAt, strconv.FormatInt(t.Properties.IssuedAt.Unix(), 10))
	if resp.Code != "" {
		h, err := sign.TokenHash(resp.Code, signer.Method())
		if err != nil {
			return "", err
		}
		id.Add(models.ClaimCodeHash, h)
	}
	if resp.AccessToken != "" {
		h, err := sign.TokenHash(resp.AccessToken, signer.Method())
		if err != nil {
			return "", err
		}
		id.Add(models.ClaimAccessTokenHash, h)
	}
	nonce := req.Nonce
	if req.GrantType == oidc.AuthorizationCode {
		nonce = t.Properties.Nonce
	}
	if nonce != "" {
		id.Add(models.ClaimNonce, nonce)
	}
	if !id.EnsureSubject() {
		return "", errors.ErrMissingSubject
	}

	serialize := m.jwsSerializer(signer, []string{req.ClientID})
	credential, _, err := m.dispatchCreate(ctx, oidc.KindIDToken, req, resp, t, serialize, m.cfg.Provider.CreateIdentityToken)
	return credential, err
}

// IssueRefreshToken mints an opaque refresh token. Unlike codes it is not
// cached; the handle is the protected ticket itself.
func (m *Manager) IssueRefreshToken(ctx context.Context, ticket *models.Ticket, req *oidc.TokenRequest, resp *oidc.TokenResponse) (string, error) {
	t := m.prepare(ticket, oidc.KindRefresh, m.cfg.RefreshTokenLifetime)
	serialize := opaqueSerializer(m.cfg.RefreshTokenFormat)
	credential, _, err := m.dispatchCreate(ctx, oidc.KindRefresh, req, resp, t, serialize, m.cfg.Provider.CreateRefreshToken)
	return credential, err
}
