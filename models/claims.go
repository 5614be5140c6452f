package models

import (
	"github.com/legit-games/oidc-core"
)

// Registered claim types. See https://www.iana.org/assignments/jwt/jwt.xhtml.
const (
	ClaimSubject         = "sub"
	ClaimIssuer          = "iss"
	ClaimAudience        = "aud"
	ClaimIssuedAt        = "iat"
	ClaimExpirationTime  = "exp"
	ClaimNotBefore       = "nbf"
	ClaimJWTID           = "jti"
	ClaimNonce           = "nonce"
	ClaimCodeHash        = "c_hash"
	ClaimAccessTokenHash = "at_hash"

	// ClaimNameIdentifier is the legacy name-identifier claim type carried by
	// identities coming out of federation middleware. It is interchangeable
	// with sub for subject resolution and, like sub, is never filtered out.
	ClaimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
)

// Destination tags. A claim tagged with a destination may appear in the
// matching self-contained credential; untagged claims are excluded from all
// of them.
const (
	DestinationAccessToken = "token"
	DestinationIDToken     = "id_token"
)

// Claim is a typed value with the set of credential kinds allowed to carry it.
type Claim struct {
	Type         string   `json:"type"`
	Value        string   `json:"value"`
	Destinations []string `json:"destinations,omitempty"`
}

// HasDestination reports whether the claim is tagged for the given credential.
func (c Claim) HasDestination(tag string) bool {
	for _, d := range c.Destinations {
		if d == tag {
			return true
		}
	}
	return false
}

func (c Claim) clone() Claim {
	out := Claim{Type: c.Type, Value: c.Value}
	if len(c.Destinations) > 0 {
		out.Destinations = append([]string(nil), c.Destinations...)
	}
	return out
}

// isSubject reports whether the claim type is exempt from destination
// filtering.
func (c Claim) isSubject() bool {
	return c.Type == ClaimSubject || c.Type == ClaimNameIdentifier
}

// FilterFor returns the claims-filter predicate for a credential kind.
// Opaque kinds (code, refresh) carry the full identity and get a nil
// predicate, meaning keep everything.
func FilterFor(kind oidc.CredentialKind) func(Claim) bool {
	switch kind {
	case oidc.KindToken:
		return func(c Claim) bool {
			return c.isSubject() || c.HasDestination(DestinationAccessToken)
		}
	case oidc.KindIDToken:
		return func(c Claim) bool {
			return c.isSubject() || c.HasDestination(DestinationIDToken)
		}
	default:
		return nil
	}
}
