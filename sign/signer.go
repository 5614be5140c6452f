package sign

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/legit-games/oidc-core/errors"
	"github.com/legit-games/oidc-core/models"
)

// Signer holds the ordered signing credentials. The first key is the active
// signer; the rest remain valid for verification during rotation. The key
// list is immutable after construction; rotation replaces the Signer.
type Signer struct {
	keys []SigningKey
}

// New builds a signer over the given credentials.
func New(keys ...SigningKey) (*Signer, error) {
	if len(keys) == 0 {
		return nil, errors.ErrNoSigningCredentials
	}
	for _, k := range keys {
		if k.PrivateKey == nil || k.Method == nil {
			return nil, errors.ErrInvalidSigningCredential
		}
	}
	return &Signer{keys: append([]SigningKey(nil), keys...)}, nil
}

// Active returns the credential used for issuance.
func (s *Signer) Active() SigningKey {
	return s.keys[0]
}

// Method returns the active signing method.
func (s *Signer) Method() jwt.SigningMethod {
	return s.keys[0].Method
}

// Sign serializes the claims into a compact JWS. The header carries alg,
// typ=JWT, the derived kid and, for certificate-backed keys, x5t.
func (s *Signer) Sign(claims jwt.MapClaims) (string, error) {
	k := s.Active()
	token := jwt.NewWithClaims(k.Method, claims)
	if kid := k.KID(); kid != "" {
		token.Header["kid"] = kid
	}
	if x5t := k.Thumbprint(); x5t != "" {
		token.Header["x5t"] = x5t
	}
	signed, err := token.SignedString(k.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return signed, nil
}

// Validation is the result of a successful JWS validation: the principal
// carried by the token, its validity window and its audiences. Audience and
// lifetime checks are deliberately left to the caller; only the signature
// and the issuer are verified here.
type Validation struct {
	Identity  *models.Identity
	ValidFrom time.Time
	ValidTo   time.Time
	Audiences []string
}

// Validate verifies the token signature and issuer and extracts the
// principal. The verification key is selected by the kid header when one of
// the configured keys matches; otherwise the first configured key whose
// algorithm matches the token's is used.
func (s *Signer) Validate(tokenString, issuer string) (*Validation, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.selectKey(t)
	})
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	if !token.Valid {
		return nil, errors.ErrInvalidAccessToken
	}

	if issuer != "" {
		iss, _ := claims.GetIssuer()
		if iss != issuer {
			return nil, fmt.Errorf("sign: issuer mismatch: %q", iss)
		}
	}

	v := &Validation{Identity: identityFromClaims(claims)}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		v.ValidTo = exp.Time
	}
	if nbf, err := claims.GetNotBefore(); err == nil && nbf != nil {
		v.ValidFrom = nbf.Time
	} else if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		v.ValidFrom = iat.Time
	}
	if aud, err := claims.GetAudience(); err == nil {
		v.Audiences = append(v.Audiences, aud...)
	}
	return v, nil
}

func (s *Signer) selectKey(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid != "" {
		for _, k := range s.keys {
			if k.KID() == kid {
				if k.Method.Alg() != t.Method.Alg() {
					return nil, errors.ErrUnsupportedSignMethod
				}
				return k.verificationKey(), nil
			}
		}
	}
	for _, k := range s.keys {
		if k.Method.Alg() == t.Method.Alg() {
			return k.verificationKey(), nil
		}
	}
	return nil, errors.ErrUnsupportedSignMethod
}

// identityFromClaims flattens the payload into an identity. Lifetime claims
// stay out; they are reconstructed into the ticket properties by the
// receiver. Multi-valued claims (aud) fan out one claim per element.
func identityFromClaims(claims jwt.MapClaims) *models.Identity {
	id := models.NewIdentity()
	for typ, value := range claims {
		switch typ {
		case models.ClaimExpirationTime, models.ClaimNotBefore:
			continue
		}
		switch v := value.(type) {
		case string:
			id.Add(typ, v)
		case []any:
			for _, e := range v {
				id.Add(typ, claimString(e))
			}
		default:
			id.Add(typ, claimString(v))
		}
	}
	return id
}

func claimString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
