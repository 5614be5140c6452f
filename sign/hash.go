package sign

import (
	"crypto"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/base64"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/legit-games/oidc-core/errors"
)

// HashForAlg returns the hash matched to a JWS alg by its size suffix.
// EdDSA pins SHA-512 per the OIDC registry.
func HashForAlg(alg string) (crypto.Hash, error) {
	switch {
	case strings.HasSuffix(alg, "256"):
		return crypto.SHA256, nil
	case strings.HasSuffix(alg, "384"):
		return crypto.SHA384, nil
	case strings.HasSuffix(alg, "512"), alg == "EdDSA":
		return crypto.SHA512, nil
	default:
		return 0, errors.ErrUnsupportedSignMethod
	}
}

// TokenHash derives the OIDC left-half hash claims (c_hash, at_hash):
// base64url of the left half of H(ascii(value)), H matched to the signing alg.
func TokenHash(value string, method jwt.SigningMethod) (string, error) {
	h, err := HashForAlg(method.Alg())
	if err != nil {
		return "", err
	}
	hasher := h.New()
	hasher.Write([]byte(value))
	sum := hasher.Sum(nil)
	return base64.RawURLEncoding.EncodeToString(sum[:len(sum)/2]), nil
}
