// Package sign holds the signing credentials for self-contained credentials:
// key-identifier derivation, JWS issuance and JWS validation on top of
// golang-jwt. Key identity (kid, x5t) is kept in pure functions over the
// credential so relying parties can select the right JWKS entry.
package sign

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SigningKey binds a private key to an algorithm and, optionally, an X.509
// certificate. KeyID overrides the derived kid when set.
type SigningKey struct {
	PrivateKey  crypto.PrivateKey
	Method      jwt.SigningMethod
	Certificate *x509.Certificate
	KeyID       string
}

// Thumbprint returns the x5t header value, base64url(sha1(cert DER)), or ""
// when the key carries no certificate.
func (k SigningKey) Thumbprint() string {
	if k.Certificate == nil {
		return ""
	}
	sum := sha1.Sum(k.Certificate.Raw)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// KID derives the key identifier. Priority: explicit KeyID, then the
// certificate thumbprint as uppercase hex, then for bare RSA keys the
// base64url of the public modulus truncated to 40 characters and uppercased.
func (k SigningKey) KID() string {
	if k.KeyID != "" {
		return k.KeyID
	}
	if k.Certificate != nil {
		sum := sha1.Sum(k.Certificate.Raw)
		return strings.ToUpper(hex.EncodeToString(sum[:]))
	}
	if pub, ok := k.publicKey().(*rsa.PublicKey); ok {
		fp := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
		if len(fp) > 40 {
			fp = fp[:40]
		}
		return strings.ToUpper(fp)
	}
	return ""
}

// publicKey returns the verification key matching the private key. Symmetric
// keys verify with the secret itself.
func (k SigningKey) publicKey() crypto.PublicKey {
	switch priv := k.PrivateKey.(type) {
	case *rsa.PrivateKey:
		return &priv.PublicKey
	case *ecdsa.PrivateKey:
		return &priv.PublicKey
	case ed25519.PrivateKey:
		return priv.Public()
	case []byte:
		return priv
	default:
		if signer, ok := k.PrivateKey.(crypto.Signer); ok {
			return signer.Public()
		}
		return nil
	}
}

// verificationKey returns the key in the shape golang-jwt expects for the
// configured method.
func (k SigningKey) verificationKey() any {
	if strings.HasPrefix(k.Method.Alg(), "HS") {
		if secret, ok := k.PrivateKey.([]byte); ok {
			return secret
		}
	}
	return k.publicKey()
}
