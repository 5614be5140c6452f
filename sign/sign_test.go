package sign

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legit-games/oidc-core/models"
)

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func selfSignedCert(t *testing.T, key *rsa.PrivateKey) *x509.Certificate {
	t.Helper()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "oidc-core test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func TestKID_BareRSAModulusFingerprint(t *testing.T) {
	key := rsaKey(t)
	k := SigningKey{PrivateKey: key, Method: jwt.SigningMethodRS256}

	want := base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes())
	want = strings.ToUpper(want[:40])
	assert.Equal(t, want, k.KID())
}

func TestKID_ExplicitOverride(t *testing.T) {
	k := SigningKey{PrivateKey: rsaKey(t), Method: jwt.SigningMethodRS256, KeyID: "my-kid"}
	assert.Equal(t, "my-kid", k.KID())
}

func TestKID_CertificateThumbprint(t *testing.T) {
	key := rsaKey(t)
	cert := selfSignedCert(t, key)
	k := SigningKey{PrivateKey: key, Method: jwt.SigningMethodRS256, Certificate: cert}

	sum := sha1.Sum(cert.Raw)
	assert.Equal(t, strings.ToUpper(hex.EncodeToString(sum[:])), k.KID())
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), k.Thumbprint())
}

func TestThumbprint_EmptyWithoutCertificate(t *testing.T) {
	k := SigningKey{PrivateKey: rsaKey(t), Method: jwt.SigningMethodRS256}
	assert.Empty(t, k.Thumbprint())
}

func TestSign_HeaderCarriesKeyIdentifiers(t *testing.T) {
	key := rsaKey(t)
	cert := selfSignedCert(t, key)
	signer, err := New(SigningKey{PrivateKey: key, Method: jwt.SigningMethodRS256, Certificate: cert})
	require.NoError(t, err)

	signed, err := signer.Sign(jwt.MapClaims{"sub": "alice"})
	require.NoError(t, err)

	token, _, err := jwt.NewParser().ParseUnverified(signed, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "RS256", token.Header["alg"])
	assert.Equal(t, "JWT", token.Header["typ"])
	assert.Equal(t, signer.Active().KID(), token.Header["kid"])
	assert.Equal(t, signer.Active().Thumbprint(), token.Header["x5t"])
}

func TestValidate_RoundTrip(t *testing.T) {
	key := rsaKey(t)
	signer, err := New(SigningKey{PrivateKey: key, Method: jwt.SigningMethodRS256})
	require.NoError(t, err)

	nbf := time.Now().Add(-time.Minute).Truncate(time.Second)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := signer.Sign(jwt.MapClaims{
		"iss": "https://issuer.example",
		"sub": "alice",
		"aud": []string{"rp-1", "rp-2"},
		"nbf": nbf.Unix(),
		"exp": exp.Unix(),
	})
	require.NoError(t, err)

	v, err := signer.Validate(signed, "https://issuer.example")
	require.NoError(t, err)
	assert.Equal(t, "alice", v.Identity.Subject())
	assert.Equal(t, []string{"rp-1", "rp-2"}, v.Audiences)
	assert.True(t, v.ValidFrom.Equal(nbf), "ValidFrom = %v, want %v", v.ValidFrom, nbf)
	assert.True(t, v.ValidTo.Equal(exp), "ValidTo = %v, want %v", v.ValidTo, exp)
}

func TestValidate_SkipsLifetimeChecks(t *testing.T) {
	signer, err := New(SigningKey{PrivateKey: rsaKey(t), Method: jwt.SigningMethodRS256})
	require.NoError(t, err)

	signed, err := signer.Sign(jwt.MapClaims{
		"iss": "https://issuer.example",
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	// Expired tokens still validate; lifetime enforcement belongs to the
	// endpoint layer.
	v, err := signer.Validate(signed, "https://issuer.example")
	require.NoError(t, err)
	assert.Equal(t, "alice", v.Identity.Subject())
}

func TestValidate_IssuerMismatch(t *testing.T) {
	signer, err := New(SigningKey{PrivateKey: rsaKey(t), Method: jwt.SigningMethodRS256})
	require.NoError(t, err)
	signed, err := signer.Sign(jwt.MapClaims{"iss": "https://evil.example", "sub": "alice"})
	require.NoError(t, err)

	_, err = signer.Validate(signed, "https://issuer.example")
	assert.Error(t, err)
}

func TestValidate_WrongKey(t *testing.T) {
	signer, err := New(SigningKey{PrivateKey: rsaKey(t), Method: jwt.SigningMethodRS256})
	require.NoError(t, err)
	other, err := New(SigningKey{PrivateKey: rsaKey(t), Method: jwt.SigningMethodRS256})
	require.NoError(t, err)

	signed, err := signer.Sign(jwt.MapClaims{"sub": "alice"})
	require.NoError(t, err)
	_, err = other.Validate(signed, "")
	assert.Error(t, err)
}

func TestValidate_IdentityExcludesLifetimes(t *testing.T) {
	signer, err := New(SigningKey{PrivateKey: rsaKey(t), Method: jwt.SigningMethodRS256})
	require.NoError(t, err)
	signed, err := signer.Sign(jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
		"nbf": time.Now().Unix(),
	})
	require.NoError(t, err)

	v, err := signer.Validate(signed, "")
	require.NoError(t, err)
	assert.False(t, v.Identity.Has(models.ClaimExpirationTime))
	assert.False(t, v.Identity.Has(models.ClaimNotBefore))
}

func TestTokenHash_LeftHalfSHA256(t *testing.T) {
	sum := sha256.Sum256([]byte("some-code"))
	want := base64.RawURLEncoding.EncodeToString(sum[:16])

	got, err := TokenHash("some-code", jwt.SigningMethodRS256)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Same hash for every alg with the 256 suffix.
	for _, method := range []jwt.SigningMethod{jwt.SigningMethodES256, jwt.SigningMethodHS256, jwt.SigningMethodPS256} {
		got, err := TokenHash("some-code", method)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestHashForAlg(t *testing.T) {
	for alg, wantBits := range map[string]int{
		"RS256": 256, "ES384": 384, "PS512": 512, "HS384": 384,
	} {
		h, err := HashForAlg(alg)
		require.NoError(t, err)
		assert.Equal(t, wantBits/8, h.Size(), "alg %s", alg)
	}
	_, err := HashForAlg("none")
	assert.Error(t, err)
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
	_, err = New(SigningKey{})
	assert.Error(t, err)
}
