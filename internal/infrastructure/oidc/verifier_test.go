package oidc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/eventhub/domain"
)

const (
	testIssuer   = "https://issuer.example.com"
	testClientID = "eventhub-client"
)

func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &gooidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	idVerifier := gooidc.NewVerifier(testIssuer, keySet, &gooidc.Config{ClientID: testClientID})
	return New(idVerifier, nil), key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func baseClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":            testIssuer,
		"aud":            testClientID,
		"sub":            "provider-subject",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
		"email":          "ada@example.com",
		"email_verified": true,
		"name":           "Ada Lovelace",
	}
}

func TestVerifyReturnsIdentity(t *testing.T) {
	v, key := newTestVerifier(t)

	identity, err := v.Verify(context.Background(), sign(t, key, baseClaims()))
	require.NoError(t, err)
	assert.Equal(t, domain.ExternalIdentity{
		Email:         "ada@example.com",
		Name:          "Ada Lovelace",
		EmailVerified: true,
	}, identity)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	v, key := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	wrongAudience := baseClaims()
	wrongAudience["aud"] = "someone-else"

	expired := baseClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	cases := map[string]string{
		"garbage":        "not-a-token",
		"foreign key":    sign(t, other, baseClaims()),
		"wrong audience": sign(t, key, wrongAudience),
		"expired":        sign(t, key, expired),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), raw)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}
