package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupToken_RoundTrip(t *testing.T) {
	issuer := NewLookupTokenIssuer("secret", time.Minute)

	token, err := issuer.GenerateToken("recAAAAAAAAAAAAAA1")
	require.NoError(t, err)

	id, err := issuer.ExtractRecordID(token)
	require.NoError(t, err)
	assert.Equal(t, "recAAAAAAAAAAAAAA1", id)
}

func TestLookupToken_Rejects(t *testing.T) {
	issuer := NewLookupTokenIssuer("secret", time.Minute)
	valid, err := issuer.GenerateToken("recAAAAAAAAAAAAAA1")
	require.NoError(t, err)

	expired, err := NewLookupTokenIssuer("secret", -time.Minute).GenerateToken("recAAAAAAAAAAAAAA1")
	require.NoError(t, err)

	otherKey, err := NewLookupTokenIssuer("other", time.Minute).GenerateToken("recAAAAAAAAAAAAAA1")
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.StandardClaims{
		Subject:   "recAAAAAAAAAAAAAA1",
		ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":    expired,
		"other key":  otherKey,
		"no subject": noSubject,
		"alg none":   unsigned,
		"tampered":   valid + "x",
		"garbage":    "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.ExtractRecordID(token)
			assert.Error(t, err)
		})
	}
}
