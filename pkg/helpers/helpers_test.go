package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("p1secret")
	require.NoError(t, err)
	assert.NotEqual(t, "p1secret", hash)
	assert.True(t, CompareHashAndPassword(hash, "p1secret"))
	assert.False(t, CompareHashAndPassword(hash, "p1secreT"))
	assert.False(t, CompareHashAndPassword("not-a-hash", "p1secret"))
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "auth-service", time.Minute)
	tok, exp, err := m.GenerateAccessToken("a@x.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	sub, err := m.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sub)
}

func TestJWTExpiry(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewJWTManager("secret", "auth-service", 30*time.Minute).WithClock(func() time.Time { return start })
	tok, _, err := issuer.GenerateAccessToken("a@x.com")
	require.NoError(t, err)

	before := issuer.WithClock(func() time.Time { return start.Add(29 * time.Minute) })
	_, err = before.VerifyToken(tok)
	assert.NoError(t, err)

	after := issuer.WithClock(func() time.Time { return start.Add(31 * time.Minute) })
	_, err = after.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsForeignTokens(t *testing.T) {
	m := NewJWTManager("secret", "auth-service", time.Minute)

	other, _, err := NewJWTManager("other", "auth-service", time.Minute).GenerateAccessToken("a@x.com")
	require.NoError(t, err)
	_, err = m.VerifyToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// HS512 with the right secret is still refused
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "a@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.VerifyToken(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// no expiry
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "a@x.com"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.VerifyToken(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// no subject
	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.VerifyToken(noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
