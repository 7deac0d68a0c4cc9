package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a bearer token can fail verification:
// malformed, wrong algorithm, bad signature, missing or passed expiry.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and verifies HS256 access tokens.
type JWTManager struct {
	AccessSecret []byte
	AccessTTL    time.Duration
	Issuer       string

	// now is swapped in tests to move the clock past expiry.
	now func() time.Time
}

func NewJWTManager(accessSecret, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret: []byte(accessSecret),
		AccessTTL:    accessTTL,
		Issuer:       issuer,
		now:          time.Now,
	}
}

// WithClock returns a copy of the manager reading time from fn.
func (m *JWTManager) WithClock(fn func() time.Time) *JWTManager {
	cp := *m
	cp.now = fn
	return &cp
}

func (m *JWTManager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

type Claims struct {
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a token whose subject is the user's email.
func (m *JWTManager) GenerateAccessToken(subject string) (string, time.Time, error) {
	now := m.clock()
	exp := now.Add(m.AccessTTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.Issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.AccessSecret)
	return s, exp, err
}

// VerifyToken returns the token subject or ErrInvalidToken.
func (m *JWTManager) VerifyToken(tokenStr string) (string, error) {
	claims, err := m.parseToken(tokenStr)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (m *JWTManager) parseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.AccessSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
