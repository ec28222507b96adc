package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters!!"

func TestIssueAndParseToken(t *testing.T) {
	t.Parallel()
	now := time.Now()

	signed, issued, err := IssueToken(testSecret, 42, now)
	require.NoError(t, err)
	require.NotEmpty(t, issued.JTI)

	claims, err := ParseToken(testSecret, signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.WithinDuration(t, now.Add(TokenTTL), claims.ExpiresAt, time.Second)
}

func TestParseToken_Rejects(t *testing.T) {
	t.Parallel()
	now := time.Now()

	sign := func(claims jwt.MapClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"iss": Issuer, "aud": Audience, "sub": "7",
			"exp": now.Add(time.Hour).Unix(), "jti": "abc",
		}
	}

	with := func(mutate func(jwt.MapClaims)) string {
		c := base()
		mutate(c)
		return sign(c, testSecret)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"Garbage", "not-a-token"},
		{"Wrong secret", sign(base(), "another-secret-that-is-long-enough")},
		{"Expired", with(func(c jwt.MapClaims) { c["exp"] = now.Add(-time.Hour).Unix() })},
		{"Missing exp", with(func(c jwt.MapClaims) { delete(c, "exp") })},
		{"Wrong issuer", with(func(c jwt.MapClaims) { c["iss"] = "other" })},
		{"Wrong audience", with(func(c jwt.MapClaims) { c["aud"] = "other" })},
		{"Non numeric subject", with(func(c jwt.MapClaims) { c["sub"] = "abc" })},
		{"Zero subject", with(func(c jwt.MapClaims) { c["sub"] = "0" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(testSecret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("Bearer"))
	assert.Empty(t, BearerToken(""))
}
