package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewTokenIssuer(t *testing.T) {
	_, err := NewTokenIssuer("short", "crmapi", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenIssuer(testSecret, "crmapi", 0)
	assert.Error(t, err)

	iss, err := NewTokenIssuer(testSecret, "crmapi", time.Hour)
	assert.NoError(t, err)
	assert.NotNil(t, iss)
}

func TestIssueAndParse(t *testing.T) {
	iss, err := NewTokenIssuer(testSecret, "crmapi", time.Hour)
	require.NoError(t, err)

	tok, exp, err := iss.Issue(Principal{UserID: "u1", TenantID: "t1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	p, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "t1", p.TenantID)
}

func TestParse_Rejects(t *testing.T) {
	iss, err := NewTokenIssuer(testSecret, "crmapi", time.Hour)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := iss.Parse("  ")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, _ := NewTokenIssuer(strings.Repeat("x", 32), "crmapi", time.Hour)
		tok, _, _ := other.Issue(Principal{UserID: "u1", TenantID: "t1"})
		_, err := iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, _ := NewTokenIssuer(testSecret, "someone-else", time.Hour)
		tok, _, _ := other.Issue(Principal{UserID: "u1", TenantID: "t1"})
		_, err := iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past, _ := NewTokenIssuer(testSecret, "crmapi", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, _, _ := past.Issue(Principal{UserID: "u1", TenantID: "t1"})
		_, err := iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing tenant", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    "crmapi",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = iss.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none alg", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "crmapi", Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			TenantID:         "t1",
		})
		signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = iss.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestCodes(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, CodeLength)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}

	hash, err := HashCode(code)
	require.NoError(t, err)
	assert.NotEqual(t, code, hash)
	assert.True(t, CompareCode(hash, code))
	assert.False(t, CompareCode(hash, "000000x"))
}
