package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birthdayclub/internal/domain"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTVerifier_Verify(t *testing.T) {
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   "user-123",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	verifier := NewJWTVerifier(secret)

	t.Run("valid token", func(t *testing.T) {
		userID, err := verifier.Verify(sign(t, jwt.SigningMethodHS256, []byte(secret), valid))
		require.NoError(t, err)
		assert.Equal(t, "user-123", userID)
	})

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{name: "garbage", token: func(t *testing.T) string { return "not-a-jwt" }},
		{name: "wrong secret", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte("other"), valid)
		}},
		{name: "expired", token: func(t *testing.T) string {
			c := valid
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
			return sign(t, jwt.SigningMethodHS256, []byte(secret), c)
		}},
		{name: "no expiry", token: func(t *testing.T) string {
			c := valid
			c.ExpiresAt = nil
			return sign(t, jwt.SigningMethodHS256, []byte(secret), c)
		}},
		{name: "no subject", token: func(t *testing.T) string {
			c := valid
			c.Subject = ""
			return sign(t, jwt.SigningMethodHS256, []byte(secret), c)
		}},
		{name: "other algorithm", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS512, []byte(secret), valid)
		}},
		{name: "unsigned", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token(t))
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}
