package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("secret", 4*time.Hour)

	token, err := svc.Issue(Identity{ID: 7, Username: "admin", Admin: true})
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.Role)
	assert.Equal(t, &Identity{ID: 7, Username: "admin", Admin: true}, claims.Identity())

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(4*time.Hour), exp.Time, time.Minute)
}

func TestVerifyRejects(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	valid, err := svc.Issue(Identity{ID: 1, Username: "u"})
	require.NoError(t, err)

	expired, err := NewTokenService("secret", -time.Hour).Issue(Identity{ID: 1, Username: "u", Admin: true})
	require.NoError(t, err)

	foreign, err := NewTokenService("other-secret", time.Hour).Issue(Identity{ID: 1, Username: "u", Admin: true})
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Role: true}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"garbage", "not-a-token"},
		{"truncated", valid[:len(valid)-4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestVerifyMissingToken(t *testing.T) {
	_, err := NewTokenService("secret", time.Hour).Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestVerifyHonoursClock(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, err := svc.Issue(Identity{ID: 1, Username: "u"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
