package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService(testSecret, 8*time.Hour)

	signed, err := svc.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userID, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	// Negative TTL issues a token that expired in the past.
	svc := NewService(testSecret, -time.Minute)

	signed, err := svc.Issue(42)
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Verify(bad)
		assert.ErrorIs(t, err, core.ErrUnauthenticated, "input %q", bad)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	other := NewService("another-secret-another-secret-00", time.Hour)
	signed, err := other.Issue(42)
	require.NoError(t, err)

	svc := NewService(testSecret, time.Hour)
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestVerifyMissingUserClaim(t *testing.T) {
	// Well-signed, unexpired token with no user_id claim.
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	svc := NewService(testSecret, time.Hour)
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	svc := NewService(testSecret, time.Hour)
	_, err = svc.Verify(unsigned)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}
