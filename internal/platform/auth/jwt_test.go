package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	pair, err := m.GenerateTokenPair(userID, RolePassenger)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RolePassenger, claims.Role)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
}

func TestJWTManager_RejectsWrongType(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute, time.Hour)
	pair, err := m.GenerateTokenPair(uuid.New(), RoleAdmin)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	issuerMgr := NewJWTManager("one", time.Minute, time.Hour)
	verifier := NewJWTManager("two", time.Minute, time.Hour)

	pair, err := issuerMgr.GenerateTokenPair(uuid.New(), RolePassenger)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("s", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := m.GenerateTokenPair(uuid.New(), RolePassenger)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
}
