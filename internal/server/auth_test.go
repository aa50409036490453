package server

import (
	"testing"
	"time"

	"intakedesk/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return &Service{
		config: &types.Config{
			JWTSecret:        "test-secret",
			SessionMaxAgeSec: 3600,
		},
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	s := testService()

	user := &types.User{
		ID:                 "u_123",
		Email:              "staff@exemple.fr",
		Role:               types.RoleStaff,
		MustChangePassword: true,
	}

	token, err := s.issueSessionToken(user)
	require.NoError(t, err)

	claims, err := s.parseSessionToken(token)
	require.NoError(t, err)

	assert.Equal(t, "u_123", claims.UserID)
	assert.Equal(t, "staff@exemple.fr", claims.Email)
	assert.Equal(t, types.RoleStaff, claims.Role)
	assert.True(t, claims.MustChangePassword)

	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	s := testService()

	token, err := s.issueSessionToken(&types.User{ID: "u_123", Role: types.RoleAdmin})
	require.NoError(t, err)

	other := testService()
	other.config.JWTSecret = "different-secret"

	_, err = other.parseSessionToken(token)
	assert.Error(t, err)
}

func TestParseSessionTokenRejectsGarbage(t *testing.T) {
	s := testService()

	_, err := s.parseSessionToken("not-a-token")
	assert.Error(t, err)
}
