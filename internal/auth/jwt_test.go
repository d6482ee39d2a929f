package auth

import (
	"convenios-dashboard/internal/convenio"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	token, err := s.Generate("sid-1", "Ana", convenio.RoleEngineer)
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, convenio.RoleEngineer, claims.Role)
}

func TestSigner_RejectsForeignSecret(t *testing.T) {
	token, err := NewSigner("one", time.Hour).Generate("sid", "Ana", convenio.RoleManager)
	require.NoError(t, err)

	_, err = NewSigner("two", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestSigner_RejectsExpired(t *testing.T) {
	s := NewSigner("secret", -time.Minute)
	token, err := s.Generate("sid", "Ana", convenio.RoleManager)
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.Error(t, err)
}

func TestSigner_RejectsGarbage(t *testing.T) {
	_, err := NewSigner("secret", time.Hour).Verify("not-a-token")
	assert.Error(t, err)
}
