package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseToken(t *testing.T) {
	tok, err := SignToken("secret", "mario", []string{RoleCandidate}, time.Hour)
	require.NoError(t, err)

	ident, err := ParseToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "mario", ident.Username)
	assert.Equal(t, []string{RoleCandidate}, ident.Roles)
}

func TestParseTokenWrongSecret(t *testing.T) {
	tok, err := SignToken("secret", "mario", []string{RoleCandidate}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", tok)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	tok, err := SignToken("secret", "mario", []string{RoleCandidate}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", tok)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("secret", "")
	assert.Error(t, err)
	_, err = ParseToken("secret", "not.a.jwt")
	assert.Error(t, err)
}

func TestIdentityRoles(t *testing.T) {
	ident := Identity{Username: "mario", Roles: []string{"candidate"}}
	assert.True(t, ident.HasRole(RoleCandidate)) // case-insensitive
	assert.False(t, ident.HasRole(RoleCompany))
	assert.False(t, ident.CanAccessAll())

	admin := Identity{Username: "root", Roles: []string{RoleAdmin}}
	assert.True(t, admin.CanAccessAll())

	dev := Identity{Username: "d", Roles: []string{RoleDev}}
	assert.True(t, dev.CanAccessAll())
}
