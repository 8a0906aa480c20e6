package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleCitizen, NormalizeRole("citizen"))
	assert.Equal(t, RoleCitizen, NormalizeRole("user"))
	assert.Equal(t, RoleCitizen, NormalizeRole(""))
	assert.Equal(t, RoleCitizen, NormalizeRole("mayor"))
	assert.Equal(t, RoleOfficial, NormalizeRole("official"))
	assert.Equal(t, RoleAdmin, NormalizeRole("admin"))
}

func TestViewerCapabilities(t *testing.T) {
	anonymous := Viewer{}
	citizen := Viewer{UserID: "u1", Role: RoleCitizen}
	official := Viewer{UserID: "u2", Role: RoleOfficial}
	admin := Viewer{UserID: "u3", Role: RoleAdmin}

	assert.False(t, anonymous.CanViewSummaries())
	assert.False(t, citizen.CanViewSummaries())
	assert.True(t, official.CanViewSummaries())
	assert.True(t, admin.CanViewSummaries())

	// An unauthenticated viewer never gets privileges from a stale role.
	assert.False(t, Viewer{Role: RoleOfficial}.CanViewSummaries())

	assert.True(t, citizen.CanDeleteComment("u1"))
	assert.False(t, citizen.CanDeleteComment("u9"))
	assert.True(t, official.CanDeleteComment("u9"))
	assert.False(t, anonymous.CanDeleteComment(""))
}

func TestPasswordHashing(t *testing.T) {
	u := User{Password: "secret123"}
	require.NoError(t, u.HashPassword())
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.ComparePassword("secret123"))
	assert.False(t, u.ComparePassword("wrong"))
}

func TestAuthorLabel(t *testing.T) {
	name := "Asha"
	empty := ""
	assert.Equal(t, "Asha", Author{DisplayName: &name, Email: "a@x.io"}.Label())
	assert.Equal(t, "a@x.io", Author{DisplayName: &empty, Email: "a@x.io"}.Label())
	assert.Equal(t, "a@x.io", Author{Email: "a@x.io"}.Label())
}
