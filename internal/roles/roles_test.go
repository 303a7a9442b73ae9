package roles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	for _, r := range All() {
		require.True(t, IsValid(r))
	}
	require.False(t, IsValid("superuser"))
	require.False(t, IsValid(""))
}

func TestEveryRoleHasHomeInsideTerritory(t *testing.T) {
	for _, r := range All() {
		home := r.HomePath()
		territory := r.Territory()
		require.NotEmpty(t, home)
		require.Contains(t, home, territory)
	}
}
