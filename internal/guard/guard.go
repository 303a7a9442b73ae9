// Package guard decides, for every navigation, whether the current role
// may view the requested path and where to send it otherwise. It is a
// UX convenience only; the commerce API authorizes every request on its
// own.
package guard

import (
	"strings"

	"github.com/hobbyvault/storefront/internal/roles"
)

// Decide is a pure function of the requested path and the current role.
// It returns the redirect target and true when a redirect is required.
//
// An empty role means no stored role exists; navigation is then fully
// permissive and authentication is enforced elsewhere.
func Decide(path string, role roles.Role) (string, bool) {
	if role == "" {
		return "", false
	}

	if path == "/" || path == "" {
		return role.HomePath(), true
	}

	if inTerritory(path, roles.PublicPrefix) {
		return "", false
	}

	if !inTerritory(path, role.Territory()) {
		return role.HomePath(), true
	}

	return "", false
}

func inTerritory(path, territory string) bool {
	if path == territory {
		return true
	}
	return strings.HasPrefix(path, territory+"/")
}
