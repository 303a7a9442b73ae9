package roles

// Role is the effective role of a browser session. Exactly one role is
// active per session at a time.
type Role string

const (
	Guest    Role = "guest"
	Customer Role = "customer"
	Staff    Role = "staff"
	Manager  Role = "manager"
	Admin    Role = "admin"
)

// homePaths maps each role to its canonical landing screen.
var homePaths = map[Role]string{
	Guest:    "/guest/home",
	Customer: "/customer/home",
	Staff:    "/staff/dashboard",
	Manager:  "/manager/dashboard",
	Admin:    "/admin/dashboard",
}

// territories maps each role to the path prefix it is expected to
// operate within.
var territories = map[Role]string{
	Guest:    "/guest",
	Customer: "/customer",
	Staff:    "/staff",
	Manager:  "/manager",
	Admin:    "/admin",
}

// PublicPrefix is reachable by every role regardless of territory.
const PublicPrefix = "/guest"

func All() []Role {
	return []Role{Guest, Customer, Staff, Manager, Admin}
}

func IsValid(r Role) bool {
	for _, v := range All() {
		if v == r {
			return true
		}
	}
	return false
}

// HomePath returns the canonical home path for r. Unknown roles fall
// back to the guest home, but callers are expected to validate first.
func (r Role) HomePath() string {
	if p, ok := homePaths[r]; ok {
		return p
	}
	return homePaths[Guest]
}

// Territory returns the path prefix r is allowed to navigate within.
func (r Role) Territory() string {
	if t, ok := territories[r]; ok {
		return t
	}
	return territories[Guest]
}
