// pkg/resolver/identity.go

package resolver

import "github.com/CodeMonkeyCybersecurity/steward/pkg/platform"

// Unmanaged is the sentinel init style for platforms or install methods
// where steward does not own the service process.
const Unmanaged = platform.InitUnmanaged

// Identity is the ownership and supervision context for files and the
// service process.
type Identity struct {
	User      string
	Group     string
	Owner     string // config file owner, defaults to User
	InitStyle platform.InitStyle
	Manage    bool // false: leave users, files ownership, and init alone
}

// SelectIdentityContext decides the identity fields. A container-based
// install suppresses identity management entirely, whatever else was
// supplied: the container runtime owns users and supervision.
func SelectIdentityContext(installMethod, user, group, configOwner string, initStyle platform.InitStyle) Identity {
	if installMethod == "docker" {
		return Identity{InitStyle: Unmanaged}
	}

	owner := configOwner
	if owner == "" {
		owner = user
	}

	return Identity{
		User:      user,
		Group:     group,
		Owner:     owner,
		InitStyle: initStyle,
		Manage:    true,
	}
}
