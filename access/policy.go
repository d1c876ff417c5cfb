// access/policy.go
package access

import (
	"context"

	"github.com/jeevanhealth/shell/cache"
	"github.com/jeevanhealth/shell/model"
)

// Probe is an asynchronous capability check backed by a cache entry. The
// resolver reads the entry for Key when deciding; Check issues the fetch.
// A probe that errors counts as "capability absent", never as a resolver
// failure on its own.
type Probe struct {
	Name  string
	Key   cache.Key
	Check func(ctx context.Context) (bool, error)
}

// Policy is the declarative access rule for one dashboard. A caller is
// granted when their resolved role is in RequiredRoles, or when any of the
// capability probes reports true. Roles and probes are independently
// authoritative and both are re-verified on every gate entry.
type Policy struct {
	Name          string
	RequiredRoles []model.Role
	Probes        []Probe

	// AllowAnyRole admits every authenticated caller with a loaded profile,
	// whatever their role (the customer portal).
	AllowAnyRole bool

	// FallbackRoute is where unauthenticated callers are sent.
	FallbackRoute string
}

// AllowsRole reports whether the role alone satisfies the policy.
func (p Policy) AllowsRole(r model.Role) bool {
	if p.AllowAnyRole {
		return true
	}
	for _, required := range p.RequiredRoles {
		if r == required {
			return true
		}
	}
	return false
}
