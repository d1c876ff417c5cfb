// access/verdict.go
package access

import "github.com/jeevanhealth/shell/model"

// State is the resolver's position in the authorization state machine.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateResolving       State = "resolving"
	StateGranted         State = "granted"
	StateDenied          State = "denied"
)

// Verdict is the resolver's answer for one policy. Denied carries the
// caller's actual resolved role so a restricted-access panel can show it;
// the role is RoleUnresolved when the profile itself never loaded.
type Verdict struct {
	State State
	Role  model.Role
}

// Settled reports whether the verdict is terminal.
func (v Verdict) Settled() bool {
	return v.State == StateGranted || v.State == StateDenied
}
