// access/gate.go
package access

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jeevanhealth/shell/identity"
	logger "github.com/jeevanhealth/shell/logging"
	"github.com/jeevanhealth/shell/model"
)

// DecisionKind is what the dashboard shell should do for the current verdict.
type DecisionKind string

const (
	// RenderNothing: keep the screen blank while an unauthenticated state is
	// still settling (a login may be in progress).
	RenderNothing DecisionKind = "render-nothing"
	// Redirect: send the caller to the policy's fallback route. Issued at
	// most once per gate arming.
	Redirect DecisionKind = "redirect"
	// RenderLoading: show the verification placeholder. Never protected
	// content, never a redirect.
	RenderLoading DecisionKind = "render-loading"
	// RenderContent: the caller is granted; render the dashboard.
	RenderContent DecisionKind = "render-content"
	// RenderRestricted: the caller is authenticated but denied; show the
	// access-restricted panel with their actual role.
	RenderRestricted DecisionKind = "render-restricted"
)

type Decision struct {
	Kind        DecisionKind
	Route       string
	CurrentRole model.Role
}

// Gate guards one dashboard root. It turns a verdict plus the raw login
// status into a render decision, and owns the redirect side effect: the
// redirect fires from a single settle point, not on every re-evaluation,
// so verdict churn cannot cause redirect loops.
type Gate struct {
	policy Policy

	mu         sync.Mutex
	redirected bool
}

func NewGate(policy Policy) *Gate {
	return &Gate{policy: policy}
}

func (g *Gate) Policy() Policy {
	return g.policy
}

// Reset re-arms the redirect. Call on each fresh entry into the dashboard.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.redirected = false
	g.mu.Unlock()
}

// Decide maps the verdict to a render decision.
func (g *Gate) Decide(v Verdict, login identity.Status) Decision {
	switch v.State {
	case StateUnauthenticated:
		if login == identity.StatusLoggingIn {
			// Not settled yet; a redirect now could race the login.
			return Decision{Kind: RenderNothing}
		}
		return g.redirectOnce()
	case StateResolving:
		if login != identity.StatusLoggedIn {
			return Decision{Kind: RenderNothing}
		}
		return Decision{Kind: RenderLoading}
	case StateGranted:
		return Decision{Kind: RenderContent, CurrentRole: v.Role}
	case StateDenied:
		logger.Info("Access restricted",
			zap.String("dashboard", g.policy.Name),
			zap.String("currentRole", string(v.Role)))
		return Decision{Kind: RenderRestricted, CurrentRole: v.Role}
	default:
		return Decision{Kind: RenderNothing}
	}
}

func (g *Gate) redirectOnce() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.redirected {
		return Decision{Kind: RenderNothing}
	}
	g.redirected = true
	return Decision{Kind: Redirect, Route: g.policy.FallbackRoute}
}
