// middleware/access_gate.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jeevanhealth/shell/access"
	shell_errors "github.com/jeevanhealth/shell/errors"
	logger "github.com/jeevanhealth/shell/logging"
	"github.com/jeevanhealth/shell/session"
)

// RequireAccess guards a dashboard route group with the given policy. It
// resolves the caller's verdict (waiting for the profile and every
// capability probe) and maps the gate decision onto HTTP:
//
//   - unauthenticated and settled: redirect to the policy's fallback route
//   - unauthenticated with a login still in progress: 503, not a redirect
//     that could race the login
//   - denied: 403 with an explicit access-restricted body naming the
//     caller's actual role, never a silent blank response
//   - still resolving (gateway unavailable): 503
//   - granted: pass through
func RequireAccess(resolver *session.Resolver, policy access.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		verdict := resolver.Resolve(c.Request.Context(), policy)

		// A fresh gate per request: each gate entry re-verifies every grant
		// and carries its own settle-once redirect state.
		gate := access.NewGate(policy)
		decision := gate.Decide(verdict, resolver.LoginStatus())

		switch decision.Kind {
		case access.RenderContent:
			c.Next()
		case access.Redirect:
			route := decision.Route
			if route == "" {
				route = policy.FallbackRoute
			}
			c.Redirect(http.StatusFound, route)
			c.Abort()
		case access.RenderNothing:
			// A login is mid-flight; hold the caller instead of bouncing
			// them to the fallback route.
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "settling",
			})
			c.Abort()
		case access.RenderLoading:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "resolving",
			})
			c.Abort()
		case access.RenderRestricted:
			logger.Warn("Dashboard access denied",
				zap.String("dashboard", policy.Name),
				zap.String("currentRole", string(decision.CurrentRole)))
			_ = c.Error(shell_errors.ErrAccessDenied)
			c.JSON(http.StatusForbidden, gin.H{
				"error":        "Access Restricted",
				"message":      "You do not have permission to access this dashboard.",
				"current_role": string(decision.CurrentRole),
			})
			c.Abort()
		default:
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}
