// session/resolver.go
package session

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeevanhealth/shell/access"
	"github.com/jeevanhealth/shell/cache"
	shell_errors "github.com/jeevanhealth/shell/errors"
	"github.com/jeevanhealth/shell/identity"
	logger "github.com/jeevanhealth/shell/logging"
	"github.com/jeevanhealth/shell/model"
	"github.com/jeevanhealth/shell/queries"
	"github.com/jeevanhealth/shell/util"
)

// Session is the caller's current authentication state. Profile stays nil
// until fetched once; a nil profile with a present identity means the user
// still needs onboarding, which is distinct from "not yet loaded".
type Session struct {
	Identity *identity.Handle
	Profile  *model.Profile
	Role     model.Role
}

func (s Session) NeedsOnboarding() bool {
	return s.Identity != nil && s.Profile == nil
}

// Resolver derives access verdicts from the identity handle, the cached
// profile, and per-policy capability probes. It only reads cache entries;
// the cache owns their lifetimes.
type Resolver struct {
	idp    identity.Provider
	client *queries.Client
	store  *cache.Store
	bus    *util.EventBus
}

// NewResolver builds a resolver over the identity provider and query client.
// bus may be nil; when present, settled verdicts are announced on it.
func NewResolver(idp identity.Provider, client *queries.Client, bus *util.EventBus) *Resolver {
	return &Resolver{idp: idp, client: client, store: client.Cache(), bus: bus}
}

// LoginStatus exposes the raw provider status for gate decisions.
func (r *Resolver) LoginStatus() identity.Status {
	return r.idp.Status()
}

// Snapshot derives the verdict for policy from current cache state without
// issuing any fetch. The decision rule is wait-for-all: as long as any
// contributing entry (profile or probe) is not terminal, the verdict stays
// Resolving. Deciding early on one settled sub-query would produce false
// denials while a slower probe is still in flight.
func (r *Resolver) Snapshot(policy access.Policy) access.Verdict {
	if r.idp.Identity() == nil {
		return access.Verdict{State: access.StateUnauthenticated}
	}

	profileEntry := r.store.Get(queries.KeyProfile())
	if !profileEntry.Terminal() {
		return access.Verdict{State: access.StateResolving}
	}
	for _, probe := range policy.Probes {
		if !r.store.Get(probe.Key).Terminal() {
			return access.Verdict{State: access.StateResolving}
		}
	}

	// Profile fetch failure fails closed, whatever the probes said.
	if profileEntry.Status == cache.StatusError {
		logger.Warn("Profile fetch failed, denying access",
			zap.String("policy", policy.Name),
			zap.Error(profileEntry.Err))
		return access.Verdict{State: access.StateDenied, Role: model.RoleUnresolved}
	}

	profile, _ := profileEntry.Data.(*model.Profile)
	if profile == nil {
		// Authenticated but not onboarded: no role to grant against.
		return access.Verdict{State: access.StateDenied, Role: model.RoleUnresolved}
	}

	if policy.AllowsRole(profile.Role) {
		return access.Verdict{State: access.StateGranted, Role: profile.Role}
	}
	for _, probe := range policy.Probes {
		e := r.store.Get(probe.Key)
		// A probe that errored counts as capability absent, not as a
		// resolver failure.
		if e.Status == cache.StatusSuccess {
			if granted, _ := e.Data.(bool); granted {
				return access.Verdict{State: access.StateGranted, Role: profile.Role}
			}
		}
	}
	return access.Verdict{State: access.StateDenied, Role: profile.Role}
}

// Resolve fetches the profile and every probe the policy depends on,
// concurrently, waits for all of them to settle, and then derives the
// verdict. Cross-key completion order is unspecified, which is exactly why
// the decision waits for the full set.
func (r *Resolver) Resolve(ctx context.Context, policy access.Policy) access.Verdict {
	if r.idp.Identity() == nil {
		return access.Verdict{State: access.StateUnauthenticated}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Fetch outcomes land on the cache entries; Snapshot reads them
		// there, so errors are not propagated through the group.
		_, _ = r.client.CallerProfile(gctx)
		return nil
	})
	for _, probe := range policy.Probes {
		check := probe.Check
		g.Go(func() error {
			_, _ = check(gctx)
			return nil
		})
	}
	_ = g.Wait()

	v := r.Snapshot(policy)
	if r.bus != nil && v.Settled() {
		r.bus.Publish(ctx, util.EventSessionResolved, map[string]string{
			"policy": policy.Name,
			"state":  string(v.State),
		})
	}
	return v
}

// CurrentSession fetches the profile (if needed) and assembles the session.
func (r *Resolver) CurrentSession(ctx context.Context) (Session, error) {
	handle := r.idp.Identity()
	if handle == nil {
		return Session{Role: model.RoleUnresolved}, nil
	}

	profile, err := r.client.CallerProfile(ctx)
	if err != nil {
		return Session{Identity: handle, Role: model.RoleUnresolved}, err
	}
	s := Session{Identity: handle, Profile: profile, Role: model.RoleUnresolved}
	if profile != nil {
		s.Role = profile.Role
	}
	return s, nil
}

// Logout logs out of the identity provider and clears the cache so no data
// leaks into the next session. The cart is deliberately left alone: it must
// survive anonymous browsing and re-login.
func (r *Resolver) Logout(ctx context.Context) error {
	if r.idp.Identity() == nil {
		return shell_errors.ErrNotAuthenticated
	}
	if err := r.idp.Logout(ctx); err != nil {
		return err
	}
	r.store.Clear()
	logger.Info("Session ended, cache cleared")
	return nil
}
