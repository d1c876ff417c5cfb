// session/resolver_test.go
package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanhealth/shell/access"
	"github.com/jeevanhealth/shell/cache"
	"github.com/jeevanhealth/shell/cart"
	shell_errors "github.com/jeevanhealth/shell/errors"
	"github.com/jeevanhealth/shell/identity"
	"github.com/jeevanhealth/shell/model"
	"github.com/jeevanhealth/shell/queries"
	"github.com/jeevanhealth/shell/session"
	"github.com/jeevanhealth/shell/test/mock"
	"github.com/jeevanhealth/shell/util"
)

func loggedInProvider(t *testing.T) *identity.Memory {
	t.Helper()
	idp := identity.NewMemory("principal-1")
	require.NoError(t, idp.Login(context.Background()))
	return idp
}

func profileHandler(role model.Role) func(args any) (any, error) {
	return func(args any) (any, error) {
		return &model.Profile{Principal: "principal-1", Name: "Asha", Role: role}, nil
	}
}

func TestUnauthenticatedVerdict(t *testing.T) {
	idp := identity.NewMemory("principal-1") // never logs in
	gw := mock.NewScriptedGateway()
	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	v := resolver.Resolve(context.Background(), client.DoctorDashboardPolicy())

	assert.Equal(t, access.StateUnauthenticated, v.State)
}

func TestGrantedByExactRole(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RoleDoctor))
	gw.Handle("hasDoctorRole", func(args any) (any, error) { return true, nil })
	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	v := resolver.Resolve(context.Background(), client.DoctorDashboardPolicy())

	assert.Equal(t, access.StateGranted, v.State)
	assert.Equal(t, model.RoleDoctor, v.Role)
}

func TestPatientDeniedAtDoctorDashboard(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RolePatient))
	gw.Handle("hasDoctorRole", func(args any) (any, error) { return false, nil })
	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	v := resolver.Resolve(context.Background(), client.DoctorDashboardPolicy())

	assert.Equal(t, access.StateDenied, v.State)
	assert.Equal(t, model.RolePatient, v.Role, "denial must expose the caller's actual role")
}

func TestCapabilityGrantsWithoutRole(t *testing.T) {
	// Lab executive capability admits to the admin dashboard even though the
	// profile role is not admin.
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RoleLabExecutive))
	gw.Handle("hasLabExecutiveCapabilities", func(args any) (any, error) { return true, nil })
	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	v := resolver.Resolve(context.Background(), client.AdminDashboardPolicy())

	assert.Equal(t, access.StateGranted, v.State)
	assert.Equal(t, model.RoleLabExecutive, v.Role)
}

func TestFailClosedWhenProfileFetchErrors(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", func(args any) (any, error) {
		return nil, errors.New("profile service down")
	})
	// The capability probe succeeds with a positive answer; it must not
	// rescue a failed profile fetch.
	gw.Handle("hasLabExecutiveCapabilities", func(args any) (any, error) { return true, nil })
	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	v := resolver.Resolve(context.Background(), client.AdminDashboardPolicy())

	assert.Equal(t, access.StateDenied, v.State)
	assert.Equal(t, model.RoleUnresolved, v.Role)
}

func TestProbeErrorIsCapabilityAbsent(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RoleAdmin))
	gw.Handle("hasLabExecutiveCapabilities", func(args any) (any, error) {
		return nil, errors.New("capability service down")
	})
	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	// Admin role still grants; the failed probe is just a missing optional
	// signal, not a resolver failure.
	v := resolver.Resolve(context.Background(), client.AdminDashboardPolicy())
	assert.Equal(t, access.StateGranted, v.State)
}

func TestProbeErrorDeniesWhenRoleDoesNotMatch(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RolePatient))
	gw.Handle("hasLabExecutiveCapabilities", func(args any) (any, error) {
		return nil, errors.New("capability service down")
	})
	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	v := resolver.Resolve(context.Background(), client.AdminDashboardPolicy())

	assert.Equal(t, access.StateDenied, v.State)
	assert.Equal(t, model.RolePatient, v.Role)
}

func TestSnapshotStaysResolvingWhileProbeInFlight(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RolePatient))
	store := cache.New(nil, 0)
	client := queries.New(gw, store)
	resolver := session.NewResolver(idp, client, nil)
	policy := client.AdminDashboardPolicy()

	// Profile settles first.
	_, err := client.CallerProfile(context.Background())
	require.NoError(t, err)

	// The capability probe hangs in flight.
	started := make(chan struct{})
	release := make(chan struct{})
	gw.Handle("hasLabExecutiveCapabilities", func(args any) (any, error) {
		close(started)
		<-release
		return false, nil
	})
	probeDone := make(chan struct{})
	go func() {
		defer close(probeDone)
		_, _ = client.HasLabExecutiveCapabilities(context.Background())
	}()
	<-started

	// Profile succeeded but the probe is still loading: deciding now would
	// be a premature denial.
	v := resolver.Snapshot(policy)
	assert.Equal(t, access.StateResolving, v.State)

	close(release)
	<-probeDone

	v = resolver.Snapshot(policy)
	assert.Equal(t, access.StateDenied, v.State)
}

func TestNeedsOnboardingDistinctFromNotLoaded(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	// Identity present but no profile saved yet.
	gw.Handle("getCallerUserProfile", func(args any) (any, error) { return nil, nil })
	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	s, err := resolver.CurrentSession(context.Background())
	require.NoError(t, err)

	assert.True(t, s.NeedsOnboarding())
	assert.Equal(t, model.RoleUnresolved, s.Role)

	v := resolver.Resolve(context.Background(), client.CustomerPortalPolicy())
	assert.Equal(t, access.StateDenied, v.State, "no profile means no role to grant against")
}

func TestLogoutClearsCache(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RoleAdmin))
	store := cache.New(nil, 0)
	client := queries.New(gw, store)
	resolver := session.NewResolver(idp, client, nil)

	_, err := client.CallerProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, cache.StatusSuccess, store.Get(queries.KeyProfile()).Status)

	require.NoError(t, resolver.Logout(context.Background()))

	assert.Nil(t, idp.Identity())
	assert.Equal(t, cache.StatusIdle, store.Get(queries.KeyProfile()).Status, "logout must drop all cached entries")
}

func TestLogoutLeavesCartIntact(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RolePatient))
	store := cache.New(nil, 0)
	client := queries.New(gw, store)
	resolver := session.NewResolver(idp, client, nil)

	cartStore, err := cart.NewStore(afero.NewMemMapFs(), "cartdata", nil)
	require.NoError(t, err)
	_, err = cartStore.Add(model.CartItem{ID: "t1", Name: "Thyroid Profile", Price: 350, ListPrice: 500})
	require.NoError(t, err)

	_, err = client.CallerProfile(context.Background())
	require.NoError(t, err)

	require.NoError(t, resolver.Logout(context.Background()))

	assert.Equal(t, cache.StatusIdle, store.Get(queries.KeyProfile()).Status)
	assert.Len(t, cartStore.Items(), 1, "the cart is not session data; logout must leave it alone")
}

func TestLogoutWithoutSession(t *testing.T) {
	idp := identity.NewMemory("principal-1") // never logs in
	client := queries.New(mock.NewScriptedGateway(), cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	err := resolver.Logout(context.Background())

	assert.ErrorIs(t, err, shell_errors.ErrNotAuthenticated)
}

func TestResolvePublishesSettledVerdict(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RoleDoctor))
	gw.Handle("hasDoctorRole", func(args any) (any, error) { return true, nil })

	bus := util.NewEventBus()
	settled := make(chan util.Event, 1)
	bus.Subscribe(util.EventSessionResolved, func(ctx context.Context, e util.Event) error {
		settled <- e
		return nil
	})

	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, bus)

	v := resolver.Resolve(context.Background(), client.DoctorDashboardPolicy())
	require.Equal(t, access.StateGranted, v.State)

	select {
	case e := <-settled:
		payload, ok := e.Payload.(map[string]string)
		require.True(t, ok)
		assert.Equal(t, string(access.StateGranted), payload["state"])
	case <-time.After(time.Second):
		t.Fatal("settled verdict was never announced on the bus")
	}
}

func TestResolveWaitsForAllProbes(t *testing.T) {
	idp := loggedInProvider(t)
	gw := mock.NewScriptedGateway()
	gw.Handle("getCallerUserProfile", profileHandler(model.RolePatient))
	gw.Handle("hasLabExecutiveCapabilities", func(args any) (any, error) {
		// Slow probe: Resolve must still wait for it.
		time.Sleep(30 * time.Millisecond)
		return true, nil
	})
	client := queries.New(gw, cache.New(nil, 0))
	resolver := session.NewResolver(idp, client, nil)

	v := resolver.Resolve(context.Background(), client.AdminDashboardPolicy())

	assert.Equal(t, access.StateGranted, v.State, "the slow positive probe must be awaited, not skipped")
}
