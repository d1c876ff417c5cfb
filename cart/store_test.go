// cart/store_test.go
package cart_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanhealth/shell/cache"
	"github.com/jeevanhealth/shell/cart"
	shell_errors "github.com/jeevanhealth/shell/errors"
	"github.com/jeevanhealth/shell/model"
	"github.com/jeevanhealth/shell/queries"
	"github.com/jeevanhealth/shell/test/mock"
)

func newTestStore(t *testing.T) (*cart.Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := cart.NewStore(fs, "cartdata", nil)
	require.NoError(t, err)
	return store, fs
}

func thyroidTest() model.CartItem {
	return model.CartItem{
		ID:        "t1",
		Name:      "Thyroid Profile",
		Kind:      model.ItemKindTest,
		Price:     350,
		ListPrice: 500,
	}
}

func fullBodyPackage() model.CartItem {
	return model.CartItem{
		ID:        "t2",
		Name:      "Full Body Checkup",
		Kind:      model.ItemKindPackage,
		Price:     600,
		ListPrice: 800,
	}
}

func TestAddIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)

	first, err := store.Add(thyroidTest())
	require.NoError(t, err)

	renamed := thyroidTest()
	renamed.Name = "Different Name, Same ID"
	second, err := store.Add(renamed)
	require.NoError(t, err)

	assert.Equal(t, first, second, "adding a duplicate id must be a no-op")
	require.Len(t, second, 1)
	assert.Equal(t, "Thyroid Profile", second[0].Name, "the existing entry must be preserved")
}

func TestDerivedTotals(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Add(thyroidTest())
	require.NoError(t, err)
	_, err = store.Add(fullBodyPackage())
	require.NoError(t, err)

	assert.Equal(t, model.Money(950), store.TotalPrice())
	assert.Equal(t, model.Money(1300), store.TotalListPrice())
	assert.Equal(t, model.Money(350), store.Savings())
}

func TestRemoveUnknownIDLeavesCartUnchanged(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Add(thyroidTest())
	require.NoError(t, err)

	items, err := store.Remove("unknown-id")
	require.NoError(t, err)

	assert.Len(t, items, 1)
	assert.Equal(t, "t1", items[0].ID)
}

func TestRemoveDeletesByID(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Add(thyroidTest())
	require.NoError(t, err)
	_, err = store.Add(fullBodyPackage())
	require.NoError(t, err)

	items, err := store.Remove("t1")
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "t2", items[0].ID)
}

func TestRoundTripSurvivesRestart(t *testing.T) {
	fs := afero.NewMemMapFs()

	store, err := cart.NewStore(fs, "cartdata", nil)
	require.NoError(t, err)
	_, err = store.Add(thyroidTest())
	require.NoError(t, err)
	_, err = store.Add(fullBodyPackage())
	require.NoError(t, err)
	_, err = store.Remove("t1")
	require.NoError(t, err)
	_, err = store.Add(thyroidTest())
	require.NoError(t, err)

	// Same filesystem, fresh store: a process restart.
	reloaded, err := cart.NewStore(fs, "cartdata", nil)
	require.NoError(t, err)

	assert.Equal(t, store.Items(), reloaded.Items(), "reload must reproduce the collection in insertion order")
	require.Len(t, reloaded.Items(), 2)
	assert.Equal(t, "t2", reloaded.Items()[0].ID)
	assert.Equal(t, "t1", reloaded.Items()[1].ID)
}

// flakyFs fails opens for writing on demand so persistence failures can be
// simulated mid-test.
type flakyFs struct {
	afero.Fs
	failWrites bool
}

func (f *flakyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.failWrites {
		return nil, errors.New("disk full")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestFailedPersistLeavesMemoryUnchanged(t *testing.T) {
	base := afero.NewMemMapFs()
	fs := &flakyFs{Fs: base}
	store, err := cart.NewStore(fs, "cartdata", nil)
	require.NoError(t, err)

	_, err = store.Add(thyroidTest())
	require.NoError(t, err)

	fs.failWrites = true
	_, err = store.Add(fullBodyPackage())
	require.ErrorIs(t, err, shell_errors.ErrCartStorage)
	assert.Len(t, store.Items(), 1, "a failed write must not leave a phantom item in memory")

	_, err = store.Remove(thyroidTest().ID)
	require.ErrorIs(t, err, shell_errors.ErrCartStorage)
	assert.Len(t, store.Items(), 1, "a failed write must not drop the item from memory")

	// Memory and disk still agree: a restart sees the same single item.
	reloaded, err := cart.NewStore(base, "cartdata", nil)
	require.NoError(t, err)
	assert.Equal(t, store.Items(), reloaded.Items())
}

func TestHydrationOfEmptyDirYieldsEmptyCart(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Empty(t, store.Items())
	assert.Equal(t, model.Money(0), store.TotalPrice())
}

func TestCheckoutClearsCartOnSuccess(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Add(thyroidTest())
	require.NoError(t, err)

	gw := mock.NewScriptedGateway()
	gw.Handle("addBooking", func(args any) (any, error) {
		return model.Booking{ID: "b1", Status: "confirmed"}, nil
	})
	client := queries.New(gw, cache.New(nil, 0))

	ref, err := store.Checkout(context.Background(), client, cart.CheckoutDetails{
		CustomerName: "Asha",
		Phone:        "9999999999",
		Address:      "12 Lake Road",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
	assert.Empty(t, store.Items(), "cart must be cleared after a successful checkout")
	assert.Equal(t, 1, gw.Calls("addBooking"))
}

func TestCheckoutFailureLeavesCartUntouched(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Add(thyroidTest())
	require.NoError(t, err)

	gw := mock.NewScriptedGateway()
	gw.Handle("addBooking", func(args any) (any, error) {
		return nil, errors.New("booking rejected")
	})
	store2 := cache.New(nil, 0)
	client := queries.New(gw, store2)

	// Prime a bookings entry so we can verify it is NOT invalidated.
	_, err = client.AllBookings(context.Background())
	require.Error(t, err) // no handler scripted; entry holds the error
	gw.Handle("getAllBookings", func(args any) (any, error) {
		return []model.Booking{}, nil
	})
	_, err = client.AllBookings(context.Background())
	require.NoError(t, err)

	_, err = store.Checkout(context.Background(), client, cart.CheckoutDetails{CustomerName: "Asha"})
	require.Error(t, err)

	assert.Len(t, store.Items(), 1, "failed checkout must not clear the cart")
	entry := store2.Get(queries.KeyAllBookings())
	assert.False(t, entry.Stale, "failed mutation must not invalidate caches")
}

func TestCheckoutOnEmptyCart(t *testing.T) {
	store, _ := newTestStore(t)

	gw := mock.NewScriptedGateway()
	client := queries.New(gw, cache.New(nil, 0))

	_, err := store.Checkout(context.Background(), client, cart.CheckoutDetails{})
	assert.ErrorIs(t, err, shell_errors.ErrEmptyCart)
	assert.Equal(t, 0, gw.Calls("addBooking"), "empty cart must not reach the gateway")
}
