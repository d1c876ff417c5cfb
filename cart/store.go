// cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	shell_errors "github.com/jeevanhealth/shell/errors"
	logger "github.com/jeevanhealth/shell/logging"
	"github.com/jeevanhealth/shell/model"
	"github.com/jeevanhealth/shell/util"
)

// storageName is the fixed namespace the cart persists under. One record
// holds the full collection; the round trip write -> reload -> read is
// lossless and preserves insertion order.
const storageName = "jeevan-cart-storage.json"

// Store is the persisted shopping cart. It is the sole writer of its
// persisted representation. Every mutation persists synchronously, so a
// process restart never silently empties a non-empty cart. The cart is
// never cleared on logout; only a successful checkout empties it.
type Store struct {
	mu    sync.Mutex
	fs    afero.Fs
	path  string
	items []model.CartItem
	bus   *util.EventBus
}

// NewStore hydrates the cart from dir before returning, so the first read
// already sees the persisted collection. bus may be nil.
func NewStore(fs afero.Fs, dir string, bus *util.EventBus) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", shell_errors.ErrCartStorage, dir, err)
	}
	s := &Store{
		fs:   fs,
		path: filepath.Join(dir, storageName),
		bus:  bus,
	}
	if err := s.hydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Add inserts item unless an item with the same id already exists; adding a
// duplicate is a no-op preserving the existing entry. Returns the resulting
// collection.
func (s *Store) Add(item model.CartItem) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ID == item.ID {
			return s.snapshotLocked(), nil
		}
	}
	next := append(s.snapshotLocked(), item)
	if err := s.persistLocked(next); err != nil {
		return nil, err
	}
	s.items = next
	s.publish()
	return s.snapshotLocked(), nil
}

// Remove deletes by id; removing an absent id leaves the cart unchanged.
func (s *Store) Remove(id string) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.items {
		if existing.ID == id {
			next := append(s.snapshotLocked()[:i], s.items[i+1:]...)
			if err := s.persistLocked(next); err != nil {
				return nil, err
			}
			s.items = next
			s.publish()
			break
		}
	}
	return s.snapshotLocked(), nil
}

// Clear empties the cart. Called after a successful checkout.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistLocked(nil); err != nil {
		return err
	}
	s.items = nil
	s.publish()
	return nil
}

// Items returns a snapshot copy in insertion order.
func (s *Store) Items() []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalPrice is the sum of effective prices, derived from current state.
func (s *Store) TotalPrice() model.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total model.Money
	for _, item := range s.items {
		total += item.Price
	}
	return total
}

// TotalListPrice is the sum of list prices.
func (s *Store) TotalListPrice() model.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total model.Money
	for _, item := range s.items {
		total += item.ListPrice
	}
	return total
}

// Savings is TotalListPrice minus TotalPrice, recomputed on demand and
// never stored, so it cannot drift from the items.
func (s *Store) Savings() model.Money {
	return s.TotalListPrice() - s.TotalPrice()
}

func (s *Store) snapshotLocked() []model.CartItem {
	out := make([]model.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// persistLocked writes items to disk without touching s.items. Callers
// commit the staged slice only after the write succeeds, so memory and the
// persisted record never diverge on a storage failure.
func (s *Store) persistLocked(items []model.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", shell_errors.ErrCartStorage, err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", shell_errors.ErrCartStorage, s.path, err)
	}
	return nil
}

func (s *Store) hydrate() error {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", shell_errors.ErrCartStorage, s.path, err)
	}
	if !exists {
		return nil
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", shell_errors.ErrCartStorage, s.path, err)
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		return fmt.Errorf("%w: decode %s: %v", shell_errors.ErrCartStorage, s.path, err)
	}
	logger.Debug("Cart hydrated", zap.Int("items", len(s.items)))
	return nil
}

func (s *Store) publish() {
	if s.bus != nil {
		s.bus.Publish(context.Background(), util.EventCartUpdated, len(s.items))
	}
}
