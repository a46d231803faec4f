// Package inventory holds the last-fetched item list and runs every mutation
// through the backend followed by a refresh.
//
// The store never edits its list locally. After a create, adjust or remove the
// whole list for the current view is fetched again and replaces what was there.
package inventory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"stock/internal/backend"
	"stock/internal/core"
	"stock/internal/log"
	"stock/internal/view"
)

// Store is the client-side view of the stock list for a single operator.
type Store struct {
	backend backend.Backend
	views   *view.Machine
	group   singleflight.Group
	logger  *log.Logger

	mu      sync.RWMutex
	items   []core.Item
	loading int
	// generation counts successful mutations. A list call started before the
	// latest mutation is never shared with, or applied after, a later refresh.
	generation uint64
}

// New creates a store in the Home view with an empty list. Entering any
// listing view refreshes it.
func New(b backend.Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Store{
		backend: b,
		logger:  logger.WithComponent(log.ComponentInventory),
		items:   []core.Item{},
	}
	s.views = view.NewMachine(s.refreshView)
	return s
}

// View returns the active tab.
func (s *Store) View() view.View {
	return s.views.Current()
}

// Select switches tab. Entering a listing view, or re-entering the current one,
// refreshes the list.
func (s *Store) Select(ctx context.Context, v view.View) error {
	s.logger.DebugContext(ctx, "Selecting view",
		log.FieldView, v.String(),
		log.FieldOperation, log.OpSelect)
	return s.views.Select(ctx, v)
}

// Items returns a copy of the last-fetched list.
func (s *Store) Items() []core.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Find looks id up in the last-fetched list.
func (s *Store) Find(id string) (core.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return core.Item{}, false
}

// Refresh re-fetches the list for the current view. It does nothing on Home.
func (s *Store) Refresh(ctx context.Context) error {
	return s.refreshView(ctx, s.views.Current())
}

func (s *Store) refreshView(ctx context.Context, v view.View) error {
	if !v.Lists() {
		return nil
	}

	s.setLoading(1)
	defer s.setLoading(-1)

	gen := s.currentGeneration()
	key := fmt.Sprintf("%s#%d", v, gen)

	// The shared call outlives any single caller; each caller stops waiting
	// when its own context ends. The backend client bounds the call.
	ch := s.group.DoChan(key, func() (any, error) {
		return s.backend.ListItems(context.WithoutCancel(ctx), v.SupplierFilter())
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return fmt.Errorf("refresh %s: %w", v, ctx.Err())
	}
	if res.Err != nil {
		return fmt.Errorf("refresh %s: %w", v, res.Err)
	}
	items, _ := res.Val.([]core.Item)

	// A slower response for a tab the operator already left must not
	// overwrite the list of the tab now shown.
	if current := s.views.Current(); current != v {
		s.logger.DebugContext(ctx, "Dropping refresh for inactive view",
			log.FieldView, v.String(),
			"current_view", current.String())
		return nil
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Dropping refresh started before a mutation",
			log.FieldView, v.String())
		return nil
	}
	s.items = slices.Clone(items)
	if s.items == nil {
		s.items = []core.Item{}
	}
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Refreshed items",
		log.FieldView, v.String(),
		log.FieldOperation, log.OpRefresh,
		log.FieldCount, len(items),
		"shared", res.Shared)
	return nil
}

func (s *Store) setLoading(delta int) {
	s.mu.Lock()
	s.loading += delta
	s.mu.Unlock()
}

func (s *Store) currentGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// mutated marks every list call started so far as stale.
func (s *Store) mutated() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// Create validates n, submits it and switches to Overview.
func (s *Store) Create(ctx context.Context, n core.NewItem) (core.Item, error) {
	if err := n.Validate(); err != nil {
		return core.Item{}, err
	}

	created, err := s.backend.CreateItem(ctx, n)
	if err != nil {
		return core.Item{}, fmt.Errorf("create item: %w", err)
	}
	s.mutated()

	log.NewStructuredLogger(s.logger).LogItemCreated(ctx,
		created.ID, n.Name, n.Supplier.String(), n.Category.String(), n.Quantity)

	if err := s.Select(ctx, view.Overview); err != nil {
		return created, err
	}
	return created, nil
}

// Adjust submits the item's quantity moved by delta, clamped at zero, and
// refreshes the current view. It returns the quantity that was submitted.
func (s *Store) Adjust(ctx context.Context, item core.Item, delta int) (int, error) {
	quantity := core.AdjustQuantity(item.Quantity, delta)

	if _, err := s.backend.UpdateQuantity(ctx, item.ID, quantity); err != nil {
		return 0, fmt.Errorf("update quantity of %s: %w", item.ID, err)
	}
	s.mutated()

	s.logger.InfoContext(ctx, "Quantity adjusted",
		log.FieldOperation, log.OpAdjust,
		log.FieldItemID, item.ID,
		log.FieldDelta, delta,
		log.FieldQuantity, quantity)

	return quantity, s.Refresh(ctx)
}

// Remove deletes id, whether or not it is in the current list, and refreshes
// the current view.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.backend.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	s.mutated()

	s.logger.InfoContext(ctx, "Item removed",
		log.FieldOperation, log.OpDelete,
		log.FieldItemID, id)

	return s.Refresh(ctx)
}
