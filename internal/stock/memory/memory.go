package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"stock/internal/core"
	"stock/internal/stock"
)

// ErrNotFound is returned when an id does not match a stored item.
var ErrNotFound = errors.New("item not found")

// Store is an in-process stand-in for the persistence backend.
type Store struct {
	mu    sync.Mutex
	items []core.Item
	newID func() string
}

var (
	_ stock.ItemLister      = (*Store)(nil)
	_ stock.ItemCreator     = (*Store)(nil)
	_ stock.QuantityUpdater = (*Store)(nil)
	_ stock.ItemDeleter     = (*Store)(nil)
)

func New(items ...core.Item) *Store {
	s := &Store{newID: func() string { return uuid.NewString() }}
	for _, it := range items {
		if it.ID == "" {
			it.ID = s.newID()
		}
		s.items = append(s.items, it)
	}
	return s
}

// NewFromFile seeds the store from a JSON array of items. An empty path or a
// file that does not exist yields an empty store; any other read or decode
// failure is returned.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(), nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var seed []core.Item
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(seed...), nil
}

// ListItems returns the stored items in insertion order, optionally restricted to one supplier.
func (s *Store) ListItems(_ context.Context, supplier core.Supplier) ([]core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Item, 0, len(s.items))
	for _, it := range s.items {
		if supplier != "" && it.Supplier != supplier {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// CreateItem validates and stores the item under a fresh id.
func (s *Store) CreateItem(_ context.Context, n core.NewItem) (core.Item, error) {
	if err := n.Validate(); err != nil {
		return core.Item{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it := core.Item{
		ID:       s.newID(),
		Supplier: n.Supplier,
		Category: n.Category,
		Name:     n.Name,
		Quantity: n.Quantity,
		Price:    n.Price,
	}
	s.items = append(s.items, it)
	return it, nil
}

func (s *Store) UpdateQuantity(_ context.Context, id string, quantity int) (core.Item, error) {
	if quantity < 0 {
		return core.Item{}, core.ErrNegativeQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			return s.items[i], nil
		}
	}
	return core.Item{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
}

// DeleteItem removes the item. Deleting an unknown id is not an error.
func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}
