package stock

import (
	"context"

	"stock/internal/core"
)

// Ports for the persistence backend. The UI never keeps an authoritative copy of
// the items; every operation goes through these.
type (
	// ItemLister returns the items of one supplier, or of all suppliers when
	// supplier is empty.
	ItemLister interface {
		ListItems(ctx context.Context, supplier core.Supplier) ([]core.Item, error)
	}

	ItemCreator interface {
		CreateItem(ctx context.Context, n core.NewItem) (core.Item, error)
	}

	// QuantityUpdater replaces the quantity of an item, leaving other fields untouched.
	QuantityUpdater interface {
		UpdateQuantity(ctx context.Context, id string, quantity int) (core.Item, error)
	}

	ItemDeleter interface {
		DeleteItem(ctx context.Context, id string) error
	}
)
