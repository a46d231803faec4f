// Package http provides HTTP server and handler implementations.
//
// This file turns form and query values into domain input. Quantity and price
// default to zero when left empty; anything else unparsable is a validation error.

package http

import (
	"fmt"
	"net/url"
	"strings"

	"stock/internal/core"
)

// ListingParams holds the search box and category select of the listing.
// They travel with every listing request and are never stored server-side.
type ListingParams struct {
	Search   string
	Category core.Category
}

// ParseListingParams reads q and category, defaulting the category to All.
func ParseListingParams(values url.Values) ListingParams {
	return ListingParams{
		Search:   sanitizeInput(values.Get("q")),
		Category: core.ParseCategoryFilter(values.Get("category")),
	}
}

// ParseNewItemForm coerces the entry form into a creation payload. It does not
// validate required fields; NewItem.Validate does.
func ParseNewItemForm(form url.Values) (core.NewItem, error) {
	supplier, err := core.ParseSupplier(form.Get("supplier"))
	if err != nil {
		return core.NewItem{}, err
	}
	category, err := core.ParseCategory(form.Get("category"))
	if err != nil {
		return core.NewItem{}, err
	}
	quantity, err := core.ParseQuantity(form.Get("quantity"))
	if err != nil {
		return core.NewItem{}, fmt.Errorf("quantity: %w", err)
	}
	price, err := core.ParsePrice(form.Get("price"))
	if err != nil {
		return core.NewItem{}, fmt.Errorf("price: %w", err)
	}

	return core.NewItem{
		Supplier: supplier,
		Category: category,
		Name:     sanitizeInput(form.Get("item")),
		Quantity: quantity,
		Price:    price,
	}, nil
}

// AdjustParams is the +/- control: the quantity shown on the row and a step of +1 or -1.
type AdjustParams struct {
	Quantity    int
	HasQuantity bool
	Delta       int
}

// ParseAdjustForm reads quantity and delta. A missing quantity is reported via
// HasQuantity so the caller can fall back to the last-fetched list.
func ParseAdjustForm(form url.Values) (AdjustParams, error) {
	var p AdjustParams

	raw := strings.TrimSpace(form.Get("delta"))
	if raw == "" {
		return p, fmt.Errorf("delta: %w", core.ErrInvalidNumber)
	}
	delta, err := core.ParseQuantity(raw)
	if err != nil {
		return p, fmt.Errorf("delta: %w", err)
	}
	if delta != 1 && delta != -1 {
		return p, fmt.Errorf("delta must be +1 or -1: %w", core.ErrInvalidNumber)
	}
	p.Delta = delta

	if raw := strings.TrimSpace(form.Get("quantity")); raw != "" {
		q, err := core.ParseQuantity(raw)
		if err != nil {
			return p, fmt.Errorf("quantity: %w", err)
		}
		p.Quantity = q
		p.HasQuantity = true
	}
	return p, nil
}
