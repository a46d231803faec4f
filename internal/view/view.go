// Package view models the tab bar as a small state machine.
//
// The entry form (Home) is the initial state. Every other state shows a listing,
// either across all suppliers (Overview) or for one supplier, and entering one
// of them runs the registered on-enter actions.
package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"stock/internal/core"
)

const (
	Home     View = "Home"
	Overview View = "Overview"
)

// View is one tab of the page.
type View string

// ErrUnknownView is returned by Parse for names that are not a tab.
var ErrUnknownView = errors.New("unknown view")

// All returns every tab in display order: Home, Overview, then one per supplier.
func All() []View {
	out := []View{Home, Overview}
	for _, s := range core.Suppliers() {
		out = append(out, View(s))
	}
	return out
}

// Parse matches a tab name case-insensitively.
func Parse(s string) (View, error) {
	s = strings.TrimSpace(s)
	for _, v := range All() {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Lists reports whether the view shows a listing, i.e. is not the entry form.
func (v View) Lists() bool {
	return v != Home
}

// SupplierFilter is the supplier the listing is constrained to; empty for
// Overview and Home.
func (v View) SupplierFilter() core.Supplier {
	s := core.Supplier(v)
	if s.IsValid() {
		return s
	}
	return ""
}

func (v View) String() string {
	return string(v)
}

// Action runs when a listing view is entered.
type Action func(ctx context.Context, v View) error

// Machine holds the active tab.
type Machine struct {
	mu      sync.Mutex
	current View
	onEnter []Action
}

// NewMachine starts in Home.
func NewMachine(onEnter ...Action) *Machine {
	return &Machine{current: Home, onEnter: onEnter}
}

// OnEnter registers an action run on every transition into a listing view.
func (m *Machine) OnEnter(a Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnter = append(m.onEnter, a)
}

// Current returns the active tab.
func (m *Machine) Current() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Select moves to v. Selecting a listing view, including the one already
// active, runs the on-enter actions after the state has changed. The
// transition holds even when an action fails.
func (m *Machine) Select(ctx context.Context, v View) error {
	if _, err := Parse(string(v)); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = v
	actions := append([]Action(nil), m.onEnter...)
	m.mu.Unlock()

	if !v.Lists() {
		return nil
	}
	var errs []error
	for _, a := range actions {
		if err := a(ctx, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
