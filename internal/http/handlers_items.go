package http

import (
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"stock/internal/core"
	"stock/internal/log"
	"stock/internal/view"
)

// handleSelectView switches tab and returns the nav plus the tab's content.
func (s *Server) handleSelectView(w http.ResponseWriter, r *http.Request) {
	v, err := view.Parse(chi.URLParam(r, "view"))
	if err != nil {
		NotFoundError("Unknown view").Write(w)
		return
	}

	if err := s.store.Select(r.Context(), v); err != nil {
		s.fail(w, r, log.OpSelect, err, log.NewFields().WithView(v.String()))
		return
	}

	s.render(w, r, NewHTMXResponse().TriggerViewChanged(v.String()), "content", s.pageData(ParseListingParams(r.URL.Query())))
}

// handleRefresh re-fetches the current view and returns the listing.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.refreshes, 1)
	if err := s.store.Refresh(r.Context()); err != nil {
		s.fail(w, r, log.OpRefresh, err, log.NewFields().WithView(s.store.View().String()))
		return
	}

	s.render(w, r, NewHTMXResponse(), "listing", s.listingData(ParseListingParams(r.Form)))
}

// handleListItems re-renders the listing for new search or category values.
// It does not call the backend.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, NewHTMXResponse(), "listing", s.listingData(ParseListingParams(r.URL.Query())))
}

// handleCreateItem submits the entry form and shows the Overview.
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	n, err := ParseNewItemForm(r.PostForm)
	if err != nil {
		s.fail(w, r, log.OpCreate, err, nil)
		return
	}

	created, err := s.store.Create(r.Context(), n)
	if err != nil {
		s.fail(w, r, log.OpCreate, err, log.NewFields().
			WithItem(created.ID, n.Name, n.Supplier.String(), n.Category.String(), n.Quantity))
		return
	}
	atomic.AddInt64(&s.appMetrics.itemsCreated, 1)

	b := NewHTMXResponse().
		TriggerFormReset().
		TriggerItemCreated(created.ID, n.Supplier.String()).
		TriggerViewChanged(s.store.View().String()).
		TriggerSuccessNotification("Added " + n.Name)
	s.render(w, r, b, "content", s.pageData(ListingParams{Category: core.CategoryAll}))
}

// handleAdjustQuantity applies the +/- control. The row posts the quantity it
// shows; without it the last-fetched list is used.
func (s *Server) handleAdjustQuantity(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := chi.URLParam(r, "id")
	params, err := ParseAdjustForm(r.Form)
	if err != nil {
		s.fail(w, r, log.OpAdjust, err, nil)
		return
	}

	item := core.Item{ID: id, Quantity: params.Quantity}
	if !params.HasQuantity {
		known, ok := s.store.Find(id)
		if !ok {
			NotFoundError("Item not found").Write(w)
			return
		}
		item = known
	}

	quantity, err := s.store.Adjust(r.Context(), item, params.Delta)
	if err != nil {
		fields := log.NewFields()
		fields[log.FieldItemID] = id
		fields[log.FieldDelta] = params.Delta
		s.fail(w, r, log.OpAdjust, err, fields)
		return
	}
	atomic.AddInt64(&s.appMetrics.quantityAdjusted, 1)

	s.render(w, r, NewHTMXResponse().TriggerQuantityChanged(id, quantity), "listing", s.listingData(ParseListingParams(r.Form)))
}

// handleDeleteItem removes an item and returns the refreshed listing.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.store.Remove(r.Context(), id); err != nil {
		fields := log.NewFields()
		fields[log.FieldItemID] = id
		s.fail(w, r, log.OpDelete, err, fields)
		return
	}
	atomic.AddInt64(&s.appMetrics.itemsRemoved, 1)

	b := NewHTMXResponse().
		TriggerItemDeleted(id).
		TriggerSuccessNotification("Item removed")
	s.render(w, r, b, "listing", s.listingData(ParseListingParams(r.Form)))
}
