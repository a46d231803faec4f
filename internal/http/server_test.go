package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock/internal/backend"
	"stock/internal/core"
	"stock/internal/inventory"
	"stock/internal/log"
	"stock/internal/stock/api"
	"stock/internal/stock/memory"
	"stock/internal/view"
)

// failingBackend serves writes from memory but cannot list.
type failingBackend struct {
	*memory.Store
}

func (failingBackend) ListItems(context.Context, core.Supplier) ([]core.Item, error) {
	return nil, api.ErrRequestFailed
}

func seedItems() []core.Item {
	return []core.Item{
		{ID: "b1", Supplier: core.Bidfood, Category: core.Meats, Name: "Chicken Breast", Quantity: 2, Price: decimal.NewFromInt(3)},
		{ID: "k1", Supplier: core.Booker, Category: core.Veg, Name: "Carrots", Quantity: 1, Price: decimal.NewFromInt(4)},
	}
}

func newTestServer(t *testing.T, opts Options) (*Server, *memory.Store) {
	t.Helper()
	mem := memory.New(seedItems()...)
	return newTestServerWith(t, mem, opts), mem
}

func newTestServerWith(t *testing.T, b backend.Backend, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	srv := NewServer(":0", inventory.New(b, opts.Logger), b, opts)
	t.Cleanup(srv.rateLimiter.Stop)
	return srv
}

func do(srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexRendersEntryForm(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `id="item-form"`)
	assert.Contains(t, body, `<option value="Adams">Adams</option>`)
	assert.Contains(t, body, `<option value="Sauces">Sauces</option>`)
	assert.Contains(t, body, `hx-get="/views/Overview"`)
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "https://unpkg.com")
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
}

func TestHealthReadyMetrics(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := do(srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := do(srv, http.MethodGet, "/metrics", nil)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
	assert.Contains(t, rr.Body.String(), "backend_errors_total 0")
	assert.Contains(t, rr.Body.String(), "refresh_in_flight 0")
}

func TestReadyFailsWhenBackendCannotList(t *testing.T) {
	srv := newTestServerWith(t, failingBackend{memory.New()}, Options{})

	rr := do(srv, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"not_ready"`)
}

func TestSelectOverviewShowsItemsAndTotals(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/views/Overview", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "Chicken Breast")
	assert.Contains(t, body, "Carrots")
	assert.Contains(t, body, "£6.00")
	assert.Contains(t, body, "Bidfood: <strong>£6.00</strong>")
	assert.Contains(t, body, "Booker: <strong>£4.00</strong>")
	assert.Contains(t, body, "Adams: <strong>£0.00</strong>")
	assert.Contains(t, body, "Total: <strong>£10.00</strong>")
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"view:changed"`)
	assert.Equal(t, view.Overview, srv.store.View())
}

func TestSelectSupplierView(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/views/booker", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "Carrots")
	assert.NotContains(t, body, "Chicken Breast")
}

func TestSelectHomeShowsForm(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/views/Home", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `id="item-form"`)
}

func TestUnknownViewIsNotFound(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/views/Costco", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListItemsFiltersWithoutBackendCall(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/views/Overview", nil).Code)

	rr := do(srv, http.MethodGet, "/items?q=CHICK&category=All", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Chicken Breast")
	assert.NotContains(t, rr.Body.String(), "Carrots")
	assert.Contains(t, rr.Body.String(), "Total: <strong>£10.00</strong>", "totals cover the whole list")

	rr = do(srv, http.MethodGet, "/items?category=Veg", nil)
	assert.Contains(t, rr.Body.String(), "Carrots")
	assert.NotContains(t, rr.Body.String(), "Chicken Breast")
	assert.Contains(t, rr.Body.String(), `<option value="Veg" selected>`)

	rr = do(srv, http.MethodGet, "/items?q=zzz", nil)
	assert.Contains(t, rr.Body.String(), "No items")
}

func TestCreateItemSwitchesToOverview(t *testing.T) {
	srv, mem := newTestServer(t, Options{})

	rr := do(srv, http.MethodPost, "/items", url.Values{
		"supplier": {"Booker"},
		"category": {"Veg"},
		"item":     {"Carrots 10kg"},
		"quantity": {"5"},
		"price":    {"2.50"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, `"form:reset"`)
	assert.Contains(t, trigger, `"item:created"`)
	assert.Contains(t, trigger, `"show-notification"`)
	assert.Contains(t, trigger, `"type":"success"`)

	assert.Equal(t, view.Overview, srv.store.View())
	assert.Contains(t, rr.Body.String(), "Carrots 10kg")
	assert.Contains(t, rr.Body.String(), "£12.50")

	items, err := mem.ListItems(context.Background(), core.Booker)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCreateItemDefaultsEmptyNumbersToZero(t *testing.T) {
	srv, mem := newTestServer(t, Options{})

	rr := do(srv, http.MethodPost, "/items", url.Values{
		"supplier": {"Adams"},
		"category": {"Other"},
		"item":     {"Napkins"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	items, _ := mem.ListItems(context.Background(), core.Adams)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Quantity)
	assert.True(t, items[0].Price.IsZero())
}

func TestCreateItemValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"empty name", url.Values{"supplier": {"Booker"}, "category": {"Veg"}, "item": {"  "}}},
		{"unknown supplier", url.Values{"supplier": {"Costco"}, "category": {"Veg"}, "item": {"x"}}},
		{"unknown category", url.Values{"supplier": {"Booker"}, "category": {"Toys"}, "item": {"x"}}},
		{"bad price", url.Values{"supplier": {"Booker"}, "category": {"Veg"}, "item": {"x"}, "price": {"abc"}}},
		{"fractional quantity", url.Values{"supplier": {"Booker"}, "category": {"Veg"}, "item": {"x"}, "quantity": {"1.5"}}},
		{"negative quantity", url.Values{"supplier": {"Booker"}, "category": {"Veg"}, "item": {"x"}, "quantity": {"-2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, mem := newTestServer(t, Options{})

			rr := do(srv, http.MethodPost, "/items", tt.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Contains(t, rr.Body.String(), `class="error"`)
			assert.Equal(t, view.Home, srv.store.View())

			items, _ := mem.ListItems(context.Background(), "")
			assert.Len(t, items, 2)
		})
	}
}

func TestAdjustQuantityClampsAtZero(t *testing.T) {
	srv, mem := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/views/Overview", nil).Code)

	rr := do(srv, http.MethodPost, "/items/k1/quantity", url.Values{"quantity": {"1"}, "delta": {"-1"}})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(srv, http.MethodPost, "/items/k1/quantity", url.Values{"quantity": {"0"}, "delta": {"-1"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"quantity":0`)

	items, _ := mem.ListItems(context.Background(), core.Booker)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Quantity)
}

func TestAdjustQuantityFallsBackToListedQuantity(t *testing.T) {
	srv, mem := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/views/Overview", nil).Code)

	rr := do(srv, http.MethodPost, "/items/b1/quantity", url.Values{"delta": {"1"}})
	require.Equal(t, http.StatusOK, rr.Code)

	items, _ := mem.ListItems(context.Background(), core.Bidfood)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Contains(t, rr.Body.String(), "£9.00")

	rr = do(srv, http.MethodPost, "/items/nope/quantity", url.Values{"delta": {"1"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(srv, http.MethodPost, "/items/b1/quantity", url.Values{"delta": {"x"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAdjustQuantityRejectsStepOtherThanOne(t *testing.T) {
	srv, mem := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/views/Overview", nil).Code)

	rr := do(srv, http.MethodPost, "/items/b1/quantity",
		url.Values{"quantity": {"9223372036854775807"}, "delta": {"10"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	items, _ := mem.ListItems(context.Background(), core.Bidfood)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestDeleteItem(t *testing.T) {
	srv, mem := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/views/Overview", nil).Code)

	rr := do(srv, http.MethodDelete, "/items/b1?q=&category=All", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Chicken Breast")
	assert.Contains(t, rr.Header().Get("HX-Trigger"), `"item:deleted"`)

	items, _ := mem.ListItems(context.Background(), "")
	assert.Len(t, items, 1)

	rr = do(srv, http.MethodDelete, "/items/unknown", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBackendFailureIsBadGatewayWithNotification(t *testing.T) {
	srv := newTestServerWith(t, failingBackend{memory.New(seedItems()...)}, Options{})

	rr := do(srv, http.MethodGet, "/views/Overview", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), `class="error"`)
	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, `"show-notification"`)
	assert.Contains(t, trigger, `"type":"error"`)

	rr = do(srv, http.MethodPost, "/refresh", url.Values{})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.False(t, srv.store.Loading())

	rr = do(srv, http.MethodGet, "/metrics", nil)
	assert.Contains(t, rr.Body.String(), "backend_errors_total 2")
}

func TestRefreshReturnsListing(t *testing.T) {
	srv, mem := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/views/Overview", nil).Code)

	_, err := mem.CreateItem(context.Background(), core.NewItem{Supplier: core.Adams, Category: core.Drinks, Name: "Cola"})
	require.NoError(t, err)

	rr := do(srv, http.MethodPost, "/refresh", url.Values{"q": {"cola"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Cola")
	assert.NotContains(t, rr.Body.String(), "Carrots")
	assert.Contains(t, rr.Body.String(), `value="cola"`)
}

func TestMutationsAreRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitPerMinute: 1})

	assert.Equal(t, http.StatusOK, do(srv, http.MethodPost, "/refresh", url.Values{}).Code)
	rr := do(srv, http.MethodPost, "/refresh", url.Values{})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/items", nil).Code, "reads are not limited")
}

func TestStaticAssetsAndMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/static/app.css", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600, immutable", rr.Header().Get("Cache-Control"))

	rr = do(srv, http.MethodGet, "/refresh", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
