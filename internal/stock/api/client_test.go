package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock/internal/core"
)

type recorded struct {
	method      string
	path        string
	rawPath     string
	query       string
	contentType string
	accept      string
	body        string
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

func (r *recorder) first() recorded {
	return r.all()[0]
}

func newBackend(t *testing.T, status int, response string) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.calls = append(rec.calls, recorded{
			method:      r.Method,
			path:        r.URL.Path,
			rawPath:     r.URL.EscapedPath(),
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			accept:      r.Header.Get("Accept"),
			body:        string(b),
		})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithTimeout(5*time.Second))
	require.NoError(t, err)
	return c, rec
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, in := range []string{"", "ftp://example.com", "http://", "::not a url"} {
		_, err := New(in)
		assert.Error(t, err, in)
	}
}

func TestListItemsAllSuppliers(t *testing.T) {
	c, calls := newBackend(t, http.StatusOK,
		`[{"id":"a1","supplier":"Booker","category":"Veg","item":"Carrots 10kg","quantity":5,"price":2.5}]`)

	items, err := c.ListItems(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0].ID)
	assert.Equal(t, core.Booker, items[0].Supplier)
	assert.Equal(t, core.Veg, items[0].Category)
	assert.Equal(t, "Carrots 10kg", items[0].Name)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("2.50")))

	require.Len(t, calls.all(), 1)
	call := calls.first()
	assert.Equal(t, http.MethodGet, call.method)
	assert.Equal(t, "/api/items", call.path)
	assert.Empty(t, call.query)
	assert.Equal(t, "application/json", call.contentType)
	assert.Equal(t, "application/json", call.accept)
}

func TestListItemsBySupplier(t *testing.T) {
	c, calls := newBackend(t, http.StatusOK, `[]`)

	items, err := c.ListItems(context.Background(), core.Bidfood)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, "supplier=Bidfood", calls.first().query)
}

func TestListItemsNullBody(t *testing.T) {
	c, _ := newBackend(t, http.StatusOK, `null`)

	items, err := c.ListItems(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateItemSendsJSONBody(t *testing.T) {
	c, calls := newBackend(t, http.StatusCreated,
		`{"id":"n1","supplier":"Booker","category":"Veg","item":"Carrots 10kg","quantity":5,"price":2.5}`)

	created, err := c.CreateItem(context.Background(), core.NewItem{
		Supplier: core.Booker,
		Category: core.Veg,
		Name:     "Carrots 10kg",
		Quantity: 5,
		Price:    decimal.RequireFromString("2.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "n1", created.ID)

	call := calls.first()
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/api/items", call.path)
	assert.Equal(t, "application/json", call.contentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(call.body), &body))
	assert.Equal(t, map[string]any{
		"supplier": "Booker",
		"category": "Veg",
		"item":     "Carrots 10kg",
		"quantity": float64(5),
		"price":    2.5,
	}, body)
}

func TestUpdateQuantitySendsOnlyQuantity(t *testing.T) {
	c, calls := newBackend(t, http.StatusOK, `{"id":"x","quantity":0}`)

	_, err := c.UpdateQuantity(context.Background(), "x", 0)
	require.NoError(t, err)

	call := calls.first()
	assert.Equal(t, http.MethodPatch, call.method)
	assert.Equal(t, "/api/items/x", call.path)
	assert.JSONEq(t, `{"quantity":0}`, call.body)
}

func TestDeleteItemEscapesID(t *testing.T) {
	c, calls := newBackend(t, http.StatusNoContent, ``)

	require.NoError(t, c.DeleteItem(context.Background(), "a/b c"))

	call := calls.first()
	assert.Equal(t, http.MethodDelete, call.method)
	assert.Equal(t, "/api/items/a%2Fb%20c", call.rawPath)
	assert.Empty(t, call.body)
}

func TestNonSuccessStatusIsRequestFailed(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError} {
		c, _ := newBackend(t, status, `{"error":"nope"}`)

		_, err := c.ListItems(context.Background(), "")
		require.ErrorIs(t, err, ErrRequestFailed, "status %d", status)

		_, err = c.CreateItem(context.Background(), core.NewItem{Supplier: core.Adams, Category: core.Other, Name: "x"})
		require.ErrorIs(t, err, ErrRequestFailed)

		_, err = c.UpdateQuantity(context.Background(), "1", 1)
		require.ErrorIs(t, err, ErrRequestFailed)

		require.ErrorIs(t, c.DeleteItem(context.Background(), "1"), ErrRequestFailed)
	}
}

func TestMalformedBodyIsRequestFailed(t *testing.T) {
	c, _ := newBackend(t, http.StatusOK, `{not json`)

	_, err := c.ListItems(context.Background(), "")
	require.ErrorIs(t, err, ErrRequestFailed)
}

func TestTransportErrorIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(base)
	require.NoError(t, err)

	_, err = c.ListItems(context.Background(), "")
	require.ErrorIs(t, err, ErrRequestFailed)
}

func TestCloseAfterRequests(t *testing.T) {
	c, _ := newBackend(t, http.StatusOK, `[]`)

	_, err := c.ListItems(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.ListItems(context.Background(), "")
	require.NoError(t, err)
}
