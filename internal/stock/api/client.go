// Package api is the outbound client for the stock persistence backend.
//
// The backend exposes a small JSON API:
//
//	GET    /api/items[?supplier=<name>]
//	POST   /api/items
//	PATCH  /api/items/{id}
//	DELETE /api/items/{id}
//
// Every failure, whether a non-2xx status, a transport error or an undecodable
// body, is reported as ErrRequestFailed. Callers are not expected to tell them apart.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock/internal/core"
	"stock/internal/stock"
)

// ErrRequestFailed is the single failure kind of the client.
var ErrRequestFailed = errors.New("request failed")

const itemsPath = "/api/items"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Ensure interface conformance
var (
	_ stock.ItemLister      = (*Client)(nil)
	_ stock.ItemCreator     = (*Client)(nil)
	_ stock.QuantityUpdater = (*Client)(nil)
	_ stock.ItemDeleter     = (*Client)(nil)
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for the backend at baseURL (scheme and host, optional path prefix).
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url scheme %q: must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("base url has no host")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases idle keep-alive connections to the backend.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// createRequest is the POST body. Price is sent as a bare JSON number.
type createRequest struct {
	Supplier core.Supplier `json:"supplier"`
	Category core.Category `json:"category"`
	Item     string        `json:"item"`
	Quantity int           `json:"quantity"`
	Price    json.Number   `json:"price"`
}

type quantityPatch struct {
	Quantity int `json:"quantity"`
}

// ListItems implements stock.ItemLister. An empty supplier lists every supplier.
func (c *Client) ListItems(ctx context.Context, supplier core.Supplier) ([]core.Item, error) {
	path := itemsPath
	if supplier != "" {
		path += "?" + url.Values{"supplier": {string(supplier)}}.Encode()
	}
	var items []core.Item
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []core.Item{}
	}
	return items, nil
}

// CreateItem implements stock.ItemCreator.
func (c *Client) CreateItem(ctx context.Context, n core.NewItem) (core.Item, error) {
	body := createRequest{
		Supplier: n.Supplier,
		Category: n.Category,
		Item:     n.Name,
		Quantity: n.Quantity,
		Price:    json.Number(n.Price.String()),
	}
	var created core.Item
	if err := c.do(ctx, http.MethodPost, itemsPath, body, &created); err != nil {
		return core.Item{}, err
	}
	return created, nil
}

// UpdateQuantity implements stock.QuantityUpdater with a partial update.
func (c *Client) UpdateQuantity(ctx context.Context, id string, quantity int) (core.Item, error) {
	var updated core.Item
	if err := c.do(ctx, http.MethodPatch, itemPath(id), quantityPatch{Quantity: quantity}, &updated); err != nil {
		return core.Item{}, err
	}
	return updated, nil
}

// DeleteItem implements stock.ItemDeleter. The response body is ignored.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id string) string {
	return itemsPath + "/" + url.PathEscape(id)
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
// An empty response body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode %s %s: %v", ErrRequestFailed, method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build %s %s: %v", ErrRequestFailed, method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "Backend request completed",
		"method", method,
		"path", path,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("%w: %s %s: status %d", ErrRequestFailed, method, path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", ErrRequestFailed, method, path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrRequestFailed, method, path, err)
	}
	return nil
}
