// internal/integrations/catalogapi/client.go
package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bartek5186/feedsync/internal/metrics"
)

const (
	pathMerchants = "/api/merchants"
	pathProducts  = "/api/products"
)

// Client – klient API katalogu dla jednej sesji.
// Jedno żądanie naraz, każde blokuje do odpowiedzi.
type Client struct {
	sess Session
	http *http.Client
}

func NewClient(sess Session, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	sess.BaseURL = strings.TrimRight(sess.BaseURL, "/")
	return &Client{sess: sess, http: client}
}

func (c *Client) BaseURL() string { return c.sess.BaseURL }

func (c *Client) ListMerchants(ctx context.Context) (Result[MerchantList], error) {
	var out MerchantList
	status, err := c.do(ctx, http.MethodGet, pathMerchants, pathMerchants, nil, &out)
	if err != nil {
		return Result[MerchantList]{}, err
	}
	if status != http.StatusOK {
		return Failure[MerchantList](status), nil
	}
	return Success(out), nil
}

// UpdateMerchant – PUT /api/merchants/{id}, zwraca zaktualizowany rekord
func (c *Client) UpdateMerchant(ctx context.Context, m MerchantUpdate) (Result[Merchant], error) {
	var out Merchant
	status, err := c.do(ctx, http.MethodPut, pathMerchants+"/"+m.ID, pathMerchants+"/{id}", m.Merchant, &out)
	if err != nil {
		return Result[Merchant]{}, err
	}
	if status != http.StatusOK {
		return Failure[Merchant](status), nil
	}
	return Success(out), nil
}

// DeleteMerchant – DELETE /api/merchants/{id}
func (c *Client) DeleteMerchant(ctx context.Context, id string) (Result[struct{}], error) {
	status, err := c.do(ctx, http.MethodDelete, pathMerchants+"/"+id, pathMerchants+"/{id}", nil, nil)
	if err != nil {
		return Result[struct{}]{}, err
	}
	if status != http.StatusOK {
		return Failure[struct{}](status), nil
	}
	return Success(struct{}{}), nil
}

// CreateProduct – POST /api/products; treść odpowiedzi nas nie interesuje
func (c *Client) CreateProduct(ctx context.Context, p ProductRequest) (Result[struct{}], error) {
	status, err := c.do(ctx, http.MethodPost, pathProducts, pathProducts, p, nil)
	if err != nil {
		return Result[struct{}]{}, err
	}
	if status != http.StatusOK {
		return Failure[struct{}](status), nil
	}
	return Success(struct{}{}), nil
}

// do wysyła żądanie i dekoduje body do out (tylko przy 200, gdy out != nil).
// route to szablon ścieżki do metryk (bez id).
func (c *Client) do(ctx context.Context, method, path, route string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", method, route, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.sess.BaseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "feedsync 1.0v")
	req.Header.Set("token", c.sess.Token)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APIRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, route, "error").Inc()
		return 0, fmt.Errorf("%s %s: %w", method, route, err)
	}
	defer resp.Body.Close()
	metrics.APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, route, err)
	}
	return resp.StatusCode, nil
}
