package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	conf "github.com/bartek5186/feedsync/internal/config"
	"github.com/bartek5186/feedsync/internal/db"
	"github.com/bartek5186/feedsync/internal/feed"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	merchantID = "ae9c81fe-163e-4546-8349-19dbf63715c7"
	beautyID   = "9001976c-a9e7-4b95-b133-9ac8ba213fb2"
)

const pricesCSV = `SKU|BRANCH|PRICE|STOCK
1|MM|10|5
2|MM|30|5
3|RHSM|20|1
4|MM|5|0
5|XX|99|9
`

const productsCSV = `SKU|EAN|BRAND_NAME|ITEM_NAME|ITEM_DESCRIPTION|BUY_UNIT|ITEM_IMG|CATEGORY|SUB_CATEGORY|SUB_SUB_CATEGORY
1|111|B1|N1|<p>JUGO 1LT</p>||i1|Bebidas|Jugos|Naranja
2|222|B2|N2|CARNE||i2|Carnes|Vacuno|Lomo
3|333|B3|N3|PAN|UN|i3|Panaderia|Pan|Blanco
4|444|B4|N4|X||i4|a|b|c
`

type env struct {
	srv      *httptest.Server
	mu       sync.Mutex
	posted   []string
	reject   map[string]bool
	calls    []string
	noPrices bool
	noToken  bool
}

func newEnv(t *testing.T) *env {
	e := &env{reject: map[string]bool{}}
	e.srv = httptest.NewServer(http.HandlerFunc(e.handle))
	t.Cleanup(e.srv.Close)
	return e
}

func (e *env) handle(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, r.Method+" "+r.URL.Path)

	switch {
	case r.URL.Path == "/feeds/PRICES-STOCK.csv":
		if e.noPrices {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(pricesCSV))
	case r.URL.Path == "/feeds/PRODUCTS.csv":
		_, _ = w.Write([]byte(productsCSV))
	case r.URL.Path == "/oauth/token":
		if e.noToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/merchants":
		_, _ = w.Write([]byte(`{"merchants":[{"id":"` + merchantID + `","name":"Richard's"},{"id":"` + beautyID + `","name":"Beauty"}]}`))
	case r.Method == http.MethodPut, r.Method == http.MethodDelete:
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && r.URL.Path == "/api/products":
		var body struct {
			SKU string `json:"sku"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		e.posted = append(e.posted, body.SKU)
		if e.reject[body.SKU] {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	default:
		http.NotFound(w, r)
	}
}

func (e *env) config(t *testing.T) *conf.Config {
	cfg := conf.Defaults()
	cfg.Feeds.PricesURL = e.srv.URL + "/feeds/PRICES-STOCK.csv"
	cfg.Feeds.ProductsURL = e.srv.URL + "/feeds/PRODUCTS.csv"
	cfg.Storage.OutputDir = filepath.Join(t.TempDir(), "data")
	cfg.Integrations["catalogapi"] = json.RawMessage(`{"base_url":"` + e.srv.URL +
		`","client_id":"id","client_secret":"s","merchant_name":"Richard's","obsolete_merchant_name":"Beauty"}`)
	return cfg
}

func openDB(t *testing.T) *db.Handle {
	h, err := db.OpenAt(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestRunFull(t *testing.T) {
	e := newEnv(t)
	e.reject["1"] = true
	h := openDB(t)
	s := New(zerolog.Nop(), e.config(t), h)

	sum, err := s.Run(context.Background(), Params{From: -1, To: -1})
	require.NoError(t, err)

	// 2 (30), 3 (20), 1 (10); 4 bez stanu, 5 spoza oddziałów
	assert.Equal(t, 3, sum.Stats.Entries)
	assert.Empty(t, sum.Errors)

	out, ok := sum.Outcomes["catalogapi"]
	require.True(t, ok)
	assert.Equal(t, merchantID, out.MerchantID)
	assert.Equal(t, []string{"1"}, out.FailedSKUs)
	assert.Equal(t, 3-1-(-1)-2, out.Remaining)

	// katalog w kolejności produktów
	assert.Equal(t, []string{"1", "2", "3"}, e.posted)

	b, err := os.ReadFile(sum.StorePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], `1|111|B1|N1|JUGO 1LT|UN|i1|"bebidas|jugos|naranja"|`))
	assert.True(t, strings.HasPrefix(lines[2], `2|222|B2|N2|CARNE|KG|`))

	next, ok, err := h.NextFrom("catalogapi")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, next)

	var runs []db.UploadRun
	require.NoError(t, h.DB.Find(&runs).Error)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, 3, runs[0].Sent)
	assert.Equal(t, sum.RunKey, runs[0].RunKey)
	_, err = uuid.Parse(sum.RunKey)
	assert.NoError(t, err)
	assert.Empty(t, runs[0].LastError)
}

func TestRunPublishFailureRecorded(t *testing.T) {
	e := newEnv(t)
	e.noToken = true
	h := openDB(t)
	s := New(zerolog.Nop(), e.config(t), h)

	sum, err := s.Run(context.Background(), Params{From: -1, To: -1})
	require.NoError(t, err)
	require.Contains(t, sum.Errors, "catalogapi")
	assert.Empty(t, sum.Outcomes)
	assert.Empty(t, e.posted)

	var runs []db.UploadRun
	require.NoError(t, h.DB.Find(&runs).Error)
	require.Len(t, runs, 1)
	assert.Equal(t, "catalogapi", runs[0].Integration)
	assert.Equal(t, sum.RunKey, runs[0].RunKey)
	assert.Contains(t, runs[0].LastError, "catalog api auth")
	assert.Equal(t, 3, runs[0].ToRow)

	_, ok, err := h.NextFrom("catalogapi")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunTopNAndBranchesOverride(t *testing.T) {
	e := newEnv(t)
	s := New(zerolog.Nop(), e.config(t), nil)

	sum, err := s.Run(context.Background(), Params{TopN: 1, Branches: []string{"MM"}, From: -1, To: -1})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Stats.Entries)
	assert.Equal(t, []string{"2"}, e.posted)
}

func TestRunResume(t *testing.T) {
	e := newEnv(t)
	h := openDB(t)
	s := New(zerolog.Nop(), e.config(t), h)

	_, err := s.Run(context.Background(), Params{From: -1, To: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, e.posted)

	e.posted = nil
	_, err = s.Run(context.Background(), Params{From: 0, To: 3, Resume: true})
	require.NoError(t, err)
	// kursor = 1 → idą wiersze 2..
	assert.Equal(t, []string{"3"}, e.posted)
}

func TestRunFeedUnavailable(t *testing.T) {
	e := newEnv(t)
	e.noPrices = true
	cfg := e.config(t)
	s := New(zerolog.Nop(), cfg, nil)

	_, err := s.Run(context.Background(), Params{To: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrUnavailable))

	_, statErr := os.Stat(filepath.Join(cfg.Storage.OutputDir, "store_products.csv"))
	assert.True(t, os.IsNotExist(statErr))
	for _, c := range e.calls {
		assert.NotEqual(t, "POST /api/products", c)
	}
}

func TestRunEmptyMerge(t *testing.T) {
	e := newEnv(t)
	cfg := e.config(t)
	cfg.Pipeline.Branches = []string{"NOPE"}
	s := New(zerolog.Nop(), cfg, nil)

	sum, err := s.Run(context.Background(), Params{To: -1})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Stats.Entries)
	assert.FileExists(t, sum.StorePath)
	assert.Empty(t, e.posted)
	assert.Equal(t, -1, sum.Outcomes["catalogapi"].Remaining)
}

func TestRunBadIntegrationConfig(t *testing.T) {
	e := newEnv(t)
	cfg := e.config(t)
	cfg.Integrations["catalogapi"] = json.RawMessage(`{"base_url":""}`)
	cfg.Integrations["unknown"] = json.RawMessage(`{}`)
	s := New(zerolog.Nop(), cfg, nil)

	sum, err := s.Run(context.Background(), Params{To: -1})
	require.NoError(t, err)
	assert.Contains(t, sum.Errors, "catalogapi")
	assert.Empty(t, sum.Outcomes)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := conf.Defaults()
	cfg.Pipeline.Branches = nil
	_, err := New(zerolog.Nop(), cfg, nil).Run(context.Background(), Params{})
	assert.True(t, errors.Is(err, conf.ErrInvalid))
}
