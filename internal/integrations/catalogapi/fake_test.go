package catalogapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bartek5186/feedsync/internal/catalog"
)

const (
	targetID   = "ae9c81fe-163e-4546-8349-19dbf63715c7"
	obsoleteID = "9001976c-a9e7-4b95-b133-9ac8ba213fb2"
)

// fakeAPI – minimalny serwer katalogu do testów
type fakeAPI struct {
	mu sync.Mutex

	merchants    []Merchant
	rejectSKU    map[string]int // sku -> status
	updateStatus int
	deleteStatus int
	listStatus   int

	calls    []string // "METHOD /path"
	products []ProductRequest
	updates  []Merchant
	tokens   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		merchants: []Merchant{
			{ID: targetID, Name: "Richard's"},
			{ID: obsoleteID, Name: "Beauty"},
		},
		rejectSKU: map[string]int{},
	}
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	if r.URL.Path == "/oauth/token" {
		if r.URL.Query().Get("client_id") != "id" || r.URL.Query().Get("client_secret") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "abc", TokenType: "bearer"})
		return
	}
	f.tokens = append(f.tokens, r.Header.Get("token"))

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/merchants":
		if f.listStatus != 0 {
			w.WriteHeader(f.listStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(MerchantList{Merchants: f.merchants})

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/merchants/"):
		if f.updateStatus != 0 {
			w.WriteHeader(f.updateStatus)
			return
		}
		var m Merchant
		_ = json.NewDecoder(r.Body).Decode(&m)
		f.updates = append(f.updates, m)
		_ = json.NewEncoder(w).Encode(m)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/merchants/"):
		if f.deleteStatus != 0 {
			w.WriteHeader(f.deleteStatus)
			return
		}
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPost && r.URL.Path == "/api/products":
		var p ProductRequest
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.products = append(f.products, p)
		if p.MerchantID == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if st, ok := f.rejectSKU[p.SKU]; ok {
			w.WriteHeader(st)
			return
		}
		_, _ = w.Write([]byte(`{"errors":[]}`))

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) postedSKUs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p.SKU)
	}
	return out
}

func testEntries(skus ...string) []catalog.Entry {
	out := make([]catalog.Entry, 0, len(skus))
	for _, s := range skus {
		out = append(out, catalog.Entry{
			ProductRow: catalog.ProductRow{
				SKU: s, EAN: "ean" + s, Brand: "B", Name: "N" + s,
				Description: "D", Package: "UN", ImageURL: "http://img/" + s,
				Category: "a|b|c",
			},
			BranchProducts: []catalog.BranchPrice{{Branch: "MM", Stock: 20, Price: 82}},
		})
	}
	return out
}
