package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricesCSV = `SKU|BRANCH|PRICE|STOCK
100|MM|82|20
100|RHSM|90,5|3
200|MM|10|0.0
broken|row
300|XX|7|12.0
`

const productsCSV = `SKU|EAN|BRAND_NAME|ITEM_NAME|ITEM_DESCRIPTION|BUY_UNIT|ITEM_IMG|CATEGORY|SUB_CATEGORY|SUB_SUB_CATEGORY|EXTRA
100|95281231|COCA-COLA|MONSTER|<p>BEBIDA ENERGETICA</p>||http://img/100|Bebestibles|Gaseosas|Energeticas|x
200||LAYS|PAPAS| PAPAS FRITAS |UN||Snacks|Salados|Papas|y
`

func TestParsePrices(t *testing.T) {
	rows, skipped, err := ParsePrices(strings.NewReader(pricesCSV))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 4)

	assert.Equal(t, "100", rows[0].SKU)
	assert.Equal(t, "MM", rows[0].Branch)
	assert.Equal(t, 82.0, rows[0].Price)
	assert.Equal(t, 20, rows[0].Stock)

	assert.Equal(t, 90.5, rows[1].Price)
	assert.Equal(t, 0, rows[2].Stock)
	assert.Equal(t, 12, rows[3].Stock)
}

func TestParsePricesEmpty(t *testing.T) {
	rows, skipped, err := ParsePrices(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, skipped)
}

func TestParseProducts(t *testing.T) {
	rows, err := ParseProducts(strings.NewReader(productsCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	p := rows[0]
	assert.Equal(t, "100", p.SKU)
	assert.Equal(t, "95281231", p.EAN)
	assert.Equal(t, "COCA-COLA", p.Brand)
	assert.Equal(t, "MONSTER", p.Name)
	assert.Equal(t, "<p>BEBIDA ENERGETICA</p>", p.Description)
	assert.Equal(t, "", p.Package)
	assert.Equal(t, "http://img/100", p.ImageURL)
	assert.Equal(t, "Bebestibles", p.Category)
	assert.Equal(t, "Gaseosas", p.SubCategory)
	assert.Equal(t, "Energeticas", p.SubSubCategory)

	assert.Equal(t, "", rows[1].EAN)
	assert.Equal(t, "PAPAS FRITAS", rows[1].Description)
	assert.Equal(t, "UN", rows[1].Package)
}

func TestParseProductsMissingColumn(t *testing.T) {
	_, err := ParseProducts(strings.NewReader("SKU|EAN\n1|2\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))

	_, err = ParseProducts(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestLoaderHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/PRICES-STOCK.csv":
			_, _ = w.Write([]byte(pricesCSV))
		case "/PRODUCTS.csv":
			_, _ = w.Write([]byte(productsCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(srv.Client(), "")
	ctx := context.Background()

	prices, _, err := l.LoadPrices(ctx, srv.URL+"/PRICES-STOCK.csv")
	require.NoError(t, err)
	assert.Len(t, prices, 4)

	products, err := l.LoadProducts(ctx, srv.URL+"/PRODUCTS.csv")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, _, err = l.LoadPrices(ctx, srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestLoaderFileAndCharset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.csv")
	// "AÑO" w windows-1252: Ñ = 0xD1
	data := []byte("SKU|EAN|BRAND_NAME|ITEM_NAME|ITEM_DESCRIPTION|BUY_UNIT|ITEM_IMG|CATEGORY|SUB_CATEGORY|SUB_SUB_CATEGORY\n" +
		"1|2|B|A\xd1O|D|UN|I|C|S|SS\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	l := NewLoader(nil, "cp1252")
	rows, err := l.LoadProducts(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AÑO", rows[0].Name)

	_, err = l.LoadProducts(context.Background(), filepath.Join(dir, "nope.csv"))
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestLoaderSchemaErrorIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.csv")
	require.NoError(t, os.WriteFile(path, []byte("SKU\n1\n"), 0o644))

	_, err := NewLoader(nil, "").LoadProducts(context.Background(), path)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestParsePricesSeparators(t *testing.T) {
	in := `SKU|BRANCH|PRICE|STOCK
1|MM|1,234.50|2
2|MM|1.234,50|2
3|MM|1,234,567|2
4|MM|90,5|2
5|MM|abc|4
6|MM||4
`
	rows, skipped, err := ParsePrices(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, rows, 4)
	assert.Equal(t, 1234.5, rows[0].Price)
	assert.Equal(t, 1234.5, rows[1].Price)
	assert.Equal(t, 1234567.0, rows[2].Price)
	assert.Equal(t, 90.5, rows[3].Price)
}
