// internal/feed/feed.go
package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bartek5186/feedsync/internal/catalog"
	"golang.org/x/net/html/charset"
)

var (
	// ErrUnavailable – feedu nie da się pobrać/odczytać; nic dalej nie przetwarzamy
	ErrUnavailable = errors.New("feed unavailable")
	// ErrSchema – brak kolumny, którą czytamy
	ErrSchema = errors.New("feed schema")
)

// Separator kolumn w obu feedach
const Separator = '|'

// kolumny wymagane w feedzie produktów
const (
	colSKU            = "SKU"
	colEAN            = "EAN"
	colBrand          = "BRAND_NAME"
	colName           = "ITEM_NAME"
	colDescription    = "ITEM_DESCRIPTION"
	colPackage        = "BUY_UNIT"
	colImage          = "ITEM_IMG"
	colCategory       = "CATEGORY"
	colSubCategory    = "SUB_CATEGORY"
	colSubSubCategory = "SUB_SUB_CATEGORY"
)

var productColumns = []string{
	colSKU, colEAN, colBrand, colName, colDescription,
	colPackage, colImage, colCategory, colSubCategory, colSubSubCategory,
}

// Loader pobiera feedy z URL (http/https) albo z pliku lokalnego.
type Loader struct {
	HTTP    *http.Client
	Charset string // np. "utf-8", "windows-1252"
}

func NewLoader(client *http.Client, cs string) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Loader{HTTP: client, Charset: cs}
}

// Open zwraca reader z już zdekodowanym charsetem. Zamknij po użyciu.
func (l *Loader) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	var body io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, src, err)
		}
		resp, err := l.HTTP.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, src, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s: http %d", ErrUnavailable, src, resp.StatusCode)
		}
		body = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		body = f
	}

	label := l.Charset
	if label == "" {
		label = "utf-8"
	}
	r, err := charset.NewReaderLabel(normalizeCharset(label), body)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("%w: charset %q: %v", ErrUnavailable, label, err)
	}
	return readCloser{Reader: r, Closer: body}, nil
}

// LoadPrices = Open + ParsePrices
func (l *Loader) LoadPrices(ctx context.Context, src string) ([]catalog.PriceRow, int, error) {
	rc, err := l.Open(ctx, src)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()
	rows, skipped, err := ParsePrices(rc)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrUnavailable, src, err)
	}
	return rows, skipped, nil
}

// LoadProducts = Open + ParseProducts
func (l *Loader) LoadProducts(ctx context.Context, src string) ([]catalog.ProductRow, error) {
	rc, err := l.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	rows, err := ParseProducts(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, src, err)
	}
	return rows, nil
}

// ParsePrices czyta SKU|BRANCH|PRICE|STOCK pozycyjnie (nagłówek pomijamy).
// Wiersze z mniej niż 4 kolumnami albo z nieczytelną ceną są pomijane i liczone.
func ParsePrices(r io.Reader) ([]catalog.PriceRow, int, error) {
	cr := newReader(r)
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return []catalog.PriceRow{}, 0, nil
		}
		return nil, 0, fmt.Errorf("header: %w", err)
	}

	out := make([]catalog.PriceRow, 0, 1024)
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if len(rec) < 4 {
			skipped++
			continue
		}
		price, ok := parsePrice(rec[2])
		if !ok {
			skipped++
			continue
		}
		out = append(out, catalog.PriceRow{
			SKU:    strings.TrimSpace(rec[0]),
			Branch: strings.TrimSpace(rec[1]),
			Price:  price,
			Stock:  stock(rec[3]),
		})
	}
	return out, skipped, nil
}

// ParseProducts mapuje kolumny po nazwach z nagłówka; nadmiarowe ignoruje.
func ParseProducts(r io.Reader) ([]catalog.ProductRow, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty feed, no header", ErrSchema)
		}
		return nil, fmt.Errorf("header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range productColumns {
		if _, ok := pos[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrSchema, c)
		}
	}

	out := make([]catalog.ProductRow, 0, 1024)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(col string) string {
			i := pos[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		out = append(out, catalog.ProductRow{
			SKU:            get(colSKU),
			EAN:            get(colEAN),
			Brand:          get(colBrand),
			Name:           get(colName),
			Description:    get(colDescription),
			Package:        get(colPackage),
			ImageURL:       get(colImage),
			Category:       get(colCategory),
			SubCategory:    get(colSubCategory),
			SubSubCategory: get(colSubSubCategory),
		})
	}
	return out, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

type readCloser struct {
	io.Reader
	io.Closer
}

// normalizeCharset mapuje nietypowe etykiety na nazwy rozpoznawane przez charset.NewReaderLabel
func normalizeCharset(cs string) string {
	c := strings.TrimSpace(strings.ToLower(cs))
	switch c {
	case "latin1", "latin-1", "iso8859-1", "iso_8859-1":
		return "iso-8859-1"
	case "cp1252", "windows1252", "win-1252":
		return "windows-1252"
	default:
		return c
	}
}

// parsePrice rozpoznaje "90.5", "90,5", "1,234.50", "1.234,50", "1,234,567".
// Separator, który występuje jako ostatni i tylko raz, jest dziesiętny.
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case comma < 0:
	case dot > comma: // 1,234.50
		s = strings.ReplaceAll(s, ",", "")
	case dot >= 0: // 1.234,50
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ",") == 1: // 90,5
		s = strings.Replace(s, ",", ".", 1)
	default: // 1,234,567
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// stock akceptuje "12" i "12.0"
func stock(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	v, _ := parsePrice(s)
	return int(v)
}
