// internal/storefile/storefile.go
package storefile

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bartek5186/feedsync/internal/catalog"
)

// Name – domyślna nazwa pliku z gotowym katalogiem
const Name = "store_products"

var header = []string{
	"SKU", "EAN", "BRAND_NAME", "ITEM_NAME", "ITEM_DESCRIPTION",
	"BUY_UNIT", "ITEM_IMG", "CATEGORY", "BRANCH_PRODUCTS",
}

// Write zapisuje katalog do <dir>/<name>.csv (separator '|', bez kolumny indeksu).
// Zwraca pełną ścieżkę pliku.
func Write(dir, name string, entries []catalog.Entry) (string, error) {
	if name == "" {
		name = Name
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := writeEntries(f, entries); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func writeEntries(f *os.File, entries []catalog.Entry) error {
	w := csv.NewWriter(f)
	w.Comma = '|'
	if err := w.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		bp, err := json.Marshal(e.BranchProducts)
		if err != nil {
			return fmt.Errorf("sku %s: %w", e.SKU, err)
		}
		rec := []string{
			e.SKU, e.EAN, e.Brand, e.Name, e.Description,
			e.Package, e.ImageURL, e.Category, string(bp),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
