// internal/integrations/types.go
package integrations

import (
	"context"
	"encoding/json"

	"github.com/bartek5186/feedsync/internal/catalog"
	"github.com/rs/zerolog"
)

// Batch – gotowy katalog + zakres wierszy [From, To) do wysłania
type Batch struct {
	Entries []catalog.Entry
	From    int
	To      int
}

// Item – wynik wysłania jednego SKU (Status 0 = błąd transportu)
type Item struct {
	SKU    string
	Status int
	OK     bool
}

// Outcome – raport z jednego Publish
type Outcome struct {
	MerchantID string
	Remaining  int
	FailedSKUs []string
	Items      []Item
}

type Publisher interface {
	Name() string
	Publish(ctx context.Context, b Batch) (Outcome, error) // blokuje do końca partii
}

type Factory func(log zerolog.Logger, raw json.RawMessage) (Publisher, error)
