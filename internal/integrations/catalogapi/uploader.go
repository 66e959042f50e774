// internal/integrations/catalogapi/uploader.go
package catalogapi

import (
	"context"

	"github.com/bartek5186/feedsync/internal/catalog"
	"github.com/bartek5186/feedsync/internal/metrics"
	"github.com/rs/zerolog"
)

// API – operacje, których używa Uploader (implementuje *Client)
type API interface {
	BaseURL() string
	ListMerchants(ctx context.Context) (Result[MerchantList], error)
	UpdateMerchant(ctx context.Context, m MerchantUpdate) (Result[Merchant], error)
	DeleteMerchant(ctx context.Context, id string) (Result[struct{}], error)
	CreateProduct(ctx context.Context, p ProductRequest) (Result[struct{}], error)
}

// ItemResult – wynik jednego POST (Status 0 = błąd transportu)
type ItemResult struct {
	SKU    string
	Status int
	OK     bool
}

// UploadOutcome – raport z jednej partii
type UploadOutcome struct {
	Remaining  int
	FailedSKUs []string
	Items      []ItemResult
}

type Uploader struct {
	log zerolog.Logger
	api API
}

func NewUploader(log zerolog.Logger, api API) *Uploader {
	return &Uploader{log: log, api: api}
}

// Upload wysyła wiersze katalogu z zakresu (from, to] liczonego tak jak kursor:
// pomija indeksy <= from, kończy gdy kursor dojdzie do to.
// Remaining startuje od to-1-from i spada przy każdym sukcesie.
// Błąd pojedynczego wiersza nie zatrzymuje pętli, nie ma ponowień.
func (u *Uploader) Upload(ctx context.Context, merchantID string, entries []catalog.Entry, from, to int) UploadOutcome {
	out := UploadOutcome{
		Remaining:  to - 1 - from,
		FailedSKUs: []string{},
	}
	cursor := from
	for idx, e := range entries {
		if idx <= cursor {
			continue
		}
		if cursor >= to {
			break
		}

		res, err := u.api.CreateProduct(ctx, u.productRequest(merchantID, e))
		item := ItemResult{SKU: e.SKU}
		switch {
		case err != nil:
			metrics.ProductsFailedTotal.WithLabelValues("transport").Inc()
			u.log.Error().Err(err).Str("sku", e.SKU).Int("row", idx).Msg("POST produktu nieudany")
			out.FailedSKUs = append(out.FailedSKUs, e.SKU)
		case !res.OK():
			metrics.ProductsFailedTotal.WithLabelValues("status").Inc()
			u.log.Warn().Str("sku", e.SKU).Int("row", idx).Int("status", res.Status()).Msg("produkt odrzucony")
			item.Status = res.Status()
			out.FailedSKUs = append(out.FailedSKUs, e.SKU)
		default:
			metrics.ProductsUploadedTotal.Inc()
			item.Status, item.OK = res.Status(), true
			out.Remaining--
		}
		out.Items = append(out.Items, item)
		cursor++
	}

	u.log.Info().
		Int("from", from).
		Int("to", to).
		Int("sent", len(out.Items)).
		Int("failed", len(out.FailedSKUs)).
		Int("remaining", out.Remaining).
		Msg("upload partii zakończony")
	return out
}

func (u *Uploader) productRequest(merchantID string, e catalog.Entry) ProductRequest {
	code := e.EAN
	if code == "" {
		code = e.SKU
	}
	branches := e.BranchProducts
	if branches == nil {
		branches = []catalog.BranchPrice{}
	}
	return ProductRequest{
		MerchantID:     merchantID,
		SKU:            e.SKU,
		Barcodes:       []string{code},
		Brand:          e.Brand,
		Name:           e.Name,
		Description:    e.Description,
		Package:        e.Package,
		ImageURL:       e.ImageURL,
		Category:       e.Category,
		URL:            u.api.BaseURL() + pathProducts + "/" + code,
		BranchProducts: branches,
	}
}
