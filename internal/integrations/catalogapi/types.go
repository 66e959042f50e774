// internal/integrations/catalogapi/types.go
package catalogapi

import "github.com/bartek5186/feedsync/internal/catalog"

type Merchant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsActive     bool   `json:"is_active"`
	CanBeUpdated bool   `json:"can_be_updated"`
	CanBeDeleted bool   `json:"can_be_deleted"`
}

// GET /api/merchants
type MerchantList struct {
	Merchants []Merchant `json:"merchants"`
}

// ProductRequest – body POST /api/products
type ProductRequest struct {
	MerchantID     string                `json:"merchant_id"`
	SKU            string                `json:"sku"`
	Barcodes       []string              `json:"barcodes"`
	Brand          string                `json:"brand"`
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	Package        string                `json:"package"`
	ImageURL       string                `json:"image_url"`
	Category       string                `json:"category"`
	URL            string                `json:"url"`
	BranchProducts []catalog.BranchPrice `json:"branch_products"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
