// internal/catalog/types.go
package catalog

// PriceRow – wiersz z feedu cen/stanów (SKU|BRANCH|PRICE|STOCK)
type PriceRow struct {
	SKU    string
	Branch string
	Price  float64
	Stock  int
}

// BranchPrice – cena i stan produktu w jednym oddziale.
// Kolejność w BranchProducts = kolejność po rankingu, nie sortujemy ponownie.
type BranchPrice struct {
	Branch string  `json:"branch"`
	Stock  int     `json:"stock"`
	Price  float64 `json:"price"`
}

// SKUPrices – jedna grupa po przekształceniu: SKU -> lista cen w oddziałach
type SKUPrices struct {
	SKU      string
	Branches []BranchPrice
}

// ProductRow – wiersz z feedu produktów
type ProductRow struct {
	SKU            string
	EAN            string
	Brand          string
	Name           string
	Description    string
	Package        string // BUY_UNIT
	ImageURL       string
	Category       string
	SubCategory    string
	SubSubCategory string
}

// Entry – pozycja katalogu po złączeniu z cenami.
// Po JoinCategories pola SubCategory/SubSubCategory są puste,
// a Category zawiera całą ścieżkę.
type Entry struct {
	ProductRow
	BranchProducts []BranchPrice
}

// Package values set by InferPackages.
const (
	PackageUnit = "UN"
	PackageKilo = "KG"
)
