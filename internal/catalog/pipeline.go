// internal/catalog/pipeline.go
package catalog

// Options – parametry budowy katalogu
type Options struct {
	Branches       []string
	TopN           int
	CategorySep    string // domyślnie "|"
	DedupeProducts bool   // keep-first po SKU przed joinem
}

// Stats – liczniki po każdym etapie (do logów)
type Stats struct {
	PricesIn     int
	AfterBranch  int
	AfterStock   int
	AfterTopN    int
	SKUGroups    int
	ProductsIn   int
	ProductsUsed int
	Entries      int
}

// Build przepuszcza feedy przez cały pipeline i zwraca gotowy katalog.
// Żaden etap nie modyfikuje wejścia.
func Build(prices []PriceRow, products []ProductRow, opt Options) ([]Entry, Stats) {
	st := Stats{PricesIn: len(prices), ProductsIn: len(products)}

	rows := FilterBranches(prices, opt.Branches)
	st.AfterBranch = len(rows)
	rows = FilterStock(rows)
	st.AfterStock = len(rows)
	rows = TopNPerBranch(rows, opt.TopN)
	st.AfterTopN = len(rows)
	groups := GroupBySKU(rows)
	st.SKUGroups = len(groups)

	if opt.DedupeProducts {
		products = DedupeProducts(products)
	}
	st.ProductsUsed = len(products)

	sep := opt.CategorySep
	if sep == "" {
		sep = DefaultCategorySep
	}

	entries := Merge(products, groups)
	entries = StripTags(entries)
	entries = JoinCategories(entries, sep)
	entries = InferPackages(entries)
	st.Entries = len(entries)
	return entries, st
}
