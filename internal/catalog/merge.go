// internal/catalog/merge.go
package catalog

// Merge robi inner join produktów z grupami cen po SKU.
//
// Produkty bez cen odpadają. Duplikaty SKU po którejkolwiek stronie dają
// iloczyn kartezjański (każda para produkt × grupa), kolejność wg produktów,
// potem wg grup. Zakładamy, że feedy mają unikalne SKU; nie deduplikujemy tu.
func Merge(products []ProductRow, prices []SKUPrices) []Entry {
	bySKU := make(map[string][]int, len(prices))
	for i, p := range prices {
		bySKU[p.SKU] = append(bySKU[p.SKU], i)
	}

	out := make([]Entry, 0, len(products))
	for _, pr := range products {
		for _, i := range bySKU[pr.SKU] {
			if len(prices[i].Branches) == 0 {
				continue
			}
			branches := make([]BranchPrice, len(prices[i].Branches))
			copy(branches, prices[i].Branches)
			out = append(out, Entry{ProductRow: pr, BranchProducts: branches})
		}
	}
	return out
}

// UniqueBy usuwa duplikaty wg klucza, zostawia pierwsze wystąpienie.
func UniqueBy[T any](rows []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DedupeProducts – UniqueBy po SKU.
func DedupeProducts(rows []ProductRow) []ProductRow {
	return UniqueBy(rows, func(p ProductRow) string { return p.SKU })
}
