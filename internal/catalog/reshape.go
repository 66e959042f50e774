// internal/catalog/reshape.go
package catalog

import "sort"

// FilterBranches zostawia tylko wiersze z dozwolonych oddziałów.
func FilterBranches(rows []PriceRow, branches []string) []PriceRow {
	allowed := make(map[string]struct{}, len(branches))
	for _, b := range branches {
		allowed[b] = struct{}{}
	}
	out := make([]PriceRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := allowed[r.Branch]; ok {
			out = append(out, r)
		}
	}
	return out
}

// FilterStock zostawia wiersze ze stanem > 0.
func FilterStock(rows []PriceRow) []PriceRow {
	out := make([]PriceRow, 0, len(rows))
	for _, r := range rows {
		if r.Stock > 0 {
			out = append(out, r)
		}
	}
	return out
}

// TopNPerBranch wybiera n najdroższych wierszy w każdym oddziale.
// Wynik jest posortowany malejąco po cenie (globalnie), przy równej cenie
// wygrywa wiersz, który był wcześniej na wejściu.
func TopNPerBranch(rows []PriceRow, n int) []PriceRow {
	if n <= 0 || len(rows) == 0 {
		return []PriceRow{}
	}
	sorted := make([]PriceRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price > sorted[j].Price
	})

	kept := make(map[string]int)
	out := make([]PriceRow, 0, len(sorted))
	for _, r := range sorted {
		if kept[r.Branch] >= n {
			continue
		}
		kept[r.Branch]++
		out = append(out, r)
	}
	return out
}

// GroupBySKU składa wiersze w listy BranchPrice per SKU.
// Kolejność grup = kolejność pierwszego wystąpienia SKU.
func GroupBySKU(rows []PriceRow) []SKUPrices {
	idx := make(map[string]int)
	out := make([]SKUPrices, 0)
	for _, r := range rows {
		bp := BranchPrice{Branch: r.Branch, Stock: r.Stock, Price: r.Price}
		i, ok := idx[r.SKU]
		if !ok {
			idx[r.SKU] = len(out)
			out = append(out, SKUPrices{SKU: r.SKU, Branches: []BranchPrice{bp}})
			continue
		}
		out[i].Branches = append(out[i].Branches, bp)
	}
	return out
}

// Reshape = FilterBranches → FilterStock → TopNPerBranch → GroupBySKU
func Reshape(rows []PriceRow, branches []string, n int) []SKUPrices {
	return GroupBySKU(TopNPerBranch(FilterStock(FilterBranches(rows, branches)), n))
}
