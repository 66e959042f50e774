// internal/catalog/transform.go
package catalog

import (
	"regexp"
	"strings"
)

// najkrótsze dopasowanie <...>; encji HTML nie dekodujemy
var reTags = regexp.MustCompile(`<.*?>`)

// sprawdzane po kolei, pierwsze trafienie kończy
var unitKeywords = []string{"UN", "PZ", "CC", "LT"}

// DefaultCategorySep – separator ścieżki kategorii w katalogu
const DefaultCategorySep = "|"

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	copy(out, in)
	return out
}

// StripTags usuwa tagi z opisu.
func StripTags(entries []Entry) []Entry {
	out := cloneEntries(entries)
	for i := range out {
		out[i].Description = reTags.ReplaceAllString(out[i].Description, "")
	}
	return out
}

// JoinCategories skleja CATEGORY, SUB_CATEGORY, SUB_SUB_CATEGORY separatorem
// i zamienia całość na małe litery. Podkategorie są czyszczone.
func JoinCategories(entries []Entry, sep string) []Entry {
	out := cloneEntries(entries)
	for i := range out {
		e := &out[i]
		e.Category = strings.ToLower(strings.Join([]string{e.Category, e.SubCategory, e.SubSubCategory}, sep))
		e.SubCategory = ""
		e.SubSubCategory = ""
	}
	return out
}

// InferPackage zwraca "UN" jeżeli opis zawiera UN, PZ, CC albo LT (wielkość liter ma znaczenie),
// w przeciwnym razie "KG".
func InferPackage(description string) string {
	for _, w := range unitKeywords {
		if strings.Contains(description, w) {
			return PackageUnit
		}
	}
	return PackageKilo
}

// InferPackages uzupełnia puste BUY_UNIT; niepuste zostają bez zmian.
func InferPackages(entries []Entry) []Entry {
	out := cloneEntries(entries)
	for i := range out {
		if out[i].Package == "" {
			out[i].Package = InferPackage(out[i].Description)
		}
	}
	return out
}
