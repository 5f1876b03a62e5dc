package status

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes to NFD and strips combining marks so that
// "Ĉheckout" and "checkout" compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeText prepares a string for diacritic- and case-insensitive
// matching.
func NormalizeText(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// FilterByQuery narrows products to those matching the free-text query at
// product or component granularity. A product whose name matches is kept
// whole; otherwise a copy with only the matching components is kept, and
// products with no match at all are dropped. An empty query returns the
// input slice unchanged.
func FilterByQuery(products []Product, query string) []Product {
	normalizedQuery := NormalizeText(query)
	if normalizedQuery == "" {
		return products
	}

	filtered := make([]Product, 0, len(products))
	for _, product := range products {
		if strings.Contains(NormalizeText(product.Name), normalizedQuery) {
			filtered = append(filtered, product)
			continue
		}

		var matching []Component
		for _, component := range product.Components {
			if strings.Contains(NormalizeText(component.Name), normalizedQuery) {
				matching = append(matching, component)
			}
		}
		if len(matching) > 0 {
			narrowed := product
			narrowed.Components = matching
			filtered = append(filtered, narrowed)
		}
	}
	return filtered
}
