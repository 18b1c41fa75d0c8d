// Package halal implements the keyword heuristics used to decide whether a
// restaurant is halal-compatible. Matching is lower-cased substring matching
// over concatenated free text, with no tokenization, so it is deliberately
// imprecise ("Bar Ber Shop" matches "bar"). Treat results as a filter hint,
// not a certification.
package halal

import (
	"strings"
	"unicode"
)

// denyKeywords excludes a restaurant from halal results on any match.
var denyKeywords = []string{
	"pork", "bacon", "ham", "lard", "char siew", "char siu", "siu yuk",
	"bak kut teh", "bak chor",
	"alcohol", "beer", "wine", "whisky", "vodka", "soju", "sake", "bar",
	"pub", "tavern", "brewery",
	"non-halal", "non halal", "not halal",
	"chinese restaurant", "szechuan", "sichuan", "cantonese", "teochew",
	"hokkien mee", "dim sum", "korean bbq", "yakitori", "izakaya", "ramen",
	"tonkatsu",
}

// allowKeywords marks a freshly scraped place as halal-compatible when no
// deny keyword matched first.
var allowKeywords = []string{
	"halal", "muslim", "islamic",
	"malay", "melayu", "nasi lemak", "nasi kandar", "nasi padang",
	"warung", "gerai", "kampung", "mamak",
	"indonesian", "minang", "padang",
	"arab", "arabic", "middle eastern", "lebanese", "turkish", "kebab",
	"shawarma", "briyani", "biryani", "tandoori", "pakistani", "bangladeshi",
	"satay", "rendang", "sup kambing", "ayam", "ikan bakar",
}

// seedDenyKeywords is the smaller deny list applied during seeding
// classification; an explicit non-halal marker always wins over the allow list.
var seedDenyKeywords = []string{
	"pork", "bacon", "lard", "bak kut teh", "non-halal", "non halal",
	"beer", "wine", "bar", "pub",
}

// IsExcluded implements the exclusion policy used when filtering search
// results: default halal-true unless the text hits the deny list or contains
// CJK or Japanese kana characters.
func IsExcluded(texts ...string) bool {
	combined := normalize(texts)

	for _, kw := range denyKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}

	return containsCJK(combined)
}

// Classify implements the inclusion policy used when classifying freshly
// scraped places: default false, deny-list match short-circuits to false,
// otherwise any allow-list match makes the place halal-compatible.
func Classify(texts ...string) bool {
	combined := normalize(texts)

	for _, kw := range seedDenyKeywords {
		if strings.Contains(combined, kw) {
			return false
		}
	}

	for _, kw := range allowKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}

	return false
}

func normalize(texts []string) string {
	return strings.ToLower(strings.Join(texts, " "))
}

// containsCJK reports whether s contains any CJK Unified Ideograph or
// Japanese kana rune.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) {
			return true
		}
	}
	return false
}
