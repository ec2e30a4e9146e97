// Package similarity provides the pure lexical and geospatial primitives the
// matching rules are built from: name normalization, Jaro-Winkler string
// similarity, haversine distance and deterministic content IDs.
package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Generic venue nouns and articles carry no identity: "Kulturzentrum
// Schlachthof" and "Schlachthof" are the same building. Removed token-wise
// before comparing names.
var nameStopwords = map[string]struct{}{
	"club": {}, "bar": {}, "pub": {}, "lounge": {}, "cafe": {},
	"restaurant": {}, "hotel": {}, "hall": {}, "halle": {}, "arena": {},
	"stadium": {}, "stadion": {}, "center": {}, "centre": {}, "zentrum": {},
	"kulturzentrum": {}, "theatre": {}, "theater": {}, "cinema": {},
	"kino": {}, "venue": {},
	"the": {}, "der": {}, "die": {}, "das": {}, "le": {}, "la": {}, "el": {},
}

var nameArticles = map[string]struct{}{
	"the": {}, "der": {}, "die": {}, "das": {}, "le": {}, "la": {}, "el": {},
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases, trims and strips diacritics. It is the case/diacritic
// insensitive comparison key used for cities, artists and genres.
func Fold(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return ""
	}
	stripped, _, err := transform.String(diacriticStripper, lowered)
	if err != nil {
		return lowered
	}
	return stripped
}

// NormalizeName reduces a venue or event name to its identifying tokens:
// folded, punctuation replaced by spaces, generic venue nouns removed,
// whitespace collapsed. Idempotent.
func NormalizeName(raw string) string {
	folded := Fold(raw)
	if folded == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := nameStopwords[token]; ok {
			continue
		}
		kept = append(kept, token)
	}
	// A name made entirely of stopwords must not collapse to nothing.
	// First retry dropping only the articles, so "The Arena" and "Arena"
	// normalize alike; keep every token as the last resort.
	if len(kept) == 0 {
		for _, token := range tokens {
			if _, ok := nameArticles[token]; ok {
				continue
			}
			kept = append(kept, token)
		}
	}
	if len(kept) == 0 {
		kept = tokens
	}
	return strings.Join(kept, " ")
}
