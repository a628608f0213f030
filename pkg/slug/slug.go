package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Romanised Indic diacritics (IAST) folded to plain ASCII.
var diacritics = strings.NewReplacer(
	"ā", "a", "ī", "i", "ū", "u", "ṛ", "r", "ṝ", "r", "ḷ", "l",
	"ṅ", "n", "ñ", "n", "ṇ", "n", "ṭ", "t", "ḍ", "d",
	"ś", "s", "ṣ", "s", "ṃ", "m", "ḥ", "h",
	"é", "e", "è", "e",
)

// Generate creates a URL-friendly slug from a category or product name.
//
//	"Kanchipuram Silk"     -> "kanchipuram-silk"
//	"Pochampallī  Ikat!"   -> "pochampalli-ikat"
func Generate(name string) string {
	s := diacritics.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
