package layout

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role suffixes appended to derived names.
const (
	RolePrimarch    = "primarch"
	RoleLegionnaire = "legionnaire"
)

// ProperName converts a folder name into a file-name stem: spaces become
// underscores and each underscore-separated word gets its first rune
// title-cased and the rest lowercased. Digits and hyphens do not start a
// new word.
// "tech_priest" → "Tech_Priest", "3rd_company" → "3rd_Company",
// "emperor-class" → "Emperor-class"
func ProperName(folder string) string {
	words := strings.Split(strings.ReplaceAll(folder, " ", "_"), "_")
	lower := cases.Lower(language.Und)
	for i, w := range words {
		words[i] = capitalize(w, lower)
	}
	return strings.Join(words, "_")
}

func capitalize(word string, lower cases.Caser) string {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return word
	}
	return string(unicode.ToTitle(r)) + lower.String(word[size:])
}

// PrimarchStem returns "{Legion}_primarch".
func PrimarchStem(legion string) string {
	return ProperName(legion) + "_" + RolePrimarch
}

// LegionnaireStem returns "{Legion}_legionnaire_{n}".
func LegionnaireStem(legion, subfolder string) string {
	return ProperName(legion) + "_" + RoleLegionnaire + "_" + subfolder
}

// SplitName splits a base name into stem and extension.
// "foo.bar.JPG" → ("foo.bar", ".JPG")
func SplitName(name string) (string, string) {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// HasMarker reports whether stem carries the derived-output marker anywhere,
// case-insensitively.
func HasMarker(stem, marker string) bool {
	return strings.Contains(strings.ToUpper(stem), strings.ToUpper(marker))
}

// EndsWithMarker reports whether stem ends with the marker, case-insensitively.
func EndsWithMarker(stem, marker string) bool {
	return strings.HasSuffix(strings.ToUpper(stem), strings.ToUpper(marker))
}

// MarkedName returns the derived-output name for stem.
// ("Legion_X_primarch", "_A4", ".jpeg") → "Legion_X_primarch_A4.jpeg"
func MarkedName(stem, marker, ext string) string {
	return stem + marker + ext
}
