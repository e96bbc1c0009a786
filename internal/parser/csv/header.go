package csv

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const utf8BOM = "\uFEFF"

// StripBOM removes a leading UTF-8 BOM from s.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, utf8BOM)
}

// NormalizeHeader folds a column title into a comparison key: diacritics are
// removed, letters lowercased, and everything except letters and digits is
// dropped. "Customer ID", "customer_id" and "customerID" all become
// "customerid".
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, StripBOM(s))
	if err != nil {
		folded = s
	}
	var sb strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// IndexColumns locates each wanted column in header by normalized name. It
// returns the source index per wanted column (-1 when absent) and the list of
// wanted names that were not found.
func IndexColumns(header, want []string) ([]int, []string) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		k := NormalizeHeader(h)
		if _, dup := pos[k]; !dup {
			pos[k] = i
		}
	}
	idx := make([]int, len(want))
	var missing []string
	for i, w := range want {
		j, ok := pos[NormalizeHeader(w)]
		if !ok {
			idx[i] = -1
			missing = append(missing, w)
			continue
		}
		idx[i] = j
	}
	return idx, missing
}
