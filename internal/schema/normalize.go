// Package schema derives destination column names from a header row.
package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/vvka-141/sheetload/pkg/sheetload"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result is the outcome of normalizing a header row.
type Result struct {
	// Columns are the usable columns in header order.
	Columns []sheetload.Column

	// Skipped lists header positions that produced no column, with the reason.
	Skipped []Skipped
}

// Skipped describes a header cell that did not become a column.
type Skipped struct {
	Index  int
	Raw    string
	Reason string
}

// Normalize converts header cells to lowercase snake_case identifiers.
// Cells that normalize to nothing are dropped, as is a cell naming the
// reserved id column. Repeated names get a numeric suffix. An empty result
// fails with sheetload.ErrEmptyHeader.
func Normalize(header []string) (Result, error) {
	var res Result
	seen := make(map[string]int)

	for i, raw := range header {
		name := SnakeCase(raw)
		switch {
		case name == "":
			res.Skipped = append(res.Skipped, Skipped{Index: i, Raw: raw, Reason: "empty"})
			continue
		case name == sheetload.ReservedIDColumn:
			res.Skipped = append(res.Skipped, Skipped{Index: i, Raw: raw, Reason: "reserved"})
			continue
		}

		name = truncate(name, sheetload.MaxIdentifierLength)
		if n := seen[name]; n > 0 {
			base := name
			for {
				n++
				suffix := "_" + strconv.Itoa(n)
				name = truncate(base, sheetload.MaxIdentifierLength-len(suffix)) + suffix
				if seen[name] == 0 {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 1

		res.Columns = append(res.Columns, sheetload.Column{Name: name, Index: i})
	}

	if len(res.Columns) == 0 {
		return res, fmt.Errorf("file column headers are missing: %w", sheetload.ErrEmptyHeader)
	}
	return res, nil
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SnakeCase turns arbitrary header text into a lowercase identifier:
// accents are folded, words split at non-alphanumerics, at lower-to-upper
// transitions and at the end of an acronym, then joined with underscores.
// Letters outside ASCII after folding are treated as separators.
func SnakeCase(s string) string {
	folded, _, err := transform.String(foldAccents, strings.TrimSpace(s))
	if err != nil {
		folded = s
	}

	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	rs := []rune(folded)
	for i, r := range rs {
		if !isWordRune(r) {
			flush()
			continue
		}
		if len(cur) > 0 && isUpper(r) {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(rs) && isLower(rs[i+1])
			// firstName -> first|Name, HTTPStatus -> HTTP|Status
			if isLower(prev) || isDigit(prev) || (isUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return strings.Join(words, "_")
}

func isWordRune(r rune) bool { return isLower(r) || isUpper(r) || isDigit(r) }
func isLower(r rune) bool    { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool    { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool    { return r >= '0' && r <= '9' }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "_")
}
