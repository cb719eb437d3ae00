package grammar

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRE   = regexp.MustCompile(`\s+`)
	combiningAcute = "́"
)

// normalizedText holds the two case-aligned views of a transcript that
// detectors operate on: kept (original case, marks stripped, whitespace
// collapsed) for span extraction, and lower (case-folded copy of kept,
// identical byte length since Cyrillic upper/lower mapping is one rune
// to one rune) for case-insensitive matching.
type normalizedText struct {
	kept  string
	lower string
}

// normalize implements spec §4.2 step 1: NFC compose, collapse internal
// whitespace, trim, strip combining acute stress marks. The lowercase view
// is derived for matching only; span extraction always uses kept.
func normalize(s string) normalizedText {
	composed := norm.NFC.String(s)
	composed = strings.ReplaceAll(composed, combiningAcute, "")
	composed = whitespaceRE.ReplaceAllString(composed, " ")
	composed = strings.TrimSpace(composed)
	return normalizedText{kept: composed, lower: strings.ToLower(composed)}
}

// splitClauses splits kept text into clauses on sentence punctuation,
// returning each clause's byte offset into kept alongside its text.
func splitClauses(kept string) []clause {
	var out []clause
	start := 0
	for i, r := range kept {
		if r == '.' || r == '!' || r == '?' {
			if i > start {
				out = append(out, clause{text: kept[start:i], offset: start})
			}
			start = i + 1
		}
	}
	if start < len(kept) {
		out = append(out, clause{text: kept[start:], offset: start})
	}
	return out
}

type clause struct {
	text   string
	offset int
}
