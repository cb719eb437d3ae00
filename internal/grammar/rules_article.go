package grammar

import "regexp"

// bareToDefinite is a small lexicon of common nouns mapping their
// indefinite (bare) form to the postposed-definite-article form
// (spec §4.2: -ът/-та/-то/-те suffix family).
var bareToDefinite = map[string]string{
	"маса":  "масата",
	"стол":  "столът",
	"град":  "градът",
	"жена":  "жената",
	"човек": "човекът",
	"кафе":  "кафето",
}

var articleRE = buildBareNounBeforeCopulaRE()

func buildBareNounBeforeCopulaRE() *regexp.Regexp {
	// Matches a bare noun from the lexicon immediately followed by the
	// copula "е" (subject-of-copula position, one of the positions
	// spec §4.2 calls out as requiring the definite article). Word
	// boundaries are spelled out as start/end of text or a non-letter,
	// since Go's \b is ASCII-only; group 1 is the noun, group 2 the copula.
	pattern := `(?:^|[^\p{L}])(`
	first := true
	for bare := range bareToDefinite {
		if !first {
			pattern += "|"
		}
		pattern += regexp.QuoteMeta(bare)
		first = false
	}
	pattern += `)(\s+е)(?:$|[^\p{L}])`
	return regexp.MustCompile(pattern)
}

// detectMissingArticle detects noun phrases in positions requiring the
// postposed definite article that lack it.
func detectMissingArticle(nt normalizedText) []Correction {
	var out []Correction
	for _, loc := range articleRE.FindAllStringSubmatchIndex(nt.lower, -1) {
		bareStart, bareEnd := loc[2], loc[3]
		copulaEnd := loc[5]
		bare := nt.lower[bareStart:bareEnd]
		definite, ok := bareToDefinite[bare]
		if !ok {
			continue
		}
		before := nt.kept[bareStart:copulaEnd]
		after := definite + nt.kept[bareEnd:copulaEnd]
		out = append(out, Correction{
			ErrorCategory: "article",
			Before:        before,
			After:         after,
			ErrorTag:      "bg.article.missing_postposed",
			Start:         bareStart,
			End:           copulaEnd,
		})
	}
	return out
}
