package grammar

import "regexp"

// feminineSubjects is a small lexicon of feminine subject-noun phrases
// (recognizable by the postposed definite suffix -та) paired with the
// masculine-form adjective -> feminine-form adjective map below.
var feminineSubjects = map[string]bool{
	"жената": true, "масата": true, "книгата": true,
}

var masculineToFeminineAdj = map[string]string{
	"добър": "добра",
	"голям":  "голяма",
	"хубав":  "хубава",
}

// The greedy \p{L}+ groups already span whole words; Go's ASCII-only \b
// would never match next to Cyrillic letters.
var agreementRE = regexp.MustCompile(`(\p{L}+)\s+е\s+(\p{L}+)`)

// detectAgreement detects nominal gender mismatches between a feminine
// subject and a masculine-form predicate adjective.
func detectAgreement(nt normalizedText) []Correction {
	var out []Correction
	for _, loc := range agreementRE.FindAllStringSubmatchIndex(nt.lower, -1) {
		subj := nt.lower[loc[2]:loc[3]]
		adj := nt.lower[loc[4]:loc[5]]
		if !feminineSubjects[subj] {
			continue
		}
		fem, ok := masculineToFeminineAdj[adj]
		if !ok {
			continue
		}
		before := nt.kept[loc[0]:loc[1]]
		after := nt.kept[loc[0]:loc[4]] + fem
		out = append(out, Correction{
			ErrorCategory: "agreement",
			Before:        before,
			After:         after,
			ErrorTag:      "bg.agreement.gender_number",
			Start:         loc[0],
			End:           loc[1],
		})
	}
	return out
}
