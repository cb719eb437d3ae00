package grammar

import "regexp"

// modalVerbs require да + present indicative rather than a bare present
// indicative (spec §4.2: "bare-infinitive-like pattern"). Go's \b only
// knows ASCII word characters, so the boundary before the modal is written
// as start-of-text or a non-letter; group 1 is the modal itself.
var modalVerbRE = regexp.MustCompile(`(?:^|[^\p{L}])(искам|мога|трябва|започвам|спирам)\s+(\p{L}+)`)

// imperfectiveToPerfectiveDa maps a handful of common imperfective present
// forms to the perfective form used after да in natural speech (e.g.
// "поръчвам" (I am ordering, habitual) -> "поръчам" (I'll order, one time)).
// Verbs absent from this lexicon are kept as-is; only да is inserted.
var imperfectiveToPerfectiveDa = map[string]string{
	"поръчвам": "поръчам",
	"правя":    "направя",
	"пиша":     "напиша",
	"купувам":  "купя",
}

// detectBareInfinitive detects modal verb + bare present indicative where
// Bulgarian requires modal + да + present indicative.
func detectBareInfinitive(nt normalizedText) []Correction {
	var out []Correction
	for _, loc := range modalVerbRE.FindAllStringSubmatchIndex(nt.lower, -1) {
		modalStart, modalEnd := loc[2], loc[3]
		verbStart, verbEnd := loc[4], loc[5]
		verb := nt.lower[verbStart:verbEnd]
		if verb == "да" {
			continue // already correctly formed
		}
		daForm := nt.kept[verbStart:verbEnd]
		if perfective, ok := imperfectiveToPerfectiveDa[verb]; ok {
			daForm = perfective
		}
		before := nt.kept[modalStart:loc[1]]
		after := nt.kept[modalStart:modalEnd] + " да " + daForm
		out = append(out, Correction{
			ErrorCategory: "infinitive",
			Before:        before,
			After:         after,
			ErrorTag:      "bg.no_infinitive.da_present",
			Start:         modalStart,
			End:           loc[1],
		})
	}
	return out
}
