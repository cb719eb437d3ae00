package grammar

import "regexp"

// Word boundaries are written as start/end of text or a non-letter, since
// Go's \b only recognizes ASCII word characters.
var futureAdverbRE = regexp.MustCompile(`(?:^|[^\p{L}])(утре|довечера|след)(?:$|[^\p{L}])`)
var shteRE = regexp.MustCompile(`(?:^|[^\p{L}])ще(?:$|[^\p{L}])`)

// presentToFutureVerb maps a present-indicative verb form that commonly
// pairs with a future-time adverbial to the form used after ще.
var presentToFutureVerb = map[string]string{
	"идвам":  "дойда",
	"отивам": "отида",
	"пиша":   "пиша",
	"виждам": "видя",
}

var futureVerbRE = buildFutureVerbRE()

func buildFutureVerbRE() *regexp.Regexp {
	pattern := `(?:^|[^\p{L}])(`
	first := true
	for verb := range presentToFutureVerb {
		if !first {
			pattern += "|"
		}
		pattern += verb
		first = false
	}
	pattern += `)(?:$|[^\p{L}])`
	return regexp.MustCompile(pattern)
}

// detectFutureWithoutShte detects future-time adverbials paired with
// present indicative instead of ще + present, within the same clause.
func detectFutureWithoutShte(nt normalizedText) []Correction {
	var out []Correction
	for _, cl := range splitClauses(nt.lower) {
		if !futureAdverbRE.MatchString(cl.text) || shteRE.MatchString(cl.text) {
			continue
		}
		verbLoc := futureVerbRE.FindStringSubmatchIndex(cl.text)
		if verbLoc == nil {
			continue
		}
		absStart := cl.offset + verbLoc[2]
		absEnd := cl.offset + verbLoc[3]
		verb := cl.text[verbLoc[2]:verbLoc[3]]
		future := presentToFutureVerb[verb]

		before := nt.kept[absStart:absEnd]
		after := "ще " + future
		out = append(out, Correction{
			ErrorCategory: "future",
			Before:        before,
			After:         after,
			ErrorTag:      "bg.future.missing_shte",
			Start:         absStart,
			End:           absEnd,
		})
	}
	return out
}
