package grammar

import "strings"

// cliticSet holds short pronoun/auxiliary clitics forbidden in
// sentence-initial (Wackernagel-violating) position.
var cliticSet = map[string]bool{
	"ме": true, "те": true, "го": true, "я": true,
	"ни": true, "ви": true, "ги": true,
	"съм": true, "си": true, "е": true, "сме": true, "сте": true, "са": true,
}

// detectCliticMisplacement detects a sentence-initial clitic and proposes
// moving it after the following word (typically the verb it attaches to).
func detectCliticMisplacement(nt normalizedText) []Correction {
	var out []Correction
	for _, cl := range splitClauses(nt.kept) {
		lowerClause := strings.ToLower(cl.text)
		tokens, offsets := tokenize(lowerClause)
		if len(tokens) < 2 {
			continue
		}
		if !cliticSet[tokens[0]] {
			continue
		}
		// "не" + clitic is permitted under Wackernagel rules; skip.
		if tokens[0] == "не" {
			continue
		}

		cliticStart := cl.offset + offsets[0][0]
		lastTok := len(tokens) - 1
		restEnd := cl.offset + offsets[lastTok][1]

		before := nt.kept[cliticStart:restEnd]
		reordered := append([]string{tokens[1], tokens[0]}, tokens[2:]...)
		after := capitalizeFirst(strings.Join(reordered, " "))

		out = append(out, Correction{
			ErrorCategory: "clitic",
			Before:        before,
			After:         after,
			ErrorTag:      "bg.clitic.wackernagel",
			Start:         cliticStart,
			End:           restEnd,
		})
	}
	return out
}

func capitalizeFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

// tokenize splits s on whitespace, returning tokens and their [start,end)
// byte offsets into s.
func tokenize(s string) ([]string, [][2]int) {
	var tokens []string
	var offsets [][2]int
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				tokens = append(tokens, s[start:i])
				offsets = append(offsets, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, s[start:])
		offsets = append(offsets, [2]int{start, len(s)})
	}
	return tokens, offsets
}
