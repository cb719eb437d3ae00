package grammar

import (
	"sort"

	"github.com/ilyannn/bgvoicecoach/internal/contentstore"
)

// Detector runs the fixed, ordered battery of detectors from spec §4.2
// against a final transcript, using store to resolve error tags to
// explanatory notes (the GrammarItem's micro-explanation).
type Detector struct {
	store *contentstore.Store
}

// New creates a Detector bound to a content store.
func New(store *contentstore.Store) *Detector {
	return &Detector{store: store}
}

// detectorFunc is a pure function of the normalized transcript.
type detectorFunc func(nt normalizedText) []Correction

func (d *Detector) battery() []detectorFunc {
	return []detectorFunc{
		detectMissingArticle,
		detectBareInfinitive,
		detectFutureWithoutShte,
		detectCliticMisplacement,
		detectAgreement,
	}
}

// Detect returns an ordered list of Corrections for transcript, budgeted
// at <=20ms per average utterance on a single core. It takes no L1 code:
// the detector's output does not vary by L1 (only the contrastive note,
// chosen downstream by the Coach Composer, does).
func (d *Detector) Detect(transcript string) []Correction {
	if transcript == "" {
		return nil
	}
	nt := normalize(transcript)

	var all []Correction
	for _, fn := range d.battery() {
		all = append(all, fn(nt)...)
	}

	all = d.resolveNotes(all)
	return dedupeAndSort(all)
}

// resolveNotes fills each Correction's Note from the GrammarItem's
// micro-explanation, and drops Corrections whose error_tag does not
// resolve in the content store (spec §3 Correction invariant).
func (d *Detector) resolveNotes(cs []Correction) []Correction {
	if d.store == nil {
		return cs
	}
	out := make([]Correction, 0, len(cs))
	for _, c := range cs {
		if c.ErrorTag == "" {
			out = append(out, c)
			continue
		}
		item, ok := d.store.GetItem(c.ErrorTag)
		if !ok {
			continue
		}
		if c.Note == "" {
			c.Note = item.ExplainBG
		}
		out = append(out, c)
	}
	return out
}

// dedupeAndSort deduplicates by (error_tag, before-span); when spans
// overlap, keeps the higher-priority tag per the fixed priority order.
// Remaining ties resolve by earliest before-offset, then alphabetical
// error_tag (spec §4.2 steps 4-5).
func dedupeAndSort(cs []Correction) []Correction {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Start != cs[j].Start {
			return cs[i].Start < cs[j].Start
		}
		if priority(cs[i].ErrorCategory) != priority(cs[j].ErrorCategory) {
			return priority(cs[i].ErrorCategory) < priority(cs[j].ErrorCategory)
		}
		return cs[i].ErrorTag < cs[j].ErrorTag
	})

	// Overlaps are resolved in priority order, so a higher-priority
	// correction wins even when a lower-priority one starts earlier; the
	// survivors are returned in the offset order sorted above.
	byPriority := make([]int, len(cs))
	for i := range byPriority {
		byPriority[i] = i
	}
	sort.SliceStable(byPriority, func(a, b int) bool {
		return priority(cs[byPriority[a]].ErrorCategory) < priority(cs[byPriority[b]].ErrorCategory)
	})

	seen := make(map[string]bool)
	keep := make([]bool, len(cs))
	var accepted []Correction
	occupied := make([]span, 0, len(cs))

	for _, i := range byPriority {
		c := cs[i]
		key := c.ErrorTag + "|" + c.Before
		if seen[key] {
			continue
		}
		sp := span{start: c.Start, end: c.End}
		if overlapsHigherPriority(sp, c.ErrorCategory, occupied, accepted) {
			continue
		}
		seen[key] = true
		keep[i] = true
		accepted = append(accepted, c)
		occupied = append(occupied, sp)
	}

	var kept []Correction
	for i, c := range cs {
		if keep[i] {
			kept = append(kept, c)
		}
	}
	return kept
}

type span struct{ start, end int }

func overlapsHigherPriority(sp span, category string, occupied []span, kept []Correction) bool {
	for i, o := range occupied {
		if sp.start < o.end && o.start < sp.end {
			if priority(kept[i].ErrorCategory) <= priority(category) {
				return true
			}
		}
	}
	return false
}
