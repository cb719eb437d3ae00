package grammar

import (
	"testing"

	"github.com/ilyannn/bgvoicecoach/internal/contentstore"
)

func loadStore(t *testing.T) *contentstore.Store {
	t.Helper()
	s, err := contentstore.Load("../../content")
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	return s
}

func TestDetectBareInfinitiveHappyPath(t *testing.T) {
	d := New(loadStore(t))
	cs := d.Detect("Искам поръчвам кафе.")

	var found *Correction
	for i := range cs {
		if cs[i].ErrorTag == "bg.no_infinitive.da_present" {
			found = &cs[i]
		}
	}
	if found == nil {
		t.Fatalf("expected bg.no_infinitive.da_present correction, got %+v", cs)
	}
	if found.Before != "Искам поръчвам" {
		t.Errorf("Before = %q, want %q", found.Before, "Искам поръчвам")
	}
	if found.After != "Искам да поръчам" {
		t.Errorf("After = %q, want %q", found.After, "Искам да поръчам")
	}
}

func TestDetectEmptyTranscript(t *testing.T) {
	d := New(loadStore(t))
	if cs := d.Detect(""); cs != nil {
		t.Errorf("expected no corrections for empty transcript, got %+v", cs)
	}
}

func TestCorrectionsBeforeIsSubstringAndDiffersFromAfter(t *testing.T) {
	d := New(loadStore(t))
	transcript := "Утре идвам. Ме видя вчера. маса е голяма. жената е добър."
	nt := normalize(transcript)
	for _, c := range d.Detect(transcript) {
		if c.Before == c.After {
			t.Errorf("correction %+v has before == after", c)
		}
		if idx := indexOf(nt.kept, c.Before); idx < 0 {
			t.Errorf("before %q not found in normalized transcript %q", c.Before, nt.kept)
		}
	}
}

func TestDetectFutureWithoutShte(t *testing.T) {
	d := New(loadStore(t))
	cs := d.Detect("Утре идвам на работа.")
	if !hasTag(cs, "bg.future.missing_shte") {
		t.Errorf("expected future correction, got %+v", cs)
	}
}

func TestDetectCliticMisplacement(t *testing.T) {
	d := New(loadStore(t))
	cs := d.Detect("Ме видя вчера.")
	if !hasTag(cs, "bg.clitic.wackernagel") {
		t.Errorf("expected clitic correction, got %+v", cs)
	}
}

func TestDetectAgreementMismatch(t *testing.T) {
	// "жената" already carries the postposed article, so only the
	// agreement rule fires on "жената е добър".
	d := New(loadStore(t))
	cs := d.Detect("жената е добър.")
	if !hasTag(cs, "bg.agreement.gender_number") {
		t.Errorf("expected agreement correction, got %+v", cs)
	}
}

func hasTag(cs []Correction, tag string) bool {
	for _, c := range cs {
		if c.ErrorTag == tag {
			return true
		}
	}
	return false
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
