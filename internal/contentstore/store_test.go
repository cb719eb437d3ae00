package contentstore

import "testing"

func TestLoadRealContent(t *testing.T) {
	s, err := Load("../../content")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Version() == "" {
		t.Error("expected non-empty version")
	}
	it, ok := s.GetItem("bg.no_infinitive.da_present")
	if !ok {
		t.Fatal("expected bg.no_infinitive.da_present to exist")
	}
	if note, ok := s.ContrastFor(it, "PL"); !ok || note == "" {
		t.Error("expected PL contrast note")
	}
	found := s.FindTriggers("bare_infinitive_pattern")
	if len(found) != 1 || found[0].ID != it.ID {
		t.Errorf("FindTriggers = %v", found)
	}
	scenarios := s.ListScenarios()
	if len(scenarios) == 0 {
		t.Error("expected scenarios")
	}
}

func TestBuildRejectsDuplicateID(t *testing.T) {
	items := []GrammarItem{{ID: "bg.x.y"}, {ID: "bg.x.y"}}
	if _, err := build(items, nil); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestBuildRejectsUnsupportedL1(t *testing.T) {
	items := []GrammarItem{{ID: "bg.x.y", ContrastNote: map[string]string{"FR": "no"}}}
	if _, err := build(items, nil); err == nil {
		t.Fatal("expected unsupported L1 error")
	}
}

func TestBuildRejectsDanglingScenarioRef(t *testing.T) {
	items := []GrammarItem{{ID: "bg.x.y"}}
	scenarios := []Scenario{{ID: "s1", Grammar: GrammarBinding{Primary: []string{"bg.missing"}}}}
	if _, err := build(items, scenarios); err == nil {
		t.Fatal("expected dangling reference error")
	}
}
