package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != 8080 {
		t.Errorf("Port = %d, want 8080", c.Port)
	}
	if c.LLMProvider != "dummy" {
		t.Errorf("LLMProvider = %q, want dummy", c.LLMProvider)
	}
	if c.VADTailMs != 250 {
		t.Errorf("VADTailMs = %d, want 250", c.VADTailMs)
	}
}

func TestLoadRejectsBadLLMProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "bogus")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad LLM_PROVIDER")
	}
}

func TestLoadRejectsBadL1(t *testing.T) {
	t.Setenv("DEFAULT_L1_LANGUAGE", "FR")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported L1")
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, b ,,c")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
