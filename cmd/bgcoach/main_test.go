package main

import "testing"

func TestRunCheckContentAgainstRealContent(t *testing.T) {
	t.Setenv("CONTENT_DIR", "nonexistent-unless-overridden")
	code := runCheckContent([]string{"--dir", "../../content"})
	if code != exitOK {
		t.Errorf("runCheckContent exit code = %d, want %d", code, exitOK)
	}
}

func TestRunCheckContentMissingDir(t *testing.T) {
	code := runCheckContent([]string{"--dir", "/nonexistent/path/for/test"})
	if code != exitContent {
		t.Errorf("runCheckContent exit code = %d, want %d", code, exitContent)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug": "DEBUG",
		"warn":  "WARN",
		"error": "ERROR",
		"info":  "INFO",
		"":      "INFO",
	}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
