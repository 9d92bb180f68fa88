package utils

import (
	"slices"
	"testing"
)

func TestParseHeaderArgs(t *testing.T) {
	got := ParseHeaderArgs([]string{"Accept-Language: en-US", "X-Token:abc:def", "broken", " Spaced :  value "})
	want := map[string]string{"Accept-Language": "en-US", "X-Token": "abc:def", "Spaced": "value"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("header %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"plain name":         "plain name",
		"a/b\\c":             "a_b_c",
		`what?*"<>|`:         "what_",
		"  padded  ":         "padded",
		"tab\there":          "tab_here",
		"Lecture 3: Streams": "Lecture 3_ Streams",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetRandomUserAgent(t *testing.T) {
	if ua := GetRandomUserAgent(); !slices.Contains(userAgents, ua) {
		t.Errorf("unexpected user agent %q", ua)
	}
}
