package stdparse_test

import (
	"testing"

	"alan.dev/alanc/internal/stdparse"
)

func TestMatchInt(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"42", "42", true},
		{"42abc", "42", true},
		{"abc", "", false},
	}
	for _, c := range cases {
		got, ok := stdparse.MatchInt(c.in)
		if ok != c.wantOK || got != c.want {
			t.Errorf("MatchInt(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.wantOK)
		}
	}
}

func TestMatchFloat(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"3.14", "3.14", true},
		{"3.14xyz", "3.14", true},
		{"abc", "", false},
	}
	for _, c := range cases {
		got, ok := stdparse.MatchFloat(c.in)
		if ok != c.wantOK || got != c.want {
			t.Errorf("MatchFloat(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.wantOK)
		}
	}
}
