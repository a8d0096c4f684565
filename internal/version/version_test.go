package version

import (
	"strings"
	"testing"
)

func TestVersionStringNonEmpty(t *testing.T) {
	if s := String(); s == "" {
		t.Fatalf("version string is empty")
	}
}

func TestVersionStringIncludesOverrides(t *testing.T) {
	oldC, oldD := Commit, Date
	t.Cleanup(func() { Commit, Date = oldC, oldD })
	Commit, Date = "abc1234", "2025-01-02"
	s := String()
	if !strings.HasPrefix(s, Version) || !strings.Contains(s, "(abc1234)") || !strings.HasSuffix(s, "built 2025-01-02") {
		t.Fatalf("version string = %q", s)
	}
}
