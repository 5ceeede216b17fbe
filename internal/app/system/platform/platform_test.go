package platform_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/verity/internal/app/system/platform"
)

func TestSource(t *testing.T) {
	cases := []struct {
		pid  string
		want string
	}{
		{"prolific_abc123", platform.SourceProlific},
		{"PROLIFIC_abc123", platform.SourceProlific},
		{"mturk_A9XQ44", platform.SourceMTurk},
		{"resp_7f2", platform.SourceRespond},
		{"panel_xyz", platform.SourceUnknown},
		{"noprefix", platform.SourceUnknown},
		{"", ""},
	}
	for _, c := range cases {
		if got := platform.Source(c.pid); got != c.want {
			t.Errorf("Source(%q) = %q, want %q", c.pid, got, c.want)
		}
	}
}

func TestMask(t *testing.T) {
	got := platform.Mask("prolific_abc12345")
	if got == "prolific_abc12345" {
		t.Error("mask must not return the full id")
	}
	if !strings.Contains(got, "…") {
		t.Errorf("expected ellipsis in masked id, got %q", got)
	}
	if !strings.HasSuffix(got, "45") {
		t.Errorf("expected tail preserved, got %q", got)
	}

	if platform.Mask("") != "" {
		t.Error("empty id masks to empty")
	}
	if short := platform.Mask("abc"); strings.Contains(short, "a") {
		t.Errorf("short ids must be fully masked, got %q", short)
	}
}
