package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestJSONFormatSelectsJSONMode(t *testing.T) {
	u := New(&bytes.Buffer{}, &bytes.Buffer{}, "json")

	if u.Mode != OutputModeJSON {
		t.Errorf("Mode = %v, want OutputModeJSON", u.Mode)
	}
	if !u.IsJSON() {
		t.Error("IsJSON() = false for json format")
	}
}

func TestPipedOutputFallsBackToPlain(t *testing.T) {
	u := New(&bytes.Buffer{}, &bytes.Buffer{}, "terminal")

	if u.Mode != OutputModePlain {
		t.Errorf("Mode = %v, want OutputModePlain for a non-TTY writer", u.Mode)
	}
	if u.IsJSON() {
		t.Error("IsJSON() = true for terminal format")
	}
}

func TestNoticefWritesToErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, "terminal")

	u.Noticef("cache write for %s failed", "Alice")

	if out.Len() != 0 {
		t.Errorf("notice leaked to the output writer: %q", out.String())
	}
	got := errOut.String()
	if !strings.Contains(got, "Alice") {
		t.Errorf("notice missing message content: %q", got)
	}
	if !strings.Contains(got, "WARN:") {
		t.Errorf("notice missing plain-mode icon: %q", got)
	}
}

func TestStylesDegradeWithoutTTY(t *testing.T) {
	s := NewStyles(false)

	if s.IconWarning != "WARN:" || s.IconSuccess != "OK:" {
		t.Errorf("icons = %q, %q; want ASCII fallbacks", s.IconWarning, s.IconSuccess)
	}
	if got := s.Success.Render("pronto"); got != "pronto" {
		t.Errorf("disabled style altered text: %q", got)
	}
}
