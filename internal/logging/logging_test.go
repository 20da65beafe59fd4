package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	if err := SetLevel("warn"); err != nil {
		t.Fatal(err)
	}
	Info("hidden")
	Warn("unknown render info type", "name", "gsys_alpha_test", "type", 7)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message passed a warn filter")
	}
	if !strings.Contains(out, "gsys_alpha_test") {
		t.Errorf("warn message missing: %q", out)
	}
	if err := SetLevel("loud"); err == nil {
		t.Error("bad level accepted")
	}
}
