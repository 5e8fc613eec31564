package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewCIReporter("Seeding patterns", &buf)
	r.Start(2)
	r.Update(1, "greeting")
	r.Update(2, "help")
	r.Finish()

	out := buf.String()
	for _, want := range []string{"Seeding patterns: 2 items", "[1/2] greeting", "[2/2] help", "Seeding patterns: complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*CIReporter); !ok {
		t.Error("expected CIReporter under CI")
	}
}
