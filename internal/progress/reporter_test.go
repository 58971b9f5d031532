package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{w: &buf}
	r.Start(2)
	r.Page(1, "/blog", 200)
	r.Page(2, "/events/summit", 502)
	r.Finish()

	want := "Exporting 2 pages\n" +
		"[1/2] /blog ok\n" +
		"[2/2] /events/summit failed (502 Bad Gateway)\n" +
		"Exported 2 pages, 1 failed\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter(&bytes.Buffer{}).(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}

func TestTerminalReporterWritesBar(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	var buf bytes.Buffer
	r := NewReporter(&buf)
	if _, ok := r.(*TerminalReporter); !ok {
		t.Fatalf("expected TerminalReporter, got %T", r)
	}
	r.Start(3)
	r.Page(1, "/", 200)
	r.Page(2, "/blog", 404)
	r.Finish()
	if !strings.HasSuffix(buf.String(), "Exported 3 pages, 1 failed\n") {
		t.Errorf("missing summary line: %q", buf.String())
	}
}

func TestCIReporterAllPagesOK(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{w: &buf}
	r.Start(1)
	r.Page(1, "/", 200)
	r.Finish()
	if !strings.HasSuffix(buf.String(), "Exported 1 pages\n") {
		t.Errorf("output = %q", buf.String())
	}
}
