package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

// TestLoggingHelpers_WriteToBuffer verifies the package helper functions write
// formatted messages to the package-level logger `L`. The test swaps `L` with
// a buffer-backed logger and restores it afterwards.
func TestLoggingHelpers_WriteToBuffer(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	L = clog.New(&buf)
	L.SetLevel(clog.DebugLevel)
	defer func() { L = prev }()

	Debugf("hello %s", "dbg")
	Infof("info %d", 1)
	Warnf("warn")
	Errorf("err %v", "E")
	ErrorErr("failed to parse keybox info", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"hello dbg", "info 1", "warn", "err E", "failed to parse keybox info", "boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output; got: %s", want, out)
		}
	}
}

func TestSetDebug_FiltersDebugLines(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	defer func() { L = prev }()

	SetOutput(&buf)
	SetDebug(false)
	Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug line emitted while debug disabled: %s", buf.String())
	}

	SetDebug(true)
	Debugf("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug line missing after SetDebug(true): %s", buf.String())
	}
	if !strings.Contains(buf.String(), Tag) {
		t.Fatalf("expected prefix %q in output: %s", Tag, buf.String())
	}
}
