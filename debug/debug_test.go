package debug

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ============================================================================
// BACKEND SETUP
// ============================================================================

func TestInitRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "chatty", ""); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestDropMessageWritesTaggedRecord(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "debug", ""); err != nil {
		t.Fatal(err)
	}
	DropMessage("TRIAL", "cimap thrpt")

	out := buf.String()
	if !strings.Contains(out, "TRIAL: cimap thrpt") {
		t.Errorf("missing message in %q", out)
	}
	if !strings.Contains(out, "[debug]") {
		t.Errorf("missing module tag in %q", out)
	}
}

func TestDropError(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "debug", ""); err != nil {
		t.Fatal(err)
	}
	DropError("SETUP", errors.New("boom"))
	DropError("GC", nil)

	out := buf.String()
	if !strings.Contains(out, "SETUP: boom") {
		t.Errorf("missing error record in %q", out)
	}
	if !strings.Contains(out, "GC") {
		t.Errorf("missing tag-only record in %q", out)
	}
}

func TestLevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "error", ""); err != nil {
		t.Fatal(err)
	}
	DropMessage("QUIET", "dropped")
	if buf.Len() != 0 {
		t.Errorf("info record leaked past error level: %q", buf.String())
	}
}

func TestFileBackend(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "bench.log")
	if err := Init(&buf, "info", path); err != nil {
		t.Fatal(err)
	}
	DropMessage("FILE", "persisted")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "FILE: persisted") {
		t.Errorf("log file missing record: %q", data)
	}
}
