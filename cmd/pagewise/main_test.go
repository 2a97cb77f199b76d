package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/csheth/pagewise/internal/document/pdftest"
)

func runApp(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	if err := app.Run(append([]string{"pagewise"}, args...)); err != nil {
		t.Fatalf("pagewise %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestImportDaySizeFollowsConfigThenFlag(t *testing.T) {
	t.Setenv("PAGEWISE_DATA_DIR", t.TempDir())
	t.Setenv("PAGEWISE_READER_PAGES_PER_DAY", "2")

	pdfPath := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(pdfPath, pdftest.Build("one", "two", "three", "four"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if out := runApp(t, "import", pdfPath); !strings.Contains(out, "4 pages over 2 days") {
		t.Fatalf("environment day size ignored:\n%s", out)
	}
	if out := runApp(t, "import", "--per-day", "1", pdfPath); !strings.Contains(out, "4 pages over 4 days") {
		t.Fatalf("--per-day did not override the environment:\n%s", out)
	}
}
