package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/csheth/pagewise/internal/document/pdftest"
	"github.com/csheth/pagewise/internal/tuitest"
)

func TestEmptyLibraryExplainsImport(t *testing.T) {
	t.Parallel()

	binary := buildBinary(t, moduleDir(t))
	dataDir := t.TempDir()
	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "read"},
		Env:     []string{"PAGEWISE_DATA_DIR=" + dataDir},
		Steps: []tuitest.Step{
			{Delay: time.Second},
			{Input: tuitest.KeyCtrlC},
		},
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if _, ok := rec.LastFrameContaining("No reading plans yet"); !ok && !strings.Contains(rec.PlainText(), "No reading plans yet") {
		t.Fatalf("empty library text missing:\n%s", rec.PlainText())
	}
}

func TestImportListAndRead(t *testing.T) {
	t.Parallel()

	binary := buildBinary(t, moduleDir(t))
	dataDir := t.TempDir()
	pdfPath := filepath.Join(t.TempDir(), "field-notes.pdf")
	if err := os.WriteFile(pdfPath, pdftest.Build("alpha", "bravo", "charlie", "delta"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	env := append(os.Environ(), "PAGEWISE_DATA_DIR="+dataDir)

	out := runCLI(t, env, binary, "import", "--pages", "2-3", "--per-day", "1", pdfPath)
	if !strings.Contains(out, `Imported "field-notes": 2 pages over 2 days.`) {
		t.Fatalf("import output:\n%s", out)
	}
	planID := strings.TrimSpace(out[strings.LastIndex(out, " ")+1:])

	out = runCLI(t, env, binary, "list")
	if !strings.Contains(out, planID) || !strings.Contains(out, "0/2 days") {
		t.Fatalf("list output:\n%s", out)
	}

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "read", planID},
		Env:     []string{"PAGEWISE_DATA_DIR=" + dataDir},
		Steps: []tuitest.Step{
			{Delay: 1500 * time.Millisecond},
			{Input: tuitest.KeyCtrlC},
		},
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if plain := rec.PlainText(); !strings.Contains(plain, "Page 1 / 1") {
		t.Fatalf("reader did not open day 1:\n%s", plain)
	}

	out = runCLI(t, env, binary, "delete", planID)
	if !strings.Contains(out, "Deleted plan") {
		t.Fatalf("delete output:\n%s", out)
	}
	out = runCLI(t, env, binary, "list")
	if !strings.Contains(out, "No reading plans yet") {
		t.Fatalf("plan still listed:\n%s", out)
	}
}

func runCLI(t *testing.T, env []string, binary string, args ...string) string {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Env = env
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("pagewise %s: %v\n%s", strings.Join(args, " "), err, output)
	}
	return string(output)
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	name := "pagewise-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
