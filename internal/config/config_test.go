package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("PAGEWISE_DATA_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	conf, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if conf.Reader.PagesPerDay != 10 || conf.Reader.Quiescence != 150*time.Millisecond || conf.Reader.InitialZoom != 1.5 {
		t.Fatalf("unexpected reader defaults: %+v", conf.Reader)
	}
	if conf.LLM.Provider != "ollama" || conf.LLM.Timeout != 3*time.Minute {
		t.Fatalf("unexpected llm defaults: %+v", conf.LLM)
	}
	if filepath.Base(conf.DataDir) != appDir {
		t.Fatalf("data dir = %q", conf.DataDir)
	}
}

func TestParseOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PAGEWISE_DATA_DIR", dir)
	t.Setenv("PAGEWISE_READER_PAGES_PER_DAY", "5")
	t.Setenv("PAGEWISE_READER_QUIESCENCE", "80ms")
	t.Setenv("PAGEWISE_LLM_PROVIDER", "openai")
	t.Setenv("PAGEWISE_LLM_MODEL", "gpt-test")

	conf, err := Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if conf.Reader.PagesPerDay != 5 || conf.Reader.Quiescence != 80*time.Millisecond {
		t.Fatalf("reader overrides ignored: %+v", conf.Reader)
	}
	if conf.LLM.Provider != "openai" || conf.LLM.Model != "gpt-test" {
		t.Fatalf("llm overrides ignored: %+v", conf.LLM)
	}
	if conf.DatabasePath() != filepath.Join(dir, "plans.db") || conf.BlobDir() != filepath.Join(dir, "blobs") {
		t.Fatalf("unexpected paths: %s %s", conf.DatabasePath(), conf.BlobDir())
	}

	t.Setenv("PAGEWISE_READER_QUIESCENCE", "soon")
	if _, err := Parse(); err == nil {
		t.Fatal("invalid duration should fail")
	}
}
