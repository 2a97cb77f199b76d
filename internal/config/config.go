// Package config loads pagewise settings from PAGEWISE_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const appDir = "pagewise"

type Config struct {
	DataDir     string        `env:"DATA_DIR,expand"`
	LogFile     string        `env:"LOG_FILE,expand"`
	NoAltScreen bool          `env:"NO_ALT_SCREEN"`
	Reader      Reader        `envPrefix:"READER_"`
	LLM         LLM           `envPrefix:"LLM_"`
	SaveTimeout time.Duration `env:"SAVE_TIMEOUT" envDefault:"10s"`
}

type Reader struct {
	PagesPerDay      int           `env:"PAGES_PER_DAY" envDefault:"10"`
	Quiescence       time.Duration `env:"QUIESCENCE" envDefault:"150ms"`
	FrameInterval    time.Duration `env:"FRAME_INTERVAL" envDefault:"16ms"`
	InitialZoom      float64       `env:"INITIAL_ZOOM" envDefault:"1.5"`
	SurfaceCacheSize int           `env:"SURFACE_CACHE_SIZE" envDefault:"32"`
}

type LLM struct {
	Provider string        `env:"PROVIDER" envDefault:"ollama"`
	Model    string        `env:"MODEL,expand"`
	Endpoint string        `env:"ENDPOINT,expand"`
	APIKey   string        `env:"API_KEY,expand"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"3m"`
}

// Parse reads the environment. An empty data directory resolves to the
// user's config directory.
func Parse() (*Config, error) {
	conf, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix: "PAGEWISE_",
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if conf.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = os.TempDir()
		}
		conf.DataDir = filepath.Join(base, appDir)
	}
	return &conf, nil
}

// DatabasePath is the SQLite file holding plan metadata.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "plans.db")
}

// BlobDir holds the stored PDF payloads.
func (c *Config) BlobDir() string {
	return filepath.Join(c.DataDir, "blobs")
}
