package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/csheth/pagewise/internal/config"
	"github.com/csheth/pagewise/internal/document"
	"github.com/csheth/pagewise/internal/llm"
	"github.com/csheth/pagewise/internal/plan"
	"github.com/csheth/pagewise/internal/store"
	"github.com/csheth/pagewise/internal/tui"
)

const (
	flagDataDir     = "data-dir"
	flagLogFile     = "log-file"
	flagNoAltScreen = "no-alt-screen"
	flagLLMModel    = "llm-model"
	flagLLMEndpoint = "llm-endpoint"
	flagPages       = "pages"
	flagPerDay      = "per-day"
	flagTitle       = "title"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := &cli.App{
		Name:  "pagewise",
		Usage: "Read a PDF a few pages a day and quiz yourself on each day",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagDataDir,
				Usage: "directory holding the plan database and stored PDFs (env PAGEWISE_DATA_DIR)",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "file the reader logs to (env PAGEWISE_LOG_FILE; default <data-dir>/pagewise.log)",
			},
			&cli.BoolFlag{
				Name:  flagNoAltScreen,
				Usage: "disable the alternate screen buffer",
			},
			&cli.StringFlag{
				Name:  flagLLMModel,
				Usage: "override the quiz model (Ollama default ministral-3:latest)",
			},
			&cli.StringFlag{
				Name:  flagLLMEndpoint,
				Usage: "custom Ollama host or OpenAI base URL",
			},
		},
		Commands: []*cli.Command{
			importCommand(),
			listCommand(),
			readCommand(),
			deleteCommand(),
		},
		Action: readAction,
	}

	app.ExitErrHandler = func(cCtx *cli.Context, err error) {
		if err == nil {
			return
		}
		fmt.Fprintln(cCtx.App.ErrWriter, "pagewise:", err)
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))
	return app
}

// loadConfig reads the environment, then applies flags on top. cCtx may be a
// subcommand context; flag lookups walk up to the global flags.
func loadConfig(cCtx *cli.Context) (*config.Config, error) {
	conf, err := config.Parse()
	if err != nil {
		return nil, errors.Wrap(err, "could not parse configuration")
	}
	if cCtx.IsSet(flagDataDir) {
		conf.DataDir = cCtx.String(flagDataDir)
	}
	if cCtx.IsSet(flagLogFile) {
		conf.LogFile = cCtx.String(flagLogFile)
	}
	if cCtx.Bool(flagNoAltScreen) {
		conf.NoAltScreen = true
	}
	if cCtx.IsSet(flagLLMModel) {
		conf.LLM.Model = cCtx.String(flagLLMModel)
	}
	if cCtx.IsSet(flagLLMEndpoint) {
		conf.LLM.Endpoint = cCtx.String(flagLLMEndpoint)
	}
	if cCtx.IsSet(flagPerDay) {
		conf.Reader.PagesPerDay = cCtx.Int(flagPerDay)
	}
	if conf.LogFile == "" {
		conf.LogFile = filepath.Join(conf.DataDir, "pagewise.log")
	}
	return conf, nil
}

type library struct {
	plans *store.Store
	blobs *store.BlobStore
}

func openLibrary(conf *config.Config) (*library, error) {
	if err := os.MkdirAll(conf.DataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "could not create data directory")
	}
	plans, err := store.Open(conf.DatabasePath())
	if err != nil {
		return nil, err
	}
	blobs, err := store.NewBlobStore(conf.BlobDir())
	if err != nil {
		plans.Close()
		return nil, err
	}
	return &library{plans: plans, blobs: blobs}, nil
}

func (l *library) Close() error {
	return l.plans.Close()
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Split a PDF into a daily reading plan",
		ArgsUsage: "<file.pdf>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagPages,
				Usage: "pages to keep, eg. 1-20,25,30- (default: all)",
			},
			&cli.IntFlag{
				Name:  flagPerDay,
				Usage: "pages to read per day (env PAGEWISE_READER_PAGES_PER_DAY; default 10)",
			},
			&cli.StringFlag{
				Name:  flagTitle,
				Usage: "plan title (default: file name)",
			},
		},
		Action: func(cCtx *cli.Context) error {
			path := cCtx.Args().First()
			if path == "" {
				return errors.New("import needs a PDF file")
			}
			conf, err := loadConfig(cCtx)
			if err != nil {
				return err
			}
			lib, err := openLibrary(conf)
			if err != nil {
				return err
			}
			defer lib.Close()

			payload, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrap(err, "could not read PDF")
			}
			doc, err := document.NewLoader().Load(cCtx.Context, payload)
			if err != nil {
				return errors.Wrapf(err, "could not load %s", path)
			}
			pages, err := plan.ParseSelection(cCtx.String(flagPages), doc.PageCount())
			if err != nil {
				return err
			}

			trimmed, err := document.Decode(payload)
			if err != nil {
				return err
			}
			if len(pages) != doc.PageCount() {
				if trimmed, err = document.SelectPages(trimmed, pages); err != nil {
					return errors.Wrap(err, "could not trim PDF")
				}
			}

			fileName := filepath.Base(path)
			title := strings.TrimSpace(cCtx.String(flagTitle))
			if title == "" {
				title = strings.TrimSuffix(fileName, filepath.Ext(fileName))
			}
			key, err := lib.blobs.Put(trimmed, fileName)
			if err != nil {
				return err
			}
			p, err := plan.New(title, fileName, len(pages), conf.Reader.PagesPerDay, key, time.Now())
			if err != nil {
				return err
			}
			if err := lib.plans.SavePlan(cCtx.Context, p); err != nil {
				return err
			}
			fmt.Fprintf(cCtx.App.Writer, "Imported %q: %d pages over %d days.\nStart reading with: pagewise read %s\n", title, len(pages), len(p.Days), p.ID)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored reading plans",
		Action: func(cCtx *cli.Context) error {
			conf, err := loadConfig(cCtx)
			if err != nil {
				return err
			}
			lib, err := openLibrary(conf)
			if err != nil {
				return err
			}
			defer lib.Close()

			plans, err := lib.plans.ListPlans(cCtx.Context)
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cCtx.App.Writer, "No reading plans yet. Import one with: pagewise import <file.pdf>")
				return nil
			}
			w := tabwriter.NewWriter(cCtx.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPROGRESS\tSIZE\tOPENED")
			for _, p := range plans {
				size := "-"
				if meta, err := lib.blobs.Stat(p.BlobKey); err == nil {
					size = humanize.Bytes(uint64(meta.Size))
				}
				fmt.Fprintf(w, "%s\t%s\t%d/%d days\t%s\t%s\n", p.ID, p.FileName, p.CompletedDays(), len(p.Days), size, humanize.Time(p.LastAccessed))
			}
			return w.Flush()
		},
	}
}

func readCommand() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Open the reader, on a plan's current day when an id is given",
		ArgsUsage: "[plan-id]",
		Action:    readAction,
	}
}

func readAction(cCtx *cli.Context) error {
	conf, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	lib, err := openLibrary(conf)
	if err != nil {
		return err
	}
	defer lib.Close()

	logFile, err := tea.LogToFile(conf.LogFile, "pagewise")
	if err != nil {
		log.SetOutput(io.Discard)
	} else {
		defer logFile.Close()
	}

	llmClient, err := llm.NewFromEnv(llm.Config{
		Provider: conf.LLM.Provider,
		Model:    conf.LLM.Model,
		Endpoint: conf.LLM.Endpoint,
		APIKey:   conf.LLM.APIKey,
		Timeout:  conf.LLM.Timeout,
	})
	if err != nil {
		log.Printf("[reader] quizzes disabled: %v", err)
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion(), tea.WithContext(cCtx.Context)}
	if !conf.NoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Plans:  lib.plans,
			Blobs:  lib.blobs,
			Loader: document.NewLoader(),
			LLM:    llmClient,
			Reader: tui.ReaderOptions{
				Quiescence:       conf.Reader.Quiescence,
				FrameInterval:    conf.Reader.FrameInterval,
				InitialZoom:      conf.Reader.InitialZoom,
				SurfaceCacheSize: conf.Reader.SurfaceCacheSize,
			},
			OpenPlanID:  cCtx.Args().First(),
			SaveTimeout: conf.SaveTimeout,
			Context:     cCtx.Context,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "program error")
	}
	return nil
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove a reading plan and, when unused, its stored PDF",
		ArgsUsage: "<plan-id>",
		Action: func(cCtx *cli.Context) error {
			id := cCtx.Args().First()
			if id == "" {
				return errors.New("delete needs a plan id")
			}
			conf, err := loadConfig(cCtx)
			if err != nil {
				return err
			}
			lib, err := openLibrary(conf)
			if err != nil {
				return err
			}
			defer lib.Close()

			key, err := lib.plans.DeletePlan(cCtx.Context, id)
			if err != nil {
				return err
			}
			inUse, err := lib.plans.BlobInUse(cCtx.Context, key)
			if err != nil {
				return err
			}
			if !inUse {
				if err := lib.blobs.Delete(key); err != nil {
					return err
				}
			}
			fmt.Fprintf(cCtx.App.Writer, "Deleted plan %s.\n", id)
			return nil
		},
	}
}
