// Package tuitest drives the pagewise binary inside a pseudo terminal and
// records what it draws.
package tuitest

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/pkg/errors"
)

const (
	defaultWidth   = 100
	defaultHeight  = 32
	defaultTimeout = 10 * time.Second
)

// Step is one scripted interaction. Delay is waited out before Input is
// written.
type Step struct {
	Delay time.Duration
	Input []byte
}

// Type returns steps that write text one key at a time, pause apart.
func Type(text string, pause time.Duration) []Step {
	steps := make([]Step, 0, len(text))
	for _, r := range text {
		steps = append(steps, Step{Delay: pause, Input: []byte(string(r))})
	}
	return steps
}

// Config describes the program to spawn and the script to replay.
type Config struct {
	Command []string
	Dir     string
	// Env is appended to the current environment.
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Recording holds the raw terminal stream and the frames parsed from it.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// Run starts the command in a PTY, replays the steps and waits for it to exit.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cfg = withDefaults(cfg)
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(cfg.Height), Cols: uint16(cfg.Width)})
	if err != nil {
		return nil, errors.Wrap(err, "tuitest: start program")
	}
	defer func() { _ = ptmx.Close() }()

	var output bytes.Buffer
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		capture(ptmx, &output)
	}()

	start := time.Now()
	if err := replay(ctx, ptmx, cfg.Steps); err != nil {
		return nil, err
	}
	if err := wait(ctx, cmd, cfg); err != nil {
		return nil, err
	}

	// Closing the PTY lets the capture goroutine drain.
	_ = ptmx.Close()
	<-copyDone

	raw := output.Bytes()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(start)}, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// capture copies the terminal stream into out, answering the queries
// bubbletea and termenv send on startup.
func capture(ptmx io.ReadWriter, out *bytes.Buffer) {
	responder := newTerminalResponder(ptmx)
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			responder.Process(chunk)
			_, _ = out.Write(chunk)
		}
		if err != nil {
			return
		}
	}
}

func replay(ctx context.Context, w io.Writer, steps []Step) error {
	for _, step := range steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "tuitest: script interrupted")
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) == 0 {
			continue
		}
		if _, err := w.Write(step.Input); err != nil {
			return errors.Wrap(err, "tuitest: write input")
		}
	}
	return nil
}

func wait(ctx context.Context, cmd *exec.Cmd, cfg Config) error {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err == nil || exitAllowed(err, cfg) {
			return nil
		}
		return errors.Wrap(err, "tuitest: program exited with error")
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "tuitest: timeout waiting for program exit")
	}
}

func exitAllowed(err error, cfg Config) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range cfg.AllowedExitCodes {
			if exitErr.ExitCode() == code {
				return true
			}
		}
	}
	return cfg.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt")
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

var (
	KeyEnter = []byte{'\r'}
	KeyCtrlC = []byte{3}
	KeyEsc   = []byte{27}
	// KeyRight and KeyLeft turn pages in the reader.
	KeyRight = []byte("\x1b[C")
	KeyLeft  = []byte("\x1b[D")
)
