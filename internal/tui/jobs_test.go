package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

func TestJobOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want jobStatus
	}{
		{nil, jobStatusSucceeded},
		{context.Canceled, jobStatusCancelled},
		{errors.Wrap(context.Canceled, "render page 3"), jobStatusCancelled},
		{fmt.Errorf("save: %w", context.DeadlineExceeded), jobStatusFailed},
		{errors.New("boom"), jobStatusFailed},
	}
	for _, tt := range tests {
		if got := jobOutcome(tt.err); got != tt.want {
			t.Errorf("jobOutcome(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestJobIDsAreUniquePerBus(t *testing.T) {
	bus := newJobBus()
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		start := bus.Start(context.Background(), jobKindSave, func(context.Context) (tea.Msg, error) { return nil, nil })
		cmds, ok := sequenceCmds(start())
		if !ok || len(cmds) == 0 {
			t.Fatal("Start should return a sequence")
		}
		signal, ok := cmds[0]().(jobSignalMsg)
		if !ok {
			t.Fatalf("first command should announce the job")
		}
		if seen[signal.Snapshot.ID] {
			t.Fatalf("duplicate job id %s", signal.Snapshot.ID)
		}
		seen[signal.Snapshot.ID] = true
	}
}
