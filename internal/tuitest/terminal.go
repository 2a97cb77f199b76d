package tuitest

import (
	"bytes"
	"io"
)

// terminalQueries maps the probes bubbletea and termenv send at startup to
// the replies a dark terminal would give.
var terminalQueries = []struct {
	query, reply []byte
}{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	pendingLimit = 256
	pendingKeep  = 64
)

// terminalResponder answers terminal queries found in the child's output so
// programs that block on a reply keep running under the PTY.
type terminalResponder struct {
	w       io.Writer
	pending []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, pending: make([]byte, 0, pendingLimit/2)}
}

// Process scans chunk together with any unmatched tail of earlier chunks.
func (r *terminalResponder) Process(chunk []byte) {
	r.pending = append(r.pending, chunk...)
	for r.answerNext() {
	}
	if len(r.pending) > pendingLimit {
		r.pending = append(r.pending[:0], r.pending[len(r.pending)-pendingKeep:]...)
	}
}

// answerNext replies to the earliest query in the pending bytes and drops
// everything up to its end.
func (r *terminalResponder) answerNext() bool {
	first, end := -1, 0
	var reply []byte
	for _, q := range terminalQueries {
		idx := bytes.Index(r.pending, q.query)
		if idx >= 0 && (first < 0 || idx < first) {
			first, end, reply = idx, idx+len(q.query), q.reply
		}
	}
	if first < 0 {
		return false
	}
	r.pending = r.pending[end:]
	_, _ = r.w.Write(reply)
	return true
}
