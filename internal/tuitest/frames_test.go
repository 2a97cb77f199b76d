package tuitest

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFramesSplitsOnClear(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[H\x1b[1mpagewise\x1b[0m  \r\nLoading…\r\n\x1b[2J\x1b[HPage 2 / 4\r\n\r\n")
	rec := &Recording{Raw: raw, Frames: parseFrames(raw)}

	if len(rec.Frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(rec.Frames))
	}
	if rec.Frames[0].Plain != "pagewise\nLoading…" {
		t.Fatalf("first frame = %q", rec.Frames[0].Plain)
	}
	final, ok := rec.FinalFrame()
	if !ok || final.Plain != "Page 2 / 4" {
		t.Fatalf("final frame = %q", final.Plain)
	}
	frame, ok := rec.LastFrameContaining("Loading")
	if !ok || frame.Index != 0 {
		t.Fatalf("LastFrameContaining = %+v, %v", frame, ok)
	}
	if _, ok := rec.LastFrameContaining("quiz"); ok {
		t.Fatal("matched text that was never drawn")
	}
	if plain := rec.PlainText(); !strings.Contains(plain, "pagewise") || strings.Contains(plain, "\x1b") {
		t.Fatalf("PlainText = %q", plain)
	}
}

func TestResponderAnswersCursorQuery(t *testing.T) {
	var replies bytes.Buffer
	responder := newTerminalResponder(&replies)
	responder.Process([]byte("abc\x1b[6"))
	responder.Process([]byte("n tail"))
	if replies.String() != "\x1b[1;1R" {
		t.Fatalf("reply = %q", replies.String())
	}
}

func TestTypeSplitsKeys(t *testing.T) {
	steps := Type("+l", 0)
	if len(steps) != 2 || string(steps[0].Input) != "+" || string(steps[1].Input) != "l" {
		t.Fatalf("steps = %+v", steps)
	}
}

func TestResponderRepliesInQueryOrder(t *testing.T) {
	var replies bytes.Buffer
	responder := newTerminalResponder(&replies)
	responder.Process([]byte("\x1b]11;?\x07x\x1b[6n"))
	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if replies.String() != want {
		t.Fatalf("replies = %q, want %q", replies.String(), want)
	}
}
