package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/midimind"
)

// loopback answers requests the way an instrument does
type loopback struct {
	responder *midimind.Responder
	replies   *replies
	notes     []uint8
}

func (l *loopback) NoteOn(_, note, _ uint8) error {
	l.notes = append(l.notes, note)
	return nil
}

func (l *loopback) NoteOff(uint8, uint8, uint8) error { return nil }

func (l *loopback) ControlChange(uint8, uint8, uint8) error { return nil }

func (l *loopback) SysEx(msg []byte) error {
	reply, err := l.responder.Reply(msg)
	if err != nil {
		return err
	}
	if reply != nil {
		l.replies.OnSysEx(reply)
	}
	return nil
}

func newLoopback() (*connection, *replies, *loopback) {
	r := newReplies(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l := &loopback{
		responder: midimind.NewResponder(midimind.FromConfig(autolyre.DefaultConfig())),
		replies:   r,
	}
	return &connection{sender: l}, r, l
}

func TestFetchIdentification(t *testing.T) {
	c, r, _ := newLoopback()

	id, err := fetchIdentification(c, r, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := midimind.FromConfig(autolyre.DefaultConfig())
	if id.Name != expected.Name {
		t.Errorf("expected=%q, got=%q", expected.Name, id.Name)
	}
	if id.Notes != expected.Notes {
		t.Errorf("expected=%v, got=%v", expected.Notes, id.Notes)
	}
}

func TestRequestTimeout(t *testing.T) {
	c, r, l := newLoopback()
	// replies go to a receiver nobody reads
	l.replies = newReplies(slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := request(c, r, midimind.BlockCapabilities, 20*time.Millisecond)
	if err == nil {
		t.Error("expected timeout error")
	}
}

func TestScale(t *testing.T) {
	c, r, l := newLoopback()

	err := scale(c, r, options{timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(l.notes) != 16 {
		t.Fatalf("expected=16, got=%d", len(l.notes))
	}
	if l.notes[0] != 55 || l.notes[15] != 81 {
		t.Errorf("expected=55..81, got=%d..%d", l.notes[0], l.notes[15])
	}
}

func TestPlayArguments(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectError bool
	}{
		{"NoteOnly", []string{"60"}, false},
		{"WithVelocity", []string{"60", "20"}, false},
		{"Missing", nil, true},
		{"NotANumber", []string{"C4"}, true},
		{"OutOfRange", []string{"128"}, true},
		{"BadVelocity", []string{"60", "200"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newLoopback()
			err := play(c, options{}, tt.args)
			if (err != nil) != tt.expectError {
				t.Errorf("expected error=%v, got=%v", tt.expectError, err)
			}
		})
	}
}

func TestErrorReports(t *testing.T) {
	var buf bytes.Buffer
	r := newReplies(slog.New(slog.NewTextHandler(&buf, nil)))

	r.OnControlChange(0, autolyre.CCErrorType, byte(autolyre.ErrorNoteNotPlayable))
	r.OnControlChange(0, autolyre.CCErrorData, 56)

	out := buf.String()
	if !strings.Contains(out, "code=NOTE_NOT_PLAYABLE") || !strings.Contains(out, "data=56") {
		t.Errorf("expected error report, got=%q", out)
	}

	buf.Reset()
	r.OnControlChange(0, autolyre.CCErrorData, 3)
	if !strings.Contains(buf.String(), "error data without code") {
		t.Errorf("expected unpaired data warning, got=%q", buf.String())
	}
}

func TestFormatCapabilities(t *testing.T) {
	tests := []struct {
		name     string
		caps     midimind.Capability
		expected string
	}{
		{"None", 0, "none"},
		{"Velocity", midimind.CapVelocity, "velocity"},
		{"Several", midimind.CapControlChange | midimind.CapPitchBend, "control change, pitch bend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatCapabilities(tt.caps)
			if got != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, got)
			}
		})
	}
}

func TestFormatIdentification(t *testing.T) {
	out := formatIdentification(midimind.FromConfig(autolyre.DefaultConfig()))

	for _, expected := range []string{"Lyre 16 cordes", "G3, 16 notes", "Notes:      G3 A3 B3 C4"} {
		if !strings.Contains(out, expected) {
			t.Errorf("expected output to contain %q, got=%q", expected, out)
		}
	}
}
