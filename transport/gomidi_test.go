package transport

import (
	"errors"
	"slices"
	"testing"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// fakeIn replays raw driver messages when listened to
type fakeIn struct {
	messages [][]byte
	open     bool
	stopped  bool
	config   drivers.ListenConfig
}

func (f *fakeIn) Open() error             { f.open = true; return nil }
func (f *fakeIn) Close() error            { f.open = false; return nil }
func (f *fakeIn) IsOpen() bool            { return f.open }
func (f *fakeIn) Number() int             { return 0 }
func (f *fakeIn) String() string          { return "fake" }
func (f *fakeIn) Underlying() interface{} { return nil }

func (f *fakeIn) Listen(onMsg func([]byte, int32), config drivers.ListenConfig) (func(), error) {
	f.config = config
	for _, msg := range f.messages {
		onMsg(msg, 0)
	}
	return func() { f.stopped = true }, nil
}

func TestListen(t *testing.T) {
	in := &fakeIn{messages: [][]byte{
		{0x90, 60, 100},
		{0xF0, 0x7D, 0x00, 0x01, 0x00, 0xF7},
		{0x81, 62, 0},
	}}
	r := &recorder{}

	var errs []error
	stop, err := Listen(in, r, func(err error) { errs = append(errs, err) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !in.open {
		t.Errorf("expected port to be opened")
	}
	if !in.config.SysEx {
		t.Errorf("expected SysEx to be enabled")
	}
	if in.config.OnErr == nil {
		t.Fatalf("expected error handler to be set")
	}
	in.config.OnErr(errors.New("broken"))
	if len(errs) != 1 {
		t.Errorf("expected=1, got=%d", len(errs))
	}

	expected := []string{"on 0 60 100", "sysex F0 7D 00 01 00 F7", "off 1 62 0"}
	if !slices.Equal(r.events, expected) {
		t.Errorf("expected=%v, got=%v", expected, r.events)
	}

	stop()
	if !in.stopped {
		t.Errorf("expected listening to stop")
	}
}
