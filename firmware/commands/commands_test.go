package commands

import (
	"bytes"
	"errors"
	"slices"
	"strconv"
	"strings"
	"testing"
)

type fakeController struct {
	calls []string
}

func (f *fakeController) Debug()           { f.calls = append(f.calls, "debug") }
func (f *fakeController) Verbose()         { f.calls = append(f.calls, "verbose") }
func (f *fakeController) Statistics()      { f.calls = append(f.calls, "stats") }
func (f *fakeController) ResetStatistics() { f.calls = append(f.calls, "reset") }
func (f *fakeController) MuteAll()         { f.calls = append(f.calls, "mute all") }
func (f *fakeController) Reinitialize()    { f.calls = append(f.calls, "init") }
func (f *fakeController) EnablePower()     { f.calls = append(f.calls, "enable") }
func (f *fakeController) DisablePower()    { f.calls = append(f.calls, "disable") }

func (f *fakeController) Pluck(i int) error {
	if i >= 16 {
		return errors.New("out of range")
	}
	f.calls = append(f.calls, "pluck "+strconv.Itoa(i))
	return nil
}

func (f *fakeController) Mute(i int) error {
	f.calls = append(f.calls, "mute "+strconv.Itoa(i))
	return nil
}

func TestInterpreter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		errors   int
	}{
		{"Debug", "D", []string{"debug"}, 0},
		{"Pluck", "P03", []string{"pluck 3"}, 0},
		{"PluckTwoDigits", "P15", []string{"pluck 15"}, 0},
		{"Mute", "M07", []string{"mute 7"}, 0},
		{"Sequence", "VSRAIEX", []string{"verbose", "stats", "reset", "mute all", "init", "enable", "disable"}, 0},
		{"UnknownIgnored", "\r\nzD", []string{"debug"}, 0},
		{"InvalidIndex", "P1xD", []string{"debug"}, 1},
		{"ControllerError", "P20", nil, 1},
		{"InputBytesAreNotFlags", "PD1", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeController{}
			var out bytes.Buffer
			in := NewInterpreter(c, &out)

			errs := 0
			for _, b := range []byte(tt.input) {
				if in.Feed(b) != nil {
					errs++
				}
			}

			if !slices.Equal(c.calls, tt.expected) {
				t.Errorf("expected=%v, got=%v", tt.expected, c.calls)
			}
			if errs != tt.errors {
				t.Errorf("expected %d errors, got %d", tt.errors, errs)
			}
			if strings.Count(out.String(), "error:") != tt.errors {
				t.Errorf("unexpected output: %q", out.String())
			}
		})
	}
}

func TestHelp(t *testing.T) {
	var out bytes.Buffer
	in := NewInterpreter(&fakeController{}, &out)

	err := in.Feed('H')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, cmd := range commands {
		if !strings.Contains(out.String(), string(cmd.Flag)+": "+cmd.Description) {
			t.Errorf("help is missing %q", cmd.Flag)
		}
	}
}

func TestIndex(t *testing.T) {
	tests := []struct {
		input     string
		expected  int
		expectErr bool
	}{
		{"00", 0, false},
		{"09", 9, false},
		{"42", 42, false},
		{"99", 99, false},
		{"a1", 0, true},
		{"1", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			i, err := index([]byte(tt.input))
			if (err != nil) != tt.expectErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if i != tt.expected {
				t.Errorf("expected=%d, got=%d", tt.expected, i)
			}
		})
	}
}
