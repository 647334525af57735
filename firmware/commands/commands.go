// Package commands is the serial console of the instrument. Each command is a single flag byte followed by
// a fixed number of input bytes.
package commands

import (
	"errors"
	"io"
)

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control a device
type Controller interface {
	Debug()
	Verbose()
	Statistics()
	ResetStatistics()
	Pluck(int) error
	Mute(int) error
	MuteAll()
	Reinitialize()
	EnablePower()
	DisablePower()
}

var (
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print the current state.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Enable verbose output.",
	}
	StatisticsCommand = &Command{
		Flag:      'S',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Statistics()
			return nil
		},
		Description: "Print MIDI statistics.",
	}
	ResetStatisticsCommand = &Command{
		Flag:      'R',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.ResetStatistics()
			return nil
		},
		Description: "Reset MIDI statistics.",
	}
	PluckCommand = &Command{
		Flag:      'P',
		InputSize: 2,
		Run: func(c Controller, b []byte) error {
			i, err := index(b)
			if err != nil {
				return err
			}
			return c.Pluck(i)
		},
		Description: "Pluck a string. Input: actuator index 00-99.",
	}
	MuteCommand = &Command{
		Flag:      'M',
		InputSize: 2,
		Run: func(c Controller, b []byte) error {
			i, err := index(b)
			if err != nil {
				return err
			}
			return c.Mute(i)
		},
		Description: "Mute a string. Input: actuator index 00-99.",
	}
	MuteAllCommand = &Command{
		Flag:      'A',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.MuteAll()
			return nil
		},
		Description: "Mute all strings.",
	}
	InitCommand = &Command{
		Flag:      'I',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Reinitialize()
			return nil
		},
		Description: "Run the actuator initialization sweep again.",
	}
	EnableCommand = &Command{
		Flag:      'E',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.EnablePower()
			return nil
		},
		Description: "Enable actuator power.",
	}
	DisableCommand = &Command{
		Flag:      'X',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.DisablePower()
			return nil
		},
		Description: "Disable actuator power.",
	}
)

var commands = []*Command{
	DebugCommand,
	VerboseCommand,
	StatisticsCommand,
	ResetStatisticsCommand,
	PluckCommand,
	MuteCommand,
	MuteAllCommand,
	InitCommand,
	EnableCommand,
	DisableCommand,
}

// index parses two decimal digits
func index(b []byte) (int, error) {
	if len(b) != 2 || b[0] < '0' || b[0] > '9' || b[1] < '0' || b[1] > '9' {
		return 0, errors.New("invalid input: " + string(b))
	}
	return int(b[0]-'0')*10 + int(b[1]-'0'), nil
}

// Interpreter runs commands from a byte stream without blocking. Bytes are fed one at a time from the
// control loop as they arrive.
type Interpreter struct {
	c       Controller
	out     io.Writer
	cmdMap  map[byte]*Command
	pending *Command
	input   []byte
}

// NewInterpreter creates an Interpreter. Help and errors are written to out
func NewInterpreter(c Controller, out io.Writer) *Interpreter {
	in := &Interpreter{
		c:      c,
		out:    out,
		cmdMap: map[byte]*Command{},
	}

	helpCommand := &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(Controller, []byte) error {
			in.help()
			return nil
		},
	}
	in.cmdMap[helpCommand.Flag] = helpCommand

	for _, cmd := range commands {
		in.cmdMap[cmd.Flag] = cmd
	}

	return in
}

// Feed consumes one byte and runs the command once its input is complete. Unknown flags are ignored
func (in *Interpreter) Feed(b byte) error {
	if in.pending == nil {
		cmd, ok := in.cmdMap[b]
		if !ok {
			return nil
		}
		in.pending = cmd
		in.input = in.input[:0]
	} else {
		in.input = append(in.input, b)
	}

	if uint(len(in.input)) < in.pending.InputSize {
		return nil
	}

	cmd := in.pending
	in.pending = nil

	err := cmd.Run(in.c, in.input)
	if err != nil {
		in.write("error: " + err.Error() + "\r\n")
	}
	return err
}

func (in *Interpreter) help() {
	in.write("Available Commands:\r\n")
	in.write("H: " + in.cmdMap['H'].Description + "\r\n")
	for _, cmd := range commands {
		in.write(string(cmd.Flag) + ": " + cmd.Description + "\r\n")
	}
}

func (in *Interpreter) write(s string) {
	if in.out == nil {
		return
	}
	_, _ = io.WriteString(in.out, s)
}
