package ui

import (
	"fmt"
	"io"
)

// commandWriter turns button presses into console commands for the instrument
type commandWriter struct {
	writer io.Writer
}

func (c *commandWriter) Pluck(i int) {
	fmt.Fprintf(c.writer, "P%02d", i)
}

func (c *commandWriter) Mute(i int) {
	fmt.Fprintf(c.writer, "M%02d", i)
}

func (c *commandWriter) MuteAll() {
	fmt.Fprint(c.writer, "A")
}

func (c *commandWriter) Reinitialize() {
	fmt.Fprint(c.writer, "I")
}

func (c *commandWriter) SetPower(on bool) {
	if on {
		fmt.Fprint(c.writer, "E")
		return
	}
	fmt.Fprint(c.writer, "X")
}

func (c *commandWriter) ResetStatistics() {
	fmt.Fprint(c.writer, "R")
}
