package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.bug.st/serial"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/config"
	"github.com/calvinmclean/autolyre/dispatcher"
	"github.com/calvinmclean/autolyre/midimind"
	"github.com/calvinmclean/autolyre/serialport"
	"github.com/calvinmclean/autolyre/transport"
)

var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func usage() {
	fmt.Println("Usage: lyrectl [flags] <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  ports              - List MIDI and USB serial ports")
	fmt.Println("  identify           - Request the instrument's identification and capabilities")
	fmt.Println("  play <note> [vel]  - Play one note")
	fmt.Println("  scale              - Play every note of the instrument")
	fmt.Println("  panic              - Send All Notes Off")
	fmt.Println("")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

type options struct {
	channel uint8
	timeout time.Duration
	hold    time.Duration
}

func main() {
	var configPath, inPort, outPort, serialPort string
	var baud, channel int
	var debug bool
	var opts options
	flag.StringVar(&configPath, "config", "", "Path to the config file. Defaults to ~/.config/autolyre/config.json")
	flag.StringVar(&inPort, "in", "", "MIDI input port to read replies from (substring match)")
	flag.StringVar(&outPort, "out", "", "MIDI output port connected to the instrument (substring match)")
	flag.StringVar(&serialPort, "serial", "", "Serial port carrying a raw MIDI stream")
	flag.IntVar(&baud, "baud", 0, "Serial baud rate")
	flag.IntVar(&channel, "channel", 0, "MIDI channel 1-16. Defaults to the configured channel")
	flag.DurationVar(&opts.timeout, "timeout", 2*time.Second, "How long to wait for replies")
	flag.DurationVar(&opts.hold, "hold", 200*time.Millisecond, "How long notes are held")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Usage = usage
	flag.Parse()

	initLogger(debug)

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	defer midi.CloseDriver()

	cmd := flag.Arg(0)
	if cmd == "ports" {
		listPorts()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("error loading config", "error", err)
		os.Exit(1)
	}
	if inPort != "" {
		cfg.MIDI.InPort = inPort
	}
	if outPort != "" {
		cfg.MIDI.OutPort = outPort
	}
	if serialPort != "" {
		cfg.Serial.Port = serialPort
	}
	if baud != 0 {
		cfg.Serial.Baud = baud
	}

	opts.channel = cfg.Instrument.MIDIChannel - 1
	if channel != 0 {
		if channel < 1 || channel > 16 {
			logger.Error("invalid channel", "channel", channel)
			os.Exit(2)
		}
		opts.channel = uint8(channel - 1)
	}

	r := newReplies(logger)
	c, err := connect(cfg, r)
	if err != nil {
		logger.Error("error connecting", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	switch cmd {
	case "identify":
		err = identify(c, r, opts)
	case "play":
		err = play(c, opts, flag.Args()[1:])
	case "scale":
		err = scale(c, r, opts)
	case "panic":
		err = c.sender.ControlChange(opts.channel, autolyre.CCAllNotesOff, 0)
	default:
		usage()
		os.Exit(2)
	}

	// leave time for echoes and error reports
	time.Sleep(100 * time.Millisecond)

	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range midi.GetInPorts() {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range midi.GetOutPorts() {
		fmt.Printf("  %d: %s\n", i, p.String())
	}

	fmt.Println("\n=== USB Serial Ports ===")
	ports, err := serialport.GetSerialPorts()
	if err != nil && !errors.Is(err, serialport.ErrNoUSBSerial) {
		logger.Error("error listing serial ports", "error", err)
		return
	}
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}
}

// connection is an open link to an instrument
type connection struct {
	sender  dispatcher.Sender
	closers []func()
}

func (c *connection) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// connect opens the serial port or MIDI ports from the config. Replies are delivered to h
func connect(cfg *config.Config, h transport.Handler) (*connection, error) {
	c := &connection{}

	if serialport.Selected(cfg.Serial.Port) {
		port, err := serialport.Open(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { port.Close() })
		c.sender = transport.NewStreamSender(port)

		go readSerial(port, transport.NewStream(h, midimind.DefaultBufferSize))
		return c, nil
	}

	if cfg.MIDI.OutPort == "" {
		return nil, errors.New("no serial port or MIDI output configured")
	}

	out, err := midi.FindOutPort(cfg.MIDI.OutPort)
	if err != nil {
		return nil, fmt.Errorf("error finding MIDI output %q: %w", cfg.MIDI.OutPort, err)
	}
	c.sender, err = transport.NewPortSender(out)
	if err != nil {
		return nil, err
	}

	if cfg.MIDI.InPort != "" {
		in, err := midi.FindInPort(cfg.MIDI.InPort)
		if err != nil {
			return nil, fmt.Errorf("error finding MIDI input %q: %w", cfg.MIDI.InPort, err)
		}
		stop, err := transport.Listen(in, h, func(err error) {
			logger.Warn("MIDI input error", "error", err)
		})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, stop)
	}

	return c, nil
}

func readSerial(port serial.Port, stream *transport.Stream) {
	buf := make([]byte, 64)
	for {
		n, err := port.Read(buf)
		if err != nil {
			return
		}
		_, _ = stream.Write(buf[:n])
	}
}

// request sends a MidiMind request and waits for the matching reply
func request(c *connection, r *replies, block midimind.Block, timeout time.Duration) ([]byte, error) {
	err := c.sender.SysEx(midimind.Request(block))
	if err != nil {
		return nil, fmt.Errorf("error sending %s request: %w", block, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("no %s reply: %w", block, ctx.Err())
		case msg := <-r.sysex:
			body := msg
			if len(body) > 0 && body[0] == autolyre.SysExStart {
				body = body[1:]
			}
			if len(body) > 2 && body[0] == midimind.ManufacturerID && midimind.Block(body[2]) == block {
				return msg, nil
			}
			logger.Debug("ignoring sysex", "len", len(msg))
		}
	}
}

func fetchIdentification(c *connection, r *replies, timeout time.Duration) (midimind.Identification, error) {
	msg, err := request(c, r, midimind.BlockIdentification, timeout)
	if err != nil {
		return midimind.Identification{}, err
	}
	return midimind.ParseBlock1Reply(msg)
}

func identify(c *connection, r *replies, opts options) error {
	id, err := fetchIdentification(c, r, opts.timeout)
	if err != nil {
		return err
	}

	msg, err := request(c, r, midimind.BlockCapabilities, opts.timeout)
	if err != nil {
		return err
	}
	id.Capabilities, err = midimind.ParseBlock2Reply(msg)
	if err != nil {
		return err
	}

	fmt.Print(formatIdentification(id))
	fmt.Printf("Features:   %s\n", formatCapabilities(id.Capabilities))
	return nil
}

func parseByte(s, what string) (uint8, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > 127 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return uint8(v), nil
}

func play(c *connection, opts options, args []string) error {
	if len(args) < 1 {
		return errors.New("missing note")
	}
	note, err := parseByte(args[0], "note")
	if err != nil {
		return err
	}

	velocity := uint8(100)
	if len(args) > 1 {
		velocity, err = parseByte(args[1], "velocity")
		if err != nil {
			return err
		}
	}

	return playNote(c, opts, note, velocity)
}

func playNote(c *connection, opts options, note, velocity uint8) error {
	logger.Info("playing", "note", noteName(note), "velocity", velocity)

	err := c.sender.NoteOn(opts.channel, note, velocity)
	if err != nil {
		return err
	}
	time.Sleep(opts.hold)
	return c.sender.NoteOff(opts.channel, note, 0)
}

// scale plays the notes the instrument reports
func scale(c *connection, r *replies, opts options) error {
	id, err := fetchIdentification(c, r, opts.timeout)
	if err != nil {
		return err
	}

	for _, note := range midimind.BitmapNotes(id.Notes) {
		err := playNote(c, opts, note, 100)
		if err != nil {
			return err
		}
	}
	return nil
}
