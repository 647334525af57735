package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"fyne.io/fyne/v2/app"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.bug.st/serial"

	"github.com/calvinmclean/autolyre/config"
	"github.com/calvinmclean/autolyre/dispatcher"
	"github.com/calvinmclean/autolyre/midimind"
	"github.com/calvinmclean/autolyre/serialport"
	"github.com/calvinmclean/autolyre/transport"
	"github.com/calvinmclean/autolyre/ui"
)

const (
	loopTick     = 5 * time.Millisecond
	snapshotTick = 50 * time.Millisecond
)

// initLogger configures the shared slog logger. The returned LevelVar lets the V console command raise
// the level at runtime.
func initLogger(debug bool, w io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if debug {
		level.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
	slog.SetDefault(logger)
	return logger, level
}

func main() {
	var configPath, inPort, outPort, serialPort string
	var baud int
	var debug, setup bool
	flag.StringVar(&configPath, "config", "", "Path to the config file. Defaults to ~/.config/autolyre/config.json")
	flag.StringVar(&inPort, "in", "", "MIDI input port to play from (substring match)")
	flag.StringVar(&outPort, "out", "", "MIDI output port for feedback and SysEx replies (substring match)")
	flag.StringVar(&serialPort, "serial", "", "Serial port carrying a raw MIDI stream")
	flag.IntVar(&baud, "baud", 0, "Serial baud rate")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&setup, "setup", false, "Open the configuration window and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading config:", err)
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

	defer midi.CloseDriver()

	if setup {
		runSetup(cfg, configPath)
		return
	}

	if os.Getenv("ENABLE_UI") == "true" {
		err = runUI(cfg, debug)
	} else {
		err = runCLI(cfg, debug)
	}
	if err != nil {
		slog.Error("simulator stopped", "error", err)
		os.Exit(1)
	}
}

func runSetup(cfg *config.Config, path string) {
	a := app.New()
	w := ui.NewConfigWindow(a, path)
	w.OnSubmit = a.Quit
	w.Show(cfg)
	a.Run()
}

func runUI(cfg *config.Config, debug bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	r, w := io.Pipe()

	// read from Stdin also
	go func() {
		defer w.Close()
		io.Copy(w, os.Stdin)
	}()

	lyreUI := ui.NewLyreUI(w)
	logger, level := initLogger(debug, io.MultiWriter(os.Stderr, lyreUI))

	s, closeIO, err := setup(cfg, os.Stdout, level, logger)
	if err != nil {
		return err
	}
	defer closeIO()
	lyreUI.Update(s.snapshot())

	errc := make(chan error, 1)
	go func() {
		errc <- run(ctx, s, r, lyreUI.Update)
	}()

	lyreUI.Run(ctx)
	cancel()
	return <-errc
}

func runCLI(cfg *config.Config, debug bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger, level := initLogger(debug, os.Stderr)

	s, closeIO, err := setup(cfg, os.Stdout, level, logger)
	if err != nil {
		return err
	}
	defer closeIO()

	return run(ctx, s, os.Stdin, nil)
}

// setup creates the simulator and connects its MIDI inputs and outputs
func setup(cfg *config.Config, out io.Writer, level *slog.LevelVar, logger *slog.Logger) (*simulator, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var port serial.Port
	if serialport.Selected(cfg.Serial.Port) {
		var err error
		port, err = serialport.Open(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { port.Close() })
	}

	// a nil sender leaves MIDI port input unanswered
	var portSender dispatcher.Sender
	if cfg.MIDI.OutPort != "" {
		midiOut, err := midi.FindOutPort(cfg.MIDI.OutPort)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("error finding MIDI output %q: %w", cfg.MIDI.OutPort, err)
		}
		ps, err := transport.NewPortSender(midiOut)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		portSender = ps
	}

	s, err := newSimulator(cfg.Instrument, out, level, logger, time.Now)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	if cfg.MIDI.InPort != "" {
		in, err := midi.FindInPort(cfg.MIDI.InPort)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("error finding MIDI input %q: %w", cfg.MIDI.InPort, err)
		}
		stop, err := transport.Listen(in, s.addInput(in.String(), portSender), func(err error) {
			logger.Warn("MIDI input error", "port", in.String(), "error", err)
		})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, stop)
		logger.Info("listening to MIDI input", "port", in.String())
	}

	if port != nil {
		queue := s.addInput(cfg.Serial.Port, transport.NewStreamSender(port))
		go readSerial(port, transport.NewStream(queue, midimind.DefaultBufferSize), logger)
		logger.Info("listening to serial port", "port", cfg.Serial.Port, "baud", cfg.Serial.Baud)
	}

	logPorts(logger)
	return s, closeAll, nil
}

func logPorts(logger *slog.Logger) {
	for _, in := range midi.GetInPorts() {
		logger.Debug("available MIDI input", "port", in.String())
	}
	for _, out := range midi.GetOutPorts() {
		logger.Debug("available MIDI output", "port", out.String())
	}
}

// readSerial feeds a raw MIDI stream into the simulator until the port is closed
func readSerial(port serial.Port, stream *transport.Stream, logger *slog.Logger) {
	buf := make([]byte, 64)
	for {
		n, err := port.Read(buf)
		if err != nil {
			var portErr *serial.PortError
			if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
				return
			}
			logger.Error("error reading serial port", "error", err)
			return
		}
		if n > 0 {
			_, _ = stream.Write(buf[:n])
		}
	}
}

// run drives the simulator until ctx is done. Console commands are read from console and snapshots are
// published to onSnapshot when it is set.
func run(ctx context.Context, s *simulator, console io.Reader, onSnapshot func(ui.Snapshot)) error {
	input := make(chan byte, 256)
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := console.Read(buf)
			for _, b := range buf[:n] {
				input <- b
			}
			if err != nil {
				return
			}
		}
	}()

	s.Start()

	ticker := time.NewTicker(loopTick)
	defer ticker.Stop()

	var pending []byte
	lastSnapshot := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		pending = pending[:0]
	collect:
		for {
			select {
			case b := <-input:
				pending = append(pending, b)
			default:
				break collect
			}
		}

		s.step(pending)

		if onSnapshot != nil && time.Since(lastSnapshot) >= snapshotTick {
			onSnapshot(s.snapshot())
			lastSnapshot = time.Now()
		}
	}
}
