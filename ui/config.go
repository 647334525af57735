package ui

import (
	"errors"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"gitlab.com/gomidi/midi/v2"

	"github.com/calvinmclean/autolyre/config"
	"github.com/calvinmclean/autolyre/serialport"
)

const portNone = "none"

// ConfigWindow edits the ports and MIDI channel of the host configuration and saves it
type ConfigWindow struct {
	app      fyne.App
	path     string
	OnSubmit func()
}

// NewConfigWindow creates a ConfigWindow saving to path, or the default location when path is empty
func NewConfigWindow(app fyne.App, path string) *ConfigWindow {
	return &ConfigWindow{
		app:  app,
		path: path,
	}
}

func inPortNames() []string {
	names := []string{portNone}
	for _, p := range midi.GetInPorts() {
		names = append(names, p.String())
	}
	return names
}

func outPortNames() []string {
	names := []string{portNone}
	for _, p := range midi.GetOutPorts() {
		names = append(names, p.String())
	}
	return names
}

// fromSelection maps the "none" entry back to an empty port name
func fromSelection(s string) string {
	if s == portNone {
		return ""
	}
	return s
}

func toSelection(s string) string {
	if s == "" {
		return portNone
	}
	return s
}

func (cw *ConfigWindow) Show(cfg *config.Config) {
	window := cw.app.NewWindow("Auto Lyre - Configuration")
	window.Resize(fyne.NewSize(400, 250))
	window.SetCloseIntercept(func() {
		// Treat window close as cancel
		window.Close()
		cw.app.Quit()
	})
	window.Show()

	serialPorts, err := serialport.GetSerialPorts()
	if err != nil && !errors.Is(err, serialport.ErrNoUSBSerial) {
		showError(cw.app, window, fmt.Errorf("error getting serial ports: %w", err))
		return
	}
	serialPorts = append(serialPorts, serialport.SerialPortNone)

	serialEntry := widget.NewSelect(serialPorts, nil)
	if cfg.Serial.Port == "" {
		cfg.Serial.Port = serialport.SerialPortNone
	}
	serialEntry.Bind(binding.BindString(&cfg.Serial.Port))

	inPort := toSelection(cfg.MIDI.InPort)
	inEntry := widget.NewSelect(inPortNames(), nil)
	inEntry.Bind(binding.BindString(&inPort))

	outPort := toSelection(cfg.MIDI.OutPort)
	outEntry := widget.NewSelect(outPortNames(), nil)
	outEntry.Bind(binding.BindString(&outPort))

	baudRate := strconv.Itoa(cfg.Serial.Baud)
	baudRateEntry := widget.NewEntry()
	baudRateEntry.Bind(binding.BindString(&baudRate))

	channel := strconv.Itoa(int(cfg.Instrument.MIDIChannel))
	channelEntry := widget.NewEntry()
	channelEntry.Bind(binding.BindString(&channel))

	omniCheck := widget.NewCheck("Omni", nil)
	omniCheck.Bind(binding.BindBool(&cfg.Instrument.OmniMode))

	submitButton := widget.NewButton("Submit", func() {
		baud, err := strconv.Atoi(baudRate)
		if err != nil || baud <= 0 {
			dialog.ShowError(fmt.Errorf("invalid baud rate %q", baudRate), window)
			return
		}
		ch, err := strconv.Atoi(channel)
		if err != nil || ch < 1 || ch > 16 {
			dialog.ShowError(fmt.Errorf("invalid MIDI channel %q", channel), window)
			return
		}

		cfg.Serial.Baud = baud
		cfg.Instrument.MIDIChannel = uint8(ch)
		cfg.MIDI.InPort = fromSelection(inPort)
		cfg.MIDI.OutPort = fromSelection(outPort)

		err = cfg.Save(cw.path)
		if err != nil {
			showError(cw.app, window, fmt.Errorf("error saving config: %w", err))
			return
		}

		if cw.OnSubmit != nil {
			cw.OnSubmit()
		}
		window.Close()
	})
	submitButton.Disable()

	validateForm := func() {
		if cfg.Serial.Port != "" && baudRate != "" && channel != "" {
			submitButton.Enable()
			return
		}
		submitButton.Disable()
	}

	// Add listeners to field changes
	serialEntry.OnChanged = func(_ string) { validateForm() }
	baudRateEntry.OnChanged = func(_ string) { validateForm() }
	channelEntry.OnChanged = func(_ string) { validateForm() }

	// Initial validation
	validateForm()

	form := container.NewVBox(
		widget.NewCard("Configuration", "", container.NewVBox(
			container.NewGridWithColumns(2,
				widget.NewLabel("MIDI Input:"),
				inEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("MIDI Output:"),
				outEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Serial Port:"),
				serialEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Baud Rate:"),
				baudRateEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("MIDI Channel:"),
				channelEntry,
			),
			omniCheck,
		)),
		container.NewHBox(
			widget.NewButton("Cancel", func() {
				window.Close()
				cw.app.Quit()
			}),
			submitButton,
		),
	)

	window.SetContent(form)
}

func showError(app fyne.App, window fyne.Window, err error) {
	d := dialog.NewError(err, window)
	d.SetOnClosed(func() {
		app.Quit()
	})
	d.Show()
}
