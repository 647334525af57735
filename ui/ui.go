// Package ui shows a running instrument: one column per string with its note, angle and a pluck button,
// plus the power and initialization state and the MIDI counters.
package ui

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/calvinmclean/autolyre/dispatcher"
)

const (
	maxLogLines     = 200
	refreshInterval = 50 * time.Millisecond
	barHeight       = 80
)

var (
	colorRest     = color.RGBA{R: 46, G: 125, B: 50, A: 255}
	colorOpen     = color.RGBA{R: 230, G: 126, B: 34, A: 255}
	colorDisabled = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// noteName uses the MIDI convention where note 60 is C4
func noteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note)/12-1)
}

// Snapshot is the instrument state shown by the UI
type Snapshot struct {
	Notes      []uint8
	Angles     []int
	RestAngles []int
	Enabled    bool
	State      string
	Stats      dispatcher.Statistics
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Notes = append([]uint8(nil), s.Notes...)
	out.Angles = append([]int(nil), s.Angles...)
	out.RestAngles = append([]int(nil), s.RestAngles...)
	return out
}

func (s Snapshot) statusText() string {
	power := "off"
	if s.Enabled {
		power = "on"
	}
	return fmt.Sprintf("Init: %s   Power: %s", s.State, power)
}

func (s Snapshot) statsText() string {
	st := s.Stats
	return fmt.Sprintf(
		"Valid %d  Invalid %d  Out of range %d  Dropped %d  Errors sent %d\nNote On %d  Note Off %d  CC %d  SysEx %d  Notes/s %d",
		st.Valid, st.Invalid, st.OutOfRange, st.Dropped, st.ErrorsSent,
		st.NoteOn, st.NoteOff, st.ControlChange, st.SysEx, st.MessagesPerSecond,
	)
}

// stringColor shows whether a string is away from its rest angle
func (s Snapshot) stringColor(i int) color.Color {
	if !s.Enabled {
		return colorDisabled
	}
	if i < len(s.Angles) && i < len(s.RestAngles) && s.Angles[i] != s.RestAngles[i] {
		return colorOpen
	}
	return colorRest
}

type stringView struct {
	bar   *canvas.Rectangle
	angle *widget.Label
}

// LyreUI is a window onto a running instrument. Buttons send console commands to the writer given to
// NewLyreUI, and log output written to the LyreUI shows up in its log panel.
type LyreUI struct {
	commands *commandWriter

	mtx         sync.Mutex
	snapshot    Snapshot
	changed     bool
	lastMessage time.Time
	logs        bytes.Buffer
	logLines    int
	logsChanged bool
}

func NewLyreUI(commands io.Writer) *LyreUI {
	return &LyreUI{commands: &commandWriter{writer: commands}}
}

// Update publishes a new snapshot. It is safe to call from any goroutine
func (ui *LyreUI) Update(s Snapshot) {
	ui.mtx.Lock()
	defer ui.mtx.Unlock()
	ui.snapshot = s.clone()
	ui.changed = true
}

// Write appends log output to the log panel
func (ui *LyreUI) Write(p []byte) (int, error) {
	ui.mtx.Lock()
	defer ui.mtx.Unlock()

	ui.logs.Write(p)
	ui.logLines += bytes.Count(p, []byte{'\n'})
	for ui.logLines > maxLogLines {
		_, err := ui.logs.ReadBytes('\n')
		if err != nil {
			break
		}
		ui.logLines--
	}
	ui.logsChanged = true
	return len(p), nil
}

func (ui *LyreUI) Run(ctx context.Context) {
	application := app.New()
	window := application.NewWindow("Auto Lyre")

	ui.mtx.Lock()
	initial := ui.snapshot.clone()
	ui.mtx.Unlock()

	uptime := newTimer(false)
	uptime.Set(time.Now())
	uptime.Go(ctx)

	lastNote := newTimer(true)
	lastNote.Go(ctx)

	status := widget.NewLabel(initial.statusText())
	stats := widget.NewLabel(initial.statsText())

	views := make([]stringView, len(initial.Notes))
	columns := container.NewGridWithColumns(max(len(initial.Notes), 1))
	for i, note := range initial.Notes {
		bar := canvas.NewRectangle(initial.stringColor(i))
		bar.SetMinSize(fyne.NewSize(20, barHeight))

		angle := widget.NewLabel("-")
		if i < len(initial.Angles) {
			angle.SetText(fmt.Sprint(initial.Angles[i]))
		}
		views[i] = stringView{bar: bar, angle: angle}

		index := i
		columns.Add(container.NewVBox(
			widget.NewLabel(noteName(note)),
			bar,
			angle,
			widget.NewButton("Pluck", func() { ui.commands.Pluck(index) }),
			widget.NewButton("Mute", func() { ui.commands.Mute(index) }),
		))
	}

	powerCheck := widget.NewCheck("Power", func(on bool) {
		ui.commands.SetPower(on)
	})
	powerCheck.SetChecked(initial.Enabled)

	logContent := widget.NewLabel("")
	logScroll := container.NewVScroll(logContent)
	logScroll.SetMinSize(fyne.NewSize(600, 150))

	contentContainer := container.NewVBox(
		container.NewHBox(
			container.NewPadded(uptime.text),
			layout.NewSpacer(),
			widget.NewLabel("Last note:"),
			container.NewPadded(lastNote.text),
		),
		status,
		columns,
		container.NewHBox(
			widget.NewButton("Mute all", ui.commands.MuteAll),
			widget.NewButton("Reinitialize", ui.commands.Reinitialize),
			widget.NewButton("Reset statistics", ui.commands.ResetStatistics),
			powerCheck,
		),
		stats,
		widget.NewAccordion(widget.NewAccordionItem("Logs", logScroll)),
	)

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fyne.Do(func() {
					application.Quit()
				})
				return
			case <-ticker.C:
			}

			ui.mtx.Lock()
			s, changed := ui.snapshot.clone(), ui.changed
			logs, logsChanged := ui.logs.String(), ui.logsChanged
			ui.changed, ui.logsChanged = false, false
			if !s.Stats.LastMessage.IsZero() && !s.Stats.LastMessage.Equal(ui.lastMessage) {
				ui.lastMessage = s.Stats.LastMessage
				lastNote.Set(s.Stats.LastMessage)
			}
			ui.mtx.Unlock()

			if !changed && !logsChanged {
				continue
			}

			fyne.Do(func() {
				if changed {
					status.SetText(s.statusText())
					stats.SetText(s.statsText())
					for i, v := range views {
						v.bar.FillColor = s.stringColor(i)
						v.bar.Refresh()
						if i < len(s.Angles) {
							v.angle.SetText(fmt.Sprint(s.Angles[i]))
						}
					}
				}
				if logsChanged {
					logContent.SetText(strings.TrimRight(logs, "\n"))
					logScroll.ScrollToBottom()
				}
			})
		}
	}()

	window.SetContent(contentContainer)
	window.Resize(fyne.NewSize(900, 450))
	window.ShowAndRun()
}
