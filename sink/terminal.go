package sink

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/nlowe/rgbw"
	"github.com/nlowe/rgbw/colorspace"
)

const (
	swatchTop    = 2
	swatchHeight = 6
	barsTop      = swatchTop + swatchHeight + 1
	barLabel     = 8
)

var channelColors = [4]tcell.Color{
	tcell.NewRGBColor(255, 0, 0),
	tcell.NewRGBColor(0, 255, 0),
	tcell.NewRGBColor(0, 0, 255),
	tcell.NewRGBColor(255, 255, 255),
}

// Display approximates what the LEDs look like for c. Channel values are linear light output, so they are encoded to
// sRGB for the screen, with the white emitter added equally to all three primaries.
func Display(c colorspace.RGBW) colorful.Color {
	w := float64(c.W) / 255

	return colorful.LinearRgb(
		float64(c.R)/255+w,
		float64(c.G)/255+w,
		float64(c.B)/255+w,
	).Clamped()
}

// Terminal is a Sink that draws a swatch of the emitted color and a bar per channel onto a tcell.Screen.
type Terminal struct {
	mu sync.Mutex

	screen tcell.Screen
	title  string
	status string

	last colorspace.RGBW
}

var _ rgbw.Sink = &Terminal{}

// NewTerminal constructs a Terminal drawing to screen, which must already be initialized.
func NewTerminal(screen tcell.Screen, title string) *Terminal {
	return &Terminal{screen: screen, title: title}
}

func (t *Terminal) Emit(c colorspace.RGBW) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = c
	t.draw()
}

// SetStatus replaces the status line shown below the channel bars and redraws.
func (t *Terminal) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	t.draw()
}

// Redraw draws the last emitted color again, after a resize for example.
func (t *Terminal) Redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Sync()
	t.draw()
}

func (t *Terminal) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (t *Terminal) draw() {
	t.screen.Clear()
	width, _ := t.screen.Size()

	t.text(0, 0, t.title, tcell.StyleDefault.Bold(true))

	shown := Display(t.last)
	r, g, b := shown.RGB255()
	swatch := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	for y := swatchTop; y < swatchTop+swatchHeight; y++ {
		for x := 0; x < width; x++ {
			t.screen.SetContent(x, y, ' ', nil, swatch)
		}
	}

	values := [4]uint8{t.last.R, t.last.G, t.last.B, t.last.W}
	barWidth := width - barLabel
	for i, name := range []string{"R", "G", "B", "W"} {
		y := barsTop + i
		t.text(0, y, fmt.Sprintf("%s %4d ", name, values[i]), tcell.StyleDefault)

		filled := int(values[i]) * max(barWidth, 0) / 255
		bar := tcell.StyleDefault.Foreground(channelColors[i])
		for x := 0; x < filled; x++ {
			t.screen.SetContent(barLabel+x, y, '█', nil, bar)
		}
	}

	t.text(0, barsTop+5, fmt.Sprintf("channels %s  display %s", t.last, shown.Hex()), tcell.StyleDefault)
	t.text(0, barsTop+6, t.status, tcell.StyleDefault.Dim(true))

	t.screen.Show()
}
