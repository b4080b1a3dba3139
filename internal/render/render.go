// Package render draws display payloads on a terminal: the score label and
// an ASCII rendition of the reference curve with the score marked on it.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"epss-viewer/internal/config"
	"epss-viewer/internal/display"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[38;5;204m"
	colorBlue  = "\033[38;5;117m"
	colorBold  = "\033[1;97m"
	colorGray  = "\033[38;5;248m"

	DefaultWidth  = 60
	DefaultHeight = 10
	minWidth      = 20
	maxWidth      = 120
)

// Renderer writes payloads and messages to Out.
type Renderer struct {
	Out    io.Writer
	Width  int
	Height int
	Color  bool
}

// New returns a Renderer for f. Width and color come from cfg, falling back
// to what the terminal reports.
func New(f *os.File, cfg config.Render) *Renderer {
	isTTY := term.IsTerminal(int(f.Fd()))
	width := cfg.Width
	if width == 0 {
		width = DefaultWidth
		if isTTY {
			if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
				// leave room for the axis gutter
				width = w - 8
			}
		}
	}
	color := isTTY
	switch cfg.Color {
	case "always":
		color = true
	case "never":
		color = false
	}
	return &Renderer{Out: f, Width: clamp(width, minWidth, maxWidth), Height: DefaultHeight, Color: color}
}

// Payload prints the score label, the maturity and the curve plot.
func (r *Renderer) Payload(p display.Payload) error {
	var b strings.Builder
	b.WriteString(r.paint(colorBold, p.Summary))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Exploit Code Maturity: %s\n", p.Maturity)
	if p.Date != "" {
		fmt.Fprintf(&b, "Score date: %s\n", p.Date)
	}
	b.WriteByte('\n')
	b.WriteString(r.paint(colorBold, "EPSS Score Distribution"))
	b.WriteByte('\n')
	for _, line := range r.plot(p.Curve, p.Marker) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(r.Out, b.String())
	return err
}

// Message prints a plain status line.
func (r *Renderer) Message(msg string) error {
	_, err := fmt.Fprintln(r.Out, msg)
	return err
}

// Error prints an error message in the status color.
func (r *Renderer) Error(err error) error {
	_, werr := fmt.Fprintln(r.Out, r.paint(colorRed, err.Error()))
	return werr
}

func (r *Renderer) plot(curve []display.Point, marker float64) []string {
	width, height := plotSize(r.Width, r.Height)
	rows := Plot(curve, marker, width, height)
	out := make([]string, 0, len(rows)+2)
	for i, row := range rows {
		label := "    "
		switch i {
		case 0:
			label = "1.0 "
		case len(rows) - 1:
			label = "0.0 "
		}
		if r.Color {
			row = strings.ReplaceAll(row, "*", r.paint(colorBlue, "*"))
			row = strings.ReplaceAll(row, "|", r.paint(colorRed, "|"))
		}
		out = append(out, r.paint(colorGray, label)+"┤"+row)
	}
	out = append(out, "    └"+strings.Repeat("─", width))
	axis := "0" + strings.Repeat(" ", width-2) + "1"
	out = append(out, "     "+axis)
	out = append(out, fmt.Sprintf("     %s marks the score (%.4f)", r.paint(colorRed, "|"), marker))
	return out
}

func (r *Renderer) paint(color, s string) string {
	if !r.Color {
		return s
	}
	return color + s + colorReset
}

// Plot rasterizes curve into height rows of width columns, top row first.
// The curve is drawn with '*' and the column of marker with '|'. A width
// below the minimum or a height below 2 falls back to the defaults.
func Plot(curve []display.Point, marker float64, width, height int) []string {
	width, height = plotSize(width, height)
	levels := make([]int, width)
	for i := range levels {
		levels[i] = -1
	}
	peak := 0.0
	for _, p := range curve {
		peak = math.Max(peak, p.Density)
	}
	if peak > 0 {
		for _, p := range curve {
			col := column(p.X, width)
			lvl := int(math.Round(p.Density / peak * float64(height-1)))
			if lvl > levels[col] {
				levels[col] = lvl
			}
		}
	}
	markerCol := column(marker, width)

	grid := make([][]byte, height)
	for row := range grid {
		grid[row] = []byte(strings.Repeat(" ", width))
	}
	for col, lvl := range levels {
		if lvl >= 0 {
			grid[height-1-lvl][col] = '*'
		}
	}
	for row := range grid {
		if grid[row][markerCol] == ' ' {
			grid[row][markerCol] = '|'
		}
	}

	rows := make([]string, height)
	for i, g := range grid {
		rows[i] = string(g)
	}
	return rows
}

// plotSize normalizes plot dimensions; zero values mean the defaults.
func plotSize(width, height int) (int, int) {
	if width < minWidth {
		width = DefaultWidth
	}
	if width > maxWidth {
		width = maxWidth
	}
	if height <= 1 {
		height = DefaultHeight
	}
	return width, height
}

func column(x float64, width int) int {
	return clamp(int(math.Round(x*float64(width-1))), 0, width-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
