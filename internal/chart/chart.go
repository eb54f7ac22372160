package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"oakview/internal/player"
)

const (
	dataMark   = '•'
	cursorMark = '│'
)

// Cell values in the render grid.
const (
	cellEmpty  = -1
	cellCursor = -2
)

// Chart renders a TimeSeries into a fixed rectangle of terminal cells, with
// a vertical cursor overlay at the current playback position. Rendering is a
// pure redraw-time function of (series, rectangle, cursor time): resizes
// just re-Layout and re-render, no separate invalidation.
type Chart struct {
	title  string
	series *player.TimeSeries

	styles      []lipgloss.Style // one per channel, in ChannelNames order
	cursorStyle lipgloss.Style
	titleStyle  lipgloss.Style
	emptyStyle  lipgloss.Style

	width, height int // full widget, title row included
	plotW, plotH  int // plot rectangle
}

// New returns a chart with one style per channel, applied in the series'
// channel order.
func New(title string, channelStyles ...lipgloss.Style) *Chart {
	return &Chart{
		title:       title,
		styles:      channelStyles,
		cursorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		titleStyle:  lipgloss.NewStyle().Bold(true),
		emptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// SetSeries binds the data. A nil series renders an empty placeholder.
func (c *Chart) SetSeries(s *player.TimeSeries) {
	c.series = s
}

// Layout recomputes the widget and plot dimensions from the host size.
func (c *Chart) Layout(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 2 {
		h = 2
	}
	c.width, c.height = w, h
	c.plotW = w
	c.plotH = h - 1 // first row is the title
}

// Width returns the widget width in cells.
func (c *Chart) Width() int { return c.width }

// Height returns the widget height in cells.
func (c *Chart) Height() int { return c.height }

// TimeToCol maps a timestamp to a plot column. ok is false when the column
// falls outside the plot's horizontal bounds (cursor off-screen) or when
// there is nothing to map onto.
func (c *Chart) TimeToCol(t float64) (int, bool) {
	if c.series == nil || c.plotW <= 0 || c.series.Len() == 0 {
		return 0, false
	}
	start, end := c.series.Start(), c.series.End()
	if end <= start {
		return 0, false
	}
	col := int(math.Round((t - start) / (end - start) * float64(c.plotW-1)))
	if col < 0 || col >= c.plotW {
		return 0, false
	}
	return col, true
}

// ColToTime is the inverse transform: a plot column back to a timestamp.
func (c *Chart) ColToTime(col int) (float64, bool) {
	if c.series == nil || c.series.Len() == 0 || col < 0 || col >= c.plotW {
		return 0, false
	}
	start, end := c.series.Start(), c.series.End()
	if c.plotW == 1 {
		return start, true
	}
	return start + float64(col)/float64(c.plotW-1)*(end-start), true
}

// HitTest maps a mouse position relative to the widget's top-left cell to a
// timestamp. The title row does not hit.
func (c *Chart) HitTest(x, y int) (float64, bool) {
	if y < 1 || y >= c.height {
		return 0, false
	}
	return c.ColToTime(x)
}

// Render draws the traces and overlays the cursor column for cursorT. No
// cursor is drawn when cursorT maps outside the plot.
func (c *Chart) Render(cursorT float64) string {
	var b strings.Builder
	b.WriteString(c.titleStyle.Render(c.title))
	b.WriteByte('\n')

	if c.series == nil || c.series.Len() == 0 {
		for row := 0; row < c.plotH; row++ {
			if row == c.plotH/2 {
				b.WriteString(c.emptyStyle.Render(centerText("no data", c.plotW)))
			} else {
				b.WriteString(strings.Repeat(" ", c.plotW))
			}
			if row != c.plotH-1 {
				b.WriteByte('\n')
			}
		}
		return b.String()
	}

	cells := make([][]int, c.plotH)
	for i := range cells {
		cells[i] = make([]int, c.plotW)
		for j := range cells[i] {
			cells[i][j] = cellEmpty
		}
	}

	lo, hi := c.series.Extent()
	for col := 0; col < c.plotW; col++ {
		t, ok := c.ColToTime(col)
		if !ok {
			continue
		}
		for ci, name := range c.series.ChannelNames {
			row := c.valueToRow(c.series.At(name, t), lo, hi)
			cells[row][col] = ci
		}
	}

	if col, ok := c.TimeToCol(cursorT); ok {
		for row := 0; row < c.plotH; row++ {
			cells[row][col] = cellCursor
		}
	}

	for row := 0; row < c.plotH; row++ {
		c.renderRow(&b, cells[row])
		if row != c.plotH-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Chart) valueToRow(v, lo, hi float64) int {
	if hi <= lo {
		return c.plotH / 2
	}
	row := int(math.Round((hi - v) / (hi - lo) * float64(c.plotH-1)))
	if row < 0 {
		row = 0
	}
	if row >= c.plotH {
		row = c.plotH - 1
	}
	return row
}

// renderRow emits one grid row, batching runs of identically-styled cells to
// keep the escape-sequence overhead down.
func (c *Chart) renderRow(b *strings.Builder, row []int) {
	runStart := 0
	for col := 1; col <= len(row); col++ {
		if col < len(row) && row[col] == row[runStart] {
			continue
		}
		n := col - runStart
		switch kind := row[runStart]; {
		case kind == cellEmpty:
			b.WriteString(strings.Repeat(" ", n))
		case kind == cellCursor:
			b.WriteString(c.cursorStyle.Render(strings.Repeat(string(cursorMark), n)))
		default:
			style := c.emptyStyle
			if kind < len(c.styles) {
				style = c.styles[kind]
			}
			b.WriteString(style.Render(strings.Repeat(string(dataMark), n)))
		}
		runStart = col
	}
}

func centerText(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-left-len(s))
}
