package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"oakview/internal/chart"
	"oakview/internal/player"
)

var (
	playerTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	infoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	scrubFillStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	scrubRestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	scrubKnobStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)

	accelStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("9")),  // x
		lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // y
		lipgloss.NewStyle().Foreground(lipgloss.Color("12")), // z
	}
	gyroStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("13")), // x
		lipgloss.NewStyle().Foreground(lipgloss.Color("11")), // y
		lipgloss.NewStyle().Foreground(lipgloss.Color("14")), // z
	}
)

// playerView renders the selected recording through its whole lifecycle:
// spinner while requesting, progress surface while processing, then the
// playback layout (info panel, readout, scrub bar, two charts).
//
// It is a Follower on the synchronization engine: SetPosition feeds the
// readout and scrub bar, RedrawCursor feeds the chart cursors. Both cadences
// funnel into stored state that the next View reads.
type playerView struct {
	session *player.Session
	engine  *player.Engine

	spin spinner.Model
	bar  progress.Model

	accelChart *chart.Chart
	gyroChart  *chart.Chart

	width, height int

	pos      float64
	cursorT  float64
	playing  bool
	depthURL string

	// Row offsets for mouse routing, recomputed by layout.
	scrubRow   int
	scrubWidth int
	accelTop   int
	gyroTop    int
	chartH     int
}

func newPlayerView(session *player.Session, engine *player.Engine) *playerView {
	pv := &playerView{
		session:    session,
		engine:     engine,
		spin:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:        progress.New(progress.WithDefaultGradient()),
		accelChart: chart.New("accelerometer (m/s²)", accelStyles...),
		gyroChart:  chart.New("gyroscope (rad/s)", gyroStyles...),
	}
	engine.Attach(pv)
	engine.OnPlayStateChange(func(playing bool) {
		pv.playing = playing
	})
	return pv
}

// SetPosition implements player.Follower.
func (pv *playerView) SetPosition(t float64) {
	pv.pos = t
}

// RedrawCursor implements player.Follower.
func (pv *playerView) RedrawCursor(t float64) {
	pv.cursorT = t
}

// reset clears per-recording display state for a fresh selection.
func (pv *playerView) reset() {
	pv.pos = 0
	pv.cursorT = 0
	pv.playing = false
	pv.depthURL = ""
	pv.accelChart.SetSeries(nil)
	pv.gyroChart.SetSeries(nil)
}

func (pv *playerView) setSeries(accel, gyro *player.TimeSeries) {
	pv.accelChart.SetSeries(accel)
	pv.gyroChart.SetSeries(gyro)
}

func (pv *playerView) layout(w, h int) {
	pv.width, pv.height = w, h
	pv.bar.Width = w - 4
	if pv.bar.Width < 10 {
		pv.bar.Width = 10
	}

	pv.scrubWidth = w - 2
	if pv.scrubWidth < 10 {
		pv.scrubWidth = 10
	}

	// Fixed rows: title, two info lines, blank, readout, scrub, blank.
	pv.scrubRow = 5
	pv.accelTop = 7
	remaining := h - pv.accelTop - 3 // blank between charts, blank, help line
	pv.chartH = remaining / 2
	if pv.chartH < 4 {
		pv.chartH = 4
	}
	pv.gyroTop = pv.accelTop + pv.chartH + 1
	pv.accelChart.Layout(w, pv.chartH)
	pv.gyroChart.Layout(w, pv.chartH)
}

// handleClick routes a mouse press inside the playback layout: the scrub bar
// maps the column to a discrete step, a chart maps it back to a timestamp
// through the inverse transform (out-of-range clicks are discarded).
func (pv *playerView) handleClick(x, y int) {
	if pv.session.State() != player.StateReady {
		return
	}
	switch {
	case y == pv.scrubRow:
		if x < 1 || x > pv.scrubWidth {
			return
		}
		step := int(math.Round(float64(x-1) / float64(pv.scrubWidth-1) * player.ScrubSteps))
		pv.engine.ScrubTo(step)
	case y >= pv.accelTop && y < pv.accelTop+pv.chartH:
		if t, ok := pv.accelChart.HitTest(x, y-pv.accelTop); ok {
			pv.engine.ClickSeek(t)
		}
	case y >= pv.gyroTop && y < pv.gyroTop+pv.chartH:
		if t, ok := pv.gyroChart.HitTest(x, y-pv.gyroTop); ok {
			pv.engine.ClickSeek(t)
		}
	}
}

func (pv *playerView) view() string {
	switch pv.session.State() {
	case player.StateRequesting:
		return fmt.Sprintf("\n %s requesting %s…\n\n%s",
			pv.spin.View(), pv.session.Ref(),
			dimStyle.Render(" esc cancel · q quit"))

	case player.StateProcessing:
		o := pv.session.Overall()
		stage := o.StageLabel
		if o.Detail != "" {
			stage += " · " + o.Detail
		}
		lines := []string{
			playerTitleStyle.Render(" processing " + pv.session.Ref()),
			"",
			"  " + pv.bar.ViewAs(o.Fraction),
			"",
			infoStyle.Render("  " + stage),
			"",
			dimStyle.Render("  esc cancel · q quit"),
		}
		return strings.Join(lines, "\n")

	case player.StateError:
		return strings.Join([]string{
			errStyle.Render(" processing failed"),
			"",
			infoStyle.Render("  " + pv.session.ErrDetail()),
			"",
			dimStyle.Render("  esc back · re-open the recording to retry"),
		}, "\n")

	case player.StateDisconnected:
		return strings.Join([]string{
			warnStyle.Render(" connection lost"),
			"",
			infoStyle.Render("  " + pv.session.ErrDetail()),
			"",
			dimStyle.Render("  the job may still be running server-side; esc back and re-open to reattach"),
		}, "\n")

	case player.StateReady:
		return pv.playbackView()
	}
	return ""
}

func (pv *playerView) playbackView() string {
	streams := "video: " + pv.engine.MediaURL()
	if pv.depthURL != "" {
		streams += " · depth: " + pv.depthURL
	}
	lines := []string{
		playerTitleStyle.Render(" " + pv.session.Ref()),
		infoStyle.Render("  " + streams),
		infoStyle.Render("  " + pv.infoLine()),
		"",
		" " + pv.readoutLine(),
		" " + pv.scrubLine(),
		"",
	}
	lines = append(lines, pv.accelChart.Render(pv.cursorT))
	lines = append(lines, "")
	lines = append(lines, pv.gyroChart.Render(pv.cursorT))
	lines = append(lines, dimStyle.Render(" space play/pause · ←/→ ±5s · click to seek · esc back"))
	return strings.Join(lines, "\n")
}

// infoLine assembles the optional metadata overlays; absent fields simply
// leave gaps, they never block playback.
func (pv *playerView) infoLine() string {
	var parts []string
	if meta := pv.session.Metadata(); meta != nil {
		if fps, ok := meta.CameraFPS(); ok {
			parts = append(parts, fmt.Sprintf("%.0f fps", fps))
		}
		if w, h, ok := meta.Resolution(); ok {
			parts = append(parts, fmt.Sprintf("%dx%d", w, h))
		}
	}
	if d := pv.engine.Duration(); d > 0 {
		parts = append(parts, player.FormatTimestamp(d))
	}
	if len(parts) == 0 {
		return dimStyle.Render("no metadata")
	}
	return strings.Join(parts, " · ")
}

func (pv *playerView) readoutLine() string {
	icon := "⏸"
	if pv.playing {
		icon = "▶"
	}
	return fmt.Sprintf("%s  %s / %s", icon,
		player.FormatTimestamp(pv.pos),
		player.FormatTimestamp(pv.engine.Duration()))
}

func (pv *playerView) scrubLine() string {
	d := pv.engine.Duration()
	knob := 0
	if d > 0 {
		knob = int(math.Round(pv.pos / d * float64(pv.scrubWidth-1)))
	}
	var b strings.Builder
	for i := 0; i < pv.scrubWidth; i++ {
		switch {
		case i == knob:
			b.WriteString(scrubKnobStyle.Render("●"))
		case i < knob:
			b.WriteString(scrubFillStyle.Render("━"))
		default:
			b.WriteString(scrubRestStyle.Render("─"))
		}
	}
	return b.String()
}
