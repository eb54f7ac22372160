package player

import (
	"fmt"
	"log/slog"
	"math"

	"oakview/internal/platform/metrics"
)

// Follower is any view that displays the playback position without owning
// it: the numeric readout, the scrub control, the chart cursors. SetPosition
// is the event-driven cadence; RedrawCursor is the redraw-only cadence used
// additionally by the per-frame loop while playing.
type Follower interface {
	SetPosition(t float64)
	RedrawCursor(t float64)
}

// Engine keeps every follower consistent with the single authoritative
// Clock and normalizes all seek sources into one operation. Metrics may be
// nil to disable recording (e.g. in tests).
type Engine struct {
	clock *Clock
	log   *slog.Logger
	met   *metrics.Metrics

	nudge float64

	followers     []Follower
	playListeners []func(playing bool)
	lastPlaying   bool
}

// DefaultNudgeSeconds is how far the arrow keys move the position.
const DefaultNudgeSeconds = 5.0

// ScrubSteps is the resolution of the scrub control.
const ScrubSteps = 1000

// NewEngine returns an Engine over clock. If nudgeSeconds <= 0,
// DefaultNudgeSeconds is used.
func NewEngine(clock *Clock, nudgeSeconds float64, log *slog.Logger, met *metrics.Metrics) *Engine {
	if nudgeSeconds <= 0 {
		nudgeSeconds = DefaultNudgeSeconds
	}
	return &Engine{clock: clock, nudge: nudgeSeconds, log: log, met: met}
}

// Attach registers a follower. Followers are notified in attach order.
func (e *Engine) Attach(f Follower) {
	e.followers = append(e.followers, f)
}

// OnPlayStateChange registers a listener for play/pause transitions. This is
// the single place play-state display (the icon) is updated, so it always
// reflects the real clock state even if playback fails to start.
func (e *Engine) OnPlayStateChange(fn func(playing bool)) {
	e.playListeners = append(e.playListeners, fn)
}

// Position returns the clock's current position.
func (e *Engine) Position() float64 {
	return e.clock.Pos()
}

// Duration returns the clock's media duration.
func (e *Engine) Duration() float64 {
	return e.clock.Duration()
}

// Playing reports whether the clock is advancing.
func (e *Engine) Playing() bool {
	return e.clock.Playing()
}

// MediaURL returns the clock's bound media URL.
func (e *Engine) MediaURL() string {
	return e.clock.MediaURL()
}

// Advance is the event-driven propagation: it reads the clock and pushes the
// position to every follower. It returns the position and whether the clock
// is still playing, so the caller knows whether to reschedule the frame
// loop. Cursor redraws are the frame loop's job (RequestCursorRedraw); a
// seek forces both synchronously.
func (e *Engine) Advance() (pos float64, playing bool) {
	pos = e.clock.Pos()
	for _, f := range e.followers {
		f.SetPosition(pos)
	}
	e.checkPlayState()
	return pos, e.lastPlaying
}

// RequestCursorRedraw is the redraw-only propagation used by the per-frame
// loop to keep chart cursors smooth during continuous playback. Both update
// cadences funnel into this one idempotent operation.
func (e *Engine) RequestCursorRedraw() {
	e.redrawCursors(e.clock.Pos())
}

func (e *Engine) redrawCursors(pos float64) {
	for _, f := range e.followers {
		f.RedrawCursor(pos)
	}
	if e.met != nil {
		e.met.IncCursorRedraws()
	}
}

// SeekTo sets the position (clamped to [0, duration]) and synchronously
// propagates it, so paused seeks still visibly update every view.
func (e *Engine) SeekTo(t float64) {
	e.clock.SeekTo(t)
	if e.met != nil {
		e.met.IncSeeks()
	}
	pos := e.clock.Pos()
	for _, f := range e.followers {
		f.SetPosition(pos)
	}
	e.redrawCursors(pos)
	e.checkPlayState()
}

// ScrubTo maps the scrub control's discrete step (0..ScrubSteps) to a seek
// at step/ScrubSteps of the duration.
func (e *Engine) ScrubTo(step int) {
	if step < 0 {
		step = 0
	}
	if step > ScrubSteps {
		step = ScrubSteps
	}
	e.SeekTo(float64(step) / ScrubSteps * e.clock.Duration())
}

// ScrubStep returns the scrub control's step for the current position.
func (e *Engine) ScrubStep() int {
	d := e.clock.Duration()
	if d <= 0 {
		return 0
	}
	return int(math.Round(e.clock.Pos() / d * ScrubSteps))
}

// NudgeForward seeks forward by the configured nudge, clamped at duration.
func (e *Engine) NudgeForward() {
	e.SeekTo(e.clock.Pos() + e.nudge)
}

// NudgeBack seeks backward by the configured nudge, clamped at zero.
func (e *Engine) NudgeBack() {
	e.SeekTo(e.clock.Pos() - e.nudge)
}

// ClickSeek handles a chart click mapped back to a timestamp by the chart's
// inverse transform. Out-of-range timestamps (before zero or past the
// duration) are discarded, not clamped.
func (e *Engine) ClickSeek(t float64) bool {
	if t < 0 || (e.clock.Duration() > 0 && t > e.clock.Duration()) {
		return false
	}
	e.SeekTo(t)
	return true
}

// TogglePlay flips the clock's play state. Display updates happen only via
// the resulting play-state notification, never here.
func (e *Engine) TogglePlay() {
	if e.clock.Playing() {
		e.clock.Pause()
	} else {
		e.clock.Play()
	}
	e.checkPlayState()
}

func (e *Engine) checkPlayState() {
	p := e.clock.Playing()
	if p == e.lastPlaying {
		return
	}
	e.lastPlaying = p
	if e.log != nil {
		e.log.Debug("play state changed", slog.Bool("playing", p), slog.Float64("position", e.clock.Pos()))
	}
	for _, fn := range e.playListeners {
		fn(p)
	}
}

// FormatTimestamp renders seconds as M:SS, e.g. 75 -> "1:15", 5 -> "0:05".
// Non-finite or negative input renders as "0:00".
func FormatTimestamp(t float64) string {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return "0:00"
	}
	total := int(t)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
