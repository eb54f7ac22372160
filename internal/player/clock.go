package player

import "time"

// Clock is the authoritative owner of the playback position: a seekable
// playback clock bound to the recording's media URL. Position advances with
// wall time while playing and is clamped to [0, duration]; reaching the end
// pauses the clock. Every other view is a follower that reads but never
// writes the position except through a seek.
type Clock struct {
	now func() time.Time

	mediaURL string
	duration float64

	playing bool
	base    float64   // position when anchor was taken
	anchor  time.Time // wall time of the last play/seek
}

// NewClock returns a stopped clock with no media bound.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// SetMedia binds a media URL and duration, resetting position to zero and
// pausing. Duration zero means "unknown yet"; see SetDuration.
func (c *Clock) SetMedia(url string, duration float64) {
	c.mediaURL = url
	c.duration = duration
	c.playing = false
	c.base = 0
}

// SetDuration updates the duration once it becomes known (metadata or IMU
// extent arrive after readiness). The current position is re-clamped.
func (c *Clock) SetDuration(d float64) {
	if d < 0 {
		d = 0
	}
	c.duration = d
	if pos := c.Pos(); pos > d {
		c.base = d
		c.anchor = c.now()
	}
}

// MediaURL returns the bound media URL.
func (c *Clock) MediaURL() string {
	return c.mediaURL
}

// Duration returns the media duration in seconds, zero if unknown.
func (c *Clock) Duration() float64 {
	return c.duration
}

// Pos returns the current position in seconds. While playing it advances
// with wall time; hitting the end of known media pauses the clock there.
func (c *Clock) Pos() float64 {
	if !c.playing {
		return c.base
	}
	pos := c.base + c.now().Sub(c.anchor).Seconds()
	if c.duration > 0 && pos >= c.duration {
		c.base = c.duration
		c.playing = false
		return c.duration
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// SeekTo sets the position, clamped to [0, duration].
func (c *Clock) SeekTo(t float64) {
	if t < 0 {
		t = 0
	}
	if c.duration > 0 && t > c.duration {
		t = c.duration
	}
	c.base = t
	c.anchor = c.now()
}

// Play starts the clock. Playing at the end of media is a no-op position-wise;
// Pos will immediately re-pause there.
func (c *Clock) Play() {
	if c.playing {
		return
	}
	c.anchor = c.now()
	c.playing = true
}

// Pause freezes the position.
func (c *Clock) Pause() {
	if !c.playing {
		return
	}
	c.base = c.Pos()
	c.playing = false
}

// Playing reports whether the clock is advancing. It consults Pos first so
// that a clock which ran past the end reports paused.
func (c *Clock) Playing() bool {
	c.Pos()
	return c.playing
}
