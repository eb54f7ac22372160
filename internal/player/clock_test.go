package player

import (
	"testing"
	"time"
)

// newTestClock returns a clock on a controllable wall clock.
func newTestClock() (*Clock, func(d time.Duration)) {
	now := time.Unix(1000, 0)
	c := NewClock()
	c.now = func() time.Time { return now }
	advance := func(d time.Duration) { now = now.Add(d) }
	return c, advance
}

func TestClock_advances_while_playing(t *testing.T) {
	c, advance := newTestClock()
	c.SetMedia("video.mp4", 100)

	c.Play()
	advance(3 * time.Second)
	if pos := c.Pos(); pos != 3 {
		t.Errorf("Pos after 3s playing = %v, want 3", pos)
	}
}

func TestClock_paused_position_frozen(t *testing.T) {
	c, advance := newTestClock()
	c.SetMedia("video.mp4", 100)

	c.Play()
	advance(2 * time.Second)
	c.Pause()
	advance(10 * time.Second)
	if pos := c.Pos(); pos != 2 {
		t.Errorf("Pos after pause = %v, want 2", pos)
	}
}

func TestClock_seek_clamps(t *testing.T) {
	c, _ := newTestClock()
	c.SetMedia("video.mp4", 10)

	c.SeekTo(-5)
	if pos := c.Pos(); pos != 0 {
		t.Errorf("seek below zero: Pos = %v, want 0", pos)
	}
	c.SeekTo(25)
	if pos := c.Pos(); pos != 10 {
		t.Errorf("seek past duration: Pos = %v, want 10", pos)
	}
}

func TestClock_pauses_at_end_of_media(t *testing.T) {
	c, advance := newTestClock()
	c.SetMedia("video.mp4", 5)

	c.Play()
	advance(30 * time.Second)
	if pos := c.Pos(); pos != 5 {
		t.Errorf("Pos past end = %v, want clamped 5", pos)
	}
	if c.Playing() {
		t.Error("clock should pause itself at end of media")
	}
}

func TestClock_play_at_end_stays_at_end(t *testing.T) {
	c, advance := newTestClock()
	c.SetMedia("video.mp4", 5)
	c.SeekTo(5)

	c.Play()
	advance(time.Second)
	if pos := c.Pos(); pos != 5 {
		t.Errorf("Pos = %v, want 5", pos)
	}
	if c.Playing() {
		t.Error("playing at end should immediately re-pause")
	}
}

func TestClock_set_duration_reclamps_position(t *testing.T) {
	c, _ := newTestClock()
	c.SetMedia("video.mp4", 0) // unknown duration yet
	c.SeekTo(42)

	c.SetDuration(10)
	if pos := c.Pos(); pos != 10 {
		t.Errorf("Pos after duration shrank = %v, want 10", pos)
	}
}

func TestClock_set_media_resets(t *testing.T) {
	c, advance := newTestClock()
	c.SetMedia("a.mp4", 100)
	c.Play()
	advance(5 * time.Second)

	c.SetMedia("b.mp4", 50)
	if c.Playing() {
		t.Error("new media should start paused")
	}
	if pos := c.Pos(); pos != 0 {
		t.Errorf("new media should start at 0, got %v", pos)
	}
	if c.MediaURL() != "b.mp4" {
		t.Errorf("MediaURL = %q", c.MediaURL())
	}
}
