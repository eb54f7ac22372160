package player

import (
	"errors"
	"fmt"
	"sort"

	"oakview/internal/api"
)

// TimeSeries is an immutable set of equally-indexed channels over a strictly
// increasing timestamp sequence. Instances are replaced wholesale when a new
// recording loads, never mutated in place.
type TimeSeries struct {
	Timestamps []float64
	Channels   map[string][]float64

	// ChannelNames preserves insertion order for stable rendering.
	ChannelNames []string
}

// NewTimeSeries validates and wraps the given data. names fixes channel
// order; every named channel must exist in channels with the same length as
// timestamps, and timestamps must be strictly increasing.
func NewTimeSeries(timestamps []float64, names []string, channels map[string][]float64) (*TimeSeries, error) {
	if len(timestamps) == 0 {
		return nil, errors.New("timeseries: no samples")
	}
	for i := 1; i < len(timestamps); i++ {
		if timestamps[i] <= timestamps[i-1] {
			return nil, fmt.Errorf("timeseries: timestamps not strictly increasing at index %d", i)
		}
	}
	for _, name := range names {
		ch, ok := channels[name]
		if !ok {
			return nil, fmt.Errorf("timeseries: missing channel %q", name)
		}
		if len(ch) != len(timestamps) {
			return nil, fmt.Errorf("timeseries: channel %q has %d samples, want %d", name, len(ch), len(timestamps))
		}
	}
	return &TimeSeries{Timestamps: timestamps, Channels: channels, ChannelNames: names}, nil
}

// FromIMU splits an IMU payload into its accelerometer and gyroscope series.
func FromIMU(p *api.IMUPayload) (accel, gyro *TimeSeries, err error) {
	names := []string{"x", "y", "z"}
	accel, err = NewTimeSeries(p.Timestamps, names, map[string][]float64{
		"x": p.Accel.X, "y": p.Accel.Y, "z": p.Accel.Z,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("accel: %w", err)
	}
	gyro, err = NewTimeSeries(p.Timestamps, names, map[string][]float64{
		"x": p.Gyro.X, "y": p.Gyro.Y, "z": p.Gyro.Z,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gyro: %w", err)
	}
	return accel, gyro, nil
}

// Len returns the sample count.
func (ts *TimeSeries) Len() int {
	return len(ts.Timestamps)
}

// Start returns the first timestamp.
func (ts *TimeSeries) Start() float64 {
	return ts.Timestamps[0]
}

// End returns the last timestamp.
func (ts *TimeSeries) End() float64 {
	return ts.Timestamps[len(ts.Timestamps)-1]
}

// At returns the value of the named channel at the sample nearest to t.
func (ts *TimeSeries) At(name string, t float64) float64 {
	ch := ts.Channels[name]
	if len(ch) == 0 {
		return 0
	}
	i := sort.SearchFloat64s(ts.Timestamps, t)
	if i >= len(ts.Timestamps) {
		return ch[len(ch)-1]
	}
	if i > 0 && t-ts.Timestamps[i-1] < ts.Timestamps[i]-t {
		i--
	}
	return ch[i]
}

// Extent returns the min and max values across all channels, used for a
// shared vertical scale when charting.
func (ts *TimeSeries) Extent() (lo, hi float64) {
	first := true
	for _, name := range ts.ChannelNames {
		for _, v := range ts.Channels[name] {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
