package player

import (
	"testing"

	"oakview/internal/api"
)

func TestNewTimeSeries_rejects_non_increasing_timestamps(t *testing.T) {
	_, err := NewTimeSeries(
		[]float64{0, 1, 1},
		[]string{"x"},
		map[string][]float64{"x": {1, 2, 3}},
	)
	if err == nil {
		t.Error("duplicate timestamp should be rejected")
	}
}

func TestNewTimeSeries_rejects_length_mismatch(t *testing.T) {
	_, err := NewTimeSeries(
		[]float64{0, 1, 2},
		[]string{"x"},
		map[string][]float64{"x": {1, 2}},
	)
	if err == nil {
		t.Error("channel shorter than timestamps should be rejected")
	}
}

func TestNewTimeSeries_rejects_empty(t *testing.T) {
	_, err := NewTimeSeries(nil, nil, nil)
	if err == nil {
		t.Error("empty series should be rejected")
	}
}

func TestFromIMU_splits_accel_and_gyro(t *testing.T) {
	payload := &api.IMUPayload{
		Timestamps: []float64{0, 0.5, 1},
		Accel:      api.Axes{X: []float64{1, 2, 3}, Y: []float64{4, 5, 6}, Z: []float64{7, 8, 9}},
		Gyro:       api.Axes{X: []float64{-1, -2, -3}, Y: []float64{0, 0, 0}, Z: []float64{9, 9, 9}},
	}

	accel, gyro, err := FromIMU(payload)
	if err != nil {
		t.Fatalf("FromIMU: %v", err)
	}
	if accel.Len() != 3 || gyro.Len() != 3 {
		t.Fatalf("lengths = %d, %d, want 3, 3", accel.Len(), gyro.Len())
	}
	if got := accel.Channels["y"][1]; got != 5 {
		t.Errorf("accel y[1] = %v, want 5", got)
	}
	if got := gyro.Channels["x"][2]; got != -3 {
		t.Errorf("gyro x[2] = %v, want -3", got)
	}
}

func TestFromIMU_rejects_ragged_payload(t *testing.T) {
	payload := &api.IMUPayload{
		Timestamps: []float64{0, 0.5, 1},
		Accel:      api.Axes{X: []float64{1, 2}, Y: []float64{4, 5, 6}, Z: []float64{7, 8, 9}},
		Gyro:       api.Axes{X: []float64{0, 0, 0}, Y: []float64{0, 0, 0}, Z: []float64{0, 0, 0}},
	}
	if _, _, err := FromIMU(payload); err == nil {
		t.Error("ragged axis arrays should be rejected")
	}
}

func TestTimeSeries_at_returns_nearest_sample(t *testing.T) {
	ts, err := NewTimeSeries(
		[]float64{0, 1, 2, 3},
		[]string{"x"},
		map[string][]float64{"x": {10, 20, 30, 40}},
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		t    float64
		want float64
	}{
		{-5, 10},  // before first sample
		{0.4, 10}, // closer to 0
		{0.6, 20}, // closer to 1
		{2, 30},   // exact
		{99, 40},  // past last sample
	}
	for _, tt := range tests {
		if got := ts.At("x", tt.t); got != tt.want {
			t.Errorf("At(x, %v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestTimeSeries_extent_spans_all_channels(t *testing.T) {
	ts, err := NewTimeSeries(
		[]float64{0, 1},
		[]string{"x", "y"},
		map[string][]float64{"x": {-3, 2}, "y": {0, 7}},
	)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := ts.Extent()
	if lo != -3 || hi != 7 {
		t.Errorf("Extent = (%v, %v), want (-3, 7)", lo, hi)
	}
}
