package player

import (
	"errors"
	"testing"

	"oakview/internal/api"
)

type fakeSub struct {
	closed int
}

func (f *fakeSub) Close() { f.closed++ }

func processingResponse(jobID string) *api.ProcessResponse {
	return &api.ProcessResponse{Status: api.StatusProcessing, JobID: jobID}
}

func TestSession_processing_lifecycle_to_ready(t *testing.T) {
	s := NewSession(nil, nil)

	epoch := s.Select("site-a/run-7")
	if s.State() != StateRequesting {
		t.Fatalf("state after select = %v, want requesting", s.State())
	}

	if !s.HandleProcessResponse(epoch, processingResponse("42"), nil) {
		t.Fatal("process response should apply")
	}
	if s.State() != StateProcessing || s.JobID() != "42" {
		t.Fatalf("state = %v, job = %q", s.State(), s.JobID())
	}

	sub := &fakeSub{}
	s.AttachSubscription(epoch, sub)

	s.HandleJobEvent(epoch, api.JobEvent{Stage: api.StageDownload, Progress: 1.0})
	s.HandleJobEvent(epoch, api.JobEvent{Stage: api.StageRGB, Progress: 0.5})
	if f := s.Overall().Fraction; f != 0.375 {
		t.Errorf("overall fraction = %v, want 0.375", f)
	}

	s.HandleJobEvent(epoch, api.JobEvent{Stage: api.StageDone, Progress: 1.0})
	if s.State() != StateReady {
		t.Errorf("state after done = %v, want ready", s.State())
	}
	if f := s.Overall().Fraction; f != 1.0 {
		t.Errorf("fraction after done = %v, want 1.0", f)
	}
	if sub.closed == 0 {
		t.Error("subscription must be closed on terminal stage")
	}
}

func TestSession_ready_response_skips_processing(t *testing.T) {
	s := NewSession(nil, nil)
	epoch := s.Select("r")

	s.HandleProcessResponse(epoch, &api.ProcessResponse{Status: api.StatusReady}, nil)
	if s.State() != StateReady {
		t.Errorf("state = %v, want ready (no progress display)", s.State())
	}
}

func TestSession_request_failure_is_fatal(t *testing.T) {
	s := NewSession(nil, nil)
	epoch := s.Select("r")

	s.HandleProcessResponse(epoch, nil, errors.New("connection refused"))
	if s.State() != StateError {
		t.Errorf("state = %v, want error", s.State())
	}
	if s.ErrDetail() != "connection refused" {
		t.Errorf("detail = %q", s.ErrDetail())
	}
}

func TestSession_pipeline_error_closes_subscription(t *testing.T) {
	s := NewSession(nil, nil)
	epoch := s.Select("r")
	s.HandleProcessResponse(epoch, processingResponse("1"), nil)
	sub := &fakeSub{}
	s.AttachSubscription(epoch, sub)

	s.HandleJobEvent(epoch, api.JobEvent{Stage: api.StageError, Detail: "No RGB messages found in MCAP"})
	if s.State() != StateError {
		t.Errorf("state = %v, want error", s.State())
	}
	if s.ErrDetail() != "No RGB messages found in MCAP" {
		t.Errorf("detail = %q", s.ErrDetail())
	}
	if sub.closed == 0 {
		t.Error("subscription must be closed on pipeline error")
	}
}

func TestSession_transport_loss_distinct_from_pipeline_error(t *testing.T) {
	s := NewSession(nil, nil)
	epoch := s.Select("r")
	s.HandleProcessResponse(epoch, processingResponse("1"), nil)
	s.AttachSubscription(epoch, &fakeSub{})

	s.HandleStreamEnd(epoch, errors.New("unexpected EOF"))
	if s.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected (job may still be running)", s.State())
	}
}

func TestSession_clean_stream_end_after_terminal_is_noop(t *testing.T) {
	s := NewSession(nil, nil)
	epoch := s.Select("r")
	s.HandleProcessResponse(epoch, processingResponse("1"), nil)
	s.AttachSubscription(epoch, &fakeSub{})
	s.HandleJobEvent(epoch, api.JobEvent{Stage: api.StageDone})

	if s.HandleStreamEnd(epoch, nil) {
		t.Error("clean stream end after done should change nothing")
	}
	if s.State() != StateReady {
		t.Errorf("state = %v, want ready", s.State())
	}
}

func TestSession_stale_completions_discarded(t *testing.T) {
	s := NewSession(nil, nil)
	oldEpoch := s.Select("old/recording")
	_ = s.Select("new/recording")

	if s.HandleProcessResponse(oldEpoch, processingResponse("9"), nil) {
		t.Error("stale process response should be discarded")
	}
	if s.State() != StateRequesting {
		t.Errorf("state = %v, stale completion must not mutate the new session", s.State())
	}
	if s.HandleJobEvent(oldEpoch, api.JobEvent{Stage: api.StageDone}) {
		t.Error("stale job event should be discarded")
	}
	if s.HandleMetadata(oldEpoch, &api.Metadata{}, nil) {
		t.Error("stale metadata should be discarded")
	}
	if s.HandleIMU(oldEpoch, &api.IMUPayload{}, nil) {
		t.Error("stale IMU payload should be discarded")
	}
}

func TestSession_reselect_closes_previous_subscription(t *testing.T) {
	s := NewSession(nil, nil)
	epoch := s.Select("first")
	s.HandleProcessResponse(epoch, processingResponse("1"), nil)
	sub := &fakeSub{}
	s.AttachSubscription(epoch, sub)

	s.Select("second")
	if sub.closed == 0 {
		t.Error("selecting a new recording must close the previous job's subscription")
	}
}

func TestSession_attach_for_stale_epoch_closes_immediately(t *testing.T) {
	s := NewSession(nil, nil)
	oldEpoch := s.Select("first")
	s.HandleProcessResponse(oldEpoch, processingResponse("1"), nil)
	s.Select("second")

	sub := &fakeSub{}
	s.AttachSubscription(oldEpoch, sub)
	if sub.closed == 0 {
		t.Error("a subscription opened for a stale epoch must be closed on arrival")
	}
}

func TestSession_metadata_failure_nonfatal(t *testing.T) {
	s := NewSession(nil, nil)
	epoch := s.Select("r")
	s.HandleProcessResponse(epoch, &api.ProcessResponse{Status: api.StatusReady}, nil)

	if s.HandleMetadata(epoch, nil, errors.New("404")) {
		t.Error("metadata failure should report no change")
	}
	if s.State() != StateReady {
		t.Errorf("metadata failure must never block readiness, state = %v", s.State())
	}
}

func TestSession_duration_prefers_metadata_over_imu_extent(t *testing.T) {
	s := NewSession(nil, nil)
	epoch := s.Select("r")
	s.HandleProcessResponse(epoch, &api.ProcessResponse{Status: api.StatusReady}, nil)

	meta := &api.Metadata{Stats: &struct {
		DurationS float64 `json:"duration_s"`
	}{DurationS: 90}}
	s.HandleMetadata(epoch, meta, nil)

	payload := &api.IMUPayload{
		Timestamps: []float64{0, 1, 2},
		Accel:      api.Axes{X: []float64{0, 0, 0}, Y: []float64{0, 0, 0}, Z: []float64{0, 0, 0}},
		Gyro:       api.Axes{X: []float64{0, 0, 0}, Y: []float64{0, 0, 0}, Z: []float64{0, 0, 0}},
	}
	s.HandleIMU(epoch, payload, nil)

	if d := s.Duration(); d != 90 {
		t.Errorf("duration = %v, want 90 from metadata", d)
	}
}

func TestSession_duration_falls_back_to_imu_extent(t *testing.T) {
	s := NewSession(nil, nil)
	epoch := s.Select("r")
	s.HandleProcessResponse(epoch, &api.ProcessResponse{Status: api.StatusReady}, nil)

	payload := &api.IMUPayload{
		Timestamps: []float64{0, 1.5, 3.25},
		Accel:      api.Axes{X: []float64{1, 2, 3}, Y: []float64{1, 2, 3}, Z: []float64{1, 2, 3}},
		Gyro:       api.Axes{X: []float64{1, 2, 3}, Y: []float64{1, 2, 3}, Z: []float64{1, 2, 3}},
	}
	s.HandleIMU(epoch, payload, nil)

	if d := s.Duration(); d != 3.25 {
		t.Errorf("duration = %v, want 3.25 (last IMU timestamp)", d)
	}
	if s.Accel() == nil || s.Gyro() == nil {
		t.Error("both series should be loaded")
	}
}
