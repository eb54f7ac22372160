package player

import (
	"errors"
	"log/slog"

	"oakview/internal/api"
	"oakview/internal/platform/metrics"
)

// State is a recording's lifecycle state. Ready, Error and Disconnected are
// terminal for that recording; selecting again starts a fresh lifecycle.
type State int

const (
	StateEmpty State = iota
	StateRequesting
	StateProcessing
	StateReady
	StateError
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRequesting:
		return "requesting"
	case StateProcessing:
		return "processing"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Subscription is the closable handle a Session owns for the lifetime of a
// processing job's event stream.
type Subscription interface {
	Close()
}

// Session owns everything scoped to the currently selected recording: the
// ref, the lifecycle state, the progress aggregate, the event subscription,
// and the loaded time series. All of it is discarded together when a new
// recording is selected. Every async completion carries the epoch it was
// issued under; completions from a previous selection are discarded.
type Session struct {
	log *slog.Logger
	met *metrics.Metrics

	ref   string
	epoch uint64
	state State

	jobID     string
	agg       *Aggregator
	sub       Subscription
	errDetail string

	meta     *api.Metadata
	accel    *TimeSeries
	gyro     *TimeSeries
	duration float64
}

// NewSession returns an empty session. Metrics may be nil.
func NewSession(log *slog.Logger, met *metrics.Metrics) *Session {
	return &Session{log: log, met: met, agg: NewAggregator()}
}

// Select tears down any previous recording's state (including its live
// subscription) and starts a fresh lifecycle for ref. It returns the new
// epoch; async completions must hand it back to be accepted.
func (s *Session) Select(ref string) uint64 {
	s.Teardown()
	s.epoch++
	s.ref = ref
	s.state = StateRequesting
	if s.log != nil {
		s.log.Info("recording selected", slog.String("ref", ref), slog.Uint64("epoch", s.epoch))
	}
	return s.epoch
}

// Teardown closes the subscription and resets to Empty. Idempotent.
func (s *Session) Teardown() {
	s.closeSub()
	s.ref = ""
	s.state = StateEmpty
	s.jobID = ""
	s.agg = NewAggregator()
	s.errDetail = ""
	s.meta = nil
	s.accel = nil
	s.gyro = nil
	s.duration = 0
}

func (s *Session) closeSub() {
	if s.sub != nil {
		s.sub.Close()
		s.sub = nil
	}
}

func (s *Session) stale(epoch uint64) bool {
	return epoch != s.epoch || s.state == StateEmpty
}

// Epoch returns the current selection epoch.
func (s *Session) Epoch() uint64 { return s.epoch }

// Ref returns the selected recording ref, empty when no selection is active.
func (s *Session) Ref() string { return s.ref }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// JobID returns the active processing job id, if any.
func (s *Session) JobID() string { return s.jobID }

// Overall returns the latest aggregated progress.
func (s *Session) Overall() Overall { return s.agg.Current() }

// ErrDetail returns the surfaced failure detail for Error/Disconnected.
func (s *Session) ErrDetail() string { return s.errDetail }

// Metadata returns the optional metadata document, nil if unavailable.
func (s *Session) Metadata() *api.Metadata { return s.meta }

// Accel returns the accelerometer series, nil if unavailable.
func (s *Session) Accel() *TimeSeries { return s.accel }

// Gyro returns the gyroscope series, nil if unavailable.
func (s *Session) Gyro() *TimeSeries { return s.gyro }

// Duration returns the best known recording duration in seconds, zero if
// still unknown. Metadata wins; the IMU extent is the fallback.
func (s *Session) Duration() float64 { return s.duration }

// HandleProcessResponse folds in the reply to the processing request.
// A ready recording goes straight to Ready, skipping progress display.
func (s *Session) HandleProcessResponse(epoch uint64, resp *api.ProcessResponse, err error) bool {
	if s.stale(epoch) {
		return false
	}
	if err != nil {
		s.state = StateError
		s.errDetail = err.Error()
		if s.log != nil {
			s.log.Error("processing request failed", slog.String("ref", s.ref), slog.String("error", err.Error()))
		}
		return true
	}
	switch resp.Status {
	case api.StatusReady:
		s.state = StateReady
	case api.StatusProcessing:
		s.state = StateProcessing
		s.jobID = resp.JobID
		if s.met != nil {
			s.met.IncJobsStarted()
		}
	default:
		s.state = StateError
		s.errDetail = "unexpected process status: " + resp.Status
	}
	return true
}

// AttachSubscription hands ownership of the job event subscription to the
// session. A subscription opened for a stale epoch is closed immediately so
// no connection can outlive its selection.
func (s *Session) AttachSubscription(epoch uint64, sub Subscription) {
	if s.stale(epoch) || s.state != StateProcessing {
		sub.Close()
		return
	}
	s.sub = sub
}

// HandleJobEvent folds one streamed event into the session. Terminal events
// close the subscription; done enters Ready, error enters Error.
func (s *Session) HandleJobEvent(epoch uint64, ev api.JobEvent) bool {
	if s.stale(epoch) || s.state != StateProcessing {
		return false
	}

	cur, changed := s.agg.Apply(ev)
	if ev.Stage != api.StageHeartbeat && s.met != nil {
		s.met.IncProgressEvents()
		s.met.SetOverallProgress(cur.Fraction)
	}

	switch ev.Stage {
	case api.StageDone:
		s.closeSub()
		s.state = StateReady
		if s.met != nil {
			s.met.IncJobsCompleted()
		}
	case api.StageError:
		s.closeSub()
		s.state = StateError
		s.errDetail = ev.Detail
		if s.met != nil {
			s.met.IncJobsFailed()
		}
	}
	return changed
}

// HandleStreamEnd folds in the end of the event stream. A transport failure
// while the job was still running enters Disconnected, which is not the same
// as a pipeline error: the job may still be running server-side.
func (s *Session) HandleStreamEnd(epoch uint64, err error) bool {
	if s.stale(epoch) || s.state != StateProcessing {
		return false
	}
	if err == nil || errors.Is(err, api.ErrSubscriptionClosed) {
		return false
	}
	s.closeSub()
	s.state = StateDisconnected
	s.errDetail = err.Error()
	if s.met != nil {
		s.met.IncJobsFailed()
	}
	if s.log != nil {
		s.log.Warn("job event stream lost", slog.String("job_id", s.jobID), slog.String("error", err.Error()))
	}
	return true
}

// HandleMetadata folds in the optional metadata fetch. Failures are
// non-fatal and silent: metadata fields only overlay the info panel.
func (s *Session) HandleMetadata(epoch uint64, meta *api.Metadata, err error) bool {
	if s.stale(epoch) {
		return false
	}
	if err != nil {
		if s.log != nil {
			s.log.Warn("metadata fetch failed", slog.String("ref", s.ref), slog.String("error", err.Error()))
		}
		return false
	}
	s.meta = meta
	if d, ok := meta.DurationS(); ok {
		s.duration = d
	}
	return true
}

// HandleIMU folds in the inertial data fetch. Failures are non-fatal: the
// charts stay blank but playback is not blocked.
func (s *Session) HandleIMU(epoch uint64, payload *api.IMUPayload, err error) bool {
	if s.stale(epoch) {
		return false
	}
	if err != nil {
		if s.log != nil {
			s.log.Warn("imu fetch failed", slog.String("ref", s.ref), slog.String("error", err.Error()))
		}
		return false
	}
	accel, gyro, err := FromIMU(payload)
	if err != nil {
		if s.log != nil {
			s.log.Warn("imu payload invalid", slog.String("ref", s.ref), slog.String("error", err.Error()))
		}
		return false
	}
	s.accel = accel
	s.gyro = gyro
	if s.duration == 0 {
		s.duration = accel.End()
	}
	return true
}
