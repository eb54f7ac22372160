package api

// Processing pipeline stages reported on the job event stream.
const (
	StageDownload  = "download"
	StageRGB       = "rgb"
	StageDepth     = "depth"
	StageIMU       = "imu"
	StageDone      = "done"
	StageError     = "error"
	StageHeartbeat = "heartbeat"
)

// Process endpoint status values.
const (
	StatusReady      = "ready"
	StatusProcessing = "processing"
)

// Folder is a browsable prefix in the remote recording store.
type Folder struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// File is an object stored under a prefix.
type File struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Listing is the result of browsing a prefix.
type Listing struct {
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
}

// ProcessResponse is the reply to a processing request: either the recording
// is already cached server-side (ready) or a job was started (processing).
type ProcessResponse struct {
	Status      string `json:"status"`
	JobID       string `json:"job_id"`
	RecordingID string `json:"recording_id"`
}

// JobEvent is one message on a job's server-push event stream.
// Progress is the fraction completed within Stage, in [0,1].
type JobEvent struct {
	Stage    string  `json:"stage"`
	Progress float64 `json:"progress"`
	Detail   string  `json:"detail"`
}

// Terminal reports whether the event ends the job's event stream.
func (e JobEvent) Terminal() bool {
	return e.Stage == StageDone || e.Stage == StageError
}

// RecordingConfig carries optional capture parameters from the recorder.
type RecordingConfig struct {
	CameraFPS  float64 `json:"camera_fps"`
	Resolution []int   `json:"resolution"`
}

// Metadata is the optional per-recording metadata document. Every field may
// be absent; accessors below handle both nesting variants the server emits.
type Metadata struct {
	RecordingConfig *RecordingConfig `json:"recording_config"`
	Recording       *struct {
		RecordingConfig *RecordingConfig `json:"recording_config"`
	} `json:"recording"`
	Stats *struct {
		DurationS float64 `json:"duration_s"`
	} `json:"_stats"`
}

func (m *Metadata) config() *RecordingConfig {
	if m == nil {
		return nil
	}
	if m.RecordingConfig != nil {
		return m.RecordingConfig
	}
	if m.Recording != nil {
		return m.Recording.RecordingConfig
	}
	return nil
}

// CameraFPS returns the capture frame rate if present.
func (m *Metadata) CameraFPS() (float64, bool) {
	if c := m.config(); c != nil && c.CameraFPS > 0 {
		return c.CameraFPS, true
	}
	return 0, false
}

// Resolution returns the capture width and height if present.
func (m *Metadata) Resolution() (w, h int, ok bool) {
	if c := m.config(); c != nil && len(c.Resolution) == 2 {
		return c.Resolution[0], c.Resolution[1], true
	}
	return 0, 0, false
}

// DurationS returns the recording duration in seconds if present.
func (m *Metadata) DurationS() (float64, bool) {
	if m == nil || m.Stats == nil || m.Stats.DurationS <= 0 {
		return 0, false
	}
	return m.Stats.DurationS, true
}

// Axes holds one sample sequence per spatial axis.
type Axes struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
	Z []float64 `json:"z"`
}

// IMUPayload is the extracted inertial data for a recording. All axis arrays
// have the same length as Timestamps.
type IMUPayload struct {
	Timestamps   []float64 `json:"timestamps"`
	Accel        Axes      `json:"accel"`
	Gyro         Axes      `json:"gyro"`
	SampleRateHz float64   `json:"sample_rate_hz"`
	SampleCount  int       `json:"sample_count"`
}
