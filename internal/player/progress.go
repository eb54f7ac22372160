package player

import "oakview/internal/api"

// stageWeight maps a pipeline stage onto the overall [0,1] scale. The weights
// encode the pipeline's real relative cost: encoding the RGB track dominates,
// IMU extraction is cheap, so the displayed percentage tracks wall-clock
// progress rather than stage count.
type stageWeight struct {
	offset float64
	weight float64
}

var stageWeights = map[string]stageWeight{
	api.StageDownload: {offset: 0.00, weight: 0.15},
	api.StageRGB:      {offset: 0.15, weight: 0.45},
	api.StageDepth:    {offset: 0.60, weight: 0.35},
	api.StageIMU:      {offset: 0.95, weight: 0.05},
}

var stageLabels = map[string]string{
	api.StageDownload: "Downloading",
	api.StageRGB:      "Encoding RGB",
	api.StageDepth:    "Rendering depth",
	api.StageIMU:      "Extracting IMU",
	api.StageDone:     "Ready",
	api.StageError:    "Failed",
}

// Overall is the single progress value shown to the user, derived from
// per-stage weighted offsets.
type Overall struct {
	Fraction   float64
	StageLabel string
	Detail     string
}

// Aggregator reduces the ordered event stream of one processing job to a
// monotonic overall fraction plus a stage/detail pair. The fraction is
// clamped to non-decreasing within the job, so a stage reported out of the
// expected order never moves the displayed percentage backwards.
type Aggregator struct {
	cur    Overall
	failed bool
}

// NewAggregator returns an Aggregator at fraction zero.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Apply folds one event into the aggregate and reports whether anything
// changed. Heartbeats are kept-alive signals only and never change state.
func (a *Aggregator) Apply(ev api.JobEvent) (Overall, bool) {
	switch ev.Stage {
	case api.StageHeartbeat:
		return a.cur, false

	case api.StageDone:
		a.cur = Overall{Fraction: 1.0, StageLabel: stageLabels[api.StageDone], Detail: ev.Detail}
		return a.cur, true

	case api.StageError:
		// Freeze the fraction where it was; surface the failure detail.
		a.failed = true
		a.cur.StageLabel = stageLabels[api.StageError]
		a.cur.Detail = ev.Detail
		return a.cur, true
	}

	sw, known := stageWeights[ev.Stage]
	if !known {
		// An unrecognized non-terminal stage carries no weight; pass its
		// detail through so the user still sees pipeline activity.
		a.cur.Detail = ev.Detail
		return a.cur, true
	}

	p := ev.Progress
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	fraction := sw.offset + sw.weight*p
	if fraction > a.cur.Fraction {
		a.cur.Fraction = fraction
	}
	a.cur.StageLabel = stageLabels[ev.Stage]
	a.cur.Detail = ev.Detail
	return a.cur, true
}

// Current returns the latest aggregate.
func (a *Aggregator) Current() Overall {
	return a.cur
}

// Failed reports whether the pipeline reported an error stage.
func (a *Aggregator) Failed() bool {
	return a.failed
}
