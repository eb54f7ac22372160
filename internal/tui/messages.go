package tui

import (
	"oakview/internal/api"
)

// browseLoadedMsg carries a browse listing (or its failure).
type browseLoadedMsg struct {
	prefix  string
	listing *api.Listing
	err     error
}

// processStartedMsg carries the processing request's reply, tagged with the
// session epoch it was issued under.
type processStartedMsg struct {
	epoch uint64
	resp  *api.ProcessResponse
	err   error
}

// subscribedMsg carries a freshly opened job event subscription.
type subscribedMsg struct {
	epoch uint64
	sub   *api.JobSubscription
	err   error
}

// jobEventMsg carries one streamed job event. ok is false once the stream
// has ended; streamErr then distinguishes transport loss from a clean end.
type jobEventMsg struct {
	epoch     uint64
	ev        api.JobEvent
	ok        bool
	streamErr error
}

// metadataMsg carries the optional metadata fetch result.
type metadataMsg struct {
	epoch uint64
	meta  *api.Metadata
	err   error
}

// imuMsg carries the inertial data fetch result.
type imuMsg struct {
	epoch   uint64
	payload *api.IMUPayload
	err     error
}

// frameTickMsg drives the per-frame cursor redraw loop while playing.
type frameTickMsg struct{}

// resizeAppliedMsg fires after the resize debounce window; only the latest
// generation is applied.
type resizeAppliedMsg struct {
	gen int
}
