package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"oakview/internal/api"
	"oakview/internal/player"
)

type viewID int

const (
	viewBrowse viewID = iota
	viewPlayer
)

// Only the last resize within this window is applied, so a drag-resize does
// not trigger redundant chart re-layouts.
const resizeDebounceWindow = 100 * time.Millisecond

// Model is the root bubbletea model. All session, clock, and engine
// mutation happens on the single Update goroutine; background work (HTTP
// calls, the SSE reader) reports back as epoch-tagged messages.
type Model struct {
	ctx    context.Context
	log    *slog.Logger
	client *api.Client

	session *player.Session
	clock   *player.Clock
	engine  *player.Engine

	keys   keyMap
	view   viewID
	browse browseModel
	pv     *playerView

	activeSub *api.JobSubscription

	startPrefix        string
	width, height      int
	pendingW, pendingH int
	resizeGen          int

	frameInterval  time.Duration
	frameScheduled bool
}

// New wires the root model. fps is the frame loop rate for chart cursor
// redraws during playback.
func New(ctx context.Context, log *slog.Logger, client *api.Client,
	session *player.Session, clock *player.Clock, engine *player.Engine,
	fps int, startPrefix string) *Model {

	if fps <= 0 {
		fps = 30
	}
	return &Model{
		ctx:           ctx,
		log:           log,
		client:        client,
		session:       session,
		clock:         clock,
		engine:        engine,
		keys:          defaultKeyMap(),
		view:          viewBrowse,
		browse:        newBrowseModel(),
		pv:            newPlayerView(session, engine),
		startPrefix:   startPrefix,
		frameInterval: time.Second / time.Duration(fps),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return loadBrowse(m.ctx, m.client, m.startPrefix)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.pendingW, m.pendingH = msg.Width, msg.Height
		if m.width == 0 {
			// First size: apply immediately so we never render blind.
			m.applyResize()
			return m, nil
		}
		m.resizeGen++
		return m, resizeDebounce(m.resizeGen, resizeDebounceWindow)

	case resizeAppliedMsg:
		if msg.gen == m.resizeGen {
			m.applyResize()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.view == viewPlayer && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.pv.handleClick(msg.X, msg.Y)
		}
		return m, nil

	case spinner.TickMsg:
		if m.session.State() == player.StateRequesting {
			var cmd tea.Cmd
			m.pv.spin, cmd = m.pv.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case frameTickMsg:
		return m.handleFrameTick()

	case browseLoadedMsg:
		m.browse.setListing(msg.prefix, msg.listing, msg.err)
		return m, nil

	case processStartedMsg:
		if !m.session.HandleProcessResponse(msg.epoch, msg.resp, msg.err) {
			return m, nil
		}
		switch m.session.State() {
		case player.StateProcessing:
			return m, subscribeJob(m.ctx, m.client, m.session.JobID(), msg.epoch)
		case player.StateReady:
			return m, m.enterReady()
		}
		return m, nil

	case subscribedMsg:
		if msg.err != nil {
			m.session.HandleStreamEnd(msg.epoch, msg.err)
			return m, nil
		}
		m.session.AttachSubscription(msg.epoch, msg.sub)
		if msg.epoch != m.session.Epoch() || m.session.State() != player.StateProcessing {
			return m, nil // stale; the session already closed it
		}
		m.activeSub = msg.sub
		return m, pumpJob(msg.sub, msg.epoch)

	case jobEventMsg:
		return m.handleJobEvent(msg)

	case metadataMsg:
		if m.session.HandleMetadata(msg.epoch, msg.meta, msg.err) {
			m.clock.SetDuration(m.session.Duration())
		}
		return m, nil

	case imuMsg:
		if m.session.HandleIMU(msg.epoch, msg.payload, msg.err) {
			m.clock.SetDuration(m.session.Duration())
			m.pv.setSeries(m.session.Accel(), m.session.Gyro())
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.view {
	case viewPlayer:
		return m.pv.view()
	default:
		return m.browse.view()
	}
}

func (m *Model) applyResize() {
	m.width, m.height = m.pendingW, m.pendingH
	m.browse.layout(m.width, m.height)
	m.pv.layout(m.width, m.height)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.session.Teardown()
		return m, tea.Quit
	}

	if m.view == viewBrowse {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.browse.moveUp()
		case key.Matches(msg, m.keys.Down):
			m.browse.moveDown()
		case key.Matches(msg, m.keys.Back):
			if parent, ok := m.browse.pop(); ok {
				return m, loadBrowse(m.ctx, m.client, parent)
			}
		case key.Matches(msg, m.keys.Enter):
			action, target := m.browse.enter()
			switch action {
			case browseDescend:
				m.browse.push()
				return m, loadBrowse(m.ctx, m.client, target)
			case browseOpen:
				return m, m.openRecording(target)
			}
		}
		return m, nil
	}

	// Player view.
	switch {
	case key.Matches(msg, m.keys.Esc):
		m.session.Teardown()
		m.activeSub = nil
		m.clock.SetMedia("", 0)
		m.view = viewBrowse
	case key.Matches(msg, m.keys.Play):
		if m.session.State() == player.StateReady {
			m.engine.TogglePlay()
			if cmd := m.scheduleFrame(); cmd != nil {
				return m, cmd
			}
		}
	case key.Matches(msg, m.keys.Left):
		if m.session.State() == player.StateReady {
			m.engine.NudgeBack()
		}
	case key.Matches(msg, m.keys.Right):
		if m.session.State() == player.StateReady {
			m.engine.NudgeForward()
		}
	}
	return m, nil
}

// openRecording starts a fresh lifecycle for ref. Selecting tears down all
// state of the previous recording, including its event subscription.
func (m *Model) openRecording(ref string) tea.Cmd {
	epoch := m.session.Select(ref)
	m.activeSub = nil
	m.pv.reset()
	m.clock.SetMedia("", 0)
	m.view = viewPlayer
	return tea.Batch(
		startProcessing(m.ctx, m.client, ref, epoch),
		m.pv.spin.Tick,
	)
}

// enterReady binds the media URL into the clock and kicks off the non-fatal
// metadata and IMU loads.
func (m *Model) enterReady() tea.Cmd {
	ref := m.session.Ref()
	epoch := m.session.Epoch()
	m.clock.SetMedia(m.client.VideoURL(ref), m.session.Duration())
	m.pv.depthURL = m.client.DepthVideoURL(ref)
	return tea.Batch(
		loadMetadata(m.ctx, m.client, ref, epoch),
		loadIMU(m.ctx, m.client, ref, epoch),
	)
}

func (m *Model) handleJobEvent(msg jobEventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		m.session.HandleStreamEnd(msg.epoch, msg.streamErr)
		if msg.epoch == m.session.Epoch() {
			m.activeSub = nil
		}
		return m, nil
	}

	m.session.HandleJobEvent(msg.epoch, msg.ev)
	if msg.epoch != m.session.Epoch() {
		return m, nil
	}
	switch m.session.State() {
	case player.StateReady:
		m.activeSub = nil
		return m, m.enterReady()
	case player.StateProcessing:
		if m.activeSub != nil {
			return m, pumpJob(m.activeSub, msg.epoch)
		}
	default:
		m.activeSub = nil
	}
	return m, nil
}

// handleFrameTick runs one iteration of the high-frequency loop: propagate
// the advancing position, redraw chart cursors, and reschedule only while
// still playing. The loop cancels itself the instant playback stops.
func (m *Model) handleFrameTick() (tea.Model, tea.Cmd) {
	m.frameScheduled = false
	if m.view != viewPlayer || m.session.State() != player.StateReady {
		return m, nil
	}
	_, playing := m.engine.Advance()
	m.engine.RequestCursorRedraw()
	if playing {
		return m, m.scheduleFrame()
	}
	return m, nil
}

func (m *Model) scheduleFrame() tea.Cmd {
	if m.frameScheduled || !m.engine.Playing() {
		return nil
	}
	m.frameScheduled = true
	return frameTick(m.frameInterval)
}
