package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"oakview/internal/api"
)

func loadBrowse(ctx context.Context, client *api.Client, prefix string) tea.Cmd {
	return func() tea.Msg {
		listing, err := client.Browse(ctx, prefix)
		return browseLoadedMsg{prefix: prefix, listing: listing, err: err}
	}
}

func startProcessing(ctx context.Context, client *api.Client, ref string, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.StartProcessing(ctx, ref)
		return processStartedMsg{epoch: epoch, resp: resp, err: err}
	}
}

func subscribeJob(ctx context.Context, client *api.Client, jobID string, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		sub, err := client.Subscribe(ctx, jobID)
		return subscribedMsg{epoch: epoch, sub: sub, err: err}
	}
}

// pumpJob delivers the next streamed event as a message; Update re-issues it
// until the stream ends. This keeps all session mutation on the one Update
// goroutine.
func pumpJob(sub *api.JobSubscription, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Events()
		if !ok {
			return jobEventMsg{epoch: epoch, ok: false, streamErr: sub.Err()}
		}
		return jobEventMsg{epoch: epoch, ev: ev, ok: true}
	}
}

func loadMetadata(ctx context.Context, client *api.Client, ref string, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		meta, err := client.FetchMetadata(ctx, ref)
		return metadataMsg{epoch: epoch, meta: meta, err: err}
	}
}

func loadIMU(ctx context.Context, client *api.Client, ref string, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		payload, err := client.FetchIMU(ctx, ref)
		return imuMsg{epoch: epoch, payload: payload, err: err}
	}
}

func frameTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return frameTickMsg{}
	})
}

func resizeDebounce(gen int, window time.Duration) tea.Cmd {
	return tea.Tick(window, func(time.Time) tea.Msg {
		return resizeAppliedMsg{gen: gen}
	})
}
