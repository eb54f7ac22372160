package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the remote viewer service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

// NewClient returns a Client for the service at baseURL (no trailing slash).
// Job event subscriptions use their own connection without the default
// timeout, since they are long-lived.
func NewClient(baseURL string, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		log:        log,
	}
}

// escapeRef escapes a recording ref for use as a single path element,
// e.g. "site-a/run-7" -> "site-a%2Frun-7".
func escapeRef(ref string) string {
	return url.PathEscape(ref)
}

// Browse lists folders and files under prefix.
func (c *Client) Browse(ctx context.Context, prefix string) (*Listing, error) {
	u := fmt.Sprintf("%s/api/browse?prefix=%s", c.baseURL, url.QueryEscape(prefix))
	var listing Listing
	if err := c.getJSON(ctx, u, &listing); err != nil {
		return nil, fmt.Errorf("browse %q: %w", prefix, err)
	}
	return &listing, nil
}

// StartProcessing asks the server to process the recording. Returns
// immediately with either StatusReady or StatusProcessing plus a job id.
func (c *Client) StartProcessing(ctx context.Context, ref string) (*ProcessResponse, error) {
	u := fmt.Sprintf("%s/api/process/%s", c.baseURL, escapeRef(ref))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, fmt.Errorf("process request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("process %q: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("process %q: %s", ref, httpStatusError(resp))
	}

	var pr ProcessResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("process %q: decode response: %w", ref, err)
	}
	return &pr, nil
}

// FetchMetadata returns the optional metadata document for a recording.
// Callers treat failure as non-fatal; metadata never blocks readiness.
func (c *Client) FetchMetadata(ctx context.Context, ref string) (*Metadata, error) {
	u := fmt.Sprintf("%s/api/metadata/%s", c.baseURL, escapeRef(ref))
	var meta Metadata
	if err := c.getJSON(ctx, u, &meta); err != nil {
		return nil, fmt.Errorf("metadata %q: %w", ref, err)
	}
	return &meta, nil
}

// FetchIMU returns the extracted inertial data for a recording.
func (c *Client) FetchIMU(ctx context.Context, ref string) (*IMUPayload, error) {
	u := fmt.Sprintf("%s/api/imu/%s", c.baseURL, escapeRef(ref))
	var payload IMUPayload
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("imu %q: %w", ref, err)
	}
	return &payload, nil
}

// VideoURL returns the seekable RGB MP4 URL for a recording.
func (c *Client) VideoURL(ref string) string {
	return fmt.Sprintf("%s/api/video/rgb/%s", c.baseURL, escapeRef(ref))
}

// DepthVideoURL returns the colorized depth MP4 URL for a recording.
func (c *Client) DepthVideoURL(ref string) string {
	return fmt.Sprintf("%s/api/video/depth/%s", c.baseURL, escapeRef(ref))
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", httpStatusError(resp))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// httpStatusError renders a non-200 response as an error string, including
// the server's detail body when it is short enough to be useful.
func httpStatusError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(body) > 0 {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, body)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
