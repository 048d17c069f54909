// Package httpclient implements the §6 HTTP collaborator contract: fetch a
// URL to a destination path with conditional GET and a bounded exponential
// backoff retry budget (4xx terminal, 5xx/timeout retried), reporting
// progress through a caller-supplied callback. Each retry downloads the body
// from the start; a partially written file is not resumed.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Outcome classifies the result of a Fetch call (spec §6).
type Outcome string

const (
	Done        Outcome = "done"
	NotModified Outcome = "not_modified"
	Failed      Outcome = "failed"
)

// ProgressFunc receives cumulative bytes downloaded and the total size (0 if
// the server didn't report a Content-Length).
type ProgressFunc func(downloaded, total int64)

// Options configures a single Fetch call.
type Options struct {
	// ConditionalETag, when non-empty, is sent as If-None-Match, letting a
	// re-fetch of an already-cached artifact short-circuit to NotModified.
	ConditionalETag string
	Progress        ProgressFunc
	Header          http.Header
}

// Client fetches artifacts over HTTP with retry.
type Client struct {
	http       *http.Client
	maxRetries uint
}

// New creates a Client. A nil http.Client uses http.DefaultClient.
func New(hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{http: hc, maxRetries: 5}
}

// WithMaxRetries overrides the retry budget (default 5).
func (c *Client) WithMaxRetries(n uint) *Client {
	c.maxRetries = n
	return c
}

// permanentError wraps an error that must not be retried (4xx).
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Fetch downloads url to dest, writing through a temp file and renaming
// atomically on success (spec §4.J step 3). Transient failures (network
// errors, 5xx, timeouts) retry within the configured budget; 4xx responses
// are terminal.
func (c *Client) Fetch(ctx context.Context, url, dest string, opts Options) (Outcome, error) {
	operation := func() (Outcome, error) {
		return c.attempt(ctx, url, dest, opts)
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxRetries+1),
	)
	if err != nil {
		var perm *permanentError
		if errors.As(err, &perm) {
			return Failed, perm.err
		}
		return Failed, err
	}
	return result, nil
}

func (c *Client) attempt(ctx context.Context, url, dest string, opts Options) (Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Failed, &backoff.PermanentError{Err: err}
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if opts.ConditionalETag != "" {
		req.Header.Set("If-None-Match", opts.ConditionalETag)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network-level errors (timeouts, connection reset) are transient.
		return Failed, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return NotModified, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := writeBody(resp, dest, opts.Progress); err != nil {
			return Failed, err
		}
		return Done, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Failed, &backoff.PermanentError{Err: fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)}
	default:
		// 5xx and other unexpected codes are retried.
		return Failed, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}
}

func writeBody(resp *http.Response, dest string, progress ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	var reader io.Reader = resp.Body
	if progress != nil {
		reader = &progressReader{r: resp.Body, total: resp.ContentLength, cb: progress}
	}

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close download: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("rename download: %w", err)
	}
	return nil
}

type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	cb    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.cb(p.read, p.total)
	}
	return n, err
}

// FetchTimeout is the default per-attempt deadline applied by callers that
// don't derive their own context (the orchestrator's own cancellation takes
// precedence when a shorter deadline is already set on ctx).
const FetchTimeout = 5 * time.Minute
