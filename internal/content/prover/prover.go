// Package prover talks to the external proving service that attests uploaded content.
package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"proofwall/pkg/platform/sentinel"
)

// Status is the prover's view of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the job will not change status again.
func (s Status) Terminal() bool {
	return s != StatusPending && s != ""
}

// Result is the final prover answer for a job. Raw holds the response as received
// and is what the registry stores as the verifier result.
type Result struct {
	Status  Status          `json:"status"`
	Journal json.RawMessage `json:"journal,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// Journal is the public output of a completed proof.
type Journal struct {
	ContentHash string `json:"contentHash"`
}

// ErrMalformedJournal is returned when a journal does not carry a content digest.
var ErrMalformedJournal = errors.New("malformed proof journal")

// Digest extracts journal.contentHash. The journal may be an object or a JSON
// string holding one.
func (r *Result) Digest() (string, error) {
	raw := bytes.TrimSpace(r.Journal)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ErrMalformedJournal
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedJournal, err)
		}
		raw = []byte(inner)
	}

	var j Journal
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&j); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedJournal, err)
	}
	if strings.TrimSpace(j.ContentHash) == "" {
		return "", ErrMalformedJournal
	}
	return j.ContentHash, nil
}

// HTTPDoer is the subset of *http.Client the prover client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient polls GET {base}/proofs/{jobID} until the job reaches a terminal status.
type HTTPClient struct {
	baseURL      string
	http         HTTPDoer
	pollInterval time.Duration
	logger       *slog.Logger
}

type Option func(*HTTPClient)

func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *HTTPClient) {
		c.http = doer
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: 10 * time.Second},
		pollInterval: 2 * time.Second,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wait blocks until the job is terminal or ctx is done. Transient fetch errors are
// logged and polling continues; an unknown job ends the wait with sentinel.ErrNotFound.
func (c *HTTPClient) Wait(ctx context.Context, jobID string) (*Result, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		res, err := c.fetch(ctx, jobID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, err
		case err != nil:
			if ctx.Err() != nil {
				return nil, fmt.Errorf("wait for proof %s: %w", jobID, ctx.Err())
			}
			c.logger.WarnContext(ctx, "prover poll failed", "job_id", jobID, "error", err)
		case res.Status.Terminal():
			return res, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for proof %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *HTTPClient) fetch(ctx context.Context, jobID string) (*Result, error) {
	endpoint := c.baseURL + "/proofs/" + url.PathEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build prover request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prover request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read prover response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("proof job %s: %w", jobID, sentinel.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("prover returned status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode prover response: %w", err)
	}
	res.Raw = body
	return &res, nil
}

// Disabled is used when no prover is configured. Every wait fails immediately.
type Disabled struct{}

func (Disabled) Wait(context.Context, string) (*Result, error) {
	return nil, fmt.Errorf("prover not configured: %w", sentinel.ErrUnavailable)
}
