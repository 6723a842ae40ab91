// Package replicate talks to a Replicate-style prediction API: create a
// job, poll it to a terminal status under a wall-clock budget, cancel on
// a best-effort basis when the budget runs out.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"canvas/internal/domain"
	"canvas/internal/infra"
)

// ErrMissingAPIToken indicates that the client was configured without credentials.
var ErrMissingAPIToken = errors.New("replicate: api token is required")

// Status is the lifecycle state reported by the prediction API. Transitions
// are monotonic: once a prediction reaches a terminal status it stays there.
type Status string

const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

// Prediction is one remote generation job.
type Prediction struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
	Logs   string `json:"logs,omitempty"`
	URLs   struct {
		Get    string `json:"get,omitempty"`
		Cancel string `json:"cancel,omitempty"`
	} `json:"urls,omitempty"`
}

// pollRef returns the preferred address for the next status check. The API
// may hand back a fresher resource URL; fall back to the ID otherwise.
func (p *Prediction) pollRef() string {
	if p.URLs.Get != "" {
		return p.URLs.Get
	}
	return p.ID
}

// Options configures the prediction client.
type Options struct {
	APIToken   string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client performs HTTP calls against the prediction API.
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// RunOptions bounds a Run call. Zero values fall back to the defaults the
// original routes used.
type RunOptions struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

const (
	defaultPollInterval = 1500 * time.Millisecond
	defaultRunTimeout   = 2 * time.Minute
)

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiToken:   strings.TrimSpace(opts.APIToken),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiToken != ""
}

// Create submits a prediction and returns it in a non-terminal state.
func (c *Client) Create(ctx context.Context, model string, input map[string]any) (*Prediction, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIToken
	}
	payload := map[string]any{"version": model, "input": input}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("replicate: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiToken)
	return c.do(req)
}

// Get performs a single status check. idOrRef is either a prediction ID or
// an absolute poll URL previously handed out by the API.
func (c *Client) Get(ctx context.Context, idOrRef string) (*Prediction, error) {
	target := idOrRef
	if !strings.HasPrefix(target, "http") {
		target = c.baseURL + "/predictions/" + target
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)
	return c.do(req)
}

// Cancel asks the API to stop a prediction. Callers treat it as advisory.
func (c *Client) Cancel(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions/"+id+"/cancel", nil)
	if err != nil {
		return fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)
	_, err = c.do(req)
	return err
}

// Run drives one prediction to a terminal status: create, an immediate
// status check, then fixed-interval polling bounded by opts.Timeout
// measured from before the create call. On budget exhaustion the
// prediction is cancelled best-effort (outcome logged, never returned)
// and the caller gets a TIMEOUT-coded error. A terminal failed or
// canceled status maps to PROVIDER_ERROR, as does any transport failure;
// there are no retries.
func (c *Client) Run(ctx context.Context, model string, input map[string]any, opts RunOptions) (*Prediction, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}

	start := time.Now()
	pred, err := c.Create(ctx, model, input)
	if err != nil {
		return nil, domain.Errorf(domain.CodeProviderError, "create job: %v", err)
	}
	pred, err = c.Get(ctx, pred.pollRef())
	if err != nil {
		return nil, domain.Errorf(domain.CodeProviderError, "poll job: %v", err)
	}

	for !pred.Status.Terminal() {
		if time.Since(start) > timeout {
			c.cancelAfterTimeout(pred.ID)
			return nil, domain.NewError(domain.CodeTimeout, "job timed out")
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil, domain.Errorf(domain.CodeProviderError, "poll job: %v", ctx.Err())
		}
		pred, err = c.Get(ctx, pred.pollRef())
		if err != nil {
			return nil, domain.Errorf(domain.CodeProviderError, "poll job: %v", err)
		}
	}

	if pred.Status != StatusSucceeded {
		msg := pred.Error
		if msg == "" {
			msg = fmt.Sprintf("job %s", pred.Status)
		}
		return nil, domain.NewError(domain.CodeProviderError, msg)
	}
	c.logger.Debug().
		Str("model", model).
		Str("prediction_id", pred.ID).
		Dur("took", time.Since(start)).
		Msg("replicate: prediction succeeded")
	return pred, nil
}

// cancelAfterTimeout fires the advisory cancel with its own short budget,
// detached from the request context the caller is already abandoning.
func (c *Client) cancelAfterTimeout(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Cancel(ctx, id); err != nil {
		c.logger.Warn().Err(err).Str("prediction_id", id).Msg("replicate: cancel after timeout failed")
		return
	}
	c.logger.Debug().Str("prediction_id", id).Msg("replicate: cancelled timed out prediction")
}

func (c *Client) do(req *http.Request) (*Prediction, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var pred Prediction
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &pred); err != nil {
			return nil, fmt.Errorf("replicate: decode response: %w", err)
		}
	}
	return &pred, nil
}
