// Package infrahub is the client for the Infrahub graph backend. All access
// goes through its GraphQL API: mutations and polling queries on a per-run
// branch, catalog listings on the default branch.
//
// Every call enforces the configured request timeout. Transient failures
// (network errors, 5xx) are retried with exponential backoff and jitter up to
// the configured attempt bound; 4xx responses and GraphQL application errors
// fail immediately.
package infrahub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const authHeader = "X-INFRAHUB-KEY"

// Config holds the client settings.
type Config struct {
	// Address is the backend base URL, e.g. "https://infrahub.example.com".
	Address string
	// Token is sent as the X-INFRAHUB-KEY credential on every request.
	Token string
	// DefaultBranch is the branch used for catalog listings and
	// branch-agnostic mutations.
	DefaultBranch string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// Retries is the total attempt bound per call for transient failures.
	Retries int
	Logger  zerolog.Logger
}

// Client issues authenticated requests against one Infrahub instance. It is
// safe for concurrent use; all state beyond the connection pool is read-only.
type Client struct {
	baseURL       string
	token         string
	defaultBranch string
	retries       int
	retryBase     time.Duration
	httpc         *http.Client
	logger        zerolog.Logger
}

// NewClient creates a backend client from the given config.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}
	branch := cfg.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.Address, "/"),
		token:         cfg.Token,
		defaultBranch: branch,
		retries:       retries,
		retryBase:     500 * time.Millisecond,
		httpc:         &http.Client{Timeout: timeout},
		logger:        cfg.Logger,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// execute runs one GraphQL document against the given branch and decodes the
// data payload into out. Transient failures are retried up to the attempt
// bound; the error returned after exhaustion is the last one observed.
func (c *Client) execute(ctx context.Context, branch, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		err := c.post(ctx, branch, body, out)
		if err != nil && IsRetryable(err) {
			c.logger.Warn().Err(err).Str("branch", branch).Msg("transient backend error, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.retryBase)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithCappedDuration(10*time.Second, b)
	return retry.WithMaxRetries(uint64(c.retries-1), b)
}

func (c *Client) post(ctx context.Context, branch string, body []byte, out any) error {
	endpoint := fmt.Sprintf("%s/graphql/%s", c.baseURL, url.PathEscape(branch))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authHeader, c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post graphql to %s: %w", branch, err)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: readBodyMessage(resp.Body)}
	}

	var envelope graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return &GraphQLError{Messages: msgs}
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode graphql data: %w", err)
		}
	}
	return nil
}

// readBodyMessage extracts a short error message from a non-2xx body.
func readBodyMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

// ProposedChangeURL builds the review URL for a proposed change ID.
func (c *Client) ProposedChangeURL(id string) string {
	return fmt.Sprintf("%s/proposed-changes/%s", c.baseURL, id)
}
