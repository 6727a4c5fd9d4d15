package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/EternisAI/user-directory/internal/metrics"
)

const (
	DefaultBaseURL = "https://frontend-test-assignment-api.abz.agency/api/v1"
	defaultTimeout = 30 * time.Second
)

type Config struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Executor is the single entry point the controllers depend on.
type Executor interface {
	Execute(ctx context.Context, req Request, out any) error
}

// Client translates Requests into HTTP calls and responses into typed results
// or typed errors. It holds no mutable state and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTPClient is used when the caller owns transport settings.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Execute performs req and decodes a successful body into out (which may be
// nil to discard it).
func (c *Client) Execute(ctx context.Context, req Request, out any) error {
	start := time.Now()
	err := c.execute(ctx, req, out)
	metrics.RecordAPICall(req.Operation.String(), outcomeLabel(err), time.Since(start))
	return err
}

func (c *Client) execute(ctx context.Context, req Request, out any) error {
	httpReq, err := req.newHTTPRequest(ctx, c.baseURL)
	if err != nil {
		return fmt.Errorf("build %s request: %w", req.Operation, err)
	}

	slog.Debug("Requesting directory API",
		"operation", req.Operation.String(),
		"method", httpReq.Method,
		"url", httpReq.URL.String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ConnectivityError{Op: req.Operation, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ConnectivityError{Op: req.Operation, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	slog.Debug("Directory API responded",
		"operation", req.Operation.String(),
		"status_code", resp.StatusCode,
		"content_length", len(body))

	switch Classify(resp.StatusCode) {
	case Success:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrDecodingFailed, req.Operation, err)
		}
		return nil
	case ClientFailure:
		return decodeFailure(resp.StatusCode, body)
	case ServerFailure:
		return fmt.Errorf("%w: %s: status %d", ErrServer, req.Operation, resp.StatusCode)
	default:
		return fmt.Errorf("%w: %s: status %d", ErrInvalidResponse, req.Operation, resp.StatusCode)
	}
}

func (c *Client) ListUsers(ctx context.Context, page, count int) (*UsersPage, error) {
	var result UsersPage
	if err := c.Execute(ctx, ListUsers(page, count), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetUser(ctx context.Context, id int) (*User, error) {
	var result UserResponse
	if err := c.Execute(ctx, GetUser(id), &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

func (c *Client) GetPositions(ctx context.Context) ([]Position, error) {
	var result PositionsResponse
	if err := c.Execute(ctx, GetPositions(), &result); err != nil {
		return nil, err
	}
	return result.Positions, nil
}

func (c *Client) GetToken(ctx context.Context) (string, error) {
	var result TokenResponse
	if err := c.Execute(ctx, GetToken(), &result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func (c *Client) Register(ctx context.Context, submission Submission, token string) (*RegisterResponse, error) {
	var result RegisterResponse
	if err := c.Execute(ctx, Register(submission, token), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
