package registration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/EternisAI/user-directory/internal/auth"
	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/go-playground/validator/v10"
)

var (
	ErrEmailRequired     = errors.New("email is required")
	ErrSubmitInProgress  = errors.New("registration already in progress")
	ErrNothingToRetry    = errors.New("no failed action to retry")
	ErrPositionsInFlight = errors.New("positions load already in progress")
)

var validate = validator.New()

type State int

const (
	StateEditing State = iota
	StateSucceeded
	StateAlreadyRegistered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSucceeded:
		return "succeeded"
	case StateAlreadyRegistered:
		return "already_registered"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RetryAction names the call that failed on connectivity and can be replayed.
type RetryAction int

const (
	RetryNone RetryAction = iota
	RetryPositions
	RetrySubmit
)

func (a RetryAction) String() string {
	switch a {
	case RetryPositions:
		return "positions"
	case RetrySubmit:
		return "submit"
	default:
		return ""
	}
}

// Authorizer runs a token-guarded call.
type Authorizer interface {
	CallWithAuth(ctx context.Context, build auth.RequestBuilder, out any) error
}

// PositionSource provides the selectable positions.
type PositionSource interface {
	Positions(ctx context.Context) ([]directory.Position, error)
}

// Snapshot is a copy of the flow state. Fault belongs to the last submission,
// PositionsFault to the last positions load and is cleared once one succeeds.
type Snapshot struct {
	State            State
	Submitting       bool
	LoadingPositions bool
	Positions        []directory.Position
	ValidationErrors *ValidationErrors
	Message          string
	UserID           int
	Retry            RetryAction
	Fault            error
	PositionsFault   error
}

// Controller drives one registration form. Its state is only mutated under mu
// after a call completes.
type Controller struct {
	auth      Authorizer
	positions PositionSource

	mu               sync.Mutex
	state            State
	submitting       bool
	loadingPositions bool
	positionList     []directory.Position
	validation       *ValidationErrors
	message          string
	userID           int
	retry            RetryAction
	pending          *directory.Submission
	fault            error
	positionsFault   error
}

func NewController(authorizer Authorizer, positions PositionSource) *Controller {
	return &Controller{
		auth:      authorizer,
		positions: positions,
	}
}

// CanSubmit is the local guard before any network call. The service performs
// the authoritative validation.
func CanSubmit(s directory.Submission) bool {
	return validate.Struct(s) == nil
}

// Submit registers s. The outcome is reflected in the snapshot; the returned
// error is the raw cause for callers that want it.
func (c *Controller) Submit(ctx context.Context, s directory.Submission) error {
	if !CanSubmit(s) {
		return ErrEmailRequired
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	c.submitting = true
	c.mu.Unlock()

	slog.Debug("Signing up user", "email", s.Email)

	var resp directory.RegisterResponse
	err := c.auth.CallWithAuth(ctx, func(token string) directory.Request {
		return directory.Register(s, token)
	}, &resp)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if err != nil && directory.IsCanceled(err) {
		return err
	}

	c.validation = nil
	c.fault = nil
	c.message = ""
	if c.retry == RetrySubmit {
		c.retry = RetryNone
		c.pending = nil
	}

	if err == nil {
		slog.Info("Successfully registered user", "user_id", resp.UserID, "message", resp.Message)
		c.state = StateSucceeded
		c.userID = resp.UserID
		c.message = resp.Message
		return nil
	}

	if fail, ok := directory.AsFailResponse(err); ok {
		c.message = fail.Message
		if fail.StatusCode == http.StatusConflict {
			slog.Info("User already signed up", "message", fail.Message)
			c.state = StateAlreadyRegistered
			return err
		}
		slog.Error("Cannot sign up", "status_code", fail.StatusCode, "message", fail.Message)
		c.state = StateEditing
		c.validation = NewValidationErrors(fail.Fails)
		return err
	}

	if directory.IsConnectivity(err) {
		pending := s
		c.state = StateEditing
		c.retry = RetrySubmit
		c.pending = &pending
		return err
	}

	slog.Error("Unexpected error while signing up", "error", err)
	c.state = StateFailed
	c.fault = err
	return err
}

// LoadPositions fetches the selectable positions into the snapshot.
func (c *Controller) LoadPositions(ctx context.Context) error {
	c.mu.Lock()
	if c.loadingPositions {
		c.mu.Unlock()
		return ErrPositionsInFlight
	}
	c.loadingPositions = true
	c.mu.Unlock()

	positions, err := c.positions.Positions(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadingPositions = false

	if err != nil && directory.IsCanceled(err) {
		return err
	}
	if c.retry == RetryPositions {
		c.retry = RetryNone
	}

	switch {
	case err == nil:
		c.positionList = positions
		c.positionsFault = nil
	case directory.IsConnectivity(err):
		c.retry = RetryPositions
	default:
		slog.Error("Cannot get positions", "error", err)
		c.positionsFault = err
	}
	return err
}

// Retry replays the call that last failed on connectivity.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	action := c.retry
	var pending directory.Submission
	if c.pending != nil {
		pending = *c.pending
	}
	c.mu.Unlock()

	switch action {
	case RetrySubmit:
		return c.Submit(ctx, pending)
	case RetryPositions:
		return c.LoadPositions(ctx)
	default:
		return ErrNothingToRetry
	}
}

// Reset returns a finished flow to editing, keeping loaded positions.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateEditing
	c.validation = nil
	c.message = ""
	c.userID = 0
	c.retry = RetryNone
	c.pending = nil
	c.fault = nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	positions := make([]directory.Position, len(c.positionList))
	copy(positions, c.positionList)

	var validation *ValidationErrors
	if c.validation != nil {
		v := *c.validation
		validation = &v
	}

	return Snapshot{
		State:            c.state,
		Submitting:       c.submitting,
		LoadingPositions: c.loadingPositions,
		Positions:        positions,
		ValidationErrors: validation,
		Message:          c.message,
		UserID:           c.userID,
		Retry:            c.retry,
		Fault:            c.fault,
		PositionsFault:   c.positionsFault,
	}
}
