package users

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/EternisAI/user-directory/internal/directory"
)

const DefaultPageSize = 6

// unknownTotal stands for "total pages not known yet".
const unknownTotal = math.MaxInt

var (
	ErrLoadInProgress = errors.New("users load already in progress")
	ErrNothingToRetry = errors.New("no failed users load to retry")
)

type Config struct {
	PageSize int `mapstructure:"page_size" validate:"min=1"`
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Users       []directory.User
	Loading     bool
	CanLoadMore bool
	NextPage    int
	TotalPages  int // 0 until the first page arrives
	TotalUsers  int
	Retryable   bool
	Err         error
}

// Controller accumulates pages of users. Page cursor and accumulated users
// are only mutated under mu and only after a successful response, so a
// cancelled or failed load leaves them untouched.
type Controller struct {
	client   directory.Executor
	pageSize int

	mu         sync.Mutex
	nextPage   int
	totalPages int
	totalUsers int
	users      []directory.User
	loading    bool
	generation uint64
	retryable  bool
	lastErr    error
}

func NewController(client directory.Executor, pageSize int) *Controller {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Controller{
		client:     client,
		pageSize:   pageSize,
		nextPage:   1,
		totalPages: unknownTotal,
	}
}

// LoadNext fetches the next page and appends its users. It returns the users
// appended by this call; once every page is loaded it is a no-op. A second
// call while one is in flight is rejected with ErrLoadInProgress.
func (c *Controller) LoadNext(ctx context.Context) ([]directory.User, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil, ErrLoadInProgress
	}
	if c.nextPage > c.totalPages {
		c.mu.Unlock()
		return nil, nil
	}
	page := c.nextPage
	generation := c.generation
	c.loading = true
	c.retryable = false
	c.lastErr = nil
	c.mu.Unlock()

	var result directory.UsersPage
	err := c.client.Execute(ctx, directory.ListUsers(page, c.pageSize), &result)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		// Reset happened while the request was in flight.
		slog.Debug("Discarding users page loaded before reset", "page", page)
		return nil, nil
	}
	c.loading = false

	if err != nil {
		switch {
		case directory.IsCanceled(err):
			// Abandoned by the caller; nothing to surface.
		case directory.IsConnectivity(err):
			c.retryable = true
			c.lastErr = err
		default:
			slog.Error("Cannot get users", "page", page, "error", err)
			c.lastErr = err
		}
		return nil, err
	}

	c.users = append(c.users, result.Users...)
	c.totalPages = result.TotalPages
	c.totalUsers = result.TotalUsers
	c.nextPage = page + 1

	slog.Debug("Users page loaded", "page", page, "total_pages", result.TotalPages, "count", len(result.Users))
	return result.Users, nil
}

// Retry clears a connectivity fault and replays LoadNext.
func (c *Controller) Retry(ctx context.Context) ([]directory.User, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil, ErrLoadInProgress
	}
	if !c.retryable {
		c.mu.Unlock()
		return nil, ErrNothingToRetry
	}
	c.retryable = false
	c.mu.Unlock()

	return c.LoadNext(ctx)
}

// Reset drops accumulated users and restarts pagination from page 1. A load
// still in flight is discarded when it completes.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.users = nil
	c.nextPage = 1
	c.totalPages = unknownTotal
	c.totalUsers = 0
	c.loading = false
	c.retryable = false
	c.lastErr = nil
}

func (c *Controller) CanLoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextPage <= c.totalPages
}

func (c *Controller) PageSize() int {
	return c.pageSize
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	totalPages := c.totalPages
	if totalPages == unknownTotal {
		totalPages = 0
	}
	users := make([]directory.User, len(c.users))
	copy(users, c.users)

	return Snapshot{
		Users:       users,
		Loading:     c.loading,
		CanLoadMore: c.nextPage <= c.totalPages,
		NextPage:    c.nextPage,
		TotalPages:  totalPages,
		TotalUsers:  c.totalUsers,
		Retryable:   c.retryable,
		Err:         c.lastErr,
	}
}
