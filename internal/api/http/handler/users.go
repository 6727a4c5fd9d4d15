package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/EternisAI/user-directory/internal/api/http/dto"
	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/EternisAI/user-directory/internal/users"
	"github.com/gin-gonic/gin"
)

// UserFetcher looks up a single user.
type UserFetcher interface {
	GetUser(ctx context.Context, id int) (*directory.User, error)
}

type UsersHandler struct {
	list    *users.Controller
	fetcher UserFetcher
}

func NewUsersHandler(list *users.Controller, fetcher UserFetcher) *UsersHandler {
	return &UsersHandler{list: list, fetcher: fetcher}
}

func (h *UsersHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewUsersSnapshotResponse(h.list.Snapshot()))
}

func (h *UsersHandler) LoadMore(c *gin.Context) {
	_, err := h.list.LoadNext(c.Request.Context())
	h.respondCommand(c, err)
}

func (h *UsersHandler) Reset(c *gin.Context) {
	h.list.Reset()

	if reload, _ := strconv.ParseBool(c.Query("reload")); reload {
		_, err := h.list.LoadNext(c.Request.Context())
		h.respondCommand(c, err)
		return
	}
	h.respondCommand(c, nil)
}

func (h *UsersHandler) Retry(c *gin.Context) {
	_, err := h.list.Retry(c.Request.Context())
	if errors.Is(err, users.ErrNothingToRetry) {
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		return
	}
	h.respondCommand(c, err)
}

func (h *UsersHandler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return
	}

	user, err := h.fetcher.GetUser(c.Request.Context(), id)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(*user))
}

// respondCommand answers with the list snapshot. Load failures are carried in
// the snapshot, only an overlapping command changes the status.
func (h *UsersHandler) respondCommand(c *gin.Context, err error) {
	status := http.StatusOK
	if errors.Is(err, users.ErrLoadInProgress) {
		status = http.StatusConflict
	}
	c.JSON(status, dto.NewUsersSnapshotResponse(h.list.Snapshot()))
}
