package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/EternisAI/user-directory/internal/api/http/dto"
	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/EternisAI/user-directory/internal/registration"
	"github.com/gin-gonic/gin"
)

const maxPhotoSize = 5 << 20

type SignupHandler struct {
	flow *registration.Controller
}

func NewSignupHandler(flow *registration.Controller) *SignupHandler {
	return &SignupHandler{flow: flow}
}

func (h *SignupHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSignupSnapshotResponse(h.flow.Snapshot()))
}

func (h *SignupHandler) Submit(c *gin.Context) {
	var form dto.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid form: " + err.Error()})
		return
	}

	photo, err := readPhoto(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	submission := directory.Submission{
		Name:       form.Name,
		Email:      form.Email,
		Phone:      form.Phone,
		PositionID: form.PositionID,
		Photo:      photo,
	}

	err = h.flow.Submit(c.Request.Context(), submission)
	if errors.Is(err, registration.ErrEmailRequired) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	h.respondCommand(c, err)
}

func (h *SignupHandler) Retry(c *gin.Context) {
	err := h.flow.Retry(c.Request.Context())
	if errors.Is(err, registration.ErrNothingToRetry) {
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		return
	}
	h.respondCommand(c, err)
}

func (h *SignupHandler) LoadPositions(c *gin.Context) {
	err := h.flow.LoadPositions(c.Request.Context())
	h.respondCommand(c, err)
}

func (h *SignupHandler) Reset(c *gin.Context) {
	h.flow.Reset()
	h.respondCommand(c, nil)
}

func (h *SignupHandler) respondCommand(c *gin.Context, err error) {
	status := http.StatusOK
	if errors.Is(err, registration.ErrSubmitInProgress) || errors.Is(err, registration.ErrPositionsInFlight) {
		status = http.StatusConflict
	}
	c.JSON(status, dto.NewSignupSnapshotResponse(h.flow.Snapshot()))
}

// readPhoto returns nil when the form carries no photo part.
func readPhoto(c *gin.Context) (*directory.Photo, error) {
	header, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if header.Size > maxPhotoSize {
		return nil, errors.New("photo exceeds 5MB")
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read uploaded photo", "error", err)
		return nil, err
	}

	return &directory.Photo{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}
