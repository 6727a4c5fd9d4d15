package handler

import (
	"context"
	"net/http"

	"github.com/EternisAI/user-directory/internal/api/http/dto"
	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/gin-gonic/gin"
)

type PositionLister interface {
	Positions(ctx context.Context) ([]directory.Position, error)
}

type PositionsHandler struct {
	positions PositionLister
}

func NewPositionsHandler(positions PositionLister) *PositionsHandler {
	return &PositionsHandler{positions: positions}
}

func (h *PositionsHandler) List(c *gin.Context) {
	positions, err := h.positions.Positions(c.Request.Context())
	if err != nil {
		respondAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PositionsResponse{Positions: dto.NewPositionResponses(positions)})
}
