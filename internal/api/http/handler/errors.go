package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EternisAI/user-directory/internal/api/http/dto"
	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/gin-gonic/gin"
)

// respondAPIError maps a directory call failure onto the gateway response.
func respondAPIError(c *gin.Context, err error) {
	if fail, ok := directory.AsFailResponse(err); ok {
		c.JSON(fail.StatusCode, dto.ErrorResponse{Error: fail.Message, Fails: fail.Fails})
		return
	}

	switch {
	case directory.IsCanceled(err):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "request cancelled"})
	case directory.IsConnectivity(err):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "directory service unreachable"})
	case errors.Is(err, directory.ErrServer):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "directory service error"})
	default:
		slog.Error("Directory call failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
