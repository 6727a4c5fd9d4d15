package tests

import (
	"net/http"
	"testing"

	"github.com/EternisAI/user-directory/internal/api/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersPagination(t *testing.T, router *gin.Engine) {
	t.Run("load every page", func(t *testing.T) {
		var snap dto.UsersSnapshotResponse
		for i := 0; i < 10; i++ {
			rr := do(router, http.MethodPost, "/api/v1/users/load-more")
			require.Equal(t, http.StatusOK, rr.Code)
			snap = decode[dto.UsersSnapshotResponse](t, rr)
			if !snap.CanLoadMore {
				break
			}
		}

		assert.False(t, snap.CanLoadMore)
		assert.Len(t, snap.Users, 14)
		assert.Equal(t, 3, snap.TotalPages)
		assert.Empty(t, snap.Error)
		assert.Equal(t, 14, snap.Users[0].ID)
	})

	t.Run("load more after the last page is a no-op", func(t *testing.T) {
		rr := do(router, http.MethodPost, "/api/v1/users/load-more")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode[dto.UsersSnapshotResponse](t, rr).Users, 14)
	})

	t.Run("reset and reload starts from the first page", func(t *testing.T) {
		rr := do(router, http.MethodPost, "/api/v1/users/reset?reload=true")
		require.Equal(t, http.StatusOK, rr.Code)

		snap := decode[dto.UsersSnapshotResponse](t, rr)
		assert.Len(t, snap.Users, 6)
		assert.True(t, snap.CanLoadMore)
		assert.Equal(t, 2, snap.NextPage)
	})

	t.Run("single user", func(t *testing.T) {
		rr := do(router, http.MethodGet, "/api/v1/users/3")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "seed3@example.com", decode[dto.UserResponse](t, rr).Email)

		rr = do(router, http.MethodGet, "/api/v1/users/999")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
