package tests

import (
	"net/http"
	"testing"

	"github.com/EternisAI/user-directory/internal/api/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpeg = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestSignup(t *testing.T, router *gin.Engine, api *FakeAPI) {
	t.Run("positions", func(t *testing.T) {
		rr := do(router, http.MethodPost, "/api/v1/signup/positions")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode[dto.SignupSnapshotResponse](t, rr).Positions, 4)

		rr = do(router, http.MethodGet, "/api/v1/positions")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Lawyer", decode[dto.PositionsResponse](t, rr).Positions[0].Name)
	})

	t.Run("register", func(t *testing.T) {
		rr := doForm(t, router, "/api/v1/signup", map[string]string{
			"name":        "Ann",
			"email":       "ann@example.com",
			"phone":       "+380991234567",
			"position_id": "2",
		}, jpeg)
		require.Equal(t, http.StatusOK, rr.Code)

		snap := decode[dto.SignupSnapshotResponse](t, rr)
		assert.Equal(t, "succeeded", snap.State)
		assert.Equal(t, 15, snap.UserID)

		rr = do(router, http.MethodGet, "/api/v1/users/15")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Content manager", decode[dto.UserResponse](t, rr).Position)
	})

	t.Run("consumed token is refreshed once", func(t *testing.T) {
		registersBefore, issuesBefore := api.Counters()

		do(router, http.MethodPost, "/api/v1/signup/reset")
		rr := doForm(t, router, "/api/v1/signup", map[string]string{
			"name":        "Bob",
			"email":       "bob@example.com",
			"phone":       "+380997654321",
			"position_id": "4",
		}, jpeg)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "succeeded", decode[dto.SignupSnapshotResponse](t, rr).State)

		registers, issues := api.Counters()
		assert.Equal(t, 2, registers-registersBefore)
		assert.Equal(t, 1, issues-issuesBefore)
	})

	t.Run("duplicate email", func(t *testing.T) {
		do(router, http.MethodPost, "/api/v1/signup/reset")
		rr := doForm(t, router, "/api/v1/signup", map[string]string{
			"name":        "Ann Again",
			"email":       "ann@example.com",
			"phone":       "+380990000099",
			"position_id": "1",
		}, jpeg)
		require.Equal(t, http.StatusOK, rr.Code)

		snap := decode[dto.SignupSnapshotResponse](t, rr)
		assert.Equal(t, "already_registered", snap.State)
		assert.Nil(t, snap.ValidationErrors)
	})

	t.Run("validation errors", func(t *testing.T) {
		do(router, http.MethodPost, "/api/v1/signup/reset")
		rr := doForm(t, router, "/api/v1/signup", map[string]string{
			"name":  "A",
			"email": "not-an-email",
			"phone": "+380990000098",
		}, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		snap := decode[dto.SignupSnapshotResponse](t, rr)
		assert.Equal(t, "editing", snap.State)
		require.NotNil(t, snap.ValidationErrors)
		assert.Equal(t, "The name must be at least 2 characters.", snap.ValidationErrors.Name)
		assert.Equal(t, "The email must be a valid email address.", snap.ValidationErrors.Email)
		assert.Equal(t, "The position id must be an integer.", snap.ValidationErrors.PositionID)
		assert.Equal(t, "The photo field is required.", snap.ValidationErrors.Photo)
		assert.Empty(t, snap.ValidationErrors.Phone)
	})

	t.Run("missing email never reaches the service", func(t *testing.T) {
		registersBefore, _ := api.Counters()

		rr := doForm(t, router, "/api/v1/signup", map[string]string{"name": "Nobody"}, jpeg)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		registers, _ := api.Counters()
		assert.Equal(t, registersBefore, registers)
	})
}
