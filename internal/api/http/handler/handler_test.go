package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/EternisAI/user-directory/internal/api/http/dto"
	"github.com/EternisAI/user-directory/internal/auth"
	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/EternisAI/user-directory/internal/registration"
	"github.com/EternisAI/user-directory/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// scriptedAPI answers directory requests in memory. registerErr, when set, is
// returned for the next register call only.
type scriptedAPI struct {
	mu           sync.Mutex
	totalUsers   int
	listErr      error
	positionsErr error
	registerErr  error
	registered   []directory.Submission
}

func (a *scriptedAPI) Execute(ctx context.Context, req directory.Request, out any) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch req.Operation {
	case directory.OpGetToken:
		out.(*directory.TokenResponse).Token = "token"
	case directory.OpListUsers:
		if a.listErr != nil {
			return a.listErr
		}
		page := out.(*directory.UsersPage)
		page.Page = req.Page
		page.TotalUsers = a.totalUsers
		page.TotalPages = (a.totalUsers + req.Count - 1) / req.Count
		for i := (req.Page - 1) * req.Count; i < a.totalUsers && i < req.Page*req.Count; i++ {
			page.Users = append(page.Users, directory.User{ID: i + 1, Name: fmt.Sprintf("user-%d", i+1)})
		}
		page.Count = len(page.Users)
	case directory.OpGetUser:
		if req.UserID > a.totalUsers {
			return &directory.FailResponse{StatusCode: http.StatusNotFound, Message: "The user with the requested id does not exist."}
		}
		out.(*directory.UserResponse).User = directory.User{ID: req.UserID, Name: "found"}
	case directory.OpGetPositions:
		if a.positionsErr != nil {
			return a.positionsErr
		}
		out.(*directory.PositionsResponse).Positions = []directory.Position{{ID: 1, Name: "Lawyer"}, {ID: 2, Name: "Designer"}}
	case directory.OpRegister:
		if err := a.registerErr; err != nil {
			a.registerErr = nil
			return err
		}
		a.registered = append(a.registered, req.Submission)
		resp := out.(*directory.RegisterResponse)
		resp.Success = true
		resp.UserID = 100 + len(a.registered)
		resp.Message = "New user successfully registered"
	}
	return nil
}

type positionsFromAPI struct{ api *scriptedAPI }

func (p positionsFromAPI) Positions(ctx context.Context) ([]directory.Position, error) {
	var resp directory.PositionsResponse
	if err := p.api.Execute(ctx, directory.GetPositions(), &resp); err != nil {
		return nil, err
	}
	return resp.Positions, nil
}

type userFromAPI struct{ api *scriptedAPI }

func (u userFromAPI) GetUser(ctx context.Context, id int) (*directory.User, error) {
	var resp directory.UserResponse
	if err := u.api.Execute(ctx, directory.GetUser(id), &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func setupRouter(api *scriptedAPI) *gin.Engine {
	usersHandler := NewUsersHandler(users.NewController(api, 6), userFromAPI{api})
	positionsHandler := NewPositionsHandler(positionsFromAPI{api})
	signupHandler := NewSignupHandler(registration.NewController(auth.NewManager(api, nil), positionsFromAPI{api}))

	r := gin.New()
	r.GET("/health", NewHealthHandler("1.2.3").Check)
	r.GET("/api/v1/users", usersHandler.Snapshot)
	r.POST("/api/v1/users/load-more", usersHandler.LoadMore)
	r.POST("/api/v1/users/reset", usersHandler.Reset)
	r.POST("/api/v1/users/retry", usersHandler.Retry)
	r.GET("/api/v1/users/:id", usersHandler.GetUser)
	r.GET("/api/v1/positions", positionsHandler.List)
	r.GET("/api/v1/signup", signupHandler.Snapshot)
	r.POST("/api/v1/signup", signupHandler.Submit)
	r.POST("/api/v1/signup/retry", signupHandler.Retry)
	r.POST("/api/v1/signup/positions", signupHandler.LoadPositions)
	r.POST("/api/v1/signup/reset", signupHandler.Reset)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func signupForm(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		part, err := mw.CreateFormFile("photo", "me.jpg")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	r := setupRouter(&scriptedAPI{})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.HealthResponse{Status: "ok", Version: "1.2.3"}, decode[dto.HealthResponse](t, w))
}

func TestUsersLoadMoreUntilExhausted(t *testing.T) {
	r := setupRouter(&scriptedAPI{totalUsers: 8})

	snap := decode[dto.UsersSnapshotResponse](t, serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)))
	assert.Empty(t, snap.Users)
	assert.True(t, snap.CanLoadMore)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/users/load-more", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	snap = decode[dto.UsersSnapshotResponse](t, w)
	assert.Len(t, snap.Users, 6)
	assert.Equal(t, 2, snap.TotalPages)
	assert.True(t, snap.CanLoadMore)

	snap = decode[dto.UsersSnapshotResponse](t, serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/users/load-more", nil)))
	assert.Len(t, snap.Users, 8)
	assert.False(t, snap.CanLoadMore)

	snap = decode[dto.UsersSnapshotResponse](t, serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/users/reset?reload=true", nil)))
	assert.Len(t, snap.Users, 6)
	assert.Equal(t, 1, snap.Users[0].ID)
}

func TestUsersConnectivityThenRetry(t *testing.T) {
	api := &scriptedAPI{totalUsers: 3, listErr: &directory.ConnectivityError{Op: directory.OpListUsers, Err: errors.New("offline")}}
	r := setupRouter(api)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/users/load-more", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	snap := decode[dto.UsersSnapshotResponse](t, w)
	assert.True(t, snap.Retryable)
	assert.NotEmpty(t, snap.Error)
	assert.Empty(t, snap.Users)

	api.mu.Lock()
	api.listErr = nil
	api.mu.Unlock()

	snap = decode[dto.UsersSnapshotResponse](t, serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/users/retry", nil)))
	assert.False(t, snap.Retryable)
	assert.Empty(t, snap.Error)
	assert.Len(t, snap.Users, 3)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/users/retry", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetUser(t *testing.T) {
	r := setupRouter(&scriptedAPI{totalUsers: 5})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/users/3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[dto.UserResponse](t, w).ID)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/users/9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "The user with the requested id does not exist.", decode[dto.ErrorResponse](t, w).Error)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/users/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPositions(t *testing.T) {
	r := setupRouter(&scriptedAPI{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/positions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []dto.PositionResponse{{ID: 1, Name: "Lawyer"}, {ID: 2, Name: "Designer"}},
		decode[dto.PositionsResponse](t, w).Positions)
}

func TestSignupLoadPositions(t *testing.T) {
	r := setupRouter(&scriptedAPI{})

	snap := decode[dto.SignupSnapshotResponse](t, serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/signup/positions", nil)))
	assert.Len(t, snap.Positions, 2)
	assert.Equal(t, "editing", snap.State)
}

func TestSignupSubmit(t *testing.T) {
	api := &scriptedAPI{}
	r := setupRouter(api)

	body, contentType := signupForm(t, map[string]string{
		"name":        "Ann",
		"email":       "ann@example.com",
		"phone":       "+380991234567",
		"position_id": "2",
	}, []byte{0xff, 0xd8, 0xff})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", body)
	req.Header.Set("Content-Type", contentType)

	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	snap := decode[dto.SignupSnapshotResponse](t, w)
	assert.Equal(t, "succeeded", snap.State)
	assert.Equal(t, 101, snap.UserID)

	require.Len(t, api.registered, 1)
	got := api.registered[0]
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "2", got.PositionID)
	require.NotNil(t, got.Photo)
	assert.Equal(t, "me.jpg", got.Photo.Filename)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, got.Photo.Data)

	snap = decode[dto.SignupSnapshotResponse](t, serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/signup/reset", nil)))
	assert.Equal(t, "editing", snap.State)
	assert.Zero(t, snap.UserID)
}

func TestSignupRequiresEmail(t *testing.T) {
	api := &scriptedAPI{}
	r := setupRouter(api)

	body, contentType := signupForm(t, map[string]string{"name": "Ann"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", body)
	req.Header.Set("Content-Type", contentType)

	w := serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, api.registered)
}

func TestSignupValidationErrors(t *testing.T) {
	api := &scriptedAPI{registerErr: &directory.FailResponse{
		StatusCode: http.StatusUnprocessableEntity,
		Message:    "Validation failed",
		Fails:      map[string][]string{"email": {"bad"}, "unknown_field": {"x"}},
	}}
	r := setupRouter(api)

	body, contentType := signupForm(t, map[string]string{"email": "nope"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", body)
	req.Header.Set("Content-Type", contentType)

	snap := decode[dto.SignupSnapshotResponse](t, serve(r, req))
	assert.Equal(t, "editing", snap.State)
	require.NotNil(t, snap.ValidationErrors)
	assert.Equal(t, dto.FieldErrors{Email: "bad"}, *snap.ValidationErrors)
}

func TestSignupConnectivityThenRetry(t *testing.T) {
	api := &scriptedAPI{registerErr: &directory.ConnectivityError{Op: directory.OpRegister, Err: errors.New("offline")}}
	r := setupRouter(api)

	body, contentType := signupForm(t, map[string]string{"email": "ann@example.com"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", body)
	req.Header.Set("Content-Type", contentType)

	snap := decode[dto.SignupSnapshotResponse](t, serve(r, req))
	assert.Equal(t, "submit", snap.Retry)

	snap = decode[dto.SignupSnapshotResponse](t, serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/signup/retry", nil)))
	assert.Equal(t, "succeeded", snap.State)
	assert.Empty(t, snap.Retry)
	require.Len(t, api.registered, 1)
	assert.Equal(t, "ann@example.com", api.registered[0].Email)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/signup/retry", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupForwardsNonNumericPositionID(t *testing.T) {
	api := &scriptedAPI{}
	r := setupRouter(api)

	body, contentType := signupForm(t, map[string]string{
		"email":       "ann@example.com",
		"position_id": "lawyer",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", body)
	req.Header.Set("Content-Type", contentType)

	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, api.registered, 1)
	assert.Equal(t, "lawyer", api.registered[0].PositionID)
}

func TestSignupPositionsErrorClearsAfterRecovery(t *testing.T) {
	api := &scriptedAPI{positionsErr: fmt.Errorf("%w: get_positions: status 503", directory.ErrServer)}
	r := setupRouter(api)

	snap := decode[dto.SignupSnapshotResponse](t, serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/signup/positions", nil)))
	assert.NotEmpty(t, snap.PositionsError)
	assert.Empty(t, snap.Error)

	api.mu.Lock()
	api.positionsErr = nil
	api.mu.Unlock()

	snap = decode[dto.SignupSnapshotResponse](t, serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/signup/positions", nil)))
	assert.Empty(t, snap.PositionsError)
	assert.Len(t, snap.Positions, 2)
}
