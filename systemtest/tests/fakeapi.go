package tests

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

type apiUser struct {
	ID                    int    `json:"id"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	Position              string `json:"position"`
	PositionID            int    `json:"position_id"`
	RegistrationTimestamp int64  `json:"registration_timestamp"`
	Photo                 string `json:"photo"`
}

var apiPositions = []struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}{
	{1, "Lawyer"},
	{2, "Content manager"},
	{3, "Security"},
	{4, "Designer"},
}

// FakeAPI behaves like the remote directory service: tokens are single use,
// users are listed newest first and duplicate emails or phones are rejected.
type FakeAPI struct {
	*httptest.Server

	mu          sync.Mutex
	users       []apiUser
	tokens      map[string]bool
	issued      int
	Registers   int
	TokenIssues int
}

func NewFakeAPI(seed int) *FakeAPI {
	api := &FakeAPI{tokens: map[string]bool{}}
	for i := 1; i <= seed; i++ {
		api.users = append([]apiUser{{
			ID:                    i,
			Name:                  fmt.Sprintf("Seed %d", i),
			Email:                 fmt.Sprintf("seed%d@example.com", i),
			Phone:                 fmt.Sprintf("+3809900000%02d", i),
			Position:              "Lawyer",
			PositionID:            1,
			RegistrationTimestamp: 1700000000 + int64(i),
		}}, api.users...)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /token", api.token)
	mux.HandleFunc("GET /positions", api.positions)
	mux.HandleFunc("GET /users", api.listUsers)
	mux.HandleFunc("GET /users/{id}", api.getUser)
	mux.HandleFunc("POST /users", api.register)
	api.Server = httptest.NewServer(mux)
	return api
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, message string, fails map[string][]string) {
	body := map[string]any{"success": false, "message": message}
	if fails != nil {
		body["fails"] = fails
	}
	writeJSON(w, status, body)
}

func (a *FakeAPI) token(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.issued++
	a.TokenIssues++
	token := fmt.Sprintf("token-%d", a.issued)
	a.tokens[token] = true
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (a *FakeAPI) positions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "positions": apiPositions})
}

func (a *FakeAPI) listUsers(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		fail(w, http.StatusUnprocessableEntity, "Validation failed", map[string][]string{"page": {"The page must be at least 1."}})
		return
	}
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil || count < 1 || count > 100 {
		fail(w, http.StatusUnprocessableEntity, "Validation failed", map[string][]string{"count": {"The count must be an integer."}})
		return
	}

	totalPages := (len(a.users) + count - 1) / count
	if page > totalPages {
		fail(w, http.StatusNotFound, "Page not found", nil)
		return
	}

	start := (page - 1) * count
	end := min(start+count, len(a.users))

	var next, prev *string
	if page < totalPages {
		u := fmt.Sprintf("%s/users?page=%d&count=%d", a.URL, page+1, count)
		next = &u
	}
	if page > 1 {
		u := fmt.Sprintf("%s/users?page=%d&count=%d", a.URL, page-1, count)
		prev = &u
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"page":        page,
		"total_pages": totalPages,
		"total_users": len(a.users),
		"count":       count,
		"links":       map[string]*string{"next_url": next, "prev_url": prev},
		"users":       a.users[start:end],
	})
}

func (a *FakeAPI) getUser(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		fail(w, http.StatusBadRequest, "The user_id must be an integer.", map[string][]string{"user_id": {"The user_id must be an integer."}})
		return
	}
	for _, u := range a.users {
		if u.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
			return
		}
	}
	fail(w, http.StatusNotFound, "User not found", nil)
}

func (a *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.Registers++
	token := r.Header.Get("Token")
	if !a.tokens[token] {
		fail(w, http.StatusUnauthorized, "The token expired.", nil)
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		fail(w, http.StatusBadRequest, "Malformed form", nil)
		return
	}

	fails := map[string][]string{}
	name := r.FormValue("name")
	email := r.FormValue("email")
	phone := r.FormValue("phone")
	if len(name) < 2 {
		fails["name"] = []string{"The name must be at least 2 characters."}
	}
	if !strings.Contains(email, "@") {
		fails["email"] = []string{"The email must be a valid email address."}
	}
	if !strings.HasPrefix(phone, "+380") {
		fails["phone"] = []string{"The phone field is required."}
	}
	positionID, err := strconv.Atoi(r.FormValue("position_id"))
	if err != nil || positionID < 1 || positionID > len(apiPositions) {
		fails["position_id"] = []string{"The position id must be an integer."}
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		fails["photo"] = []string{"The photo field is required."}
	} else {
		data, _ := io.ReadAll(file)
		_ = file.Close()
		if len(data) == 0 {
			fails["photo"] = []string{"The photo field is required."}
		}
	}
	if len(fails) > 0 {
		fail(w, http.StatusUnprocessableEntity, "Validation failed", fails)
		return
	}

	for _, u := range a.users {
		if u.Email == email || u.Phone == phone {
			fail(w, http.StatusConflict, "User with this phone or email already exist", nil)
			return
		}
	}

	delete(a.tokens, token)
	id := len(a.users) + 1
	a.users = append([]apiUser{{
		ID:                    id,
		Name:                  name,
		Email:                 email,
		Phone:                 phone,
		Position:              apiPositions[positionID-1].Name,
		PositionID:            positionID,
		RegistrationTimestamp: 1800000000,
	}}, a.users...)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user_id": id,
		"message": "New user successfully registered",
	})
}

func (a *FakeAPI) Counters() (registers, tokenIssues int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Registers, a.TokenIssues
}
