package dto

import (
	"time"

	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/EternisAI/user-directory/internal/users"
)

type UserResponse struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Position     string `json:"position"`
	PositionID   int    `json:"position_id"`
	Photo        string `json:"photo"`
	RegisteredAt string `json:"registered_at"`
}

type UsersSnapshotResponse struct {
	Users       []UserResponse `json:"users"`
	Loading     bool           `json:"loading"`
	CanLoadMore bool           `json:"can_load_more"`
	NextPage    int            `json:"next_page"`
	TotalPages  int            `json:"total_pages"`
	TotalUsers  int            `json:"total_users"`
	Retryable   bool           `json:"retryable"`
	Error       string         `json:"error,omitempty"`
}

func NewUserResponse(u directory.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Position:     u.Position,
		PositionID:   u.PositionID,
		Photo:        u.PhotoURL,
		RegisteredAt: u.RegisteredAt().UTC().Format(time.RFC3339),
	}
}

func NewUsersSnapshotResponse(s users.Snapshot) UsersSnapshotResponse {
	list := make([]UserResponse, len(s.Users))
	for i, u := range s.Users {
		list[i] = NewUserResponse(u)
	}

	resp := UsersSnapshotResponse{
		Users:       list,
		Loading:     s.Loading,
		CanLoadMore: s.CanLoadMore,
		NextPage:    s.NextPage,
		TotalPages:  s.TotalPages,
		TotalUsers:  s.TotalUsers,
		Retryable:   s.Retryable,
	}
	if s.Err != nil {
		resp.Error = s.Err.Error()
	}
	return resp
}
