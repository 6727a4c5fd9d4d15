package directory

import (
	"encoding/json"
	"time"
)

type Position struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID                    int    `json:"id"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	Position              string `json:"position"`
	PositionID            int    `json:"position_id"`
	RegistrationTimestamp int64  `json:"registration_timestamp"`
	PhotoURL              string `json:"photo"`
}

func (u User) RegisteredAt() time.Time {
	return time.Unix(u.RegistrationTimestamp, 0).UTC()
}

type UsersPage struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	TotalUsers int    `json:"total_users"`
	Count      int    `json:"count"`
	Links      Links  `json:"links"`
	Users      []User `json:"users"`
}

type Links struct {
	NextURL     *string `json:"next_url"`
	PreviousURL *string `json:"previous_url"`
}

// UnmarshalJSON accepts both previous_url and the shorter prev_url emitted by
// some deployments of the service.
func (l *Links) UnmarshalJSON(data []byte) error {
	var raw struct {
		NextURL     *string `json:"next_url"`
		PreviousURL *string `json:"previous_url"`
		PrevURL     *string `json:"prev_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.NextURL = raw.NextURL
	l.PreviousURL = raw.PreviousURL
	if l.PreviousURL == nil {
		l.PreviousURL = raw.PrevURL
	}
	return nil
}

type PositionsResponse struct {
	Success   bool       `json:"success"`
	Positions []Position `json:"positions"`
}

type UserResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type TokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	UserID  int    `json:"user_id"`
	Message string `json:"message"`
}

// Photo is an opaque image payload. Empty ContentType and Filename fall back to
// image/jpeg and image.jpg.
type Photo struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Submission is the registration form. PositionID is sent as entered; the
// service validates every field except the email precondition.
type Submission struct {
	Name       string
	Email      string `validate:"required"`
	Phone      string
	PositionID string
	Photo      *Photo
}
