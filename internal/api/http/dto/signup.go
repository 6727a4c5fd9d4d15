package dto

import "github.com/EternisAI/user-directory/internal/registration"

// SignupForm is the multipart form accepted by POST /api/v1/signup. The photo
// part is read separately. Fields are forwarded as text for the service to
// validate.
type SignupForm struct {
	Name       string `form:"name"`
	Email      string `form:"email"`
	Phone      string `form:"phone"`
	PositionID string `form:"position_id"`
}

type FieldErrors struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PositionID string `json:"position_id,omitempty"`
	Photo      string `json:"photo,omitempty"`
}

type SignupSnapshotResponse struct {
	State            string             `json:"state"`
	Submitting       bool               `json:"submitting"`
	LoadingPositions bool               `json:"loading_positions"`
	Positions        []PositionResponse `json:"positions"`
	ValidationErrors *FieldErrors       `json:"validation_errors,omitempty"`
	Message          string             `json:"message,omitempty"`
	UserID           int                `json:"user_id,omitempty"`
	Retry            string             `json:"retry,omitempty"`
	Error            string             `json:"error,omitempty"`
	PositionsError   string             `json:"positions_error,omitempty"`
}

func NewSignupSnapshotResponse(s registration.Snapshot) SignupSnapshotResponse {
	resp := SignupSnapshotResponse{
		State:            s.State.String(),
		Submitting:       s.Submitting,
		LoadingPositions: s.LoadingPositions,
		Positions:        NewPositionResponses(s.Positions),
		Message:          s.Message,
		UserID:           s.UserID,
		Retry:            s.Retry.String(),
	}
	if v := s.ValidationErrors; v != nil {
		resp.ValidationErrors = &FieldErrors{
			Name:       v.Name,
			Email:      v.Email,
			Phone:      v.Phone,
			PositionID: v.PositionID,
			Photo:      v.Photo,
		}
	}
	if s.Fault != nil {
		resp.Error = s.Fault.Error()
	}
	if s.PositionsFault != nil {
		resp.PositionsError = s.PositionsFault.Error()
	}
	return resp
}
