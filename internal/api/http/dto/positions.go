package dto

import "github.com/EternisAI/user-directory/internal/directory"

type PositionResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PositionsResponse struct {
	Positions []PositionResponse `json:"positions"`
}

func NewPositionResponses(positions []directory.Position) []PositionResponse {
	out := make([]PositionResponse, len(positions))
	for i, p := range positions {
		out[i] = PositionResponse{ID: p.ID, Name: p.Name}
	}
	return out
}
