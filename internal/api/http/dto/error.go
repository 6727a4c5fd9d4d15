package dto

type ErrorResponse struct {
	Error string              `json:"error"`
	Fails map[string][]string `json:"fails,omitempty"`
}
