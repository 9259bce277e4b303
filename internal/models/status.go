package models

// StatusResponse acknowledges an operation that returns no entity.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
