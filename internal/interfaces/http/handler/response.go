package handler

import "github.com/qayed/backend/internal/interfaces/http/dto"

// Typed response wrappers referenced by the swagger annotations on the
// handlers. At runtime responses are built through dto; these exist so
// the generated API docs show the envelope around each payload type.

// @Description API response wrapper with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// @Description Error envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// @Description Success envelope without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
