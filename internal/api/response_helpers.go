// internal/api/response_helpers.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/voxalab/pitchvillage/internal/errors"
)

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError carries the error taxonomy to clients.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// respondError maps the application error taxonomy to HTTP status codes.
func respondError(c *gin.Context, err error) {
	errType := apperrors.TypeOf(err)
	status := http.StatusInternalServerError
	switch errType {
	case apperrors.ErrorTypeValidation:
		status = http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	case apperrors.ErrorTypeTimeout:
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, APIResponse{
		Success:   false,
		Error:     &APIError{Type: string(errType), Message: err.Error()},
		Timestamp: time.Now(),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, apperrors.NewValidationError(message, nil))
}
