// Package response writes the form API's wire shapes. Success bodies carry
// {success, message} plus an optional warning; error bodies carry {error}
// plus an optional field for validation failures.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SuccessBody struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
	Message string `json:"message"`
}

type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessBody{Success: true, Message: message})
}

func OKWithWarning(c *gin.Context, message, warning string) {
	c.JSON(http.StatusOK, SuccessBody{Success: true, Message: message, Warning: warning})
}

// ValidationError names the first failing field so the client can highlight it.
func ValidationError(c *gin.Context, message, field string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: message, Field: field})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: message})
}

func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorBody{Error: message})
}

func TooManyRequests(c *gin.Context, message string) {
	c.JSON(http.StatusTooManyRequests, ErrorBody{Error: message})
}

func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: message})
}

func ServiceUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, ErrorBody{Error: message})
}
