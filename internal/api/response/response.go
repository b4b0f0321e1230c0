// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Envelope struct {
	Status     string             `json:"status"`
	Message    string             `json:"message,omitempty"`
	Data       interface{}        `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func JSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, "", data)
}

func Created(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, message, data)
}

// Paged writes a listing. A nil slice should be replaced by an empty one by the caller
// so that clients always receive an array.
func Paged(c *gin.Context, data interface{}, pagination models.Pagination) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Data: data, Pagination: &pagination})
}

// Error is the single exit for failed requests. The error is attached to the gin
// context so the request logger records the internal cause.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperror.StatusOf(err), Envelope{
		Status:  StatusError,
		Message: apperror.PublicMessage(err),
	})
}

// BadRequest reports a malformed request body or parameter.
func BadRequest(c *gin.Context, message string) {
	Error(c, apperror.Validation("%s", message))
}
