// File: internal/common/response.go
package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PageEnvelope carries one page of a list. Data is always present.
type PageEnvelope struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

func requestLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(LoggerKey); ok {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.NewNop()
}

// RespondWithError aborts the request with err rendered as an APIError.
// Anything that is not already an APIError is logged and reported as a 500.
func RespondWithError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		requestLogger(c).Error("Unhandled error reached the response layer", zap.Error(err))
		apiErr = ErrInternalServer
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
}

// RespondWithBindingError reports a request binding failure, listing field
// errors when validation rejected the input.
func RespondWithBindingError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		RespondWithError(c, NewValidationAPIError(FormatValidationErrors(ve)))
		return
	}
	RespondWithError(c, ErrBadRequest.WithDetails(err.Error()))
}

const statusSuccess = "success"

func respond(c *gin.Context, statusCode int, body Envelope) {
	body.Status = statusSuccess
	c.JSON(statusCode, body)
}

func RespondOK(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, Envelope{Message: message, Data: data})
}

func RespondCreated(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusCreated, Envelope{Message: message, Data: data})
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func RespondPaginated(c *gin.Context, message string, data interface{}, pagination *Pagination) {
	c.JSON(http.StatusOK, PageEnvelope{
		Status:     statusSuccess,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}
