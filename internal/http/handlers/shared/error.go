package shared

import (
	"errors"
	"net/http"

	"github.com/catalog-next/internal/constants"
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

// MappedError maps a service error to its HTTP form. An empty Message
// reuses the error text.
type MappedError struct {
	Target  error
	Status  int
	Code    string
	Message string
}

// RequestLog returns a logger tagged with the request id.
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString(constants.ContextKeyRequestID); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError writes appErr, logging the wrapped error when there is one.
func RespondError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil {
		RequestLog(c).Errorw("handler_error",
			"status", appErr.Status,
			"code", appErr.Code,
			"message", appErr.Message,
			"path", c.Request.URL.Path,
			"error", appErr.Err,
		)
	}
	response.ErrorWithCode(c, appErr.Status, appErr.Code, appErr.Message, appErr.Data)
}

// RespondMappedError writes the first rule matching err. Anything unmapped
// is logged and reported as a generic 500.
func RespondMappedError(c *gin.Context, err error, rules []MappedError) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			message := rule.Message
			if message == "" {
				message = err.Error()
			}
			response.ErrorWithCode(c, rule.Status, rule.Code, message, nil)
			return
		}
	}
	RespondError(c, response.WrapError(http.StatusInternalServerError, response.CodeInternal, internalErrorMessage, err))
}

// ConcatMappedErrors joins rule groups.
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
