package shared

import (
	"net/http"
	"strconv"

	"github.com/catalog-next/internal/constants"
	"github.com/catalog-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetUserID reads the authenticated user id. It writes 401 and returns
// false when the request carries none.
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		response.ErrorWithCode(c, http.StatusUnauthorized, response.CodeMissingToken, "authentication required", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v > 0 {
			return uint(v), true
		}
	case float64:
		if v > 0 {
			return uint(v), true
		}
	}
	RespondError(c, response.WrapError(http.StatusInternalServerError, "", "invalid user id in context", nil))
	return 0, false
}

// GetUserRole returns the authenticated role or "".
func GetUserRole(c *gin.Context) string {
	return c.GetString(constants.ContextKeyUserRole)
}

// ParseIDParam parses a positive numeric path parameter. It writes 400 and
// returns false when the value is malformed.
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.ValidationError(c, "validation failed", []response.FieldError{{
			Field:   name,
			Message: name + " must be a positive integer",
			Value:   raw,
		}})
		return 0, false
	}
	return uint(id), true
}
