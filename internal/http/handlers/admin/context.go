package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/catalog-next/internal/http/handlers/shared"
	"github.com/catalog-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	return handlershared.ParseIDParam(c, name)
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	return handlershared.BindJSON(c, dest)
}

func normalizePagination(c *gin.Context) (int, int) {
	return handlershared.ParsePagination(c)
}

func respondMappedError(c *gin.Context, err error, rules []handlershared.MappedError) {
	handlershared.RespondMappedError(c, err, rules)
}

func invalidQuery(c *gin.Context, field, message, value string) {
	response.ValidationError(c, "validation failed", []response.FieldError{{
		Field:   field,
		Message: message,
		Value:   value,
	}})
}

// parseTimeNullable accepts RFC3339 or a bare date.
func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseBoolQuery(c *gin.Context, field string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(field))
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		invalidQuery(c, field, field+" must be true or false", raw)
		return nil, false
	}
	return &value, true
}

func parseUintQuery(c *gin.Context, field string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(field))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		invalidQuery(c, field, field+" must be a positive integer", raw)
		return 0, false
	}
	return uint(value), true
}
