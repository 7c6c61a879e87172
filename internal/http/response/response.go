package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	requestIDKey     = "request_id"
	decoratorsKey    = "response_decorators"
	defaultErrorText = "internal server error"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success                 bool                     `json:"success"`
	Message                 string                   `json:"message,omitempty"`
	Data                    interface{}              `json:"data,omitempty"`
	Pagination              *Pagination              `json:"pagination,omitempty"`
	Errors                  []FieldError             `json:"errors,omitempty"`
	ErrorCode               string                   `json:"error_code,omitempty"`
	EmailVerificationStatus *EmailVerificationStatus `json:"email_verification_status,omitempty"`
	RequestID               string                   `json:"request_id,omitempty"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// EmailVerificationStatus is attached by the advisory verification check.
type EmailVerificationStatus struct {
	Verified bool   `json:"verified"`
	Warning  string `json:"warning,omitempty"`
}

// Pagination describes a page of a listing.
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// Decorator adjusts an envelope right before it is written.
type Decorator func(env *Envelope)

// Decorate registers fn for the response of the current request. Decorators
// run on successful envelopes only, in registration order.
func Decorate(c *gin.Context, fn Decorator) {
	if c == nil || fn == nil {
		return
	}
	var decorators []Decorator
	if existing, ok := c.Get(decoratorsKey); ok {
		decorators, _ = existing.([]Decorator)
	}
	c.Set(decoratorsKey, append(decorators, fn))
}

// BuildPagination computes the page count.
func BuildPagination(page, pageSize int, total int64) Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, &Envelope{Success: true, Data: data})
}

// SuccessWithMsg writes 200 with a message and data.
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	write(c, http.StatusOK, &Envelope{Success: true, Message: msg, Data: data})
}

// Created writes 201.
func Created(c *gin.Context, msg string, data interface{}) {
	write(c, http.StatusCreated, &Envelope{Success: true, Message: msg, Data: data})
}

// SuccessWithPage writes 200 with a page of data.
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	write(c, http.StatusOK, &Envelope{Success: true, Data: data, Pagination: &pagination})
}

// Error writes a failure with the default code for status.
func Error(c *gin.Context, status int, msg string) {
	ErrorWithCode(c, status, CodeForStatus(status), msg, nil)
}

// ErrorWithCode writes a failure carrying code and optional data.
func ErrorWithCode(c *gin.Context, status int, code, msg string, data interface{}) {
	if msg == "" {
		msg = defaultErrorText
	}
	write(c, status, &Envelope{Success: false, Message: msg, ErrorCode: code, Data: data})
}

// ValidationError writes 400 with per-field errors.
func ValidationError(c *gin.Context, msg string, fields []FieldError) {
	write(c, http.StatusBadRequest, &Envelope{
		Success:   false,
		Message:   msg,
		ErrorCode: CodeValidation,
		Errors:    fields,
	})
}

// Abort writes appErr and stops the handler chain.
func Abort(c *gin.Context, appErr *AppError) {
	ErrorWithCode(c, appErr.Status, appErr.Code, appErr.Message, appErr.Data)
	c.Abort()
}

func write(c *gin.Context, status int, env *Envelope) {
	if value, ok := c.Get(requestIDKey); ok {
		if id, ok := value.(string); ok {
			env.RequestID = id
		}
	}
	if env.Success {
		if existing, ok := c.Get(decoratorsKey); ok {
			if decorators, ok := existing.([]Decorator); ok {
				for _, fn := range decorators {
					fn(env)
				}
			}
		}
	}
	c.JSON(status, env)
}
