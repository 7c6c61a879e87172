package response

import "net/http"

// AppError carries the HTTP status, a stable error code and the client
// message for a failed request. Err is logged, never sent.
type AppError struct {
	Status  int
	Code    string
	Message string
	Data    interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError builds an AppError.
func WrapError(status int, code, message string, err error) *AppError {
	if code == "" {
		code = CodeForStatus(status)
	}
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeForStatus picks the default code for an HTTP status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeAuthentication
	case http.StatusForbidden:
		return CodeAuthorization
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusRequestEntityTooLarge:
		return CodePayloadTooLarge
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return CodeDependency
	default:
		return CodeInternal
	}
}
