package public

import (
	"net/http"

	handlershared "github.com/catalog-next/internal/http/handlers/shared"
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

var inputErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidUsername, Status: http.StatusBadRequest, Code: response.CodeValidation, Message: "username must be 3-30 letters, digits or underscores"},
	{Target: service.ErrInvalidEmail, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrWeakPassword, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrEmptyPatch, Status: http.StatusBadRequest, Code: response.CodeValidation},
}

var duplicateErrorRules = []mappedHandlerError{
	{Target: service.ErrDuplicateEmail, Status: http.StatusBadRequest, Code: response.CodeDuplicate},
	{Target: service.ErrDuplicateUsername, Status: http.StatusBadRequest, Code: response.CodeDuplicate},
}

var emailDeliveryErrorRules = []mappedHandlerError{
	{Target: service.ErrEmailDeliveryFailed, Status: http.StatusInternalServerError, Code: response.CodeDependency, Message: "failed to send verification email, please try again later"},
}

var registerErrorRules = handlershared.ConcatMappedErrors(inputErrorRules, duplicateErrorRules, emailDeliveryErrorRules)

var loginErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: response.CodeAuthentication},
}

var refreshErrorRules = []mappedHandlerError{
	{Target: service.ErrMissingToken, Status: http.StatusBadRequest, Code: response.CodeMissingToken, Message: "refresh token is required"},
	{Target: service.ErrInvalidToken, Status: http.StatusUnauthorized, Code: response.CodeInvalidToken},
	{Target: service.ErrWrongTokenType, Status: http.StatusUnauthorized, Code: response.CodeInvalidToken},
	{Target: service.ErrUserNotFound, Status: http.StatusUnauthorized, Code: response.CodeAuthentication},
}

var profileErrorRules = handlershared.ConcatMappedErrors(
	[]mappedHandlerError{{Target: service.ErrUserNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound}},
	inputErrorRules,
	duplicateErrorRules,
)

var verifyEmailErrorRules = []mappedHandlerError{
	{Target: service.ErrMissingToken, Status: http.StatusBadRequest, Code: response.CodeValidation, Message: "verification token is required"},
	{Target: service.ErrInvalidOrExpiredToken, Status: http.StatusBadRequest, Code: response.CodeInvalidToken},
	{Target: service.ErrAlreadyVerified, Status: http.StatusBadRequest, Code: response.CodeStateConflict},
}

var resendVerificationErrorRules = handlershared.ConcatMappedErrors(
	[]mappedHandlerError{
		{Target: service.ErrUserNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
		{Target: service.ErrAlreadyVerified, Status: http.StatusBadRequest, Code: response.CodeStateConflict},
	},
	emailDeliveryErrorRules,
)

var resetPasswordErrorRules = handlershared.ConcatMappedErrors(
	[]mappedHandlerError{
		{Target: service.ErrMissingToken, Status: http.StatusBadRequest, Code: response.CodeValidation, Message: "reset token is required"},
		{Target: service.ErrInvalidToken, Status: http.StatusBadRequest, Code: response.CodeInvalidToken},
		{Target: service.ErrWrongTokenType, Status: http.StatusBadRequest, Code: response.CodeInvalidToken},
		{Target: service.ErrEmailMismatch, Status: http.StatusBadRequest, Code: response.CodeInvalidToken},
		{Target: service.ErrUserNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
	},
	inputErrorRules,
)

var orderCreateErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidOrderItems, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrProductNotFound, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrProductOutOfStock, Status: http.StatusBadRequest, Code: response.CodeStateConflict},
	{Target: service.ErrOrderTimeout, Status: http.StatusServiceUnavailable, Code: response.CodeDependency},
}

var orderErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
	{Target: service.ErrOrderNotMutable, Status: http.StatusBadRequest, Code: response.CodeStateConflict},
	{Target: service.ErrOrderNotDeletable, Status: http.StatusBadRequest, Code: response.CodeStateConflict},
	{Target: service.ErrInvalidOrderStatus, Status: http.StatusBadRequest, Code: response.CodeValidation, Message: "owners may only cancel an order"},
	{Target: service.ErrEmptyPatch, Status: http.StatusBadRequest, Code: response.CodeValidation},
}

var catalogReadErrorRules = []mappedHandlerError{
	{Target: service.ErrProductNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
	{Target: service.ErrCategoryNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
}

var captchaErrorRules = []mappedHandlerError{
	{Target: service.ErrCaptchaDisabled, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrCaptchaRequired, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrCaptchaInvalid, Status: http.StatusBadRequest, Code: response.CodeValidation},
}

var uploadErrorRules = []mappedHandlerError{
	{Target: service.ErrUploadMissing, Status: http.StatusBadRequest, Code: response.CodeValidation, Message: "field \"file\" is required"},
	{Target: service.ErrUploadTooLarge, Status: http.StatusRequestEntityTooLarge, Code: response.CodePayloadTooLarge},
	{Target: service.ErrUploadTypeNotAllowed, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrUploadImageTooLarge, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrUploadInvalidName, Status: http.StatusBadRequest, Code: response.CodeValidation},
	{Target: service.ErrUploadNotFound, Status: http.StatusNotFound, Code: response.CodeNotFound},
}

func respondMappedError(c *gin.Context, err error, rules []mappedHandlerError) {
	handlershared.RespondMappedError(c, err, rules)
}
