package service

import "errors"

// Auth
var (
	ErrMissingToken          = errors.New("token is required")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrWrongTokenType        = errors.New("wrong token type")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrDuplicateEmail        = errors.New("email is already registered")
	ErrDuplicateUsername     = errors.New("username is already taken")
	ErrUserNotFound          = errors.New("user not found")
	ErrAlreadyVerified       = errors.New("email is already verified")
	ErrInvalidOrExpiredToken = errors.New("verification token is invalid or expired")
	ErrEmailMismatch         = errors.New("token email does not match the account")
	ErrEmailDeliveryFailed   = errors.New("failed to send email")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrInvalidUsername       = errors.New("invalid username")
	ErrWeakPassword          = errors.New("password does not meet the policy")
	ErrEmptyPatch            = errors.New("no fields to update")
)

// Mail transport
var (
	ErrEmailServiceDisabled      = errors.New("email service is disabled")
	ErrEmailServiceNotConfigured = errors.New("email service is not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

// Captcha
var (
	ErrCaptchaDisabled = errors.New("captcha is disabled")
	ErrCaptchaRequired = errors.New("captcha is required")
	ErrCaptchaInvalid  = errors.New("captcha is invalid")
)

// Orders
var (
	ErrInvalidOrderItems   = errors.New("order must contain at least one item with quantity >= 1")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductOutOfStock   = errors.New("product is out of stock")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotMutable     = errors.New("order can no longer be changed")
	ErrOrderNotDeletable   = errors.New("only pending orders can be deleted")
	ErrInvalidOrderStatus  = errors.New("invalid order status")
	ErrOrderStatusConflict = errors.New("order status changed concurrently")
	ErrOrderTimeout        = errors.New("order creation timed out")
)

// Catalog
var (
	ErrProductInUse      = errors.New("product is referenced by orders")
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category name already exists")
)

// Uploads
var (
	ErrUploadMissing        = errors.New("file is required")
	ErrUploadTooLarge       = errors.New("file exceeds the size limit")
	ErrUploadTypeNotAllowed = errors.New("file type is not allowed")
	ErrUploadImageTooLarge  = errors.New("image dimensions exceed the limit")
	ErrUploadInvalidName    = errors.New("invalid file name")
	ErrUploadNotFound       = errors.New("file not found")
)
