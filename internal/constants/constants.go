package constants

// Roles
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Order statuses. delivered, completed and cancelled are terminal.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Token types carried in the "type" claim.
const (
	TokenTypeRefresh       = "refresh"
	TokenTypePasswordReset = "password-reset"
)

// Permissions checked by the casbin role gate.
const (
	PermissionOrdersReadAll = "orders:read_all"
	PermissionCatalogWrite  = "catalog:write"
	PermissionStatsRead     = "stats:read"
	PermissionUsersRead     = "users:read"
	PermissionAuthzManage   = "authz:manage"
)

// Sign-in audit outcomes and failure reasons.
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"

	LoginLogFailReasonBadRequest         = "bad_request"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonInternalError      = "internal_error"
)

// Permission change audit actions.
const (
	AuthzAuditActionPolicyGrant  = "policy_grant"
	AuthzAuditActionPolicyRevoke = "policy_revoke"
	AuthzAuditActionPolicyReload = "policy_reload"
)

// Queue names
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// Async task types
const (
	TaskOrderStatusEmail   = "order:status_email"
	TaskPasswordResetEmail = "auth:password_reset_email"
)

// Captcha scenes
const (
	CaptchaSceneRegister       = "register"
	CaptchaSceneForgotPassword = "forgot_password"
)

// Error codes used in response bodies.
const (
	ErrorCodeEmailNotVerified = "EMAIL_NOT_VERIFIED"
)

// Context keys set by the access control middleware.
const (
	ContextKeyUserID        = "user_id"
	ContextKeyUserRole      = "user_role"
	ContextKeyEmailVerified = "user_email_verified"
	ContextKeyRequestID     = "request_id"
)
