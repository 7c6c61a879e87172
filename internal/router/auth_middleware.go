package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/catalog-next/internal/authz"
	"github.com/catalog-next/internal/cache"
	"github.com/catalog-next/internal/constants"
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/repository"
	"github.com/catalog-next/internal/service"

	"github.com/gin-gonic/gin"
)

const emailNotVerifiedWarning = "your email address is not verified, some features are unavailable until you verify it"

// Authenticate validates the bearer access token and loads the caller's
// identity. A missing token is 401; a token that fails verification or
// names a deleted user is 403.
func Authenticate(tokens *service.TokenService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			response.Abort(c, response.WrapError(http.StatusUnauthorized, response.CodeMissingToken, "access token is required", nil))
			return
		}
		if tokens == nil || userRepo == nil {
			logger.Errorw("auth_middleware_unavailable")
			response.Abort(c, response.WrapError(http.StatusForbidden, response.CodeInvalidToken, "invalid or expired token", nil))
			return
		}

		claims, err := tokens.VerifyAccess(tokenString)
		if err != nil {
			response.Abort(c, response.WrapError(http.StatusForbidden, response.CodeInvalidToken, "invalid or expired token", nil))
			return
		}

		ctx := c.Request.Context()
		if cached, hit, cacheErr := cache.GetUserAuthState(ctx, claims.UserID); cacheErr == nil && hit && cached != nil {
			setIdentity(c, cached)
			c.Next()
			return
		}

		user, err := userRepo.GetByID(claims.UserID)
		if err != nil {
			logger.Errorw("auth_middleware_user_lookup_failed", "user_id", claims.UserID, "error", err)
			response.Abort(c, response.WrapError(http.StatusInternalServerError, response.CodeInternal, "internal server error", err))
			return
		}
		if user == nil {
			response.Abort(c, response.WrapError(http.StatusForbidden, response.CodeInvalidToken, "invalid or expired token", nil))
			return
		}
		state := cache.BuildUserAuthState(user)
		if err := cache.SetUserAuthState(ctx, state); err != nil {
			logger.Warnw("auth_state_cache_set_failed", "user_id", user.ID, "error", err)
		}
		setIdentity(c, state)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setIdentity(c *gin.Context, state *cache.UserAuthState) {
	c.Set(constants.ContextKeyUserID, state.UserID)
	c.Set(constants.ContextKeyUserRole, state.Role)
	c.Set(constants.ContextKeyEmailVerified, state.EmailVerified)
}

// RequireEmailVerified blocks callers whose email is not verified.
func RequireEmailVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(constants.ContextKeyEmailVerified) {
			response.Abort(c, response.WrapError(
				http.StatusForbidden,
				constants.ErrorCodeEmailNotVerified,
				"email verification required, please verify your email address",
				nil,
			))
			return
		}
		c.Next()
	}
}

// EmailVerificationStatus lets the request through and tags the successful
// response with the caller's verification state.
func EmailVerificationStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		verified := c.GetBool(constants.ContextKeyEmailVerified)
		response.Decorate(c, func(env *response.Envelope) {
			status := &response.EmailVerificationStatus{Verified: verified}
			if !verified {
				status.Warning = emailNotVerifiedWarning
			}
			env.EmailVerificationStatus = status
		})
		c.Next()
	}
}

// RequireRole admits only the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(constants.ContextKeyUserRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		appErr := response.WrapError(http.StatusForbidden, response.CodeInsufficientRole, "insufficient permissions", nil)
		appErr.Data = gin.H{
			"required_roles": roles,
			"your_role":      role,
		}
		response.Abort(c, appErr)
	}
}

// AdminOnly admits administrators.
func AdminOnly() gin.HandlerFunc {
	return RequireRole(constants.RoleAdmin)
}

// ManagerOrAdmin admits managers and administrators.
func ManagerOrAdmin() gin.HandlerFunc {
	return RequireRole(constants.RoleManager, constants.RoleAdmin)
}

// RequirePermission admits roles granted permission in casbin.
func RequirePermission(authzService *authz.Service, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(constants.ContextKeyUserRole)
		allowed, err := authzService.EnforceRole(role, permission)
		if err != nil {
			logger.Errorw("authz_enforce_failed",
				"role", role,
				"permission", permission,
				"path", c.Request.URL.Path,
				"error", err,
			)
			allowed = false
		}
		if !allowed {
			logger.Warnw("authz_permission_denied",
				"user_id", c.GetUint(constants.ContextKeyUserID),
				"role", role,
				"permission", permission,
				"path", c.Request.URL.Path,
			)
			appErr := response.WrapError(http.StatusForbidden, response.CodeInsufficientRole, "insufficient permissions", nil)
			appErr.Data = gin.H{
				"required_permission": permission,
				"your_role":           role,
			}
			response.Abort(c, appErr)
			return
		}
		c.Next()
	}
}

// RequireOwner admits the caller only when path parameter param is their
// own user id.
func RequireOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.Param(param))
		target, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || target == 0 || uint(target) != c.GetUint(constants.ContextKeyUserID) {
			response.Abort(c, response.WrapError(http.StatusForbidden, response.CodeAuthorization, "you can only access your own resources", nil))
			return
		}
		c.Next()
	}
}
