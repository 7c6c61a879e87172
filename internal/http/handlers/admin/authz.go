package admin

import (
	"net/url"
	"strings"

	"github.com/catalog-next/internal/authz"
	"github.com/catalog-next/internal/constants"
	handlershared "github.com/catalog-next/internal/http/handlers/shared"
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/repository"
	"github.com/catalog-next/internal/service"

	"github.com/gin-gonic/gin"
)

type authzPolicyPayload struct {
	Permission string `json:"permission" binding:"required,max=255"`
	Action     string `json:"action" binding:"max=20"`
}

// ListAuthzRoles lists registered roles.
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.Success(c, roles)
}

// GetAuthzRolePolicies lists the direct grants of a role.
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, ok := h.existingRoleParam(c)
	if !ok {
		return
	}
	policies, err := h.AuthzService.RolePolicies(role)
	if err != nil {
		respondMappedError(c, err, authzErrorRules)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy grants a permission to a role, registering the role
// first when it is new.
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	var req authzPolicyPayload
	if !bindJSON(c, &req) {
		return
	}

	if err := h.AuthzService.GrantRolePolicy(role, req.Permission, req.Action); err != nil {
		respondMappedError(c, err, authzErrorRules)
		return
	}
	h.recordAuthzAudit(c, constants.AuthzAuditActionPolicyGrant, role, req.Permission, req.Action)
	logger.Infow("admin_authz_policy_granted",
		"operator_user_id", currentUserID(c),
		"role", role,
		"permission", req.Permission,
	)
	response.SuccessWithMsg(c, "policy granted", nil)
}

// RevokeAuthzPolicy removes a permission from a role.
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	role, ok := h.existingRoleParam(c)
	if !ok {
		return
	}
	var req authzPolicyPayload
	if !bindJSON(c, &req) {
		return
	}

	if err := h.AuthzService.RevokeRolePolicy(role, req.Permission, req.Action); err != nil {
		respondMappedError(c, err, authzErrorRules)
		return
	}
	h.recordAuthzAudit(c, constants.AuthzAuditActionPolicyRevoke, role, req.Permission, req.Action)
	logger.Infow("admin_authz_policy_revoked",
		"operator_user_id", currentUserID(c),
		"role", role,
		"permission", req.Permission,
	)
	response.SuccessWithMsg(c, "policy revoked", nil)
}

// ReloadAuthzPolicy reloads policies from the database, picking up rows
// written by other instances.
func (h *Handler) ReloadAuthzPolicy(c *gin.Context) {
	if err := h.AuthzService.ReloadPolicy(); err != nil {
		respondMappedError(c, err, nil)
		return
	}
	h.recordAuthzAudit(c, constants.AuthzAuditActionPolicyReload, "", "", "")
	logger.Infow("admin_authz_policy_reloaded", "operator_user_id", currentUserID(c))
	response.SuccessWithMsg(c, "policy reloaded", nil)
}

// ListAuthzAuditLogs pages through permission changes. Filters:
// operator_user_id, role, action.
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	operatorID, ok := parseUintQuery(c, "operator_user_id")
	if !ok {
		return
	}
	role := strings.TrimSpace(c.Query("role"))
	if role != "" {
		normalized, err := authz.NormalizeRole(role)
		if err != nil {
			invalidQuery(c, "role", err.Error(), role)
			return
		}
		role = normalized
	}

	logs, total, err := h.AuthzAuditService.ListForAdmin(repository.AuthzAuditLogListFilter{
		Page:           page,
		PageSize:       pageSize,
		OperatorUserID: operatorID,
		Role:           role,
		Action:         strings.TrimSpace(c.Query("action")),
	})
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}

func (h *Handler) existingRoleParam(c *gin.Context) (string, bool) {
	role := decodeRoleParam(c.Param("role"))
	exists, err := h.AuthzService.HasRole(role)
	if err != nil {
		respondMappedError(c, err, authzErrorRules)
		return "", false
	}
	if !exists {
		respondMappedError(c, authz.ErrRoleNotFound, authzErrorRules)
		return "", false
	}
	return role, true
}

func (h *Handler) recordAuthzAudit(c *gin.Context, action, role, permission, method string) {
	if h.AuthzAuditService == nil {
		return
	}
	if role != "" {
		if normalized, err := authz.NormalizeRole(role); err == nil {
			role = normalized
		}
	}
	if method == "" && permission != "" {
		method = authz.ActionAccess
	}
	err := h.AuthzAuditService.Record(service.RecordAuthzAuditInput{
		OperatorUserID: currentUserID(c),
		OperatorRole:   handlershared.GetUserRole(c),
		Action:         action,
		Role:           role,
		Permission:     authz.NormalizePermission(permission),
		Method:         method,
		RequestID:      c.GetString(constants.ContextKeyRequestID),
	})
	if err != nil {
		logger.Errorw("admin_authz_audit_record_failed", "action", action, "role", role, "error", err)
	}
}

func currentUserID(c *gin.Context) uint {
	uid, _ := c.Get(constants.ContextKeyUserID)
	id, _ := uid.(uint)
	return id
}

func decodeRoleParam(raw string) string {
	decoded, err := url.PathUnescape(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(decoded)
}
