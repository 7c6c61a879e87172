package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/catalog-next/internal/constants"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
	roleAnchor      = "role:__anchor__"
	// ActionAccess is the only action permissions are granted with.
	ActionAccess = "ACCESS"
)

const defaultRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var (
	// ErrRoleNotFound is returned for roles that were never registered.
	ErrRoleNotFound = errors.New("role not found")
	// ErrInvalidRole is returned for empty or reserved role names.
	ErrInvalidRole = errors.New("invalid role")
	// ErrPermissionRequired is returned when a grant names no permission.
	ErrPermissionRequired = errors.New("permission is required")
	// ErrProtectedPolicy guards the grant that lets admins manage policies.
	ErrProtectedPolicy = errors.New("policy cannot be revoked")
)

// Policy is a single permission grant.
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service wraps a casbin enforcer that maps roles to named permissions.
// Policies are persisted through the gorm adapter so operators can grant
// extra permissions without a redeploy.
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService builds the enforcer on top of db and loads stored policies.
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}

	m, err := model.NewModelFromString(defaultRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch", util.KeyMatchFunc)
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	return &Service{enforcer: enforcer}, nil
}

// Enforce checks a raw subject against a permission and action.
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	if s == nil || s.enforcer == nil {
		return false, fmt.Errorf("authz service unavailable")
	}
	return s.enforcer.Enforce(strings.TrimSpace(sub), NormalizePermission(obj), NormalizeAction(act))
}

// EnforceRole reports whether role holds permission.
func (s *Service) EnforceRole(role, permission string) (bool, error) {
	subject, err := NormalizeRole(role)
	if err != nil {
		return false, err
	}
	return s.Enforce(subject, permission, ActionAccess)
}

// ReloadPolicy reloads policies from storage.
func (s *Service) ReloadPolicy() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	return s.enforcer.LoadPolicy()
}

// EnsureRole registers role and returns its normalized subject.
func (s *Service) EnsureRole(role string) (string, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if s == nil || s.enforcer == nil {
		return "", fmt.Errorf("authz service unavailable")
	}
	if normalized == roleAnchor {
		return "", fmt.Errorf("%w: reserved role", ErrInvalidRole)
	}

	exists, err := s.enforcer.HasNamedGroupingPolicy("g", normalized, roleAnchor)
	if err != nil {
		return "", fmt.Errorf("check role failed: %w", err)
	}
	if exists {
		return normalized, nil
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor); err != nil {
		return "", fmt.Errorf("create role failed: %w", err)
	}
	return normalized, nil
}

// ListRoles returns every registered role without the internal prefix.
func (s *Service) ListRoles() ([]string, error) {
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	rules, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 1, roleAnchor)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roles := make([]string, 0, len(rules))
	for _, rule := range rules {
		if len(rule) == 0 {
			continue
		}
		roles = append(roles, strings.TrimPrefix(rule[0], rolePrefix))
	}
	sort.Strings(roles)
	return roles, nil
}

// HasRole reports whether role is registered.
func (s *Service) HasRole(role string) (bool, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false, err
	}
	if s == nil || s.enforcer == nil {
		return false, fmt.Errorf("authz service unavailable")
	}
	if normalized == roleAnchor {
		return false, nil
	}
	return s.enforcer.HasNamedGroupingPolicy("g", normalized, roleAnchor)
}

// GrantRolePolicy grants permission to role.
func (s *Service) GrantRolePolicy(role, permission, action string) error {
	normalizedRole, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	permission = NormalizePermission(permission)
	if permission == "" {
		return ErrPermissionRequired
	}
	action = NormalizeAction(action)
	if action == "" {
		action = ActionAccess
	}
	if _, err := s.enforcer.AddPolicy(normalizedRole, permission, action); err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	return nil
}

// RevokeRolePolicy removes a permission from role.
func (s *Service) RevokeRolePolicy(role, permission, action string) error {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	permission = NormalizePermission(permission)
	if isProtectedPolicy(normalizedRole, permission) {
		return ErrProtectedPolicy
	}
	action = NormalizeAction(action)
	if action == "" {
		action = ActionAccess
	}
	if _, err := s.enforcer.RemovePolicy(normalizedRole, permission, action); err != nil {
		return fmt.Errorf("revoke policy failed: %w", err)
	}
	return nil
}

// RolePolicies lists the permissions granted to role.
func (s *Service) RolePolicies(role string) ([]Policy, error) {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, normalizedRole)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	policies := convertPolicies(rules)
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Object == policies[j].Object {
			return policies[i].Action < policies[j].Action
		}
		return policies[i].Object < policies[j].Object
	})
	return policies, nil
}

// The admin role must keep policy management, or nobody could restore it
// through the API.
func isProtectedPolicy(role, permission string) bool {
	return role == rolePrefix+constants.RoleAdmin && permission == constants.PermissionAuthzManage
}

func convertPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizePermission(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

// NormalizeRole prefixes role with the subject namespace.
func NormalizeRole(role string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	if normalized == "" {
		return "", ErrInvalidRole
	}
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if !strings.HasPrefix(normalized, rolePrefix) {
		normalized = rolePrefix + normalized
	}
	if len(normalized) <= len(rolePrefix) {
		return "", ErrInvalidRole
	}
	return normalized, nil
}

// NormalizePermission lowercases and trims a permission name.
func NormalizePermission(permission string) string {
	return strings.ToLower(strings.TrimSpace(permission))
}

// NormalizeAction upper-cases an action.
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
