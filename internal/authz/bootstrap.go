package authz

import (
	"fmt"

	"github.com/catalog-next/internal/constants"
)

// RoleSeed describes a built-in role and its default grants.
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds is the default role matrix.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleUser,
		},
		{
			Role: constants.RoleManager,
			Policies: []Policy{
				{Object: constants.PermissionCatalogWrite, Action: ActionAccess},
				{Object: constants.PermissionStatsRead, Action: ActionAccess},
			},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{constants.RoleManager},
			Policies: []Policy{
				{Object: constants.PermissionOrdersReadAll, Action: ActionAccess},
				{Object: constants.PermissionUsersRead, Action: ActionAccess},
				{Object: constants.PermissionAuthzManage, Action: ActionAccess},
			},
		},
	}
}

// BootstrapBuiltinRoles writes the built-in roles and policies. Existing
// rows are left untouched so it is safe on every start.
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizePermission(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
