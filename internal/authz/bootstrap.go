package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
// admin 与 partner 对应账号角色，其余为后台可分配的附加角色
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "admin",
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role: "partner",
			Policies: []Policy{
				{Object: "/admin/bookings", Action: "GET"},
				{Object: "/admin/bookings/:id", Action: "GET"},
				{Object: "/admin/bookings/:id/confirm", Action: "POST"},
				{Object: "/admin/bookings/:id/complete", Action: "POST"},
				{Object: "/admin/bookings/:id/cancel", Action: "POST"},
				{Object: "/admin/partners/:id", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "operations",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/categories", Action: "*"},
				{Object: "/admin/categories/:id", Action: "*"},
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
				{Object: "/admin/membership-tiers", Action: "*"},
				{Object: "/admin/membership-tiers/:id", Action: "*"},
				{Object: "/admin/partners", Action: "*"},
				{Object: "/admin/partners/:id", Action: "*"},
				{Object: "/admin/commission-templates", Action: "*"},
				{Object: "/admin/commission-templates/:id", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:     "support",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/orders/:id/status", Action: "PATCH"},
				{Object: "/admin/bookings/:id/confirm", Action: "POST"},
				{Object: "/admin/bookings/:id/complete", Action: "POST"},
				{Object: "/admin/bookings/:id/cancel", Action: "POST"},
				{Object: "/admin/users/status", Action: "PATCH"},
			},
			Immutable: true,
		},
		{
			Role:     "finance",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/orders/:id/payment-status", Action: "PATCH"},
				{Object: "/admin/commissions/approve", Action: "POST"},
				{Object: "/admin/commissions/mark-paid", Action: "POST"},
				{Object: "/admin/commissions/calculate/:order_id", Action: "POST"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}
