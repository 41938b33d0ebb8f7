// Package authz holds the declarative permission table mapping roles to
// the back-office resources and actions they may touch. Handlers never
// compare role strings directly; they ask Allowed.
package authz

import "github.com/tnmle/vastra-backend/internal/app/model"

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceProduct   Resource = "product"
	ResourceInventory Resource = "inventory"
	ResourceOrder     Resource = "order"
	ResourceDashboard Resource = "dashboard"
	ResourceAudit     Resource = "audit"
	ResourceReport    Resource = "report"
	ResourceUser      Resource = "user"
)

type permission struct {
	Resource Resource
	Action   Action
}

// policies is the whole authorization model. Admin gets everything;
// manager runs day-to-day catalog and order work but cannot delete
// products, manage users, or read the audit trail.
var policies = map[model.UserRole]map[permission]bool{
	model.RoleManager: buildSet(
		permission{ResourceProduct, ActionRead},
		permission{ResourceProduct, ActionWrite},
		permission{ResourceInventory, ActionRead},
		permission{ResourceInventory, ActionWrite},
		permission{ResourceOrder, ActionRead},
		permission{ResourceOrder, ActionWrite},
		permission{ResourceDashboard, ActionRead},
		permission{ResourceReport, ActionRead},
	),
	model.RoleAdmin: buildSet(
		permission{ResourceProduct, ActionRead},
		permission{ResourceProduct, ActionWrite},
		permission{ResourceProduct, ActionDelete},
		permission{ResourceInventory, ActionRead},
		permission{ResourceInventory, ActionWrite},
		permission{ResourceOrder, ActionRead},
		permission{ResourceOrder, ActionWrite},
		permission{ResourceDashboard, ActionRead},
		permission{ResourceAudit, ActionRead},
		permission{ResourceReport, ActionRead},
		permission{ResourceReport, ActionWrite},
		permission{ResourceUser, ActionRead},
		permission{ResourceUser, ActionWrite},
	),
}

func buildSet(perms ...permission) map[permission]bool {
	set := make(map[permission]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// Allowed reports whether the role may perform action on resource.
// Unknown roles (including customer) have no back-office permissions.
func Allowed(role model.UserRole, resource Resource, action Action) bool {
	perms, ok := policies[role]
	if !ok {
		return false
	}
	return perms[permission{resource, action}]
}

// IsStaff reports whether the role has any back-office access at all
func IsStaff(role model.UserRole) bool {
	_, ok := policies[role]
	return ok
}
