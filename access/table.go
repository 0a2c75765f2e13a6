package access

import "github.com/tmsuite/console-gateway/models"

// ModuleSet is a role's coarse navigation-section access: either the
// AllModules sentinel or an explicit set of module keys. It is independent
// of the fine-grained permission codes.
type ModuleSet struct {
	all  bool
	keys map[string]struct{}
}

// AllModules grants every navigation module.
var AllModules = ModuleSet{all: true}

// Modules builds an explicit module-key set.
func Modules(keys ...string) ModuleSet {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return ModuleSet{keys: set}
}

// Contains reports whether the set grants the module key.
func (m ModuleSet) Contains(key string) bool {
	if m.all {
		return true
	}
	_, ok := m.keys[key]
	return ok
}

// roleModules is the static role to module-access table. It is not
// server-driven; roles absent from it (RoleUnknown included) receive the
// zero ModuleSet, which contains nothing.
var roleModules = map[models.Role]ModuleSet{
	models.RoleOwner: AllModules,
	models.RoleAdmin: AllModules,
	models.RoleSales: Modules(
		"dashboard", "inquiries", "clients", "plans",
		"payments", "invoices", "reports", "notifications", "settings",
	),
	models.RoleCare: Modules(
		"dashboard", "clients", "tickets", "activations",
		"renewals", "notifications", "settings",
	),
	models.RoleViewer: Modules(
		"dashboard", "clients", "plans", "reports",
		"notifications", "settings",
	),
}

// ModulesFor returns the module-access set for a role. Unrecognized roles
// get the empty set.
func ModulesFor(role models.Role) ModuleSet {
	return roleModules[role]
}
