package nav

import (
	"github.com/tmsuite/console-gateway/access"
	"github.com/tmsuite/console-gateway/models"
)

// Filter returns the navigation items visible to the role, in declared
// order. A leaf survives iff the role's module-access set contains its
// key; a group survives iff at least one child survives. Empty groups are
// dropped entirely so no label renders with zero options.
//
// Filter is pure: it holds no state and can be recomputed whenever the
// role changes (profile refresh, impersonation).
func Filter(role models.Role) []Item {
	return filterItems(Tree, access.ModulesFor(role))
}

func filterItems(items []Item, modules access.ModuleSet) []Item {
	var out []Item
	for _, item := range items {
		if item.IsGroup() {
			children := filterItems(item.Children, modules)
			if len(children) == 0 {
				continue
			}
			group := item
			group.Children = children
			out = append(out, group)
			continue
		}
		if modules.Contains(item.Key) {
			out = append(out, item)
		}
	}
	return out
}
