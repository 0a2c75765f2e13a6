package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmsuite/console-gateway/models"
)

func labels(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Label)
	}
	return out
}

func findItem(items []Item, label string) *Item {
	for i := range items {
		if items[i].Label == label {
			return &items[i]
		}
	}
	return nil
}

func TestFilter(t *testing.T) {
	t.Run("viewer drops the Users & Roles group but keeps the clients leaf", func(t *testing.T) {
		visible := Filter(models.RoleViewer)

		assert.Nil(t, findItem(visible, "Users & Roles"))
		require.NotNil(t, findItem(visible, "Clients"))
		assert.Equal(t, "clients", findItem(visible, "Clients").Key)
	})

	t.Run("empty groups are dropped entirely", func(t *testing.T) {
		// viewer has no billing modules, so the whole group vanishes
		visible := Filter(models.RoleViewer)
		assert.Nil(t, findItem(visible, "Billing"))
		assert.Nil(t, findItem(visible, "Operations"))
	})

	t.Run("group survives with the surviving subset of children", func(t *testing.T) {
		visible := Filter(models.RoleSales)

		billing := findItem(visible, "Billing")
		require.NotNil(t, billing)
		assert.Equal(t, []string{"Payments", "Invoices"}, labels(billing.Children))

		// sales has no operations modules
		assert.Nil(t, findItem(visible, "Operations"))
	})

	t.Run("care keeps operations children in declared order", func(t *testing.T) {
		visible := Filter(models.RoleCare)

		ops := findItem(visible, "Operations")
		require.NotNil(t, ops)
		assert.Equal(t, []string{"Activations", "Tickets", "Renewals"}, labels(ops.Children))
	})

	t.Run("owner sees the full tree in declared order", func(t *testing.T) {
		visible := Filter(models.RoleOwner)
		assert.Equal(t, labels(Tree), labels(visible))
	})

	t.Run("unknown role sees nothing", func(t *testing.T) {
		assert.Empty(t, Filter(models.RoleUnknown))
		assert.Empty(t, Filter(models.ParseRole("nobody")))
	})

	t.Run("declared order is preserved for partial sets", func(t *testing.T) {
		visible := Filter(models.RoleViewer)
		assert.Equal(t,
			[]string{"Dashboard", "Clients", "Plans", "Reports", "Notifications", "Settings"},
			labels(visible))
	})

	t.Run("filter does not mutate the static tree", func(t *testing.T) {
		before := len(Tree[4].Children) // Billing group
		_ = Filter(models.RoleViewer)
		_ = Filter(models.RoleSales)
		assert.Equal(t, before, len(Tree[4].Children))
	})
}
