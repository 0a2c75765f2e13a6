package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmsuite/console-gateway/models"
)

func TestModulesFor(t *testing.T) {
	t.Run("owner and admin hold the all-modules sentinel", func(t *testing.T) {
		for _, role := range []models.Role{models.RoleOwner, models.RoleAdmin} {
			set := ModulesFor(role)
			assert.True(t, set.Contains("dashboard"))
			assert.True(t, set.Contains("users"))
			assert.True(t, set.Contains("anything-at-all"))
		}
	})

	t.Run("viewer has an explicit set", func(t *testing.T) {
		set := ModulesFor(models.RoleViewer)
		for _, key := range []string{"dashboard", "clients", "plans", "reports", "notifications", "settings"} {
			assert.True(t, set.Contains(key), "viewer should see %q", key)
		}
		for _, key := range []string{"users", "roles", "permissions", "payments"} {
			assert.False(t, set.Contains(key), "viewer should not see %q", key)
		}
	})

	t.Run("unknown role contains nothing", func(t *testing.T) {
		set := ModulesFor(models.RoleUnknown)
		assert.False(t, set.Contains("dashboard"))
		assert.False(t, set.Contains(""))

		set = ModulesFor(models.ParseRole("intruder"))
		assert.False(t, set.Contains("clients"))
	})
}
