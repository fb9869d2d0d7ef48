package nav

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Admin(t *testing.T) {
	m := Build("admin")
	require.Len(t, m, 4)

	assert.Equal(t, []string{"Dashboard", "Apis", "Configuration", "User"}, m.Names())

	g, ok := m[2].(Group)
	require.True(t, ok, "entry 2 should be a group, got %T", m[2])
	assert.Equal(t, "Configuration", g.Name)
	assert.Equal(t, RoutePlaceholder, g.To)
	assert.Equal(t, IconSettings, g.Icon)
	require.Len(t, g.Items, 2)
	assert.Equal(t, Item{Name: "Server", To: RouteConfigServer}, g.Items[0])
	assert.Equal(t, Item{Name: "Apis Template", To: RouteConfigTemplate}, g.Items[1])

	u, ok := m[3].(Item)
	require.True(t, ok, "entry 3 should be an item, got %T", m[3])
	assert.Equal(t, Item{Name: "User", To: RouteUser, Icon: IconUser}, u)
}

func TestBuild_NonPrivilegedRoles(t *testing.T) {
	want := Menu{
		Item{Name: "Dashboard", To: RouteDashboard, Icon: IconSpeedometer},
		Item{Name: "Apis", To: RouteApis, Icon: IconNotes},
	}

	for _, role := range []string{"", "ADMIN", "Admin", " admin", "admin ", "user", "super_admin", "null", "\x00"} {
		t.Run(role, func(t *testing.T) {
			m := Build(role)
			assert.Equal(t, want, m)
			for _, e := range m {
				assert.Equal(t, KindItem, e.Kind())
			}
		})
	}
}

func TestBuild_Idempotent(t *testing.T) {
	for _, role := range []string{"admin", "user", ""} {
		assert.Equal(t, Build(role), Build(role))
	}
}

func TestBuild_DashboardPrecedesApis(t *testing.T) {
	for _, role := range []string{"admin", "user", "", "ADMIN"} {
		names := Build(role).Names()
		require.GreaterOrEqual(t, len(names), 2)
		assert.Equal(t, "Dashboard", names[0])
		assert.Equal(t, "Apis", names[1])
	}
}

func TestBuild_ResultsDoNotShareState(t *testing.T) {
	a := Build("admin")
	b := Build("admin")

	a[0] = Item{Name: "changed"}
	a[2].(Group).Items[0].Name = "changed"

	assert.Equal(t, "Dashboard", b.Names()[0])
	assert.Equal(t, "Server", b[2].(Group).Items[0].Name)
}

func TestMenu_JSONCarriesKind(t *testing.T) {
	raw, err := json.Marshal(Build("admin"))
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 4)

	assert.Equal(t, "item", got[0]["kind"])
	assert.Equal(t, "/dashboard", got[0]["to"])
	assert.Equal(t, "group", got[2]["kind"])
	assert.Equal(t, "#", got[2]["to"])

	children, ok := got[2]["items"].([]any)
	require.True(t, ok)
	require.Len(t, children, 2)
	child := children[0].(map[string]any)
	assert.Equal(t, "item", child["kind"])
	assert.Equal(t, "Server", child["name"])
	_, hasIcon := child["icon"]
	assert.False(t, hasIcon, "children without an icon should omit it")
}
