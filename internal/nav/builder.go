package nav

import "gateway-dashboard/internal/rbac"

// Route paths and icon identifiers consumed by the dashboard renderer.
const (
	RouteDashboard      = "/dashboard"
	RouteApis           = "/apis"
	RouteConfigServer   = "/configuration/server"
	RouteConfigTemplate = "/configuration/template"
	RouteUser           = "/user"

	// Groups have no page of their own.
	RoutePlaceholder = "#"

	IconSpeedometer = "speedometer-icon"
	IconNotes       = "notes-icon"
	IconSettings    = "settings-icon"
	IconUser        = "user-icon"
)

// Build returns the sidebar for the given role.
//
// Everyone gets Dashboard and Apis. The privileged role additionally gets the
// Configuration group and the User page, appended in that order. Any other value,
// including "", is non-privileged. Build never fails and allocates a fresh Menu on
// every call, so callers may hold on to the result without sharing state.
//
// Visibility only: the routes themselves are not guarded by this decision.
func Build(role string) Menu {
	m := Menu{
		Item{Name: "Dashboard", To: RouteDashboard, Icon: IconSpeedometer},
		Item{Name: "Apis", To: RouteApis, Icon: IconNotes},
	}

	if rbac.IsPrivileged(role) {
		m = append(m,
			Group{
				Name: "Configuration",
				To:   RoutePlaceholder,
				Icon: IconSettings,
				Items: []Item{
					{Name: "Server", To: RouteConfigServer},
					{Name: "Apis Template", To: RouteConfigTemplate},
				},
			},
			Item{Name: "User", To: RouteUser, Icon: IconUser},
		)
	}

	return m
}
