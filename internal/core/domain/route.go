package domain

// Route is a client-side navigation target such as "/admin/dashboard".
type Route string

const (
	RouteHome             Route = "/"
	RouteLogin            Route = "/auth/login"
	RouteRegisterGCC      Route = "/auth/register/gcc"
	RouteRegisterStartup  Route = "/auth/register/startup"
	RoutePendingApproval  Route = "/auth/pending-approval"
	RouteAdminDashboard   Route = "/admin/dashboard"
	RouteGCCDashboard     Route = "/gcc/dashboard"
	RouteStartupDashboard Route = "/startup/dashboard"
)

// DashboardFor returns the landing dashboard of a role, or home for anything else.
func DashboardFor(role Role) Route {
	switch role {
	case RoleAdmin:
		return RouteAdminDashboard
	case RoleGCC:
		return RouteGCCDashboard
	case RoleStartup:
		return RouteStartupDashboard
	default:
		return RouteHome
	}
}
