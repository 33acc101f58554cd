// Package policy decides which routes a session may enter. Guards are pure
// functions of a session snapshot; they never fail, they redirect.
package policy

import "github.com/gccconnect/connect/internal/core/domain"

// Decision is the outcome of a guard. Redirect is set only when Allow is false.
type Decision struct {
	Allow    bool         `json:"allow"`
	Redirect domain.Route `json:"redirect,omitempty"`
}

func allow() Decision { return Decision{Allow: true} }

func redirect(to domain.Route) Decision { return Decision{Redirect: to} }

// Guard evaluates a navigation to route for the given snapshot.
type Guard func(snap domain.Snapshot, route domain.Route) Decision

// AuthGuard requires a session and sends anonymous users to login.
func AuthGuard(snap domain.Snapshot, _ domain.Route) Decision {
	if !snap.LoggedIn() {
		return redirect(domain.RouteLogin)
	}
	return allow()
}

// AdminGuard requires the admin role. Anyone else goes to their own dashboard,
// or home when anonymous.
func AdminGuard(snap domain.Snapshot, _ domain.Route) Decision {
	role, _ := snap.Role()
	if role == domain.RoleAdmin {
		return allow()
	}
	return redirect(domain.DashboardFor(role))
}

// PendingApprovalGuard admits only logged-in, not yet approved sessions.
func PendingApprovalGuard(snap domain.Snapshot, _ domain.Route) Decision {
	if !snap.LoggedIn() {
		return redirect(domain.RouteLogin)
	}
	if snap.Approved() {
		role, _ := snap.Role()
		return redirect(domain.DashboardFor(role))
	}
	return allow()
}

// ApprovedGuard keeps unapproved sessions on the pending-approval screen.
func ApprovedGuard(snap domain.Snapshot, _ domain.Route) Decision {
	if !snap.LoggedIn() {
		return redirect(domain.RouteLogin)
	}
	if !snap.Approved() {
		return redirect(domain.RoutePendingApproval)
	}
	return allow()
}

// All passes only if every guard passes, returning the first denial in order.
func All(guards ...Guard) Guard {
	return func(snap domain.Snapshot, route domain.Route) Decision {
		for _, g := range guards {
			if d := g(snap, route); !d.Allow {
				return d
			}
		}
		return allow()
	}
}
