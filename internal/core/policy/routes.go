package policy

import (
	"strings"

	"github.com/gccconnect/connect/internal/core/domain"
)

// Options tunes the route table.
type Options struct {
	// RequireApproval layers ApprovedGuard on the GCC and startup areas.
	RequireApproval bool
}

type entry struct {
	pattern  string
	segments []string
	guard    Guard
}

// Table maps route patterns to guards. Patterns may contain ":param" segments.
// Paths that match no pattern redirect home.
type Table struct {
	entries []entry
}

// NewTable returns the marketplace route table.
func NewTable(opts Options) *Table {
	member := AuthGuard
	if opts.RequireApproval {
		member = All(AuthGuard, ApprovedGuard)
	}
	// AdminGuard runs first so anonymous visitors land home, not on login.
	admin := All(AdminGuard, AuthGuard)

	t := &Table{}
	t.Add("/", nil)
	t.Add(string(domain.RouteLogin), nil)
	t.Add(string(domain.RouteRegisterGCC), nil)
	t.Add(string(domain.RouteRegisterStartup), nil)
	t.Add(string(domain.RoutePendingApproval), PendingApprovalGuard)

	for _, p := range []string{
		"/gcc/dashboard",
		"/gcc/requirements",
		"/gcc/requirements/create",
		"/gcc/requirements/:id",
		"/gcc/startups",
		"/gcc/profile",
		"/startup/dashboard",
		"/startup/requirements",
		"/startup/profile",
	} {
		t.Add(p, member)
	}

	for _, p := range []string{"/admin/dashboard", "/admin/users", "/admin/approvals"} {
		t.Add(p, admin)
	}
	return t
}

// Add registers a pattern. A nil guard means the route is public. Earlier
// patterns win, so literal routes must be added before parameterised ones.
func (t *Table) Add(pattern string, guard Guard) {
	t.entries = append(t.entries, entry{
		pattern:  pattern,
		segments: split(Normalize(domain.Route(pattern))),
		guard:    guard,
	})
}

// Lookup returns the pattern and guard matching route.
func (t *Table) Lookup(route domain.Route) (string, Guard, bool) {
	segs := split(Normalize(route))
	for _, e := range t.entries {
		if match(e.segments, segs) {
			return e.pattern, e.guard, true
		}
	}
	return "", nil, false
}

// Evaluate runs the guards of route against snap.
func (t *Table) Evaluate(snap domain.Snapshot, route domain.Route) Decision {
	_, guard, ok := t.Lookup(route)
	if !ok {
		return redirect(domain.RouteHome)
	}
	if guard == nil {
		return allow()
	}
	return guard(snap, Normalize(route))
}

// MaxRedirects bounds how many guard redirects one navigation may follow.
const MaxRedirects = 4

// Hop is one denied step of a navigation.
type Hop struct {
	From domain.Route `json:"from"`
	To   domain.Route `json:"to"`
}

// Resolve follows redirects from to until a guard allows entry and returns
// the landing route with the hops taken. When the hop limit is reached the
// last redirect target is returned with ok false.
func (t *Table) Resolve(snap domain.Snapshot, to domain.Route) (landed domain.Route, hops []Hop, ok bool) {
	route := Normalize(to)
	for range MaxRedirects + 1 {
		d := t.Evaluate(snap, route)
		if d.Allow {
			return route, hops, true
		}
		hops = append(hops, Hop{From: route, To: d.Redirect})
		route = d.Redirect
	}
	return route, hops, false
}

// Normalize strips query strings, fragments and trailing slashes.
func Normalize(route domain.Route) domain.Route {
	s := string(route)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = "/" + strings.Trim(s, "/")
	return domain.Route(s)
}

func split(route domain.Route) []string {
	s := strings.Trim(string(route), "/")
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

func match(pattern, segs []string) bool {
	if len(pattern) != len(segs) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return true
}
