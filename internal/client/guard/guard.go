// Package guard decides which client view a path resolves to and whether the
// current session may see it. Token presence is the only check; the server
// validates the token on every protected call.
package guard

import (
	"strings"

	"deales/internal/client/session"
	"deales/pkg/domain"
)

const entryPath = "/"

// View identifies a client screen.
type View string

const (
	ViewEntry                 View = "entry"
	ViewLogin                 View = "login"
	ViewSignup                View = "signup"
	ViewSalespersonOnboarding View = "salesperson_onboarding"
	ViewHome                  View = "home"
	ViewSalespersonDashboard  View = "salesperson_dashboard"
)

// Destination is the outcome of resolving a path. When Redirect is set the
// caller navigates there instead of rendering View.
type Destination struct {
	View     View
	Role     domain.Role
	Redirect string
}

// Guard gates protected views on session presence.
type Guard struct {
	session session.Reader
}

func New(reader session.Reader) *Guard {
	return &Guard{session: reader}
}

// Allowed reports whether protected content may be shown.
func (g *Guard) Allowed() bool {
	_, ok := g.session.Token()
	return ok
}

// Check returns "" when access is allowed, or the path to redirect to.
func (g *Guard) Check() string {
	if g.Allowed() {
		return ""
	}
	return entryPath
}

type route struct {
	pattern   []string
	view      View
	protected bool
}

var routes = []route{
	{pattern: nil, view: ViewEntry},
	{pattern: []string{"login", ":role"}, view: ViewLogin},
	{pattern: []string{"signup", ":role"}, view: ViewSignup},
	{pattern: []string{"salesperson", "onboarding"}, view: ViewSalespersonOnboarding},
	{pattern: []string{"home"}, view: ViewHome, protected: true},
	{pattern: []string{"salesperson", "dashboard"}, view: ViewSalespersonDashboard, protected: true},
}

// Router maps client paths to views.
type Router struct {
	guard *Guard
}

func NewRouter(g *Guard) *Router {
	return &Router{guard: g}
}

// Resolve matches path against the routing table. Unknown paths and invalid
// :role values redirect to the entry point, as does a protected view without
// a session.
func (r *Router) Resolve(path string) Destination {
	segs := splitPath(path)
	for _, rt := range routes {
		role, ok := match(rt.pattern, segs)
		if !ok {
			continue
		}
		if role == nil {
			if rt.protected {
				if redirect := r.guard.Check(); redirect != "" {
					return Destination{Redirect: redirect}
				}
			}
			return Destination{View: rt.view}
		}
		if !role.Valid() {
			return Destination{Redirect: entryPath}
		}
		return Destination{View: rt.view, Role: *role}
	}
	return Destination{Redirect: entryPath}
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// match returns the resolved role when the pattern has a :role segment.
func match(pattern, segs []string) (*domain.Role, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var role *domain.Role
	for i, p := range pattern {
		if p == ":role" {
			r := domain.ResolveRole(segs[i])
			role = &r
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return role, true
}
