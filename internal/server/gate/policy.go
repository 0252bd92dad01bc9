// Package gate decides whether a request may reach its handler. Routes are
// protected unless registered as public.
package gate

import "github.com/dmitrijs2005/lessonbook/internal/authapi"

// Policy is the static route → access table. It is filled while routes
// are registered and only read afterwards.
type Policy struct {
	routes map[string]authapi.Access
}

func NewPolicy() *Policy {
	return &Policy{routes: make(map[string]authapi.Access)}
}

// RoutePolicy returns a policy filled from authapi.Routes plus the public
// health and metrics endpoints.
func RoutePolicy() *Policy {
	p := NewPolicy()
	for _, r := range authapi.Routes {
		p.Register(r.Name, r.Access)
	}
	p.Register(authapi.RouteHealth, authapi.Public)
	p.Register(authapi.RouteMetrics, authapi.Public)
	return p
}

// Register records the access level of route, replacing an earlier entry.
func (p *Policy) Register(route string, access authapi.Access) {
	p.routes[route] = access
}

// Access returns the level of route. Unknown routes are protected.
func (p *Policy) Access(route string) authapi.Access {
	if a, ok := p.routes[route]; ok {
		return a
	}
	return authapi.Protected
}

func (p *Policy) IsPublic(route string) bool {
	return p.Access(route) == authapi.Public
}
