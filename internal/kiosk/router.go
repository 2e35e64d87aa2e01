package kiosk

import (
	"context"
	"sort"
	"strings"
)

// command handles one dashboard command. It returns true when the session
// is over and the kiosk should go back to the login prompt.
type command func(ctx context.Context, d *dashboard) (bool, error)

// router maps dashboard commands to their handlers.
type router struct {
	routes map[string]command
}

// newRouter sets up the dashboard commands.
func newRouter() *router {
	r := &router{routes: make(map[string]command)}

	r.handle(startLunch, "lunch", "l")
	r.handle(endLunch, "back", "b")
	r.handle(clockOut, "out", "o")
	r.handle(showStatus, "status", "s")
	r.handle(logout, "logout", "q")
	r.handle(help, "help", "?")

	return r
}

func (r *router) handle(c command, names ...string) {
	for _, n := range names {
		r.routes[n] = c
	}
}

func (r *router) lookup(line string) (command, bool) {
	c, ok := r.routes[strings.ToLower(strings.TrimSpace(line))]
	return c, ok
}

func (r *router) names() []string {
	out := make([]string, 0, len(r.routes))
	for n := range r.routes {
		if len(n) > 1 {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
