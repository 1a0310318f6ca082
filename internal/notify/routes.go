package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"gopkg.in/yaml.v2"
)

// ErrUnknownTarget is returned when a route references a publisher that was
// never configured.
var ErrUnknownTarget = errors.New("unknown notification target")

// Route binds a region to the publishers that should receive its changes.
type Route struct {
	Region  string   `yaml:"region"`
	Targets []string `yaml:"targets"`
}

// Routes is the decoded form of a notifications.yaml file.
//
//	notifications:
//	  - region: dept-a
//	    targets: [hub, audit]
//	default: [audit]
type Routes struct {
	Notifications []Route  `yaml:"notifications"`
	Default       []string `yaml:"default"`
}

// LoadRoutes reads and parses a routes file.
func LoadRoutes(path string) (*Routes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routes load failed (%s): %w", path, err)
	}
	routes, err := ParseRoutes(data)
	if err != nil {
		return nil, fmt.Errorf("routes parse failed (%s): %w", path, err)
	}
	return routes, nil
}

// ParseRoutes decodes routes from YAML.
func ParseRoutes(data []byte) (*Routes, error) {
	var routes Routes
	if err := yaml.UnmarshalStrict(data, &routes); err != nil {
		return nil, err
	}
	for i, r := range routes.Notifications {
		if strings.TrimSpace(r.Region) == "" {
			return nil, fmt.Errorf("notifications[%d]: region is required", i)
		}
	}
	return &routes, nil
}

// Lookup returns the targets for region. Region names match case-insensitively
// and, when several routes match, the last one wins.
func (r *Routes) Lookup(region string) ([]string, bool) {
	var (
		targets []string
		found   bool
	)
	for _, route := range r.Notifications {
		if strings.EqualFold(route.Region, region) {
			targets = route.Targets
			found = true
		}
	}
	return targets, found
}

// Router is a Publisher that forwards each notification to the publishers
// routed for its source region.
type Router struct {
	routes     *Routes
	publishers map[string]Publisher
}

// NewRouter validates that every routed target exists in publishers.
func NewRouter(routes *Routes, publishers map[string]Publisher) (*Router, error) {
	if routes == nil {
		routes = &Routes{}
	}
	check := func(where string, targets []string) error {
		for _, name := range targets {
			if _, ok := publishers[name]; !ok {
				return fmt.Errorf("%s: %w %q", where, ErrUnknownTarget, name)
			}
		}
		return nil
	}
	for i, route := range routes.Notifications {
		if err := check(fmt.Sprintf("notifications[%d]", i), route.Targets); err != nil {
			return nil, err
		}
	}
	if err := check("default", routes.Default); err != nil {
		return nil, err
	}
	return &Router{routes: routes, publishers: publishers}, nil
}

// Targets resolves the publisher names for region. Unrouted regions use the
// default targets, or every publisher when no default is configured.
func (r *Router) Targets(region string) []string {
	if targets, ok := r.routes.Lookup(region); ok {
		return targets
	}
	if len(r.routes.Default) > 0 {
		return r.routes.Default
	}
	all := make([]string, 0, len(r.publishers))
	for name := range r.publishers {
		all = append(all, name)
	}
	sort.Strings(all)
	return all
}

// Publish implements Publisher.
func (r *Router) Publish(ctx context.Context, n Notification) error {
	targets := r.Targets(n.Source)
	ctxlog.FromContext(ctx).Debug("Routing notification.", "source", n.Source, "targets", targets)

	fan := NewFanout()
	for _, name := range targets {
		fan.Add(name, r.publishers[name])
	}
	return fan.Publish(ctx, n)
}
