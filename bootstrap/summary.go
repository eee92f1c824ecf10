package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/whisper-gateway/component"
)

// Summary prints what the process started: infrastructure reported by
// Describable components, routes reported by RouteProviders, and live
// component health.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary that writes to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) { s.out = w }

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// Render writes the summary for the components in registry.
func (s *Summary) Render(ctx context.Context, registry *component.Registry) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if registry != nil {
		var infra []component.Description
		var routes []component.Route
		for _, c := range registry.All() {
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				if desc.Name == "" {
					desc.Name = c.Name()
				}
				infra = append(infra, desc)
			}
			if rp, ok := c.(component.RouteProvider); ok {
				routes = append(routes, rp.Routes()...)
			}
		}

		if len(infra) > 0 {
			b.WriteString("\nInfrastructure\n")
			for i, d := range infra {
				fmt.Fprintf(&b, "   %s %s [%s]: %s\n", treePrefix(i, len(infra)), d.Name, d.Type, d.Details)
			}
		}
		if len(routes) > 0 {
			fmt.Fprintf(&b, "\nRoutes (%d)\n", len(routes))
			for i, r := range routes {
				fmt.Fprintf(&b, "   %s %-7s %s -> %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
			}
		}

		health := registry.HealthAll(ctx)
		if len(health) > 0 {
			fmt.Fprintf(&b, "\nHealth (%s)\n", component.Overall(health))
			for i, h := range health {
				line := fmt.Sprintf("   %s %s %s: %s", treePrefix(i, len(health)), healthMark(h.Status), h.Name, h.Status)
				if h.Message != "" {
					line += " - " + h.Message
				}
				b.WriteString(line + "\n")
			}
		}
	}
	b.WriteString("\n")
	_, _ = io.WriteString(s.out, b.String())
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthMark(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
