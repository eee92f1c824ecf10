package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses from best to worst.
var severity = map[HealthStatus]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Overall returns the worst status in hs, or StatusHealthy when hs is
// empty. Unknown statuses count as unhealthy.
func Overall(hs []Health) HealthStatus {
	worst := StatusHealthy
	for _, h := range hs {
		s, ok := severity[h.Status]
		if !ok {
			return StatusUnhealthy
		}
		if s > severity[worst] {
			worst = h.Status
		}
	}
	return worst
}

// Component is a lifecycle-managed part of the service.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string
	// Start brings the component up. It must return once the component
	// is usable; long-running work continues in the background.
	Start(ctx context.Context) error
	// Stop releases the component's resources.
	Stop(ctx context.Context) error
	// Health reports the current state of the component.
	Health(ctx context.Context) Health
}

// Description is the startup-summary line of a component.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string
	// Type categorizes the component: "server", "backend", "telemetry".
	Type string
	// Details is a one-liner such as "0.0.0.0:8080" or
	// "preferred=gpu-1 (whisper) backup=cpu-1 (nats)".
	Details string
	// Port is the primary port, 0 if not applicable.
	Port int
}

// Describable is implemented by components that appear in the startup summary.
type Describable interface {
	Describe() Description
}

// Route is a single HTTP route for the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by server components to report their routes.
type RouteProvider interface {
	Routes() []Route
}
