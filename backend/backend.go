package backend

import (
	"context"
	"fmt"

	"github.com/kbukum/whisper-gateway/provider"
	"github.com/kbukum/whisper-gateway/transcription"
)

// Transport is a connection to one inference worker. Implementations
// block until the worker answers and report failures as AppErrors where
// they can tell the kind; anything else is treated as unavailability.
type Transport interface {
	provider.Provider
	// Ping performs the lightest round trip the worker supports.
	Ping(ctx context.Context) error
	Transcribe(ctx context.Context, req *transcription.TranscriptionRequest) (*transcription.Result, error)
	Translate(ctx context.Context, req *transcription.TranslationRequest) (*transcription.Result, error)
	Close() error
}

// Handle is the dispatcher's view of a backend.
//
// Probe registers load against the backend and returns without waiting
// for the round trip. Transcribe and Translate fail with INVALID_INPUT,
// OVERLOADED or BACKEND_UNAVAILABLE AppErrors.
type Handle interface {
	provider.Provider
	Probe(ctx context.Context) error
	Transcribe(ctx context.Context, req *transcription.TranscriptionRequest) (*transcription.Result, error)
	Translate(ctx context.Context, req *transcription.TranslationRequest) (*transcription.Result, error)
}

// Role is the position of a backend in the failover order.
type Role int

const (
	RolePreferred Role = iota
	RoleBackup
)

var roleNames = [...]string{
	RolePreferred: "preferred",
	RoleBackup:    "backup",
}

// Roles lists every role in failover order.
var Roles = []Role{RolePreferred, RoleBackup}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return "unknown"
	}
	return roleNames[r]
}

// ParseRole returns the role named s.
func ParseRole(s string) (Role, error) {
	for i, name := range roleNames {
		if name == s {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown backend role %q", s)
}

// Pool holds one handle per role.
type Pool struct {
	handles [len(roleNames)]Handle
}

// NewPool builds a pool from the preferred and backup handles.
func NewPool(preferred, backup Handle) *Pool {
	p := &Pool{}
	p.handles[RolePreferred] = preferred
	p.handles[RoleBackup] = backup
	return p
}

// Get returns the handle serving role.
func (p *Pool) Get(role Role) Handle {
	return p.handles[role]
}

// Preferred returns the handle tried first.
func (p *Pool) Preferred() Handle { return p.handles[RolePreferred] }

// Backup returns the handle used after the preferred one gives up.
func (p *Pool) Backup() Handle { return p.handles[RoleBackup] }
