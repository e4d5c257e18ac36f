// Package scope provides per-request isolated state: interceptor
// registrations, collected SSR responses, and config overrides. Exactly one
// scope is current for any point of execution; propagation rides on
// context.Context, so two overlapping requests on the same process never
// observe each other's state. Scopes nest: a child inherits config values
// as defaults but owns independent interceptors and an independent
// response map.
package scope

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lumodev/lumo/intercept"
)

// Config holds per-scope overrides. Nil fields fall through to the parent
// scope and finally to the process config.
type Config struct {
	Timeout    *time.Duration
	Retries    *int
	RetryDelay *time.Duration
	SSREnabled *bool
}

type Scope struct {
	parent *Scope
	cfg    Config
	origin string
	id     string

	Interceptors *intercept.Registry

	mu        sync.Mutex
	counter   int
	responses map[string]any

	pending *errgroup.Group
}

func New(cfg Config) *Scope {
	return &Scope{
		cfg:          cfg,
		id:           newScopeID(),
		Interceptors: intercept.NewRegistry(),
		responses:    make(map[string]any),
		pending:      &errgroup.Group{},
	}
}

// Child derives a scope that inherits s's config as defaults. Interceptors
// and collected responses are NOT inherited: isolation, not inheritance,
// for collected data.
func (s *Scope) Child(cfg Config) *Scope {
	child := New(cfg)
	child.parent = s
	child.origin = s.origin
	return child
}

func newScopeID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "scope-fallback"
	}
	return hex.EncodeToString(b[:])
}

// ID is an opaque per-scope identifier.
func (s *Scope) ID() string {
	return s.id
}

func (s *Scope) SetOrigin(origin string) {
	s.origin = origin
}

// Origin walks up the scope chain for the nearest configured origin.
func (s *Scope) Origin() string {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.origin != "" {
			return cur.origin
		}
	}
	return ""
}

/////// CONFIG RESOLUTION (child values win, parents are defaults)

func (s *Scope) Timeout() (time.Duration, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.cfg.Timeout != nil {
			return *cur.cfg.Timeout, true
		}
	}
	return 0, false
}

func (s *Scope) Retries() (int, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.cfg.Retries != nil {
			return *cur.cfg.Retries, true
		}
	}
	return 0, false
}

func (s *Scope) RetryDelay() (time.Duration, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.cfg.RetryDelay != nil {
			return *cur.cfg.RetryDelay, true
		}
	}
	return 0, false
}

func (s *Scope) SSREnabled() (bool, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.cfg.SSREnabled != nil {
			return *cur.cfg.SSREnabled, true
		}
	}
	return false, false
}

/////// SSR STATE

// NextOrdinal increments and returns the per-scope resource counter, used
// to disambiguate repeated fetches of the same URL within one request.
func (s *Scope) NextOrdinal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.counter
}

// PutResponse records a fetched payload under id for later hydration.
func (s *Scope) PutResponse(id string, data any) {
	s.mu.Lock()
	s.responses[id] = data
	s.mu.Unlock()
}

// Responses snapshots the collected payloads.
func (s *Scope) Responses() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

/////// PENDING WORK

// Go tracks fn as in-flight work owned by this scope. Wait (and Run) block
// until all tracked work settles, so SSR snapshots see every response.
func (s *Scope) Go(fn func() error) {
	s.pending.Go(fn)
}

// Wait blocks until all work started with Go has settled and returns the
// first error.
func (s *Scope) Wait() error {
	return s.pending.Wait()
}

/////// CONTEXT PLUMBING

type ctxKey struct{}

// Context returns a context carrying s as the current scope.
func Context(parent context.Context, s *Scope) context.Context {
	return context.WithValue(parent, ctxKey{}, s)
}

// FromContext returns the current scope, or nil when none is active.
func FromContext(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ctxKey{}).(*Scope)
	return s
}

// Run makes s current for the full duration of fn, including any work fn
// spawns through the derived context, then waits for pending scope work.
// The previous scope (possibly none) is untouched in the parent context,
// so nesting is stack-like and concurrent Runs cannot leak into each other.
func Run(ctx context.Context, s *Scope, fn func(ctx context.Context) error) error {
	err := fn(Context(ctx, s))
	if werr := s.Wait(); err == nil {
		err = werr
	}
	return err
}
