// Package dispatch is the universal caller: one entry point that resolves a
// target URL, applies the effective timeout/retry/SSR config, runs matching
// interceptors, and executes either against the local route tree (server
// side) or over the network (client side). Successful SSR results are
// recorded in the current scope for hydration; on the client, a primed
// hydration cache short-circuits the first matching call.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lumodev/lumo/chain"
	"github.com/lumodev/lumo/config"
	"github.com/lumodev/lumo/hydrate"
	"github.com/lumodev/lumo/intercept"
	"github.com/lumodev/lumo/kit/colorlog"
	"github.com/lumodev/lumo/metrics"
	"github.com/lumodev/lumo/response"
	"github.com/lumodev/lumo/router"
	"github.com/lumodev/lumo/scope"
)

// Registry answers local route lookups. *router.Node satisfies it directly;
// use TreeRegistry to dispatch against a cached tree.
type Registry interface {
	Match(path, method string) *router.Match
}

// RegistryFunc adapts a function to Registry.
type RegistryFunc func(path, method string) *router.Match

func (f RegistryFunc) Match(path, method string) *router.Match {
	return f(path, method)
}

// TreeRegistry resolves routes through a TreeCache, so watcher-driven
// invalidation is picked up between calls. Build failures surface as a
// missed match; the cache logs the underlying error.
func TreeRegistry(tc *router.TreeCache, key string) Registry {
	return RegistryFunc(func(path, method string) *router.Match {
		m, err := tc.Match(key, path, method)
		if err != nil {
			return nil
		}
		return m
	})
}

// Options configures a Client. Zero-value fields fall back to sensible
// process defaults.
type Options struct {
	Config       *config.Config
	Registry     Registry
	HTTPClient   *http.Client
	ClientCache  *hydrate.ClientCache
	Interceptors *intercept.Registry
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

type Client struct {
	cfg      config.Config
	registry Registry
	http     *http.Client
	cache    *hydrate.ClientCache
	global   *intercept.Registry
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		registry: opts.Registry,
		http:     opts.HTTPClient,
		cache:    opts.ClientCache,
		global:   opts.Interceptors,
		metrics:  opts.Metrics,
		log:      opts.Logger,
	}
	if opts.Config != nil {
		c.cfg = *opts.Config
	} else {
		c.cfg = config.Default()
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.global == nil {
		c.global = intercept.NewRegistry()
	}
	if c.log == nil {
		c.log = colorlog.New("dispatch")
	}
	return c
}

// CallOptions overrides per-call behavior. Nil pointer fields fall through
// to the scope chain and then the process config.
type CallOptions struct {
	Method     string
	Header     http.Header
	Body       []byte
	Timeout    *time.Duration
	Retries    *int
	RetryDelay *time.Duration
	SSR        *bool

	// Location is the current document location, used to resolve
	// site-relative ("./...") targets.
	Location *url.URL
}

// effective is the fully resolved per-call config: call options beat scope
// overrides beat process defaults.
type effective struct {
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	ssr        bool
	origin     string
}

func (c *Client) resolveEffective(ctx context.Context, opts *CallOptions) effective {
	eff := effective{
		timeout:    c.cfg.Timeout,
		retries:    c.cfg.Retries,
		retryDelay: c.cfg.RetryDelay,
		ssr:        c.cfg.SSREnabled,
		origin:     c.cfg.Origin,
	}
	if s := scope.FromContext(ctx); s != nil {
		if v, ok := s.Timeout(); ok {
			eff.timeout = v
		}
		if v, ok := s.Retries(); ok {
			eff.retries = v
		}
		if v, ok := s.RetryDelay(); ok {
			eff.retryDelay = v
		}
		if v, ok := s.SSREnabled(); ok {
			eff.ssr = v
		}
		if o := s.Origin(); o != "" {
			eff.origin = o
		}
	}
	if opts.Timeout != nil {
		eff.timeout = *opts.Timeout
	}
	if opts.Retries != nil {
		eff.retries = *opts.Retries
	}
	if opts.RetryDelay != nil {
		eff.retryDelay = *opts.RetryDelay
	}
	if opts.SSR != nil {
		eff.ssr = *opts.SSR
	}
	if eff.retries < 0 {
		eff.retries = 0
	}
	return eff
}

// Call dispatches target. Accepted targets: a string (resolved per
// Classify), a *url.URL or url.URL (used as-is), or an Endpoint.
//
// Retries apply uniformly regardless of method. Callers invoking
// non-idempotent endpoints should pass Retries: 0.
func (c *Client) Call(ctx context.Context, target any, opts *CallOptions) (*response.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts == nil {
		opts = &CallOptions{}
	}
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	eff := c.resolveEffective(ctx, opts)

	u, err := c.resolveURL(target, &method, eff, opts)
	if err != nil {
		return nil, err
	}

	// Client side: a hydration payload carried over from the server render
	// satisfies the first matching call without touching the network.
	if !eff.ssr && c.cache != nil && method == http.MethodGet {
		base := hydrate.BaseResourceID(u.Path, u.RawQuery)
		if data, ok := c.cache.Consume(base); ok {
			c.metrics.ObserveHydrationHit()
			return response.FromData(data), nil
		}
	}

	var hydrationID string
	if eff.ssr {
		hydrationID = hydrate.ResourceID(ctx, u.Path, u.RawQuery)
	}

	entries := c.interceptorsFor(ctx, u)
	final := c.finalNext(eff)
	pipeline := intercept.Compose(entries, final)

	var res *response.Response
	var lastErr error
	for attempt := 0; attempt <= eff.retries; attempt++ {
		if attempt > 0 {
			c.metrics.ObserveRetry()
			if err := sleepCtx(ctx, eff.retryDelay); err != nil {
				return nil, err
			}
		}
		res, lastErr = c.attempt(ctx, method, u, opts, eff, pipeline)
		if lastErr == nil {
			break
		}
		if !retryable(lastErr) {
			return nil, lastErr
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
		c.log.Debug("dispatch attempt failed",
			"url", u.String(), "attempt", attempt+1, "error", lastErr)
	}
	if lastErr != nil {
		return nil, lastErr
	}

	if eff.ssr {
		data, err := res.Data()
		if err != nil {
			// Non-JSON payloads render fine but have nothing to hydrate.
			c.log.Debug("skipping hydration for non-data response", "url", u.String())
		} else {
			hydrate.Inject(ctx, hydrationID, data)
		}
	}

	return res, nil
}

func (c *Client) resolveURL(target any, method *string, eff effective, opts *CallOptions) (*url.URL, error) {
	switch t := target.(type) {
	case string:
		return ResolveTarget(t, eff.origin, opts.Location)
	case *url.URL:
		return t, nil
	case url.URL:
		return &t, nil
	case Endpoint:
		if t.Method != "" && opts.Method == "" {
			*method = strings.ToUpper(t.Method)
		}
		return ResolveTarget(t.Target, eff.origin, opts.Location)
	default:
		return nil, ErrUnsupportedTarget
	}
}

func (c *Client) interceptorsFor(ctx context.Context, u *url.URL) []*intercept.Entry {
	reg := c.global
	if s := scope.FromContext(ctx); s != nil {
		reg = s.Interceptors
	}
	return reg.ForURL(u)
}

// finalNext returns the terminal pipeline stage: local route dispatch when
// server-rendering, the HTTP client otherwise.
func (c *Client) finalNext(eff effective) intercept.Next {
	if eff.ssr {
		return c.dispatchLocal
	}
	return c.dispatchNetwork
}

func (c *Client) attempt(ctx context.Context, method string, u *url.URL, opts *CallOptions, eff effective, pipeline intercept.Next) (*response.Response, error) {
	actx := ctx
	cancel := func() {}
	if eff.timeout > 0 {
		actx, cancel = context.WithTimeout(ctx, eff.timeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(actx, method, u.String(), bytes.NewReader(opts.Body))
	if err != nil {
		return nil, err
	}
	for k, vs := range opts.Header {
		req.Header[k] = append([]string(nil), vs...)
	}

	mode := "network"
	if eff.ssr {
		mode = "local"
	}

	start := time.Now()
	res, err := pipeline(req)
	if err != nil {
		if deadlineHit(actx, ctx, err) {
			c.metrics.ObserveTimeout()
			c.metrics.ObserveDispatch(mode, "timeout", time.Since(start))
			return nil, timeoutError(u.String())
		}
		c.metrics.ObserveDispatch(mode, "error", time.Since(start))
		return nil, err
	}
	if !res.OK() {
		c.metrics.ObserveDispatch(mode, "error", time.Since(start))
		return nil, upstreamError(res, u.String())
	}
	c.metrics.ObserveDispatch(mode, "ok", time.Since(start))
	return res, nil
}

// deadlineHit reports whether err was caused by the per-attempt deadline
// rather than by the caller canceling the whole call.
func deadlineHit(attemptCtx, parentCtx context.Context, err error) bool {
	if parentCtx.Err() != nil {
		return false
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) dispatchLocal(req *http.Request) (*response.Response, error) {
	if c.registry == nil {
		return nil, ErrNoRegistry
	}
	m := c.registry.Match(req.URL.Path, req.Method)
	if m == nil {
		return nil, notFoundError(req.URL.String())
	}
	res, err := chain.Run(chain.NewCtx(req, m.Params), m.Middleware, m.Handler)
	if err != nil {
		return nil, err
	}
	if cerr := req.Context().Err(); cerr != nil {
		return nil, cerr
	}
	return res, nil
}

func (c *Client) dispatchNetwork(req *http.Request) (*response.Response, error) {
	raw, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	return response.Wrap(raw), nil
}

// retryable excludes failures that a retry cannot fix: configuration gaps,
// missing routes, and caller cancellation.
func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrNoRegistry),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnsupportedTarget),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
