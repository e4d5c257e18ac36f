package lumo

import (
	"github.com/lumodev/lumo/chain"
	"github.com/lumodev/lumo/config"
	"github.com/lumodev/lumo/dispatch"
	"github.com/lumodev/lumo/hydrate"
	"github.com/lumodev/lumo/intercept"
	"github.com/lumodev/lumo/response"
	"github.com/lumodev/lumo/router"
	"github.com/lumodev/lumo/scope"
)

// Type aliases for public API
type (
	Config       = config.Config
	Response     = response.Response
	Result       = chain.Result
	Handler      = chain.Handler
	Middleware   = chain.Middleware
	Ctx          = chain.Ctx
	Params       = chain.Params
	Match        = router.Match
	Node         = router.Node
	Module       = router.Module
	Scope        = scope.Scope
	ScopeConfig  = scope.Config
	Client       = dispatch.Client
	Options      = dispatch.Options
	CallOptions  = dispatch.CallOptions
	Endpoint     = dispatch.Endpoint
	Endpoints    = dispatch.Endpoints
	StatusError  = dispatch.StatusError
	Interceptors = intercept.Registry
	HydrationMap = hydrate.DataMap
)

// Re-exported functions
var (
	LoadConfig     = config.Load
	MustLoadConfig = config.MustLoad
	DefaultConfig  = config.Default
	NewScope       = scope.New
	ScopeContext   = scope.Context
	ScopeFromCtx   = scope.FromContext
	RunInScope     = scope.Run
	NewClient      = dispatch.NewClient
	TreeRegistry   = dispatch.TreeRegistry
	NewBuilder     = router.NewBuilder
	NewManifest    = router.NewManifest
	NewTreeCache   = router.NewTreeCache
	NewWatcher     = router.NewWatcher
	NewModule      = router.NewModule
)
