package router

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/lumodev/lumo/chain"
	"github.com/lumodev/lumo/kit/colorlog"
)

var buildLog = colorlog.New("router")

// Module is one loaded route-definition unit: a handler file exposes
// per-method handlers keyed by lower-case export name, a middleware file
// exposes a middleware list.
type Module interface {
	Handlers() map[string]chain.Handler
	Middleware() []chain.Middleware
}

// Recognized method-name exports in a handler module. "del" is accepted as
// an alias for "delete".
var methodExports = map[string]string{
	"get":    http.MethodGet,
	"post":   http.MethodPost,
	"put":    http.MethodPut,
	"patch":  http.MethodPatch,
	"delete": http.MethodDelete,
	"del":    http.MethodDelete,
}

// Reserved file base names in a route source.
const (
	middlewareFileBase = "middleware"
	routeFileBase      = "route"
)

type DirEntry struct {
	Name  string
	IsDir bool
}

// Source is a directory-like route-definition listing. LoadModule may fail
// per entry; the builder logs and skips rather than aborting the scan.
type Source interface {
	ReadDir(dir string) ([]DirEntry, error)
	LoadModule(modulePath string) (Module, error)
}

type Builder struct {
	src Source
	log *slog.Logger
}

func NewBuilder(src Source, logger ...*slog.Logger) *Builder {
	log := buildLog
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	}
	return &Builder{src: src, log: log}
}

// Build walks the source from root and produces the route tree. A module
// that fails to load leaves its node's handlers/middleware empty; one
// broken route never fails the whole build.
func (b *Builder) Build(root string) (*Node, error) {
	tree := &Node{}
	if err := b.scanDir(root, tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func (b *Builder) scanDir(dir string, node *Node) error {
	entries, err := b.src.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("router: read dir %q: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir {
			if node.IsCatchAll {
				b.log.Warn("Ignoring route below a catch-all segment", "dir", path.Join(dir, entry.Name))
				continue
			}
			child := node.getOrCreateChild(entry.Name)
			if err := b.scanDir(path.Join(dir, entry.Name), child); err != nil {
				return err
			}
			continue
		}
		b.scanFile(dir, entry.Name, node)
	}
	return nil
}

func (b *Builder) scanFile(dir, name string, node *Node) {
	modulePath := path.Join(dir, name)
	base := strings.TrimSuffix(name, path.Ext(name))

	switch base {
	case middlewareFileBase:
		mod, err := b.src.LoadModule(modulePath)
		if err != nil {
			b.log.Error("Skipping middleware module", "path", modulePath, "error", err)
			return
		}
		node.middleware = append(node.middleware, mod.Middleware()...)

	case routeFileBase:
		b.attachHandlers(modulePath, node)

	default:
		if node.IsCatchAll {
			b.log.Warn("Ignoring route below a catch-all segment", "path", modulePath)
			return
		}
		child := node.getOrCreateChild(base)
		b.attachHandlers(modulePath, child)
	}
}

func (b *Builder) attachHandlers(modulePath string, node *Node) {
	mod, err := b.src.LoadModule(modulePath)
	if err != nil {
		b.log.Error("Skipping route module", "path", modulePath, "error", err)
		return
	}
	for export, h := range mod.Handlers() {
		method, recognized := methodExports[strings.ToLower(export)]
		if !recognized {
			b.log.Warn("Unrecognized method export", "path", modulePath, "export", export)
			continue
		}
		if h != nil {
			node.setHandler(method, h)
		}
	}
}

/////////////////////////////////////////////////////////////////////
/////// STATIC MODULES
/////////////////////////////////////////////////////////////////////

type staticModule struct {
	handlers   map[string]chain.Handler
	middleware []chain.Middleware
}

func (m *staticModule) Handlers() map[string]chain.Handler { return m.handlers }
func (m *staticModule) Middleware() []chain.Middleware     { return m.middleware }

// NewModule builds a Module from a method-export map ("get", "post", ...).
func NewModule(handlers map[string]chain.Handler, middleware ...chain.Middleware) Module {
	return &staticModule{handlers: handlers, middleware: middleware}
}

// MiddlewareModule builds a middleware-only Module.
func MiddlewareModule(middleware ...chain.Middleware) Module {
	return &staticModule{middleware: middleware}
}

/////////////////////////////////////////////////////////////////////
/////// SOURCES
/////////////////////////////////////////////////////////////////////

// Manifest is an in-memory Source. Keys are slash-joined pseudo-paths whose
// final element is the file base name, e.g. "users/[id]/route" or
// "(admin)/middleware".
type Manifest struct {
	files map[string]Module
	keys  []string
}

func NewManifest(files map[string]Module) *Manifest {
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, strings.Trim(k, "/"))
	}
	sort.Strings(keys)
	normalized := make(map[string]Module, len(files))
	for k, v := range files {
		normalized[strings.Trim(k, "/")] = v
	}
	return &Manifest{files: normalized, keys: keys}
}

func (m *Manifest) ReadDir(dir string) ([]DirEntry, error) {
	dir = strings.Trim(dir, "/")
	if dir == "." {
		dir = ""
	}
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	seen := make(map[string]bool)
	var out []DirEntry
	for _, key := range m.keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]
		first, _, hasMore := strings.Cut(rest, "/")
		if seen[first] {
			continue
		}
		seen[first] = true
		out = append(out, DirEntry{Name: first, IsDir: hasMore})
	}
	if len(out) == 0 && dir != "" {
		return nil, fmt.Errorf("router: manifest has no directory %q", dir)
	}
	return out, nil
}

func (m *Manifest) LoadModule(modulePath string) (Module, error) {
	mod, ok := m.files[strings.Trim(modulePath, "/")]
	if !ok {
		return nil, fmt.Errorf("router: manifest has no module %q", modulePath)
	}
	return mod, nil
}

// FSSource walks a real (or embedded) filesystem. Because Go route modules
// cannot be loaded from source at runtime, the host supplies a loader that
// maps file paths to Modules (typically a registration table populated at
// init time).
type FSSource struct {
	fsys fs.FS
	load func(modulePath string) (Module, error)
}

func NewFSSource(fsys fs.FS, load func(string) (Module, error)) *FSSource {
	return &FSSource{fsys: fsys, load: load}
}

func (s *FSSource) ReadDir(dir string) ([]DirEntry, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		return nil, err
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

func (s *FSSource) LoadModule(modulePath string) (Module, error) {
	return s.load(modulePath)
}
