package router

import (
	"github.com/lumodev/lumo/kit/safecache"
)

// TreeCache builds route trees once per scan key and serves them until an
// explicit invalidation (typically a filesystem-watch event). Rebuilds
// happen off to the side; concurrent matchers see either the fully-old or
// fully-new tree, never a partial build.
type TreeCache struct {
	builder *Builder
	trees   *safecache.Map[string, *Node]
}

func NewTreeCache(builder *Builder) *TreeCache {
	return &TreeCache{
		builder: builder,
		trees:   safecache.NewMap[string, *Node](),
	}
}

// Get returns the cached tree for key, building it on first use. The key
// is also the source root passed to the builder.
func (tc *TreeCache) Get(key string) (*Node, error) {
	return tc.trees.GetOrBuild(key, func() (*Node, error) {
		return tc.builder.Build(key)
	})
}

// Invalidate drops the tree for key. There is no implicit re-scan; the
// next Get rebuilds.
func (tc *TreeCache) Invalidate(key string) {
	tc.trees.Invalidate(key)
}

// Match is a convenience lookup against the cached tree for key.
func (tc *TreeCache) Match(key, path, method string) (*Match, error) {
	tree, err := tc.Get(key)
	if err != nil {
		return nil, err
	}
	return tree.Match(path, method), nil
}
