package router

import (
	"github.com/lumodev/lumo/chain"
)

// Node is one level of the route tree. Children are keyed by literal
// segment text (including bracket and group-paren syntax) and iterated in
// insertion order. Trees are read-only once built; rebuilds produce a new
// tree that is swapped in atomically by the cache.
type Node struct {
	Segment    string
	ParamName  string
	IsDynamic  bool
	IsCatchAll bool

	// IsGroup marks a transparent node: it contributes zero path segments
	// to matching but may still own handlers and middleware.
	IsGroup bool

	children   map[string]*Node
	childOrder []string

	handlers   map[string]chain.Handler
	middleware []chain.Middleware
}

func newNode(literal string) *Node {
	seg := ParseSegment(literal)
	return &Node{
		Segment:    seg.Normalized,
		ParamName:  seg.ParamName,
		IsDynamic:  seg.IsDynamic,
		IsCatchAll: seg.IsCatchAll,
		IsGroup:    isGroupName(literal),
	}
}

// Child returns the child keyed by literal segment text.
func (n *Node) Child(literal string) *Node {
	return n.children[literal]
}

// getOrCreateChild returns the existing child for literal or inserts a new
// one, preserving insertion order.
func (n *Node) getOrCreateChild(literal string) *Node {
	if child, ok := n.children[literal]; ok {
		return child
	}
	child := newNode(literal)
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	n.children[literal] = child
	n.childOrder = append(n.childOrder, literal)
	return child
}

// orderedChildren iterates children in insertion order.
func (n *Node) orderedChildren() []*Node {
	out := make([]*Node, 0, len(n.childOrder))
	for _, key := range n.childOrder {
		out = append(out, n.children[key])
	}
	return out
}

// Handler returns the handler for method (canonical upper-case), if any.
func (n *Node) Handler(method string) chain.Handler {
	return n.handlers[method]
}

// Middleware returns the node's own middleware list.
func (n *Node) Middleware() []chain.Middleware {
	return n.middleware
}

func (n *Node) setHandler(method string, h chain.Handler) {
	if n.handlers == nil {
		n.handlers = make(map[string]chain.Handler)
	}
	n.handlers[method] = h
}
