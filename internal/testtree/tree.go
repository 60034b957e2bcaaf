// Package testtree holds the hierarchical view of a cargo test run:
// session root -> package -> test binary -> modules -> cases.
//
// Nodes live in a single arena slice and refer to their parent by index,
// so a Ref is a cheap value that can be handed to the selector builder.
package testtree

import (
	"strings"

	"ctp/internal/domain"
	"ctp/internal/selector"
)

// NodeType is the level of a node in the tree
type NodeType string

const (
	NodeTypeRoot    NodeType = "root"
	NodeTypePackage NodeType = "package"
	NodeTypeBinary  NodeType = "binary"
	NodeTypeModule  NodeType = "module"
	NodeTypeCase    NodeType = "case"
)

const (
	rootName      = "session"
	defaultBinary = "default"
	pathSeparator = "::"
)

type node struct {
	name     string
	label    string
	typ      NodeType
	pkg      string
	binary   string
	status   domain.CaseStatus
	parent   int
	children []int
}

// Tree is an arena of test tree nodes. The zero index is the root.
type Tree struct {
	nodes []node
	index map[string]int
}

// Build creates a tree from the cases of a run, preserving their order
func Build(cases []domain.CaseResult) *Tree {
	t := &Tree{index: make(map[string]int)}
	t.nodes = append(t.nodes, node{name: rootName, label: rootName, typ: NodeTypeRoot, parent: -1})

	for _, c := range cases {
		binary := c.Binary
		if binary == "" {
			binary = defaultBinary
		}
		pkg := t.child(0, NodeTypePackage, c.Package, c.Package, c.Package, "")
		parent := t.child(pkg, NodeTypeBinary, binary, binary, c.Package, binary)

		parts := []string{c.Name}
		if binary != domain.DocTestsBinary {
			parts = strings.Split(c.Name, pathSeparator)
		}
		for i := 1; i < len(parts); i++ {
			path := strings.Join(parts[:i], pathSeparator)
			parent = t.child(parent, NodeTypeModule, path, parts[i-1], c.Package, binary)
		}

		id := t.child(parent, NodeTypeCase, c.Name, parts[len(parts)-1], c.Package, binary)
		t.nodes[id].status = c.Status
	}
	return t
}

// child returns the existing child of parent with the given type and name, creating it if needed
func (t *Tree) child(parent int, typ NodeType, name, label, pkg, binary string) int {
	key := nodeKey(typ, pkg, binary, name)
	if id, ok := t.index[key]; ok {
		return id
	}
	id := len(t.nodes)
	t.nodes = append(t.nodes, node{
		name:   name,
		label:  label,
		typ:    typ,
		pkg:    pkg,
		binary: binary,
		parent: parent,
	})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	t.index[key] = id
	return id
}

func nodeKey(typ NodeType, pkg, binary, name string) string {
	switch typ {
	case NodeTypePackage:
		return string(typ) + "\x00" + name
	default:
		return string(typ) + "\x00" + pkg + "\x00" + binary + "\x00" + name
	}
}

// Root returns the session root
func (t *Tree) Root() Ref {
	return Ref{tree: t, id: 0}
}

// Len returns the number of nodes including the root
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given arena index
func (t *Tree) Node(id int) (Ref, bool) {
	if id < 0 || id >= len(t.nodes) {
		return Ref{}, false
	}
	return Ref{tree: t, id: id}, true
}

// Find returns every node whose name equals name, in tree order
func (t *Tree) Find(name string) []Ref {
	var found []Ref
	t.Walk(func(r Ref, depth int) bool {
		if depth > 0 && r.Name() == name {
			found = append(found, r)
		}
		return true
	})
	return found
}

// FindCase looks up a single case
func (t *Tree) FindCase(pkg, binary, name string) (Ref, bool) {
	if binary == "" {
		binary = defaultBinary
	}
	id, ok := t.index[nodeKey(NodeTypeCase, pkg, binary, name)]
	if !ok {
		return Ref{}, false
	}
	return Ref{tree: t, id: id}, true
}

// Cases returns all case nodes in tree order
func (t *Tree) Cases() []Ref {
	return t.collect(func(r Ref) bool { return r.Type() == NodeTypeCase })
}

// FailedCases returns the failed case nodes in tree order
func (t *Tree) FailedCases() []Ref {
	return t.collect(func(r Ref) bool {
		return r.Type() == NodeTypeCase && r.Status() == domain.CaseFailed
	})
}

// Packages returns the package names in the order they were first seen
func (t *Tree) Packages() []string {
	var pkgs []string
	for _, id := range t.nodes[0].children {
		pkgs = append(pkgs, t.nodes[id].name)
	}
	return pkgs
}

func (t *Tree) collect(keep func(Ref) bool) []Ref {
	var refs []Ref
	t.Walk(func(r Ref, _ int) bool {
		if keep(r) {
			refs = append(refs, r)
		}
		return true
	})
	return refs
}

// Walk visits nodes depth-first starting at the root. Returning false skips the node's children.
func (t *Tree) Walk(fn func(r Ref, depth int) bool) {
	t.walk(0, 0, fn)
}

func (t *Tree) walk(id, depth int, fn func(Ref, int) bool) {
	if !fn(Ref{tree: t, id: id}, depth) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, fn)
	}
}

// Ref is a handle to a node of a Tree
type Ref struct {
	tree *Tree
	id   int
}

var _ selector.Node = Ref{}

// ID returns the arena index of the node
func (r Ref) ID() int { return r.id }

// Name returns the node's filter name: the full module or case path, the package or binary name
func (r Ref) Name() string { return r.n().name }

// Label returns the last path segment, for display
func (r Ref) Label() string { return r.n().label }

func (r Ref) Type() NodeType  { return r.n().typ }
func (r Ref) Package() string { return r.n().pkg }
func (r Ref) Binary() string  { return r.n().binary }

// Kind maps the node type onto the selector's case/suite distinction
func (r Ref) Kind() selector.Kind {
	if r.n().typ == NodeTypeCase {
		return selector.KindCase
	}
	return selector.KindSuite
}

// Parent returns nil for the root
func (r Ref) Parent() selector.Node {
	p, ok := r.ParentRef()
	if !ok {
		return nil
	}
	return p
}

// ParentRef is Parent with the concrete type
func (r Ref) ParentRef() (Ref, bool) {
	p := r.n().parent
	if p < 0 {
		return Ref{}, false
	}
	return Ref{tree: r.tree, id: p}, true
}

// Children returns the node's children in insertion order
func (r Ref) Children() []Ref {
	ids := r.n().children
	refs := make([]Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, Ref{tree: r.tree, id: id})
	}
	return refs
}

// Depth is the number of parent hops to the root
func (r Ref) Depth() int {
	depth := 0
	for p := r.n().parent; p >= 0; p = r.tree.nodes[p].parent {
		depth++
	}
	return depth
}

// Status returns the case status, or for suites the aggregate of their cases:
// failed if any case failed, ok if any passed, ignored otherwise.
func (r Ref) Status() domain.CaseStatus {
	n := r.n()
	if n.typ == NodeTypeCase {
		return n.status
	}
	status := domain.CaseIgnored
	for _, c := range r.Children() {
		switch c.Status() {
		case domain.CaseFailed:
			return domain.CaseFailed
		case domain.CasePassed:
			status = domain.CasePassed
		}
	}
	return status
}

func (r Ref) n() *node {
	return &r.tree.nodes[r.id]
}
