package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeNode struct {
	name   string
	kind   Kind
	parent *fakeNode
}

func (f *fakeNode) Name() string { return f.name }
func (f *fakeNode) Kind() Kind   { return f.kind }
func (f *fakeNode) Parent() Node {
	if f.parent == nil {
		return nil
	}
	return f.parent
}

// root -> pkg -> bin -> module -> nested -> cases
func fixture() map[string]*fakeNode {
	root := &fakeNode{name: "session", kind: KindSuite}
	pkg := &fakeNode{name: "mycrate", kind: KindSuite, parent: root}
	bin := &fakeNode{name: "lib", kind: KindSuite, parent: pkg}
	module := &fakeNode{name: "parser", kind: KindSuite, parent: bin}
	nested := &fakeNode{name: "parser::tests", kind: KindSuite, parent: module}
	return map[string]*fakeNode{
		"root":   root,
		"pkg":    pkg,
		"bin":    bin,
		"module": module,
		"nested": nested,
		"case":   {name: "parser::tests::parses", kind: KindCase, parent: nested},
		"shallow": {name: "smoke", kind: KindCase, parent: pkg},
	}
}

func TestBuild(t *testing.T) {
	n := fixture()

	tests := []struct {
		name     string
		nodes    []Node
		expected string
	}{
		{name: "empty selection", nodes: nil, expected: ""},
		{name: "single case", nodes: []Node{&fakeNode{name: "test_foo", kind: KindCase, parent: n["bin"]}}, expected: "test_foo"},
		{name: "suite under root", nodes: []Node{n["pkg"]}, expected: ""},
		{name: "suite two levels below root", nodes: []Node{n["bin"]}, expected: ""},
		{name: "suite at depth three", nodes: []Node{n["module"]}, expected: "parser"},
		{name: "deeper suite", nodes: []Node{n["nested"]}, expected: "parser::tests"},
		{name: "case next to root adjacent suite", nodes: []Node{&fakeNode{name: "t1", kind: KindCase, parent: n["bin"]}, n["pkg"]}, expected: "t1"},
		{name: "root adjacent suite first", nodes: []Node{n["bin"], n["case"]}, expected: "parser::tests::parses"},
		{name: "all root adjacent suites", nodes: []Node{n["pkg"], n["bin"]}, expected: ""},
		{name: "order preserved", nodes: []Node{n["case"], n["module"], n["shallow"]}, expected: "parser::tests::parses parser smoke"},
		{name: "the root itself", nodes: []Node{n["root"]}, expected: ""},
		{name: "case directly under root", nodes: []Node{&fakeNode{name: "top", kind: KindCase, parent: n["root"]}}, expected: "top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Build(tt.nodes))
		})
	}
}

func TestBuild_TrimsNames(t *testing.T) {
	n := fixture()
	nodes := []Node{
		&fakeNode{name: "  spaced  ", kind: KindCase, parent: n["bin"]},
		&fakeNode{name: "   ", kind: KindCase, parent: n["bin"]},
		&fakeNode{name: "tail", kind: KindCase, parent: n["bin"]},
	}
	assert.Equal(t, "spaced tail", Build(nodes))
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	n := fixture()
	nodes := []Node{n["case"], n["pkg"], n["module"]}
	first := Build(nodes)
	second := Build(nodes)
	assert.Equal(t, first, second)
	assert.Equal(t, "parser::tests::parses", n["case"].name)
	assert.Same(t, n["nested"], n["case"].parent)
}

func TestToken(t *testing.T) {
	n := fixture()
	assert.Equal(t, Everything, Token(n["pkg"]))
	assert.Equal(t, Everything, Token(n["bin"]))
	assert.Equal(t, "parser", Token(n["module"]))
	assert.Equal(t, "smoke", Token(n["shallow"]))
}

func TestSplit(t *testing.T) {
	assert.Empty(t, Split(Everything))
	assert.Equal(t, []string{"a::b", "c"}, Split("a::b c"))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "case", KindCase.String())
	assert.Equal(t, "suite", KindSuite.String())
}
