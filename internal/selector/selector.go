// Package selector encodes a selection of test tree nodes into the filter
// string a rerun carries. The empty string selects the whole session.
package selector

import "strings"

// Everything is the selector that reruns the whole session
const Everything = ""

// Kind distinguishes leaves from internal nodes of a test tree
type Kind int

const (
	// KindCase is a single test
	KindCase Kind = iota
	// KindSuite groups cases and other suites
	KindSuite
)

func (k Kind) String() string {
	switch k {
	case KindCase:
		return "case"
	case KindSuite:
		return "suite"
	default:
		return "unknown"
	}
}

// Node is the read-only view of a test tree node the builder needs.
// Parent returns nil for the root.
type Node interface {
	Name() string
	Kind() Kind
	Parent() Node
}

// Token returns the selector part contributed by a single node.
// Suites one or two levels below the root select (almost) everything and
// contribute an empty token.
func Token(n Node) string {
	switch n.Kind() {
	case KindCase:
		return n.Name()
	case KindSuite:
		parent := n.Parent()
		if isRoot(parent) || isRoot(parent.Parent()) {
			return Everything
		}
		return n.Name()
	}
	return Everything
}

// isRoot also treats a missing node as the root, so detached suites rerun everything
func isRoot(n Node) bool {
	return n == nil || n.Parent() == nil
}

// Build joins the tokens of nodes, in order, with single spaces.
// Empty tokens are dropped; an empty or all-empty selection yields Everything.
func Build(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		token := strings.TrimSpace(Token(n))
		if token == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(token)
	}
	return sb.String()
}

// Split turns a selector back into its tokens. Everything yields no tokens.
func Split(sel string) []string {
	return strings.Fields(sel)
}
