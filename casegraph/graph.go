// Package casegraph models the guided workflow a case follows after
// classification. Each case type has a fixed directed graph of steps; the
// engine asks for the current step's information, judges whether the user
// answered it, and advances along the first outgoing edge.
package casegraph

import "fmt"

// Reserved node names shared by every case graph.
const (
	NodeStart  = "start"
	NodeReport = "generate_report"
)

// Node is a single workflow step: a name and the information the step
// needs from the user.
type Node struct {
	Name        string
	Requirement string
}

// Graph is an immutable workflow graph. Successors keep insertion order;
// traversal always follows the first outgoing edge.
type Graph struct {
	caseType string
	nodes    map[string]Node
	next     map[string][]string
}

// CaseType returns the case type this graph handles.
func (g *Graph) CaseType() string { return g.caseType }

// Node looks up a step by name.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Requirement returns the requirement text of the named step, or "" when
// the step does not exist.
func (g *Graph) Requirement(name string) string {
	return g.nodes[name].Requirement
}

// Successor returns the first outgoing edge of the named step.
func (g *Graph) Successor(name string) (string, bool) {
	next := g.next[name]
	if len(next) == 0 {
		return "", false
	}
	return next[0], true
}

// Len returns the number of steps in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Builder assembles a Graph. Construction panics on inconsistent
// definitions since graphs are package-level constants.
type Builder struct {
	graph *Graph
}

// NewBuilder creates a builder for the given case type.
func NewBuilder(caseType string) *Builder {
	return &Builder{graph: &Graph{
		caseType: caseType,
		nodes:    make(map[string]Node),
		next:     make(map[string][]string),
	}}
}

// AddNode registers a workflow step.
func (b *Builder) AddNode(name, requirement string) *Builder {
	if name == "" {
		panic("casegraph: node name cannot be empty")
	}
	if _, exists := b.graph.nodes[name]; exists {
		panic(fmt.Sprintf("casegraph: node %s already exists", name))
	}
	b.graph.nodes[name] = Node{Name: name, Requirement: requirement}
	return b
}

// AddEdge connects two registered steps.
func (b *Builder) AddEdge(from, to string) *Builder {
	if _, ok := b.graph.nodes[from]; !ok {
		panic(fmt.Sprintf("casegraph: node %s not found", from))
	}
	if _, ok := b.graph.nodes[to]; !ok {
		panic(fmt.Sprintf("casegraph: node %s not found", to))
	}
	b.graph.next[from] = append(b.graph.next[from], to)
	return b
}

// Build validates the graph and returns it. Every graph must contain a
// start node.
func (b *Builder) Build() *Graph {
	if _, ok := b.graph.nodes[NodeStart]; !ok {
		panic(fmt.Sprintf("casegraph: graph for %s has no %s node", b.graph.caseType, NodeStart))
	}
	return b.graph
}
