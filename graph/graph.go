package graph

import (
	"fmt"

	"github.com/casualjim/dataflow"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Handle addresses a node within its Graph.
type Handle int

// Kind tells topic nodes from agent nodes.
type Kind int

const (
	KindTopic Kind = iota + 1
	KindAgent
)

func (k Kind) String() string {
	switch k {
	case KindTopic:
		return "topic"
	case KindAgent:
		return "agent"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Node is a vertex of the graph. Key is unique within the graph; Label is the
// display name and may repeat.
type Node struct {
	Key     string
	Label   string
	Kind    Kind
	Edges   []Handle
	Message *dataflow.Message
}

// Graph is a directed graph stored as an arena of nodes.
type Graph struct {
	nodes []Node
	index *orderedmap.OrderedMap[string, Handle]
}

func New() *Graph {
	return &Graph{
		index: orderedmap.New[string, Handle](),
	}
}

// Ensure returns the node registered under key, adding it first when absent.
// Label and kind are only used when the node is added.
func (g *Graph) Ensure(key, label string, kind Kind) Handle {
	if h, ok := g.index.Get(key); ok {
		return h
	}
	h := Handle(len(g.nodes))
	g.nodes = append(g.nodes, Node{Key: key, Label: label, Kind: kind})
	g.index.Set(key, h)
	return h
}

// Lookup returns the handle registered under key.
func (g *Graph) Lookup(key string) (Handle, bool) {
	return g.index.Get(key)
}

// AddEdge adds a directed edge. Repeated edges are kept.
func (g *Graph) AddEdge(from, to Handle) {
	g.mustHave(from)
	g.mustHave(to)
	g.nodes[from].Edges = append(g.nodes[from].Edges, to)
}

// SetMessage attaches the last seen message to a node.
func (g *Graph) SetMessage(h Handle, msg dataflow.Message) {
	g.mustHave(h)
	g.nodes[h].Message = &msg
}

// Node returns a copy of the node at h.
func (g *Graph) Node(h Handle) Node {
	g.mustHave(h)
	n := g.nodes[h]
	n.Edges = append([]Handle(nil), n.Edges...)
	return n
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i := range g.nodes {
		out[i] = g.Node(Handle(i))
	}
	return out
}

// Keys returns node keys in insertion order.
func (g *Graph) Keys() []string {
	keys := make([]string, 0, g.index.Len())
	for pair := g.index.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Edge is a directed edge between two nodes.
type Edge struct {
	From Handle
	To   Handle
}

// Edges returns every edge, grouped by source node in insertion order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for i, n := range g.nodes {
		for _, to := range n.Edges {
			edges = append(edges, Edge{From: Handle(i), To: to})
		}
	}
	return edges
}

func (g *Graph) mustHave(h Handle) {
	if h < 0 || int(h) >= len(g.nodes) {
		panic(fmt.Sprintf("graph: handle %d out of range [0,%d)", h, len(g.nodes)))
	}
}
