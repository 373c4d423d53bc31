package graph

import (
	"github.com/casualjim/dataflow"
	"github.com/goccy/go-json"
)

type jsonNode struct {
	ID      int               `json:"id"`
	Key     string            `json:"key"`
	Label   string            `json:"label"`
	Kind    Kind              `json:"kind"`
	Message *dataflow.Message `json:"message,omitempty"`
}

type jsonLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Links []jsonLink `json:"links"`
}

// MarshalJSON renders the graph as {"nodes":[...],"links":[...]} with 1-based
// node ids, the shape graph views consume.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := jsonGraph{
		Nodes: make([]jsonNode, len(g.nodes)),
		Links: make([]jsonLink, 0),
	}
	for i, n := range g.nodes {
		doc.Nodes[i] = jsonNode{
			ID:      i + 1,
			Key:     n.Key,
			Label:   n.Label,
			Kind:    n.Kind,
			Message: n.Message,
		}
		for _, to := range n.Edges {
			doc.Links = append(doc.Links, jsonLink{Source: i + 1, Target: int(to) + 1})
		}
	}
	return json.Marshal(doc)
}
