package graph

const (
	unvisited uint8 = iota
	onStack
	finished
)

// HasCycles reports whether any directed cycle exists, self loops included.
// It runs a depth first search from every unvisited node in O(V+E).
func (g *Graph) HasCycles() bool {
	state := make([]uint8, len(g.nodes))

	var visit func(h Handle) bool
	visit = func(h Handle) bool {
		state[h] = onStack
		for _, next := range g.nodes[h].Edges {
			switch state[next] {
			case onStack:
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		state[h] = finished
		return false
	}

	for h := range g.nodes {
		if state[h] == unvisited && visit(Handle(h)) {
			return true
		}
	}
	return false
}
