package routeplanner

import "github.com/pdrpinto/routeplanner/internal"

// reconstruct walks parent links from goal back to the start node and returns the path in
// start-to-goal order together with its length in model units.
func (s *search[NodeType]) reconstruct(goal int32) ([]NodeType, float64) {
	var raw float64
	path := make([]NodeType, 0, 16)
	current := goal
	for !s.states[current].isStart {
		parent := s.states[current].parent
		path = append(path, s.nodes[current])
		raw += s.graph.Distance(s.nodes[current], s.nodes[parent])
		current = parent
	}
	path = append(path, s.nodes[current])
	internal.Reverse(path)
	return path, raw
}
