package routeplanner

// DiscoveryPolicy decides what happens when a node that is already discovered is reached
// again through a different predecessor.
type DiscoveryPolicy int

const (
	// FirstDiscoveryWins keeps the parent and g-value assigned at first encounter. This
	// is optimal only when the first path found to every node is also its cheapest one.
	FirstDiscoveryWins DiscoveryPolicy = iota
	// RelaxOnLowerG replaces parent and g-value whenever a strictly cheaper path shows
	// up, re-opening the node if it was already settled.
	RelaxOnLowerG
)

func (p DiscoveryPolicy) String() string {
	switch p {
	case FirstDiscoveryWins:
		return "first-discovery-wins"
	case RelaxOnLowerG:
		return "relax-on-lower-g"
	default:
		return "unknown"
	}
}

// ParseDiscoveryPolicy maps the String form of a policy back to its value.
func ParseDiscoveryPolicy(name string) (DiscoveryPolicy, bool) {
	switch name {
	case "first-discovery-wins":
		return FirstDiscoveryWins, true
	case "relax-on-lower-g":
		return RelaxOnLowerG, true
	default:
		return FirstDiscoveryWins, false
	}
}

// relaxProposal is a candidate (parent, g) assignment for a neighbor.
type relaxProposal struct {
	FromNode int32
	ToNode   int32
	GScore   float64
}

// expand opens every neighbor of current the policy allows.
func (s *search[NodeType]) expand(current int32) {
	from := s.nodes[current]
	for _, neighbor := range s.graph.NeighborsOf(from) {
		to := s.intern(neighbor)
		known := s.states[to].discovered
		if known && s.options.Policy == FirstDiscoveryWins {
			continue
		}
		proposal := relaxProposal{
			FromNode: current,
			ToNode:   to,
			GScore:   s.states[current].g + s.graph.Distance(from, neighbor),
		}
		if known {
			s.relax(proposal)
			continue
		}
		s.discover(proposal)
	}
}

// discover records the first path to a node and pushes it onto the frontier.
func (s *search[NodeType]) discover(p relaxProposal) {
	next := &s.states[p.ToNode]
	next.parent = p.FromNode
	next.h = s.heuristic(s.nodes[p.ToNode], s.goalNode)
	next.g = p.GScore
	next.discovered = true
	next.item = s.open.push(p.ToNode, next.g+next.h)
}

// relax applies a proposal to an already discovered node if it is strictly cheaper.
func (s *search[NodeType]) relax(p relaxProposal) {
	next := &s.states[p.ToNode]
	if next.isStart || p.GScore >= next.g {
		return
	}
	next.parent = p.FromNode
	next.g = p.GScore
	switch {
	case next.item != nil:
		s.open.update(next.item, next.g+next.h)
	case next.settled:
		next.settled = false
		s.settled--
		next.item = s.open.push(p.ToNode, next.g+next.h)
	}
}
