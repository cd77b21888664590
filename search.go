package routeplanner

const noParent int32 = -1

// searchState is the orchestrator's position in Init -> Searching -> {Found, Exhausted}.
type searchState int

const (
	stateSearching searchState = iota
	stateFound
	stateExhausted
)

// nodeState is the per-search bookkeeping for one discovered node.
type nodeState struct {
	g, h       float64
	parent     int32
	isStart    bool
	discovered bool
	settled    bool
	// item is the node's frontier entry, nil once popped.
	item *priorityQueueItem
}

// search owns every piece of mutable state of one A* run. Nodes are interned into an
// arena on first encounter; parents are arena indexes.
type search[NodeType comparable] struct {
	graph     GraphModel[NodeType]
	heuristic Heuristic[NodeType]
	options   Options

	startNode NodeType
	goalNode  NodeType

	nodes  []NodeType
	states []nodeState
	index  map[NodeType]int32

	open     frontier
	settled  int
	state    searchState
	current  int32
	expanded int
	result   Result[NodeType]
}

// newSearch performs the Init transition: the start node is seeded and pushed.
func newSearch[NodeType comparable](
	graph GraphModel[NodeType],
	startNode NodeType,
	goalNode NodeType,
	options Options,
) *search[NodeType] {
	s := &search[NodeType]{
		graph:     graph,
		heuristic: euclidean(graph, options.HeuristicWeight),
		options:   options,
		startNode: startNode,
		goalNode:  goalNode,
		index:     make(map[NodeType]int32),
		current:   noParent,
		state:     stateSearching,
	}

	start := s.intern(startNode)
	seed := &s.states[start]
	seed.g = 0
	seed.h = s.heuristic(startNode, goalNode)
	seed.discovered = true
	seed.isStart = true
	seed.parent = noParent
	seed.item = s.open.push(start, seed.g+seed.h)
	return s
}

// intern returns the arena index of node, allocating a fresh entry on first sight.
func (s *search[NodeType]) intern(node NodeType) int32 {
	if id, ok := s.index[node]; ok {
		return id
	}
	id := int32(len(s.nodes))
	s.nodes = append(s.nodes, node)
	s.states = append(s.states, nodeState{parent: noParent})
	s.index[node] = id
	return id
}

func (s *search[NodeType]) done() bool {
	return s.state == stateFound || s.state == stateExhausted
}

// step pops one node and either finishes the search or expands it.
func (s *search[NodeType]) step() error {
	if s.done() {
		return nil
	}
	if s.open.Len() == 0 {
		s.state = stateExhausted
		s.result = Result[NodeType]{Outcome: OutcomeExhausted, ExpandedNodes: s.expanded}
		return nil
	}

	current, err := s.selectNext()
	if err != nil {
		return err
	}
	s.current = current
	s.expanded++

	if s.nodes[current] == s.goalNode {
		path, raw := s.reconstruct(current)
		s.state = stateFound
		s.result = Result[NodeType]{
			Outcome:       OutcomeFound,
			Path:          path,
			RawDistance:   raw,
			Distance:      raw * s.graph.MetricScale(),
			ExpandedNodes: s.expanded,
		}
		return nil
	}

	s.expand(current)
	return nil
}

// selectNext removes the frontier node with the lowest f = g + h.
func (s *search[NodeType]) selectNext() (int32, error) {
	item, err := s.open.popMin()
	if err != nil {
		return noParent, err
	}
	popped := &s.states[item.Node]
	popped.item = nil
	popped.settled = true
	s.settled++
	return item.Node, nil
}
