package routeplanner

import "context"

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot[NodeType comparable] struct {
	Current    NodeType
	HasCurrent bool
	Open       map[NodeType]bool
	Closed     map[NodeType]bool
	CameFrom   map[NodeType]NodeType
	Done       bool
	Found      bool
	Path       []NodeType
	Distance   float64
	StepIndex  int
}

// Stepper runs the same state machine as Search, one frontier pop per Step.
type Stepper[NodeType comparable] struct {
	ctx       context.Context
	search    *search[NodeType]
	stepCount int
}

// NewStepper seeds a search from startNode to goalNode. Nothing is expanded until Step.
// A stepper never writes its path back to the model.
func NewStepper[NodeType comparable](
	parent context.Context,
	graph GraphModel[NodeType],
	startNode NodeType,
	goalNode NodeType,
	options ...Option,
) (*Stepper[NodeType], error) {
	if graph == nil {
		return nil, ErrNilModel
	}
	searchOptions, err := applyOptions(options)
	if err != nil {
		return nil, err
	}
	return &Stepper[NodeType]{
		ctx:    parent,
		search: newSearch(graph, startNode, goalNode, searchOptions),
	}, nil
}

// Step advances the search by one node expansion and returns a snapshot.
//
// The snapshot copies the open, closed and parent sets, so each call costs time
// proportional to the nodes seen so far. Use Advance with the accessors below when
// only counts are needed.
func (s *Stepper[NodeType]) Step() (StepSnapshot[NodeType], error) {
	if !s.search.done() {
		if err := s.ctx.Err(); err != nil {
			return StepSnapshot[NodeType]{Done: true, StepIndex: s.stepCount}, err
		}
	}
	if _, err := s.Advance(); err != nil {
		return StepSnapshot[NodeType]{}, err
	}
	return s.snapshot(), nil
}

// Advance performs one step without building a snapshot and reports whether the
// search has finished.
func (s *Stepper[NodeType]) Advance() (bool, error) {
	if s.search.done() {
		return true, nil
	}
	if err := s.ctx.Err(); err != nil {
		return false, err
	}
	if s.search.open.Len() > 0 {
		s.stepCount++
	}
	if err := s.search.step(); err != nil {
		return false, err
	}
	return s.search.done(), nil
}

// Current returns the node popped by the latest step.
func (s *Stepper[NodeType]) Current() (NodeType, bool) {
	if s.search.current == noParent {
		var zero NodeType
		return zero, false
	}
	return s.search.nodes[s.search.current], true
}

// OpenLen is the number of nodes on the frontier.
func (s *Stepper[NodeType]) OpenLen() int { return s.search.open.Len() }

// ClosedLen is the number of settled nodes.
func (s *Stepper[NodeType]) ClosedLen() int { return s.search.settled }

// StepIndex counts the steps that popped a node.
func (s *Stepper[NodeType]) StepIndex() int { return s.stepCount }

// Done reports whether the search reached a terminal state.
func (s *Stepper[NodeType]) Done() bool { return s.search.done() }

// Found reports whether the goal was reached.
func (s *Stepper[NodeType]) Found() bool { return s.search.state == stateFound }

// Result returns the final result once Step has reported Done.
func (s *Stepper[NodeType]) Result() (Result[NodeType], bool) {
	if !s.search.done() {
		return Result[NodeType]{}, false
	}
	return s.search.result, true
}

func (s *Stepper[NodeType]) snapshot() StepSnapshot[NodeType] {
	st := s.search
	snapshot := StepSnapshot[NodeType]{
		Open:      make(map[NodeType]bool),
		Closed:    make(map[NodeType]bool),
		CameFrom:  make(map[NodeType]NodeType),
		Done:      st.done(),
		Found:     st.state == stateFound,
		StepIndex: s.stepCount,
	}
	if st.current != noParent {
		snapshot.Current = st.nodes[st.current]
		snapshot.HasCurrent = true
	}
	for id, node := range st.nodes {
		state := st.states[id]
		if state.item != nil {
			snapshot.Open[node] = true
		}
		if state.settled {
			snapshot.Closed[node] = true
		}
		if state.parent != noParent {
			snapshot.CameFrom[node] = st.nodes[state.parent]
		}
	}
	if snapshot.Found {
		snapshot.Path = st.result.Path
		snapshot.Distance = st.result.Distance
	}
	return snapshot
}
