package routeplanner

import "errors"

// Sentinel errors for planning operations.
var (
	// ErrNilModel is returned when a search is started without a graph model.
	ErrNilModel = errors.New("graph model is nil")

	// ErrEmptyFrontier is returned when the next node is requested from an empty open set.
	ErrEmptyFrontier = errors.New("frontier is empty")

	// ErrNoPath reports an exhausted search. Search and Plan never return it directly;
	// use Result.Err to obtain it.
	ErrNoPath = errors.New("no path found")

	// ErrInvalidHeuristicWeight is returned for weights outside [0, 1]. Anything above 1
	// makes the heuristic inadmissible.
	ErrInvalidHeuristicWeight = errors.New("heuristic weight must be within [0, 1]")

	// ErrInvalidCoordinate is returned for percent coordinates outside [0, 100].
	ErrInvalidCoordinate = errors.New("coordinate must be within [0, 100]")

	// ErrNodeLookup wraps failures of GraphModel.FindClosestNode.
	ErrNodeLookup = errors.New("closest node lookup failed")
)
