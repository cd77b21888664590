package routeplanner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pdrpinto/routeplanner/internal"
)

// GraphModel is the road network a search runs over.
// NodeType must be comparable so it can be used in maps.
//
// Implementations are expected to describe an undirected metric graph where the cost of
// moving between two adjacent nodes is their Distance. The Euclidean heuristic is only
// admissible under that precondition.
type GraphModel[NodeType comparable] interface {
	// FindClosestNode returns the node nearest to a normalized [0, 1] coordinate.
	FindClosestNode(x, y float64) (NodeType, error)
	// NeighborsOf returns the nodes adjacent to node. The returned slice must not be modified.
	NeighborsOf(node NodeType) []NodeType
	// Distance is the Euclidean distance between two nodes in model units.
	Distance(a, b NodeType) float64
	// MetricScale converts model units to metres.
	MetricScale() float64
}

// PathSink is implemented by models that keep the last planned path.
type PathSink[NodeType comparable] interface {
	SetPath(path []NodeType)
}

// Heuristic returns the estimated cost from node a to node b
type Heuristic[NodeType comparable] func(from NodeType, to NodeType) float64

// Outcome is the terminal state of a search.
type Outcome int

const (
	// OutcomeExhausted means the frontier emptied before the goal was reached.
	OutcomeExhausted Outcome = iota
	// OutcomeFound means the goal was popped and a path reconstructed.
	OutcomeFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result contains the outcome of a search
type Result[NodeType comparable] struct {
	Outcome Outcome
	// Path runs from start to goal inclusive. Nil unless Outcome is OutcomeFound.
	Path []NodeType
	// Distance is the path length in metres.
	Distance float64
	// RawDistance is the path length in model units.
	RawDistance   float64
	ExpandedNodes int
}

// Found reports whether the search reached the goal.
func (r Result[NodeType]) Found() bool { return r.Outcome == OutcomeFound }

// Err returns ErrNoPath for an exhausted search and nil otherwise.
func (r Result[NodeType]) Err() error {
	if r.Found() {
		return nil
	}
	return ErrNoPath
}

// Options defines parameters for the search.
type Options struct {
	// NumberOfWorkers bounds the goroutines PlanBatch uses.
	NumberOfWorkers int
	Policy          DiscoveryPolicy
	// HeuristicWeight scales the straight-line estimate. 0 turns the search into Dijkstra.
	HeuristicWeight float64
	Logger          *slog.Logger
	// MeterProvider and TracerProvider receive search telemetry. Nil means the otel
	// globals.
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many goroutines PlanBatch may run at once.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithPolicy selects how rediscovered nodes are handled.
func WithPolicy(policy DiscoveryPolicy) Option {
	return func(options *Options) { options.Policy = policy }
}

// WithHeuristicWeight scales the heuristic. The weight must be within [0, 1].
func WithHeuristicWeight(weight float64) Option {
	return func(options *Options) { options.HeuristicWeight = weight }
}

// WithLogger sets the logger searches report to. Nil restores the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// WithMeterProvider records search metrics through provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(options *Options) { options.MeterProvider = provider }
}

// WithTracerProvider records one span per search through provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(options *Options) { options.TracerProvider = provider }
}

func defaultOptions() Options {
	return Options{
		NumberOfWorkers: runtime.NumCPU(),
		Policy:          FirstDiscoveryWins,
		HeuristicWeight: 1.0,
		Logger:          slog.New(slog.DiscardHandler),
	}
}

func applyOptions(options []Option) (Options, error) {
	searchOptions := defaultOptions()
	for _, option := range options {
		option(&searchOptions)
	}
	if !(searchOptions.HeuristicWeight >= 0 && searchOptions.HeuristicWeight <= 1) {
		return Options{}, fmt.Errorf("%w: got %v", ErrInvalidHeuristicWeight, searchOptions.HeuristicWeight)
	}
	if searchOptions.Policy != FirstDiscoveryWins && searchOptions.Policy != RelaxOnLowerG {
		return Options{}, fmt.Errorf("unknown discovery policy %d", searchOptions.Policy)
	}
	if searchOptions.NumberOfWorkers < 1 {
		searchOptions.NumberOfWorkers = 1
	}
	if searchOptions.Logger == nil {
		searchOptions.Logger = slog.New(slog.DiscardHandler)
	}
	return searchOptions, nil
}

// Plan resolves the start and end coordinates to their closest nodes and runs Search.
//
// Coordinates are percentages of the map extent (0-100) and are divided by 100 before
// the lookup. Values outside [0, 100] or NaN are rejected with ErrInvalidCoordinate
// rather than scaled onto points off the map. An exhausted search is not an error;
// check Result.Found.
func Plan[NodeType comparable](
	contextObject context.Context,
	graph GraphModel[NodeType],
	startX, startY, endX, endY float64,
	options ...Option,
) (Result[NodeType], error) {
	searchOptions, err := applyOptions(options)
	if err != nil {
		return Result[NodeType]{}, err
	}
	query := Query{StartX: startX, StartY: startY, EndX: endX, EndY: endY}
	return plan(contextObject, graph, query, searchOptions, true)
}

// Search runs A* from startNode to goalNode to completion.
//
// The returned error is non-nil only for invalid input or a cancelled context. When the
// goal is found and the model implements PathSink, the path is written back to it.
func Search[NodeType comparable](
	contextObject context.Context,
	graph GraphModel[NodeType],
	startNode NodeType,
	goalNode NodeType,
	options ...Option,
) (Result[NodeType], error) {
	if graph == nil {
		return Result[NodeType]{}, ErrNilModel
	}
	searchOptions, err := applyOptions(options)
	if err != nil {
		return Result[NodeType]{}, err
	}
	return run(contextObject, graph, startNode, goalNode, searchOptions, true)
}

// Query is a single start/end pair in percent coordinates.
type Query struct {
	StartX, StartY float64
	EndX, EndY     float64
}

func (q Query) resolve() (sx, sy, ex, ey float64, err error) {
	var ok [4]bool
	sx, ok[0] = internal.PercentToFraction(q.StartX)
	sy, ok[1] = internal.PercentToFraction(q.StartY)
	ex, ok[2] = internal.PercentToFraction(q.EndX)
	ey, ok[3] = internal.PercentToFraction(q.EndY)
	for _, valid := range ok {
		if !valid {
			return 0, 0, 0, 0, fmt.Errorf("%w: start (%v, %v) end (%v, %v)",
				ErrInvalidCoordinate, q.StartX, q.StartY, q.EndX, q.EndY)
		}
	}
	return sx, sy, ex, ey, nil
}

func plan[NodeType comparable](
	contextObject context.Context,
	graph GraphModel[NodeType],
	query Query,
	searchOptions Options,
	writeBack bool,
) (Result[NodeType], error) {
	if graph == nil {
		return Result[NodeType]{}, ErrNilModel
	}
	sx, sy, ex, ey, err := query.resolve()
	if err != nil {
		return Result[NodeType]{}, err
	}
	startNode, err := graph.FindClosestNode(sx, sy)
	if err != nil {
		return Result[NodeType]{}, fmt.Errorf("%w: start: %w", ErrNodeLookup, err)
	}
	goalNode, err := graph.FindClosestNode(ex, ey)
	if err != nil {
		return Result[NodeType]{}, fmt.Errorf("%w: end: %w", ErrNodeLookup, err)
	}
	return run(contextObject, graph, startNode, goalNode, searchOptions, writeBack)
}

func run[NodeType comparable](
	contextObject context.Context,
	graph GraphModel[NodeType],
	startNode NodeType,
	goalNode NodeType,
	searchOptions Options,
	writeBack bool,
) (Result[NodeType], error) {
	contextObject, span := startSearchSpan(contextObject, searchOptions)
	defer span.End()
	began := time.Now()

	searchOptions.Logger.Debug("search started",
		"start", startNode, "goal", goalNode, "policy", searchOptions.Policy.String())

	state := newSearch(graph, startNode, goalNode, searchOptions)
	for !state.done() {
		if err := contextObject.Err(); err != nil {
			recordSearchMetrics(contextObject, searchOptions, time.Since(began), state.expanded, "cancelled")
			setSearchSpanResult(span, state.expanded, "cancelled")
			return Result[NodeType]{}, err
		}
		if err := state.step(); err != nil {
			return Result[NodeType]{}, err
		}
	}

	result := state.result
	if result.Found() && writeBack {
		if sink, ok := graph.(PathSink[NodeType]); ok {
			sink.SetPath(result.Path)
		}
	}

	recordSearchMetrics(contextObject, searchOptions, time.Since(began), result.ExpandedNodes, result.Outcome.String())
	setSearchSpanResult(span, result.ExpandedNodes, result.Outcome.String())
	searchOptions.Logger.Debug("search finished",
		"outcome", result.Outcome.String(),
		"expanded", result.ExpandedNodes,
		"distance_m", result.Distance,
		"path_len", len(result.Path),
	)
	return result, nil
}
