// Package routeplanner computes shortest routes over a road network with A*.
//
// It exposes three entry points:
//
//   - Plan: resolve percent coordinates to nodes and run the search to completion.
//   - Search: run the search between two known nodes and get a Result.
//   - Stepper: iterate the search one expansion at a time to drive UIs or debugging tools.
//
// PlanBatch runs many independent queries over one model concurrently. Each search keeps
// its g/h/parent bookkeeping in a private side table, so the model itself is never mutated
// by a search and can be shared between goroutines.
//
// The heuristic is the straight-line distance reported by the model. It is admissible
// only when the model is an undirected metric graph whose edge costs are the Euclidean
// distances between their endpoints; GraphModel implementations must honour that.
package routeplanner
