package routeplanner

// euclidean builds the straight-line heuristic from the model's distance metric.
// A weight of 0 disables the estimate entirely.
func euclidean[NodeType comparable](graph GraphModel[NodeType], weight float64) Heuristic[NodeType] {
	if weight == 0 {
		return func(NodeType, NodeType) float64 { return 0 }
	}
	return func(from, to NodeType) float64 {
		return weight * graph.Distance(from, to)
	}
}
