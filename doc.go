// Package copac implements COPAC (Correlation Partition Clustering), a
// density-based correlation-clustering algorithm.
//
// COPAC groups points by the intrinsic dimensionality of their local
// neighborhood and then clusters within each dimensionality group using a
// subspace-aware distance: deviation orthogonal to a point's detected local
// subspace is amplified relative to deviation along it. This finds clusters
// that live on low-dimensional linear manifolds (lines, planes, ...)
// embedded in higher-dimensional space, where plain Euclidean density
// clustering would fail.
//
// Basic usage:
//
//	cfg := copac.DefaultConfig()
//	cfg.NNeighbors = 10
//	cfg.Eps = 0.5
//	cfg.MinSamples = 5
//	result, err := copac.Cluster(data, cfg)
//	// result.Labels[i] is the cluster ID for point i (-1 = noise)
//	// result.CorrelationDims[i] is the local correlation dimension of point i
//
// Or, when only the label vector is needed:
//
//	labels, err := copac.FitPredict(data, cfg)
//
// # Algorithm selection
//
// By default (Algorithm: "auto"), the nearest-neighbor stage picks a search
// strategy based on the metric and dimensionality: a KD-tree for
// axis-decomposable metrics on low-dimensional data, brute force otherwise.
// Both strategies return identical neighbor sets, including tie-breaking.
// Set Config.Algorithm to force a specific strategy:
//
//	cfg.Algorithm = copac.AlgorithmBrute  // exhaustive scan
//	cfg.Algorithm = copac.AlgorithmKDTree // KD-tree accelerated
//
// The pipeline follows Achtert, Böhm, Kriegel, Kröger & Zimek, "Robust,
// Complete, and Efficient Correlation Clustering", SDM 2007.
package copac
