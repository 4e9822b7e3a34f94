package copac

import (
	"fmt"
	"math"
	"runtime"
	"time"
)

// Config controls COPAC clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// NNeighbors (k) is the local neighborhood size used to estimate each
	// point's correlation dimension. The original paper suggests
	// k >= 3 * n_features. Must be > 1 and < n. Default: 10.
	NNeighbors int

	// Alpha is the fraction of local variance the leading eigenvalues must
	// jointly explain to determine the correlation dimension. Robust in
	// 0.8..0.9. Must be in (0, 1]. Default: 0.85.
	Alpha float64

	// Kappa is the distance penalty applied along weak eigendirections, so
	// deviation orthogonal to a point's local subspace counts much more
	// than deviation along it. Must be > 1. Default: 50.
	Kappa float64

	// Eps is the density-clustering neighborhood radius in correlation
	// distance. Must be > 0. Default: 0.5.
	Eps float64

	// MinSamples (mu) is the minimum number of points within Eps (counting
	// the point itself) for a point to seed a cluster. Must be >= 1.
	// Default: 5.
	MinSamples int

	// Metric is the distance function used by the nearest-neighbor stage.
	// Built-in: EuclideanMetric, ManhattanMetric, ChebyshevMetric,
	// MinkowskiMetric. Use DistanceFunc to wrap a custom function
	// (restricted to the brute-force strategy). Default: EuclideanMetric.
	Metric DistanceMetric

	// Algorithm selects the nearest-neighbor search strategy.
	// "auto" picks a KD-tree for axis-decomposable metrics on
	// low-dimensional data and brute force otherwise. Both strategies
	// return identical neighbor sets. Default: "auto".
	Algorithm Algorithm

	// LeafSize controls the maximum number of points in a KD-tree leaf
	// node. Only used with the KD-tree strategy. Default: 30.
	LeafSize int

	// Workers controls the number of goroutines for parallelizable stages
	// (neighbor queries, local eigendecompositions, distance blocks).
	// 0 means use runtime.NumCPU(). Default: 0 (auto).
	Workers int

	// Observer, when non-nil, receives wall-clock timings for each
	// pipeline stage. Default: nil.
	Observer StageObserver
}

// Result contains the output of COPAC clustering.
type Result struct {
	// Labels assigns each point to a cluster (0-indexed cluster ID, unique
	// across all dimension groups) or -1 for noise.
	Labels []int

	// CorrelationDims holds the local correlation dimension of each point:
	// the intrinsic dimensionality of the data manifold around it, in
	// [1, n_features], or 0 for a degenerate neighborhood.
	CorrelationDims []int

	// NumClusters is the number of distinct clusters found.
	NumClusters int
}

// DefaultConfig returns a Config with the reference defaults.
func DefaultConfig() Config {
	return Config{
		NNeighbors: 10,
		Alpha:      0.85,
		Kappa:      50,
		Eps:        0.5,
		MinSamples: 5,
		Metric:     EuclideanMetric{},
		Algorithm:  AlgorithmAuto,
		LeafSize:   30,
	}
}

// applyDefaults fills in zero-valued strategy fields with their defaults.
// Numeric knobs are left to validateConfig so misconfiguration fails loudly.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 30
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// error if not.
func validateConfig(cfg *Config) error {
	if cfg.NNeighbors <= 1 {
		return fmt.Errorf("copac: NNeighbors must be > 1, got %d: %w", cfg.NNeighbors, ErrInvalidInput)
	}
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		return fmt.Errorf("copac: Alpha must be in (0, 1], got %g: %w", cfg.Alpha, ErrInvalidInput)
	}
	if cfg.Kappa <= 1 {
		return fmt.Errorf("copac: Kappa must be > 1, got %g: %w", cfg.Kappa, ErrInvalidInput)
	}
	if cfg.Eps <= 0 {
		return fmt.Errorf("copac: Eps must be > 0, got %g: %w", cfg.Eps, ErrInvalidInput)
	}
	if cfg.MinSamples < 1 {
		return fmt.Errorf("copac: MinSamples must be >= 1, got %d: %w", cfg.MinSamples, ErrInvalidInput)
	}
	switch cfg.Algorithm {
	case AlgorithmAuto, AlgorithmBrute, AlgorithmKDTree:
		// valid
	default:
		return fmt.Errorf("copac: invalid Algorithm %q: %w", cfg.Algorithm, ErrInvalidInput)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("copac: LeafSize must be >= 1, got %d: %w", cfg.LeafSize, ErrInvalidInput)
	}
	return nil
}

// flattenData validates the input and copies it into flat row-major form.
// All rejection happens here, before any computation starts.
func flattenData(data [][]float64) (flat []float64, n, dims int, err error) {
	n = len(data)
	if n == 0 {
		return nil, 0, 0, fmt.Errorf("copac: empty input: %w", ErrInvalidInput)
	}
	dims = len(data[0])
	if dims == 0 {
		return nil, 0, 0, fmt.Errorf("copac: point 0 has no features: %w", ErrInvalidInput)
	}

	flat = make([]float64, n*dims)
	for i, row := range data {
		if len(row) != dims {
			return nil, 0, 0, fmt.Errorf("copac: point %d has %d features, want %d: %w", i, len(row), dims, ErrInvalidInput)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, 0, 0, fmt.Errorf("copac: point %d has non-finite feature %d: %w", i, j, ErrInvalidInput)
			}
		}
		copy(flat[i*dims:], row)
	}
	return flat, n, dims, nil
}

// Cluster performs COPAC clustering on the given data. Each element is a
// point (float64 slice); all points must have the same dimensionality.
//
// The pipeline runs strictly forward: k-nearest neighbors, per-point local
// subspace estimation, partitioning by correlation dimension, then per group
// a blocked correlation distance matrix followed by DBSCAN. Local cluster
// IDs are remapped into one global ID space, so IDs from different groups
// never collide.
func Cluster(data [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	flat, n, dims, err := flattenData(data)
	if err != nil {
		return nil, err
	}
	if cfg.NNeighbors >= n {
		return nil, fmt.Errorf("copac: NNeighbors (k=%d) must be smaller than the number of points (n=%d): %w",
			cfg.NNeighbors, n, ErrInvalidInput)
	}

	algo, err := selectAlgorithm(cfg, dims)
	if err != nil {
		return nil, err
	}

	begin := time.Now()
	index, err := NewNeighborIndex(flat, n, dims, cfg.Metric, algo, cfg.LeafSize)
	if err != nil {
		return nil, err
	}
	knn := queryAllNeighbors(index, n, cfg.NNeighbors, cfg.Workers)
	observe(cfg.Observer, StageKNN, time.Since(begin))

	begin = time.Now()
	descs := computeDescriptors(flat, n, dims, knn, cfg.Alpha, cfg.Kappa, cfg.Workers)
	corrDims := correlationDims(descs)
	observe(cfg.Observer, StageCorrDim, time.Since(begin))

	begin = time.Now()
	groups := groupByDimension(corrDims)
	observe(cfg.Observer, StageGrouping, time.Since(begin))

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	// Groups are processed one at a time so peak memory is bounded by the
	// largest group's distance matrix, not n².
	var triuTotal, trilTotal, dbscanTotal time.Duration
	nextID := 0
	for _, g := range groups {
		cdist, triuDur, trilDur := groupDistanceMatrix(flat, dims, g.members, descs, cfg.Workers)
		triuTotal += triuDur
		trilTotal += trilDur

		begin = time.Now()
		local, clusters := dbscanCondensed(cdist, len(g.members), cfg.Eps, cfg.MinSamples)
		dbscanTotal += time.Since(begin)

		for pos, idx := range g.members {
			if local[pos] >= 0 {
				labels[idx] = nextID + local[pos]
			}
		}
		nextID += clusters
	}
	observe(cfg.Observer, StageTriu, triuTotal)
	observe(cfg.Observer, StageTril, trilTotal)
	observe(cfg.Observer, StageDBSCAN, dbscanTotal)

	return &Result{
		Labels:          labels,
		CorrelationDims: corrDims,
		NumClusters:     nextID,
	}, nil
}

// FitPredict performs clustering and returns only the label vector:
// labels[i] is a cluster ID in 0..C-1 or -1 for noise.
func FitPredict(data [][]float64, cfg Config) ([]int, error) {
	result, err := Cluster(data, cfg)
	if err != nil {
		return nil, err
	}
	return result.Labels, nil
}
