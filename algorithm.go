package copac

import "fmt"

// Algorithm selects the nearest-neighbor search strategy.
type Algorithm string

const (
	AlgorithmAuto   Algorithm = "auto"
	AlgorithmBrute  Algorithm = "brute"
	AlgorithmKDTree Algorithm = "kd_tree"
)

// KDTreeValidMetric reports whether the metric supports KD-tree acceleration.
// KD-trees require metrics that decompose along coordinate axes:
// Euclidean, Manhattan, Chebyshev, Minkowski.
func KDTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// selectAlgorithm resolves AlgorithmAuto into a concrete strategy based on
// the metric and data dimensionality, and validates that user-forced choices
// are compatible with the metric. Whichever strategy is selected, neighbor
// sets are identical; the choice only affects speed.
func selectAlgorithm(cfg Config, dims int) (Algorithm, error) {
	algo := cfg.Algorithm

	if algo == AlgorithmAuto {
		if KDTreeValidMetric(cfg.Metric) && dims <= 60 {
			return AlgorithmKDTree, nil
		}
		return AlgorithmBrute, nil
	}

	if algo == AlgorithmKDTree && !KDTreeValidMetric(cfg.Metric) {
		return "", fmt.Errorf("copac: metric %T is not supported by the KD-tree strategy: %w", cfg.Metric, ErrInvalidInput)
	}

	return algo, nil
}
