package copac

import (
	"fmt"
	"sort"
)

// NeighborIndex answers k-nearest-neighbor queries over the point set it
// was built from. Implementations must agree exactly: ascending distance,
// ties broken by ascending index, the query point itself excluded.
type NeighborIndex interface {
	// KNearest returns the k nearest points to point i (excluding i) with
	// their distances.
	KNearest(i, k int) (indices []int, distances []float64)
}

// NewNeighborIndex builds a neighbor index over flat row-major data using
// the given strategy. AlgorithmAuto must be resolved by the caller (see
// selectAlgorithm); passing it here is an error.
func NewNeighborIndex(data []float64, n, dims int, metric DistanceMetric, algo Algorithm, leafSize int) (NeighborIndex, error) {
	switch algo {
	case AlgorithmBrute:
		return &bruteIndex{data: data, n: n, dims: dims, metric: metric}, nil
	case AlgorithmKDTree:
		return NewKDTree(data, n, dims, metric, leafSize), nil
	default:
		return nil, fmt.Errorf("copac: unresolved neighbor-search algorithm %q: %w", algo, ErrInvalidInput)
	}
}

// bruteIndex is the exhaustive O(n) per-query strategy. It is the reference
// implementation the KD-tree must match, and the fallback for metrics that
// do not decompose along coordinate axes.
type bruteIndex struct {
	data   []float64
	n      int
	dims   int
	metric DistanceMetric
}

func (b *bruteIndex) KNearest(i, k int) ([]int, []float64) {
	query := b.data[i*b.dims : (i+1)*b.dims]
	cands := make([]knnItem, 0, b.n-1)
	for j := 0; j < b.n; j++ {
		if j == i {
			continue
		}
		pt := b.data[j*b.dims : (j+1)*b.dims]
		cands = append(cands, knnItem{index: j, dist: b.metric.Distance(query, pt)})
	}
	sort.Slice(cands, func(a, c int) bool { return cands[a].closerThan(cands[c]) })

	if k > len(cands) {
		k = len(cands)
	}
	idx := make([]int, k)
	dist := make([]float64, k)
	for j := 0; j < k; j++ {
		idx[j] = cands[j].index
		dist[j] = cands[j].dist
	}
	return idx, dist
}

// queryAllNeighbors runs KNearest for every point, parallelized over
// disjoint point ranges. knn[i] holds the k neighbor indices of point i.
func queryAllNeighbors(index NeighborIndex, n, k, workers int) [][]int {
	knn := make([][]int, n)
	forEachRowRange(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			idx, _ := index.KNearest(i, k)
			knn[i] = idx
		}
	})
	return knn
}
