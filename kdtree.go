package copac

import (
	"container/heap"
	"math"
	"sort"
)

// nodeData describes a single node in the KD-tree.
type nodeData struct {
	idxStart, idxEnd int
	isLeaf           bool
}

// KDTree is a KD-tree spatial index for k-nearest-neighbor queries over the
// point set itself. Points are stored in a flat row-major array and
// reordered internally via an index permutation array.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
//
// Queries break distance ties by ascending original index, so results are
// identical to a brute-force scan with the same tie-breaking.
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	idxArray []int      // permutation: tree-order position → original index
	nodes    []nodeData // one entry per tree node
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}

	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)

	t := &KDTree{
		data:          data,
		n:             n,
		dims:          dims,
		leafSize:      leafSize,
		metric:        metric,
		idxArray:      idxArray,
		nodes:         make([]nodeData, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
	}

	return t
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// A median split keeps the tree balanced: depth ceil(log2(ceil(n/leafSize))),
	// and a complete binary tree of that depth has 2^(depth+1)-1 nodes.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	// Grow arrays if needed (shouldn't happen with a correct upper bound).
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, nodeData{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	}

	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = nodeData{idxStart: start, idxEnd: end, isLeaf: true}
		return
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = nodeData{idxStart: start, idxEnd: end, isLeaf: false}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *KDTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[ptIdx*t.dims+d]
			if v < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = v
			}
			if v > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension,
// breaking coordinate ties by original index so tree construction is
// reproducible regardless of the incoming permutation.
func (t *KDTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		a, b := data[sub[i]*dims+dim], data[sub[j]*dims+dim]
		if a != b {
			return a < b
		}
		return sub[i] < sub[j]
	})
}

// KNearest returns the k nearest points to point i, excluding i itself,
// sorted by ascending distance with ties broken by ascending index.
func (t *KDTree) KNearest(i, k int) ([]int, []float64) {
	query := t.data[i*t.dims : (i+1)*t.dims]
	h := make(knnHeap, 0, k)
	t.knnSearch(0, query, i, k, &h)
	return sortHeapResults(h)
}

// knnSearch performs a single-tree KNN traversal using a bounded max-heap,
// skipping the query point itself.
func (t *KDTree) knnSearch(nodeID int, query []float64, skip, k int, h *knnHeap) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.idxStart == node.idxEnd && nodeID != 0 {
		return // uninitialized node
	}

	if node.isLeaf {
		for i := node.idxStart; i < node.idxEnd; i++ {
			ptIdx := t.idxArray[i]
			if ptIdx == skip {
				continue
			}
			pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
			cand := knnItem{index: ptIdx, dist: t.metric.Distance(query, pt)}
			if h.Len() < k {
				heap.Push(h, cand)
			} else if cand.closerThan((*h)[0]) {
				(*h)[0] = cand
				heap.Fix(h, 0)
			}
		}
		return
	}

	// Visit the nearer child first.
	left := 2*nodeID + 1
	right := 2*nodeID + 2

	leftRdist := t.minRdistPoint(left, query)
	rightRdist := t.minRdistPoint(right, query)

	nearChild, farChild := left, right
	farRdist := rightRdist
	if rightRdist < leftRdist {
		nearChild, farChild = right, left
		farRdist = leftRdist
	}

	t.knnSearch(nearChild, query, skip, k, h)

	// Prune the far child only when its lower bound strictly exceeds the
	// current k-th distance; on equality it may still hold an equal-distance
	// point with a smaller index.
	if h.Len() < k || t.metric.DistToRdist((*h)[0].dist) >= farRdist {
		t.knnSearch(farChild, query, skip, k, h)
	}
}

// minRdistPoint returns a lower bound in reduced-distance space on the
// distance between a point and any point in the given node, from the node's
// axis-aligned bounding box.
func (t *KDTree) minRdistPoint(node int, point []float64) float64 {
	if node >= len(t.nodes) {
		return math.Inf(1)
	}
	dims := t.dims
	base := node * dims

	switch m := t.metric.(type) {
	case ChebyshevMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			if d := boundGap(point[j], t.nodeBoundsMin[base+j], t.nodeBoundsMax[base+j]); d > rdist {
				rdist = d
			}
		}
		return rdist

	case ManhattanMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			rdist += boundGap(point[j], t.nodeBoundsMin[base+j], t.nodeBoundsMax[base+j])
		}
		return rdist

	case MinkowskiMetric:
		var rdist float64
		for j := 0; j < dims; j++ {
			rdist += math.Pow(boundGap(point[j], t.nodeBoundsMin[base+j], t.nodeBoundsMax[base+j]), m.P)
		}
		return rdist

	default:
		// Euclidean and Euclidean-like: sum of squared per-dim gaps.
		var rdist float64
		for j := 0; j < dims; j++ {
			d := boundGap(point[j], t.nodeBoundsMin[base+j], t.nodeBoundsMax[base+j])
			rdist += d * d
		}
		return rdist
	}
}

// boundGap returns the distance from v to the interval [lo, hi] along one axis.
func boundGap(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

// --- bounded max-heap for KNN queries ---

type knnItem struct {
	index int
	dist  float64
}

// closerThan orders candidates by (distance, index) ascending; it is the
// single total order shared by the brute-force and KD-tree strategies.
func (a knnItem) closerThan(b knnItem) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.index < b.index
}

// knnHeap is a max-heap of knnItem (worst candidate on top) used as a
// bounded priority queue for KNN queries.
type knnHeap []knnItem

func (h knnHeap) Len() int           { return len(h) }
func (h knnHeap) Less(i, j int) bool { return h[j].closerThan(h[i]) } // max-heap
func (h knnHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x interface{}) {
	*h = append(*h, x.(knnItem))
}
func (h *knnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// sortHeapResults drains a knnHeap into index and distance slices sorted by
// ascending (distance, index).
func sortHeapResults(h knnHeap) ([]int, []float64) {
	nResults := h.Len()
	idx := make([]int, nResults)
	dist := make([]float64, nResults)
	for i := nResults - 1; i >= 0; i-- {
		item := heap.Pop(&h).(knnItem)
		idx[i] = item.index
		dist[i] = item.dist
	}
	return idx, dist
}
