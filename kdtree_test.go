package copac

import (
	"math/rand"
	"testing"
)

// kdVsBrute checks that the KD-tree and brute-force strategies return
// identical neighbor sets, including distance ties.
func kdVsBrute(t *testing.T, data []float64, n, dims, k int, metric DistanceMetric, leafSize int) {
	t.Helper()
	tree := NewKDTree(data, n, dims, metric, leafSize)
	brute := &bruteIndex{data: data, n: n, dims: dims, metric: metric}

	for i := 0; i < n; i++ {
		ti, td := tree.KNearest(i, k)
		bi, bd := brute.KNearest(i, k)
		if len(ti) != len(bi) {
			t.Fatalf("point %d: kdtree returned %d neighbors, brute %d", i, len(ti), len(bi))
		}
		for r := range ti {
			if ti[r] != bi[r] {
				t.Errorf("point %d rank %d: kdtree index %d, brute index %d", i, r, ti[r], bi[r])
			}
			if td[r] != bd[r] {
				t.Errorf("point %d rank %d: kdtree dist %v, brute dist %v", i, r, td[r], bd[r])
			}
		}
	}
}

func TestKDTree_MatchesBrute_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n, dims := 200, 5
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	for _, leafSize := range []int{1, 5, 30} {
		kdVsBrute(t, data, n, dims, 8, EuclideanMetric{}, leafSize)
	}
}

func TestKDTree_MatchesBrute_Manhattan(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	n, dims := 120, 4
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = rng.Float64() * 10
	}
	kdVsBrute(t, data, n, dims, 5, ManhattanMetric{}, 10)
}

func TestKDTree_TieBreaking_GridDuplicates(t *testing.T) {
	// Integer grid with exact duplicate coordinates produces many exact
	// distance ties; both strategies must break them by ascending index.
	data := []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 0, // duplicate of point 1
		0, 1, // duplicate of point 2
		1, 1,
		2, 0,
	}
	kdVsBrute(t, data, 7, 2, 4, EuclideanMetric{}, 2)
}

func TestKDTree_AllIdenticalPoints(t *testing.T) {
	n, dims := 12, 3
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = 5.0
	}
	tree := NewKDTree(data, n, dims, EuclideanMetric{}, 4)

	// All distances are 0, so k nearest of point 3 must be the k smallest
	// indices other than 3.
	idx, dist := tree.KNearest(3, 4)
	want := []int{0, 1, 2, 4}
	for r := range want {
		if idx[r] != want[r] {
			t.Errorf("rank %d: got index %d, want %d", r, idx[r], want[r])
		}
		if dist[r] != 0 {
			t.Errorf("rank %d: got dist %v, want 0", r, dist[r])
		}
	}
}

func TestKDTree_ExcludesSelf(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	n, dims := 50, 3
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	tree := NewKDTree(data, n, dims, EuclideanMetric{}, 5)
	for i := 0; i < n; i++ {
		idx, _ := tree.KNearest(i, 6)
		for _, j := range idx {
			if j == i {
				t.Fatalf("point %d appears in its own neighbor set", i)
			}
		}
	}
}

func TestKDTree_KLargerThanAvailable(t *testing.T) {
	data := []float64{0, 0, 1, 1, 2, 2}
	tree := NewKDTree(data, 3, 2, EuclideanMetric{}, 2)
	idx, _ := tree.KNearest(0, 10)
	if len(idx) != 2 {
		t.Fatalf("expected 2 neighbors (all other points), got %d", len(idx))
	}
}

func TestKDTree_DistancesSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	n, dims := 80, 2
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = rng.Float64()
	}
	tree := NewKDTree(data, n, dims, EuclideanMetric{}, 8)
	for i := 0; i < n; i++ {
		_, dist := tree.KNearest(i, 10)
		for r := 1; r < len(dist); r++ {
			if dist[r] < dist[r-1] {
				t.Fatalf("point %d: distances not sorted at rank %d: %v < %v", i, r, dist[r], dist[r-1])
			}
		}
	}
}
