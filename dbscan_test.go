package copac

import (
	"math"
	"testing"
)

// condensed1D builds a condensed Euclidean distance matrix from 1-D
// coordinates, the simplest way to lay out density patterns for tests.
func condensed1D(coords []float64) []float64 {
	m := len(coords)
	cdist := make([]float64, condensedLen(m))
	t := 0
	for a := 0; a < m; a++ {
		for b := a + 1; b < m; b++ {
			cdist[t] = math.Abs(coords[a] - coords[b])
			t++
		}
	}
	return cdist
}

func TestDBSCAN_TwoSeparatedChains(t *testing.T) {
	coords := []float64{0, 1, 2, 3, 100, 101, 102, 103}
	labels, clusters := dbscanCondensed(condensed1D(coords), len(coords), 1.5, 3)

	if clusters != 2 {
		t.Fatalf("expected 2 clusters, got %d", clusters)
	}
	want := []int{0, 0, 0, 0, 1, 1, 1, 1}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %d, want %d", i, labels[i], want[i])
		}
	}
}

func TestDBSCAN_IsolatedPointIsNoise(t *testing.T) {
	coords := []float64{0, 1, 2, 50}
	labels, clusters := dbscanCondensed(condensed1D(coords), len(coords), 1.5, 3)

	if clusters != 1 {
		t.Fatalf("expected 1 cluster, got %d", clusters)
	}
	if labels[3] != -1 {
		t.Errorf("isolated point has label %d, want -1 (noise)", labels[3])
	}
}

func TestDBSCAN_MinPtsCountsSelf(t *testing.T) {
	// Two points within eps of each other: each has 2 neighbors counting
	// itself, so minPts=2 clusters them and minPts=3 leaves both noise.
	coords := []float64{0, 1}

	labels, clusters := dbscanCondensed(condensed1D(coords), 2, 1.5, 2)
	if clusters != 1 || labels[0] != 0 || labels[1] != 0 {
		t.Errorf("minPts=2: labels = %v, clusters = %d; want one shared cluster", labels, clusters)
	}

	labels, clusters = dbscanCondensed(condensed1D(coords), 2, 1.5, 3)
	if clusters != 0 || labels[0] != -1 || labels[1] != -1 {
		t.Errorf("minPts=3: labels = %v, clusters = %d; want all noise", labels, clusters)
	}
}

func TestDBSCAN_BorderPointJoinsCluster(t *testing.T) {
	// Point at 3 is within eps of core point 2 but is not core itself
	// (only 2 neighbors counting self). It must join as a border point.
	coords := []float64{0, 1, 2, 3}
	labels, clusters := dbscanCondensed(condensed1D(coords), 4, 1.2, 3)

	if clusters != 1 {
		t.Fatalf("expected 1 cluster, got %d", clusters)
	}
	for i, l := range labels {
		if l != 0 {
			t.Errorf("labels[%d] = %d, want 0", i, l)
		}
	}
}

func TestDBSCAN_AllUnreachable(t *testing.T) {
	m := 4
	cdist := make([]float64, condensedLen(m))
	for i := range cdist {
		cdist[i] = math.Inf(1)
	}
	labels, clusters := dbscanCondensed(cdist, m, 10, 2)
	if clusters != 0 {
		t.Fatalf("expected 0 clusters, got %d", clusters)
	}
	for i, l := range labels {
		if l != -1 {
			t.Errorf("labels[%d] = %d, want -1", i, l)
		}
	}
}

func TestDBSCAN_SinglePointGroup(t *testing.T) {
	labels, clusters := dbscanCondensed(nil, 1, 1.0, 1)
	// minPts=1: the point is its own core.
	if clusters != 1 || labels[0] != 0 {
		t.Errorf("labels = %v, clusters = %d; want single cluster", labels, clusters)
	}

	labels, clusters = dbscanCondensed(nil, 1, 1.0, 2)
	if clusters != 0 || labels[0] != -1 {
		t.Errorf("labels = %v, clusters = %d; want noise", labels, clusters)
	}
}

func TestDBSCAN_Deterministic(t *testing.T) {
	coords := []float64{0, 1, 2, 3, 10, 11, 12, 5.5, 20}
	cdist := condensed1D(coords)

	first, firstClusters := dbscanCondensed(cdist, len(coords), 1.6, 3)
	for run := 0; run < 5; run++ {
		labels, clusters := dbscanCondensed(cdist, len(coords), 1.6, 3)
		if clusters != firstClusters {
			t.Fatalf("run %d: cluster count %d != %d", run, clusters, firstClusters)
		}
		for i := range labels {
			if labels[i] != first[i] {
				t.Fatalf("run %d: labels[%d] = %d != %d", run, i, labels[i], first[i])
			}
		}
	}
}

func TestDBSCAN_GrowingEpsNeverLosesClusteredPoints(t *testing.T) {
	coords := []float64{0, 1, 2, 3, 7, 8, 9, 15, 22, 23, 24, 40}
	cdist := condensed1D(coords)

	prev := -1
	for _, eps := range []float64{0.5, 1.1, 2.0, 4.5, 8.0, 20.0, 50.0} {
		labels, _ := dbscanCondensed(cdist, len(coords), eps, 3)
		clustered := 0
		for _, l := range labels {
			if l >= 0 {
				clustered++
			}
		}
		if clustered < prev {
			t.Errorf("eps=%v: clustered count dropped from %d to %d", eps, prev, clustered)
		}
		prev = clustered
	}
}
