package copac

// Point states during density clustering. Cluster IDs are local to one
// group and start at 0; the orchestrator remaps them into the global space.
const (
	labelUnvisited = -2
	labelNoise     = -1
)

// dbscanCondensed runs DBSCAN over a condensed correlation distance matrix
// for m points. A point with at least minPts neighbors within eps (counting
// itself) seeds a cluster; density-reachable points are absorbed
// transitively; the rest stay noise. Seeds are scanned and expanded in
// ascending index order with a FIFO frontier, so the result is fully
// deterministic.
//
// Returns per-point local labels (cluster ID or -1 for noise) and the
// number of clusters found.
func dbscanCondensed(cdist []float64, m int, eps float64, minPts int) ([]int, int) {
	labels := make([]int, m)
	for i := range labels {
		labels[i] = labelUnvisited
	}

	clusterID := 0
	var frontier []int
	for i := 0; i < m; i++ {
		if labels[i] != labelUnvisited {
			continue
		}

		neighbors := condensedRangeQuery(cdist, m, i, eps)
		if len(neighbors) < minPts {
			labels[i] = labelNoise
			continue
		}

		labels[i] = clusterID
		frontier = frontier[:0]
		for _, j := range neighbors {
			if j != i {
				frontier = append(frontier, j)
			}
		}

		for len(frontier) > 0 {
			q := frontier[0]
			frontier = frontier[1:]

			if labels[q] == labelNoise {
				labels[q] = clusterID // border point rescued from noise
			}
			if labels[q] != labelUnvisited {
				continue
			}
			labels[q] = clusterID

			qNeighbors := condensedRangeQuery(cdist, m, q, eps)
			if len(qNeighbors) >= minPts {
				frontier = append(frontier, qNeighbors...)
			}
		}

		clusterID++
	}

	return labels, clusterID
}

// condensedRangeQuery returns, in ascending order, every point within eps
// correlation distance of point i, including i itself (the diagonal is 0).
func condensedRangeQuery(cdist []float64, m, i int, eps float64) []int {
	var result []int
	for j := 0; j < m; j++ {
		if condensedAt(cdist, m, i, j) <= eps {
			result = append(result, j)
		}
	}
	return result
}
