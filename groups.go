package copac

// dimensionGroup is the set of point indices sharing one correlation
// dimension. Members are in ascending index order.
type dimensionGroup struct {
	dim     int
	members []int
}

// groupByDimension partitions point indices into buckets by correlation
// dimension. Every point lands in exactly one group; groups come out in
// ascending dimension order (dimension 0, when present, holds the
// degenerate-neighborhood fallback points).
func groupByDimension(dims []int) []dimensionGroup {
	buckets := make(map[int][]int)
	maxDim := 0
	for i, d := range dims {
		buckets[d] = append(buckets[d], i)
		if d > maxDim {
			maxDim = d
		}
	}

	groups := make([]dimensionGroup, 0, len(buckets))
	for d := 0; d <= maxDim; d++ {
		if members, ok := buckets[d]; ok {
			groups = append(groups, dimensionGroup{dim: d, members: members})
		}
	}
	return groups
}
