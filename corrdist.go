package copac

import (
	"math"
	"time"
)

// The correlation distance matrix for a group is stored condensed: only the
// strict upper triangle, row-major, m*(m-1)/2 entries. Entry (a, b) with
// a < b lives at rowStart(a) + b - a - 1.

func condensedLen(m int) int { return m * (m - 1) / 2 }

func condensedRowStart(a, m int) int { return a * (2*m - a - 1) / 2 }

// condensedAt reads the symmetric correlation distance between group
// positions a and b. The diagonal is implicitly 0.
func condensedAt(cdist []float64, m, a, b int) float64 {
	if a == b {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return cdist[condensedRowStart(a, m)+b-a-1]
}

// groupDistanceMatrix computes the condensed correlation distance matrix for
// one dimension group. For an ordered pair (i, j) the directional distance
// from i's perspective is sqrt((xj-xi)ᵗ·M̂i·(xj-xi)); the symmetric distance
// is the max over both orientations, with the square root deferred until the
// winner is known.
//
// The work runs in three blocks: a "triu" pass fills each entry with the
// quadratic form from the lower-index endpoint, a "tril" pass max-combines
// the opposite orientation in place, and a final "rest" sweep takes the root
// and maps non-finite entries to +Inf so numerically unstable pairs are
// unreachable rather than fatal. The triangular passes are parallelized over
// disjoint row ranges. Returned durations cover the triu pass and the
// tril+rest passes.
func groupDistanceMatrix(data []float64, p int, members []int, descs []subspaceDescriptor, workers int) ([]float64, time.Duration, time.Duration) {
	m := len(members)
	cdist := make([]float64, condensedLen(m))
	if m < 2 {
		return cdist, 0, 0
	}

	begin := time.Now()
	forEachRowRange(m-1, workers, func(lo, hi int) {
		diff := make([]float64, p)
		for a := lo; a < hi; a++ {
			i := members[a]
			xi := data[i*p : (i+1)*p]
			prefI := descs[i].pref
			base := condensedRowStart(a, m)
			for b := a + 1; b < m; b++ {
				j := members[b]
				cdist[base+b-a-1] = quadForm(data[j*p:(j+1)*p], xi, prefI, diff)
			}
		}
	})
	triuDur := time.Since(begin)

	begin = time.Now()
	// Opposite orientation. Every (a, b) cell is written by exactly one b,
	// so parallelizing over b keeps writes disjoint.
	forEachRowRange(m, workers, func(lo, hi int) {
		diff := make([]float64, p)
		for b := lo; b < hi; b++ {
			if b == 0 {
				continue
			}
			j := members[b]
			xj := data[j*p : (j+1)*p]
			prefJ := descs[j].pref
			for a := 0; a < b; a++ {
				i := members[a]
				q := quadForm(data[i*p:(i+1)*p], xj, prefJ, diff)
				pos := condensedRowStart(a, m) + b - a - 1
				if q > cdist[pos] || math.IsNaN(q) {
					cdist[pos] = q
				}
			}
		}
	})
	forEachRowRange(m-1, workers, func(lo, hi int) {
		for a := lo; a < hi; a++ {
			base := condensedRowStart(a, m)
			for t := base; t < base+m-a-1; t++ {
				v := cdist[t]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					cdist[t] = math.Inf(1)
					continue
				}
				if v < 0 {
					v = 0
				}
				cdist[t] = math.Sqrt(v)
			}
		}
	})
	trilDur := time.Since(begin)

	return cdist, triuDur, trilDur
}

// quadForm evaluates (x-y)ᵗ·M·(x-y) for a row-major square matrix M.
// diff is a caller-owned scratch buffer of length p. A nil M (failed
// eigendecomposition) yields +Inf.
func quadForm(x, y []float64, m []float64, diff []float64) float64 {
	if m == nil {
		return math.Inf(1)
	}
	p := len(diff)
	for d := 0; d < p; d++ {
		diff[d] = x[d] - y[d]
	}
	var q float64
	for a := 0; a < p; a++ {
		row := m[a*p : (a+1)*p]
		var s float64
		for b := 0; b < p; b++ {
			s += row[b] * diff[b]
		}
		q += diff[a] * s
	}
	return q
}
