package copac

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// degenerateVarianceTol is the total-variance threshold below which a local
// neighborhood is considered degenerate (all neighbors coincide).
const degenerateVarianceTol = 1e-12

// dimensionSlack absorbs floating-point loss in the cumulative
// variance-explained ratio, so a rank-r neighborhood reports dimension r
// even when the trailing eigenvalues are rounding noise.
const dimensionSlack = 1e-9

// subspaceDescriptor captures the local subspace structure around one point:
// its correlation dimension and the preference matrix used by the
// correlation distance.
type subspaceDescriptor struct {
	// dim is the correlation dimension: the number of leading
	// eigendirections jointly explaining at least alpha of the local
	// variance. 0 marks a degenerate neighborhood.
	dim int

	// eigenvalues of the local covariance matrix, sorted descending,
	// negatives clamped to 0.
	eigenvalues []float64

	// pref is the p×p row-major preference matrix V·diag(w)·Vᵗ with weight
	// 1 along the dim strong eigendirections and kappa along the rest.
	// Identity for degenerate neighborhoods; nil when the eigensolver
	// failed, which makes every distance involving the point +Inf.
	pref []float64
}

// computeDescriptors estimates a subspaceDescriptor for every point from the
// local covariance of its neighborhood (the point plus its k nearest
// neighbors). Points are independent, so the work is parallelized over
// disjoint point ranges.
func computeDescriptors(data []float64, n, p int, knn [][]int, alpha, kappa float64, workers int) []subspaceDescriptor {
	descs := make([]subspaceDescriptor, n)
	forEachRowRange(n, workers, func(start, end int) {
		nb := mat.NewDense(len(knn[0])+1, p, nil)
		cov := mat.NewSymDense(p, nil)
		for i := start; i < end; i++ {
			descs[i] = estimateSubspace(data, p, i, knn[i], alpha, kappa, nb, cov)
		}
	})
	return descs
}

// estimateSubspace computes the descriptor for a single point. nb and cov
// are scratch matrices reused across calls by one worker.
func estimateSubspace(data []float64, p, i int, neighbors []int, alpha, kappa float64, nb *mat.Dense, cov *mat.SymDense) subspaceDescriptor {
	// Neighborhood = the point itself plus its k nearest neighbors.
	nb.SetRow(0, data[i*p:(i+1)*p])
	for r, j := range neighbors {
		nb.SetRow(r+1, data[j*p:(j+1)*p])
	}
	stat.CovarianceMatrix(cov, nb, nil)

	var es mat.EigenSym
	if !es.Factorize(cov, true) {
		// Eigensolver failure: recovered by treating every pair involving
		// this point as unreachable rather than aborting the run.
		return subspaceDescriptor{dim: 0, pref: nil}
	}

	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	order := sortEigenDescending(vals, &vecs, p)

	sorted := make([]float64, p)
	total := 0.0
	for rank, col := range order {
		v := vals[col]
		if v < 0 {
			v = 0
		}
		sorted[rank] = v
		total += v
	}

	if total <= degenerateVarianceTol {
		// All neighbors coincide. Fall back to dimension 0 with an identity
		// preference matrix so exact duplicates keep distance 0.
		return subspaceDescriptor{dim: 0, eigenvalues: sorted, pref: identityMatrix(p)}
	}

	dim := correlationDimension(sorted, total, alpha)
	pref := preferenceMatrix(&vecs, order, dim, kappa, p)
	return subspaceDescriptor{dim: dim, eigenvalues: sorted, pref: pref}
}

// sortEigenDescending returns column indices of vecs ordered by descending
// eigenvalue. Exact eigenvalue ties are broken by the eigenvector with the
// larger leading coefficient, keeping the order total and reproducible.
func sortEigenDescending(vals []float64, vecs *mat.Dense, p int) []int {
	order := make([]int, p)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := vals[order[a]], vals[order[b]]
		if va != vb {
			return va > vb
		}
		for r := 0; r < p; r++ {
			ca, cb := vecs.At(r, order[a]), vecs.At(r, order[b])
			if ca != cb {
				return ca > cb
			}
		}
		return order[a] < order[b]
	})
	return order
}

// correlationDimension returns the smallest m such that the top-m
// eigenvalues explain at least alpha of the total variance.
// sorted must be descending; the result is always in [1, p].
func correlationDimension(sorted []float64, total, alpha float64) int {
	threshold := total * (alpha - dimensionSlack)
	cum := 0.0
	for m := 1; m <= len(sorted); m++ {
		cum += sorted[m-1]
		if cum >= threshold {
			return m
		}
	}
	return len(sorted)
}

// preferenceMatrix builds V·diag(w)·Vᵗ with weight 1 for the dim strong
// eigendirections and kappa for the weak ones, flattened row-major.
func preferenceMatrix(vecs *mat.Dense, order []int, dim int, kappa float64, p int) []float64 {
	v := mat.NewDense(p, p, nil)
	w := make([]float64, p)
	for rank, col := range order {
		for r := 0; r < p; r++ {
			v.Set(r, rank, vecs.At(r, col))
		}
		if rank < dim {
			w[rank] = 1
		} else {
			w[rank] = kappa
		}
	}

	var vw, m mat.Dense
	vw.Mul(v, mat.NewDiagDense(p, w))
	m.Mul(&vw, v.T())

	out := make([]float64, p*p)
	for r := 0; r < p; r++ {
		for c := 0; c < p; c++ {
			out[r*p+c] = m.At(r, c)
		}
	}
	return out
}

// identityMatrix returns the p×p identity, flattened row-major.
func identityMatrix(p int) []float64 {
	m := make([]float64, p*p)
	for d := 0; d < p; d++ {
		m[d*p+d] = 1
	}
	return m
}

// correlationDims extracts the per-point correlation dimension vector.
func correlationDims(descs []subspaceDescriptor) []int {
	dims := make([]int, len(descs))
	for i, d := range descs {
		dims[i] = d.dim
	}
	return dims
}
