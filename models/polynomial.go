package models

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// polynomials in the backshift operator B are stored lowest degree first with a leading 1

func polyMul(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}

// arPoly returns 1 - sum(coef_i B^(i*step))
func arPoly(coef []float64, step int) []float64 {
	p := make([]float64, len(coef)*step+1)
	p[0] = 1
	for i, c := range coef {
		p[(i+1)*step] = -c
	}
	return p
}

// maPoly returns 1 + sum(coef_i B^(i*step))
func maPoly(coef []float64, step int) []float64 {
	p := make([]float64, len(coef)*step+1)
	p[0] = 1
	for i, c := range coef {
		p[(i+1)*step] = c
	}
	return p
}

// diffPoly returns (1-B)^d (1-B^s)^sd
func diffPoly(d, sd, s int) []float64 {
	p := []float64{1}
	for i := 0; i < d; i++ {
		p = polyMul(p, []float64{1, -1})
	}
	if sd > 0 {
		seasonal := make([]float64, s+1)
		seasonal[0] = 1
		seasonal[s] = -1
		for i := 0; i < sd; i++ {
			p = polyMul(p, seasonal)
		}
	}
	return p
}

// applyPoly filters y through the polynomial, dropping the first len(poly)-1 observations
// which lack a full history.
func applyPoly(poly, y []float64) []float64 {
	lag := len(poly) - 1
	if len(y) <= lag {
		return nil
	}
	out := make([]float64, 0, len(y)-lag)
	for t := lag; t < len(y); t++ {
		var v float64
		for k, c := range poly {
			if c == 0 {
				continue
			}
			v += c * y[t-k]
		}
		out = append(out, v)
	}
	return out
}

// psiWeights expands num(B)/den(B) into its first n moving average weights. den must have a
// leading coefficient of 1.
func psiWeights(num, den []float64, n int) []float64 {
	psi := make([]float64, n)
	for j := 0; j < n; j++ {
		var v float64
		if j < len(num) {
			v = num[j]
		}
		for k := 1; k < len(den) && k <= j; k++ {
			v -= den[k] * psi[j-k]
		}
		psi[j] = v
	}
	return psi
}

// isStable reports whether all roots of the polynomial 1 + a_1 B + ... + a_k B^k lie outside
// the unit circle, which is the stationarity condition for an AR polynomial and the
// invertibility condition for an MA polynomial.
func isStable(poly []float64) bool {
	k := len(poly) - 1
	for k > 0 && poly[k] == 0 {
		k--
	}
	switch k {
	case 0:
		return true
	case 1:
		return math.Abs(poly[1]) < 1
	}

	// roots of the reciprocal polynomial z^k + a_1 z^(k-1) + ... + a_k are the eigenvalues of
	// its companion matrix and must lie inside the unit circle
	companion := mat.NewDense(k, k, nil)
	for j := 0; j < k; j++ {
		companion.Set(0, j, -poly[j+1])
	}
	for i := 1; i < k; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return false
	}
	for _, v := range eig.Values(nil) {
		if cmplx.Abs(v) >= 1 {
			return false
		}
	}
	return true
}
