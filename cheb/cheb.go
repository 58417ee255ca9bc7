// Package cheb evaluates Chebyshev series of the first kind on [-1, 1].
//
// The coefficient convention matches SE1 segment files: the series
// value is c[0]/2 + sum c[k] T_k(x) for k >= 1.  JPL files store the
// full c[0]; the jpl reader doubles it before evaluation.
package cheb

import (
	"fmt"

	"github.com/stotz/sweph/internal/apperr"
)

// Slack allowed past the ends of [-1, 1] before an argument is rejected.
const edgeTol = 1e-12

func checkArgs(coeffs []float64, x float64) error {
	if len(coeffs) == 0 {
		return apperr.ErrEmptyCoefficients
	}
	if x < -1-edgeTol || x > 1+edgeTol {
		return fmt.Errorf("%w: x = %g", apperr.ErrOutOfInterval, x)
	}
	return nil
}

func clenshaw(coeffs []float64, x float64) float64 {
	var b1, b2 float64
	x2 := 2 * x
	for k := len(coeffs) - 1; k >= 1; k-- {
		b1, b2 = x2*b1-b2+coeffs[k], b1
	}
	// Halved leading coefficient.
	return x*b1 - b2 + coeffs[0]/2
}

// Evaluate returns the series value at x in [-1, 1].
func Evaluate(coeffs []float64, x float64) (float64, error) {
	if err := checkArgs(coeffs, x); err != nil {
		return 0, err
	}
	return clenshaw(coeffs, x), nil
}

// derivCoeffs returns the coefficients of the series derivative, in the
// same halved-c0 convention, using the downward recurrence
// d[k-1] = d[k+1] + 2k c[k].
func derivCoeffs(coeffs []float64) []float64 {
	n := len(coeffs)
	if n == 1 {
		return []float64{0}
	}
	d := make([]float64, n-1)
	for k := n - 1; k >= 1; k-- {
		var next float64
		if k+1 < n-1 {
			next = d[k+1]
		}
		d[k-1] = next + 2*float64(k)*coeffs[k]
	}
	return d
}

// EvaluateDerivative returns the series derivative at x with respect to
// the normalized variable.
func EvaluateDerivative(coeffs []float64, x float64) (float64, error) {
	if err := checkArgs(coeffs, x); err != nil {
		return 0, err
	}
	return clenshaw(derivCoeffs(coeffs), x), nil
}

// EvaluateBoth returns the value and derivative at x.  Results are
// identical to the individual calls.
func EvaluateBoth(coeffs []float64, x float64) (float64, float64, error) {
	if err := checkArgs(coeffs, x); err != nil {
		return 0, 0, err
	}
	return clenshaw(coeffs, x), clenshaw(derivCoeffs(coeffs), x), nil
}

// Normalize maps v in [a, b] to [-1, 1].
func Normalize(v, a, b float64) (float64, error) {
	if b <= a {
		return 0, fmt.Errorf("%w: interval [%g, %g]",
			apperr.ErrOutOfInterval, a, b)
	}
	if v < a || v > b {
		return 0, fmt.Errorf("%w: %g not in [%g, %g]",
			apperr.ErrOutOfInterval, v, a, b)
	}
	return 2*(v-a)/(b-a) - 1, nil
}

// Denormalize maps x in [-1, 1] back to [a, b].
func Denormalize(x, a, b float64) (float64, error) {
	if b <= a {
		return 0, fmt.Errorf("%w: interval [%g, %g]",
			apperr.ErrOutOfInterval, a, b)
	}
	if x < -1-edgeTol || x > 1+edgeTol {
		return 0, fmt.Errorf("%w: x = %g", apperr.ErrOutOfInterval, x)
	}
	return a + (x+1)*(b-a)/2, nil
}
