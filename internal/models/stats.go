package models

import (
	"math"

	"golfpulse/pkg/contracts/domain"
)

// Chi-square quantiles for two degrees of freedom. They scale the
// covariance ellipse axes to the 68% and 95% coverage levels.
const (
	chiSquare68 = 2.27886856637673
	chiSquare95 = 5.991464547107979
)

// minEllipsePoints is the smallest sample an ellipse is fitted on.
const minEllipsePoints = 5

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// mean returns the arithmetic mean, 0 on an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator).
// Fewer than two values yield 0.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// presentMean averages only the finite values. All-missing input yields
// 0 so payloads stay JSON-encodable.
func presentMean(values []float64) float64 {
	return mean(presentValues(values))
}

// presentStdDev is the sample standard deviation over the finite values.
func presentStdDev(values []float64) float64 {
	return sampleStdDev(presentValues(values))
}

// presentValues filters a slice down to its finite entries.
func presentValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// column extracts one measure from a shot series.
func column(shots []domain.Shot, pick func(domain.Shot) float64) []float64 {
	out := make([]float64, len(shots))
	for i, s := range shots {
		out[i] = pick(s)
	}
	return out
}

// fairwayPercent returns the share of shots inside the fairway band, as
// a percentage. Empty input yields 0.
func fairwayPercent(shots []domain.Shot) float64 {
	if len(shots) == 0 {
		return 0
	}
	in := 0
	for _, s := range shots {
		if s.IsFairway() {
			in++
		}
	}
	return float64(in) / float64(len(shots)) * 100
}

// extraMean averages a non-canonical column by its export header, trying
// the given keys in order per shot. Returns 0 when no shot carries any
// of the keys.
func extraMean(shots []domain.Shot, keys ...string) float64 {
	var vals []float64
	for _, s := range shots {
		for _, k := range keys {
			if v, ok := s.Extra[k]; ok && isFinite(v) {
				vals = append(vals, v)
				break
			}
		}
	}
	return mean(vals)
}

// optMeasure converts an optional measure to a pointer, nil when the
// export lacked the column. encoding/json cannot carry NaN.
func optMeasure(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

// covarianceEllipse fits a confidence ellipse to the finite (x, y)
// pairs. A level within 0.02 of 0.68 selects the 68% chi-square
// quantile, anything else the 95% one. Returns nil below five usable
// pairs.
func covarianceEllipse(xs, ys []float64, level float64) *Ellipse {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	fx := make([]float64, 0, n)
	fy := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			fx = append(fx, xs[i])
			fy = append(fy, ys[i])
		}
	}
	if len(fx) < minEllipsePoints {
		return nil
	}

	mx := mean(fx)
	my := mean(fy)
	var sxx, syy, sxy float64
	for i := range fx {
		dx := fx[i] - mx
		dy := fy[i] - my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	den := float64(len(fx) - 1)
	sxx /= den
	syy /= den
	sxy /= den

	// Closed-form eigen decomposition of the 2x2 symmetric covariance
	// matrix, eigenvalues in descending order.
	tr := sxx + syy
	disc := math.Sqrt((sxx-syy)*(sxx-syy) + 4*sxy*sxy)
	major := (tr + disc) / 2
	minor := (tr - disc) / 2

	// (sxy, major-sxx) is an eigenvector of the larger eigenvalue
	// unless the matrix is already diagonal.
	var angle float64
	if sxy != 0 {
		angle = math.Atan2(major-sxx, sxy)
	} else if syy > sxx {
		angle = math.Pi / 2
	}

	chi2 := chiSquare95
	if math.Abs(level-0.68) < 0.02 {
		chi2 = chiSquare68
	}

	return &Ellipse{
		CenterX:  mx,
		CenterY:  my,
		Width:    2 * math.Sqrt(math.Max(major, 0)*chi2),
		Height:   2 * math.Sqrt(math.Max(minor, 0)*chi2),
		AngleDeg: angle * 180 / math.Pi,
		Level:    level,
	}
}
