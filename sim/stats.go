package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// tQuantile returns t such that P(T <= t) = p for Student's t with df
// degrees of freedom, approximately: a normal quantile (Abramowitz & Stegun
// 26.2.23, error below 4.5e-4) corrected by a four-term series in 1/df.
// The error shrinks as df grows: about 1e-3 at df = 5, p = 0.975, and
// within 1e-2 for df >= 5 at the probabilities the tests check. For very
// small df it is large (about 11.3 against an exact 12.71 at df = 1,
// p = 0.975).
func tQuantile(p float64, df int) (float64, error) {
	if !(p > 0 && p < 1) {
		return 0, fmt.Errorf("%w: t-quantile probability must be in (0, 1), got %v", ErrConfiguration, p)
	}
	if df < 1 {
		return 0, fmt.Errorf("%w: t-quantile degrees of freedom must be >= 1, got %d", ErrConfiguration, df)
	}

	// Symmetry: only the upper tail is computed directly.
	if p < 0.5 {
		t, err := tQuantile(1.0-p, df)
		return -t, err
	}

	// Normal quantile via Abramowitz & Stegun 26.2.23.
	a := math.Sqrt(-2.0 * math.Log(1.0-p))
	zp := a - (2.515517+0.802853*a+0.010328*a*a)/
		(1.0+1.432788*a+0.189269*a*a+0.001308*a*a*a)

	// Hill's correction from normal to t.
	z3 := zp * zp * zp
	z5 := z3 * zp * zp
	z7 := z5 * zp * zp
	z9 := z7 * zp * zp
	g1 := (z3 + zp) / 4.0
	g2 := (5*z5 + 16*z3 + 3*zp) / 96.0
	g3 := (3*z7 + 19*z5 + 17*z3 - 15*zp) / 384.0
	g4 := (79*z9 + 776*z7 + 1482*z5 - 1920*z3 - 945*zp) / 92160.0

	d := float64(df)
	return zp + g1/d + g2/(d*d) + g3/(d*d*d) + g4/(d*d*d*d), nil
}

// ciHalfWidth returns the half-width of a confidence-level CI for the mean
// of values, using the sample standard deviation (n-1 denominator) and the
// Student-t quantile.
func ciHalfWidth(values []float64, confidence float64) (float64, error) {
	n := len(values)
	if n < 2 {
		return 0, fmt.Errorf("%w: need at least 2 values for a confidence interval, got %d", ErrConfiguration, n)
	}
	s := stat.StdDev(values, nil)
	alpha := 1.0 - confidence
	t, err := tQuantile(1.0-alpha/2.0, n-1)
	if err != nil {
		return 0, err
	}
	return t * s / math.Sqrt(float64(n)), nil
}

// ReplicationResult aggregates the outputs of independent simulation
// replications.
type ReplicationResult struct {
	MeanN        float64
	MeanT        float64
	CIHalfN      float64
	CIHalfT      float64
	Confidence   float64
	Replications int
	RawN         []float64
	RawT         []float64
}

// CIN returns the confidence interval for E[N] as (lower, upper).
func (r *ReplicationResult) CIN() (float64, float64) {
	return r.MeanN - r.CIHalfN, r.MeanN + r.CIHalfN
}

// CIT returns the confidence interval for E[T] as (lower, upper).
func (r *ReplicationResult) CIT() (float64, float64) {
	return r.MeanT - r.CIHalfT, r.MeanT + r.CIHalfT
}

// newReplicationResult builds a ReplicationResult from raw per-replication
// vectors.
func newReplicationResult(rawN, rawT []float64, confidence float64) (*ReplicationResult, error) {
	halfN, err := ciHalfWidth(rawN, confidence)
	if err != nil {
		return nil, err
	}
	halfT, err := ciHalfWidth(rawT, confidence)
	if err != nil {
		return nil, err
	}
	return &ReplicationResult{
		MeanN:        stat.Mean(rawN, nil),
		MeanT:        stat.Mean(rawT, nil),
		CIHalfN:      halfN,
		CIHalfT:      halfT,
		Confidence:   confidence,
		Replications: len(rawN),
		RawN:         rawN,
		RawT:         rawT,
	}, nil
}
