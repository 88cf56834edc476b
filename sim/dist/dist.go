package dist

import (
	"fmt"
	"math"
	"math/rand"
)

// Sampler generates nonnegative random variates. Samplers are stateless:
// all randomness comes from the *rand.Rand passed to Sample, so the same
// Sampler value may be shared across simulation runs and replications.
type Sampler interface {
	// Sample returns a nonnegative variate drawn from the distribution.
	Sample(rng *rand.Rand) float64
}

// Exponential samples from Exponential(mu) with mean 1/mu.
type Exponential struct {
	mu float64
}

// NewExponential creates an Exponential sampler with rate mu > 0.
func NewExponential(mu float64) (*Exponential, error) {
	if mu <= 0 || math.IsInf(mu, 0) || math.IsNaN(mu) {
		return nil, fmt.Errorf("exponential rate must be positive and finite, got %v", mu)
	}
	return &Exponential{mu: mu}, nil
}

func (e *Exponential) Sample(rng *rand.Rand) float64 {
	// Inverse CDF on 1-U so the argument of Log stays in (0, 1].
	return -math.Log(1.0-rng.Float64()) / e.mu
}

// Uniform samples from Uniform(a, b) with 0 <= a <= b.
type Uniform struct {
	a, b float64
}

// NewUniform creates a Uniform sampler on [a, b].
func NewUniform(a, b float64) (*Uniform, error) {
	if a < 0 || b < a {
		return nil, fmt.Errorf("uniform bounds must satisfy 0 <= a <= b, got a=%v b=%v", a, b)
	}
	return &Uniform{a: a, b: b}, nil
}

func (u *Uniform) Sample(rng *rand.Rand) float64 {
	return u.a + (u.b-u.a)*rng.Float64()
}

// BoundedPareto samples from BoundedPareto(k, p, alpha): a Pareto
// distribution with shape alpha truncated to [k, p]. Heavy-tailed job
// sizes with a finite upper bound.
type BoundedPareto struct {
	k, p, alpha float64
	c           float64 // normalisation constant k^alpha / (1 - (k/p)^alpha)
}

// NewBoundedPareto creates a BoundedPareto sampler with 0 < k < p and alpha > 0.
func NewBoundedPareto(k, p, alpha float64) (*BoundedPareto, error) {
	if k <= 0 || p <= k {
		return nil, fmt.Errorf("bounded pareto requires 0 < k < p, got k=%v p=%v", k, p)
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("bounded pareto shape must be positive, got alpha=%v", alpha)
	}
	c := math.Pow(k, alpha) / (1.0 - math.Pow(k/p, alpha))
	return &BoundedPareto{k: k, p: p, alpha: alpha, c: c}, nil
}

func (b *BoundedPareto) Sample(rng *rand.Rand) float64 {
	u := rng.Float64()
	return math.Pow(-u/b.c+math.Pow(b.k, -b.alpha), -1.0/b.alpha)
}

// Bernoulli samples 1 with probability p, else 0.
type Bernoulli struct {
	p float64
}

// NewBernoulli creates a Bernoulli sampler with success probability p in [0, 1].
func NewBernoulli(p float64) (*Bernoulli, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("bernoulli probability must be in [0, 1], got %v", p)
	}
	return &Bernoulli{p: p}, nil
}

func (b *Bernoulli) Sample(rng *rand.Rand) float64 {
	if rng.Float64() <= b.p {
		return 1
	}
	return 0
}
