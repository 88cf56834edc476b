package sim

import (
	"math/rand"
	"testing"

	"github.com/queue-sim/queue-sim/sim/dist"
)

// constSampler always returns the same value; used to script exact
// policy mechanics.
type constSampler struct {
	v float64
}

func (c constSampler) Sample(_ *rand.Rand) float64 { return c.v }

// seqSampler returns scripted values in order, then repeats the last one.
// Stateful, so only for single-run mechanics tests.
type seqSampler struct {
	vals []float64
	i    int
}

func (s *seqSampler) Sample(_ *rand.Rand) float64 {
	v := s.vals[s.i]
	if s.i < len(s.vals)-1 {
		s.i++
	}
	return v
}

func mustServer(t *testing.T, policy Policy, sizes dist.Sampler, opts ...Option) Server {
	t.Helper()
	s, err := NewServer(policy, sizes, opts...)
	if err != nil {
		t.Fatalf("NewServer(%s): %v", policy, err)
	}
	return s
}

func mustExp(t *testing.T, mu float64) dist.Sampler {
	t.Helper()
	s, err := dist.NewExponential(mu)
	if err != nil {
		t.Fatalf("NewExponential(%v): %v", mu, err)
	}
	return s
}

func mustUniform(t *testing.T, a, b float64) dist.Sampler {
	t.Helper()
	s, err := dist.NewUniform(a, b)
	if err != nil {
		t.Fatalf("NewUniform(%v, %v): %v", a, b, err)
	}
	return s
}

// mm1System builds a single-station FCFS network with Exp(mu) service and
// Exp(lam) arrivals.
func mm1System(t *testing.T, lam, mu float64, opts ...Option) *QueueSystem {
	t.Helper()
	server := mustServer(t, PolicyFCFS, mustExp(t, mu), opts...)
	q, err := NewQueueSystem([]Server{server}, mustExp(t, lam))
	if err != nil {
		t.Fatalf("NewQueueSystem: %v", err)
	}
	return q
}

// bound resets a Server and attaches a throwaway RNG so it can be driven
// directly in mechanics tests, outside an engine.
func bound(t *testing.T, s Server) Server {
	t.Helper()
	s.Reset()
	s.bind(rand.New(rand.NewSource(1)))
	return s
}
