package sim

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// ReplicationConfig parameterizes a Replicate call.
type ReplicationConfig struct {
	// Replications is the number of independent runs (>= 2).
	Replications int
	// NumEvents is the per-replication departure target.
	NumEvents int64
	// Seed is the base seed; per-replication seeds are derived from it
	// with SplitMix64.
	Seed int64
	// Warmup departures discarded per replication before measurement.
	Warmup int64
	// Confidence level for the intervals, in (0, 1). Zero defaults to 0.95.
	Confidence float64
	// Threads caps the number of concurrent workers. Zero means one per CPU.
	Threads int
}

// clone copies the topology for a replication worker: cloned stations,
// the shared stateless samplers, and the read-only transition matrix.
func (q *QueueSystem) clone() *QueueSystem {
	servers := make([]Server, len(q.servers))
	for i, s := range q.servers {
		servers[i] = s.Clone()
	}
	return &QueueSystem{servers: servers, arrival: q.arrival, matrix: q.matrix}
}

// Replicate runs independent replications of this system, in parallel up
// to cfg.Threads workers, and aggregates Student-t confidence intervals.
//
// Each worker owns a cloned topology and an independently seeded random
// stream, so the raw result vectors are identical for any thread count
// given the same base seed.
func (q *QueueSystem) Replicate(cfg ReplicationConfig) (*ReplicationResult, error) {
	if cfg.Replications < 2 {
		return nil, fmt.Errorf("%w: n_replications must be >= 2, got %d", ErrConfiguration, cfg.Replications)
	}
	if cfg.NumEvents < 1 {
		return nil, fmt.Errorf("%w: num_events must be >= 1, got %d", ErrConfiguration, cfg.NumEvents)
	}
	if cfg.Warmup < 0 {
		return nil, fmt.Errorf("%w: warmup must be >= 0, got %d", ErrConfiguration, cfg.Warmup)
	}
	confidence := cfg.Confidence
	if confidence == 0 {
		confidence = 0.95
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("%w: confidence must be in (0, 1), got %v", ErrConfiguration, confidence)
	}
	threads := cfg.Threads
	if threads < 0 {
		return nil, fmt.Errorf("%w: n_threads must be >= 0, got %d", ErrConfiguration, cfg.Threads)
	}
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	if threads > cfg.Replications {
		threads = cfg.Replications
	}

	logrus.Debugf("replicate: R=%d events=%d seed=%d threads=%d", cfg.Replications, cfg.NumEvents, cfg.Seed, threads)

	// Workers write disjoint indices; aggregation happens after the join.
	rawN := make([]float64, cfg.Replications)
	rawT := make([]float64, cfg.Replications)
	errs := make([]error, cfg.Replications)

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				worker := q.clone()
				res, err := worker.Sim(cfg.NumEvents, DeriveSeed(cfg.Seed, i), WithWarmup(cfg.Warmup))
				if err != nil {
					errs[i] = err
					continue
				}
				rawN[i] = res.MeanN
				rawT[i] = res.MeanT
			}
		}()
	}
	for i := 0; i < cfg.Replications; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("replication %d: %w", i, err)
		}
	}

	return newReplicationResult(rawN, rawT, confidence)
}
