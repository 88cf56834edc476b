package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/queue-sim/queue-sim/sim/dist"
)

// rowSumTolerance bounds how far a transition-matrix row may drift from 1.
const rowSumTolerance = 1e-9

// QueueSystem coordinates an ordered set of stations into an open queueing
// network. The execution is event driven: stations report the time until
// their next completion back to the system, which advances a global clock
// by the minimum of those and the time to the next external arrival.
//
// A QueueSystem owns its stations for its lifetime and runs strictly
// single-threaded within one simulation.
type QueueSystem struct {
	servers []Server
	arrival dist.Sampler
	matrix  [][]float64 // nil = deterministic tandem routing
	rng     *rand.Rand

	responseTimes []float64
	eventLog      *EventLog
}

// SystemOption configures a QueueSystem at construction.
type SystemOption func(*QueueSystem)

// WithTransitionMatrix routes completed jobs probabilistically. The matrix
// must be n x (n+1): entry [i][j] for j < n is the probability that a job
// completing at station i enters station j; entry [i][n] is the exit
// probability. Each row must sum to 1 within 1e-9.
func WithTransitionMatrix(m [][]float64) SystemOption {
	return func(q *QueueSystem) { q.matrix = m }
}

// NewQueueSystem creates an engine over the given stations. External
// arrivals enter at station 0 with inter-arrival times drawn from the
// arrival sampler. Without a transition matrix, routing is deterministic
// tandem: station i feeds station i+1 and the last station exits.
//
// All validation happens here, before any simulation state exists.
func NewQueueSystem(servers []Server, arrival dist.Sampler, opts ...SystemOption) (*QueueSystem, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("%w: at least one server is required", ErrConfiguration)
	}
	for i, s := range servers {
		if s == nil {
			return nil, fmt.Errorf("%w: server %d is nil", ErrConfiguration, i)
		}
	}
	if arrival == nil {
		return nil, fmt.Errorf("%w: arrival sampler must not be nil", ErrConfiguration)
	}

	q := &QueueSystem{servers: servers, arrival: arrival}
	for _, opt := range opts {
		opt(q)
	}
	if err := q.validateMatrix(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *QueueSystem) validateMatrix() error {
	if q.matrix == nil {
		return nil
	}
	n := len(q.servers)
	if len(q.matrix) != n {
		return fmt.Errorf("%w: transition matrix must have %d rows (one per server), got %d",
			ErrTopology, n, len(q.matrix))
	}
	for i, row := range q.matrix {
		if len(row) != n+1 {
			return fmt.Errorf("%w: transition matrix row %d must have %d columns (last = exit probability), got %d",
				ErrTopology, i, n+1, len(row))
		}
		sum := 0.0
		for j, p := range row {
			if p < 0 {
				return fmt.Errorf("%w: transition matrix entry [%d][%d] is negative: %v", ErrTopology, i, j, p)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > rowSumTolerance {
			return fmt.Errorf("%w: transition matrix row %d sums to %v, want 1.0", ErrTopology, i, sum)
		}
	}
	return nil
}

// NumStations returns the number of stations in the network.
func (q *QueueSystem) NumStations() int { return len(q.servers) }

// Station returns station i for counter inspection after a run.
func (q *QueueSystem) Station(i int) Server { return q.servers[i] }

// ResponseTimes returns the per-job response times recorded at system exit
// by the most recent Sim call with WithResponseTimes. Each entry is the
// last response time of the station the job exited from.
func (q *QueueSystem) ResponseTimes() []float64 { return q.responseTimes }

// EventLog returns the trace recorded by the most recent Sim call with
// WithEventLog, or nil.
func (q *QueueSystem) EventLog() *EventLog { return q.eventLog }

// Result holds the time-averaged outputs of one simulation run.
type Result struct {
	// MeanN is the time-averaged number of jobs in the system.
	MeanN float64
	// MeanT is the mean response time, derived from the area under N and
	// the departure count via Little's Law.
	MeanT float64
}

type simConfig struct {
	warmup         int64
	trackResponses bool
	trackEvents    bool
}

// SimOption configures a single Sim call.
type SimOption func(*simConfig)

// WithWarmup discards the first n system departures before measurement
// begins. The random stream is not reset at the boundary.
func WithWarmup(n int64) SimOption {
	return func(c *simConfig) { c.warmup = n }
}

// WithResponseTimes records one response time per system departure,
// readable via ResponseTimes after the run.
func WithResponseTimes() SimOption {
	return func(c *simConfig) { c.trackResponses = true }
}

// WithEventLog records the full event trace, readable via EventLog after
// the run.
func WithEventLog() SimOption {
	return func(c *simConfig) { c.trackEvents = true }
}

// runState carries the network-level state across the warmup and
// measurement phases of one run.
type runState struct {
	clock      float64
	stateTotal int
	areaN      float64
	departures int64
	ttna       float64
	completed  []int
}

// Sim runs the network until numEvents system departures have occurred in
// the measurement phase and returns the time-averaged metrics. The run is
// deterministic given the seed.
func (q *QueueSystem) Sim(numEvents int64, seed int64, opts ...SimOption) (Result, error) {
	if numEvents < 1 {
		return Result{}, fmt.Errorf("%w: num_events must be >= 1, got %d", ErrConfiguration, numEvents)
	}
	var cfg simConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.warmup < 0 {
		return Result{}, fmt.Errorf("%w: warmup must be >= 0, got %d", ErrConfiguration, cfg.warmup)
	}

	q.rng = newRunRNG(seed)
	for _, s := range q.servers {
		s.Reset()
		s.bind(q.rng)
	}
	q.responseTimes = nil
	q.eventLog = nil
	if cfg.trackResponses {
		q.responseTimes = make([]float64, 0, numEvents)
	}
	if cfg.trackEvents {
		q.eventLog = NewEventLog()
	}

	st := &runState{ttna: q.arrival.Sample(q.rng)}

	if cfg.warmup > 0 {
		logrus.Debugf("warmup: running %d departures before measurement", cfg.warmup)
		q.run(st, cfg.warmup, false)
		st.areaN = 0
		st.departures = 0
		for _, s := range q.servers {
			s.resetStats()
		}
	}
	windowStart := st.clock

	q.run(st, numEvents, true)

	window := st.clock - windowStart
	meanN := 0.0
	if window > 0 {
		meanN = st.areaN / window
	}
	meanT := st.areaN / math.Max(1, float64(st.departures))
	logrus.Debugf("sim done: clock=%.4f departures=%d E[N]=%.4f E[T]=%.4f",
		st.clock, st.departures, meanN, meanT)
	return Result{MeanN: meanN, MeanT: meanT}, nil
}

// run advances the network until target departures have occurred in this
// phase. track enables response-time and event recording (measurement
// phase only).
func (q *QueueSystem) run(st *runState, target int64, track bool) {
	for st.departures < target {
		// 1-2. Next event horizon: minimum station TTNC vs next arrival.
		ttncMin := math.Inf(1)
		for _, s := range q.servers {
			ttncMin = math.Min(ttncMin, s.TTNC())
		}
		dt := math.Min(ttncMin, st.ttna)

		// 3. Advance the global clock and the area integral.
		st.clock += dt
		st.areaN += float64(st.stateTotal) * dt

		// 4. Advance every station; collect all completions before routing
		// anything, so stations with identical TTNCs complete together.
		st.completed = st.completed[:0]
		for i, s := range q.servers {
			if s.Update(dt) {
				st.completed = append(st.completed, i)
			}
		}

		// 5. Route completed jobs in station index order.
		for _, i := range st.completed {
			q.dispatch(st, i, track)
		}

		// 6-7. Tie-break rule: completions above were processed before an
		// arrival landing at the same instant.
		if st.ttna <= ttncMin {
			start := q.servers[0]
			if start.IsFull() {
				start.reject()
				if track && q.eventLog != nil {
					q.eventLog.append(st.clock, EventRejection, External, 0, st.stateTotal)
				}
			} else {
				st.stateTotal++
				start.Arrival()
				if track && q.eventLog != nil {
					q.eventLog.append(st.clock, EventArrival, External, 0, st.stateTotal)
				}
			}
			st.ttna = q.arrival.Sample(q.rng)
		} else {
			st.ttna -= dt
		}
	}
}

// dispatch routes the job that just completed at station i: back into the
// network, out of the system, or into a full buffer (terminal loss).
func (q *QueueSystem) dispatch(st *runState, i int, track bool) {
	dest, exits := q.route(i)
	if exits {
		st.departures++
		st.stateTotal--
		if track && q.responseTimes != nil {
			q.responseTimes = append(q.responseTimes, q.servers[i].LastResponseTime())
		}
		if track && q.eventLog != nil {
			q.eventLog.append(st.clock, EventDeparture, i, SystemExit, st.stateTotal)
		}
		return
	}

	next := q.servers[dest]
	if next.IsFull() {
		// Finite-buffer loss is terminal: the job leaves the system and
		// counts toward the departure target.
		next.reject()
		st.departures++
		st.stateTotal--
		if track && q.responseTimes != nil {
			q.responseTimes = append(q.responseTimes, q.servers[i].LastResponseTime())
		}
		if track && q.eventLog != nil {
			q.eventLog.append(st.clock, EventRejection, i, dest, st.stateTotal)
		}
		return
	}

	next.Arrival()
	if track && q.eventLog != nil {
		q.eventLog.append(st.clock, EventRoute, i, dest, st.stateTotal)
	}
}

// route picks the destination for a job completing at station i. Tandem
// routing draws nothing; matrix routing draws exactly one uniform.
func (q *QueueSystem) route(i int) (next int, exits bool) {
	n := len(q.servers)
	if q.matrix == nil {
		if i == n-1 {
			return SystemExit, true
		}
		return i + 1, false
	}

	u := q.rng.Float64()
	acc := 0.0
	for j, p := range q.matrix[i] {
		acc += p
		if u < acc {
			if j == n {
				return SystemExit, true
			}
			return j, false
		}
	}
	// Row sums to 1 within tolerance; attribute the residual mass to exit.
	return SystemExit, true
}
