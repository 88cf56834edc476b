package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/queue-sim/queue-sim/sim/dist"
)

// Policy names a service discipline.
type Policy string

const (
	// PolicyFCFS is first-come-first-served, single or multi channel.
	PolicyFCFS Policy = "fcfs"
	// PolicyPS is processor sharing, single or multi channel.
	PolicyPS Policy = "ps"
	// PolicyFB is foreground-background (least attained service), single channel.
	PolicyFB Policy = "fb"
	// PolicySRPT is shortest remaining processing time, single channel.
	PolicySRPT Policy = "srpt"
)

// ParsePolicy converts a scenario string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFCFS, PolicyPS, PolicyFB, PolicySRPT:
		return Policy(s), nil
	}
	return "", fmt.Errorf("%w: unknown policy %q", ErrPolicy, s)
}

// Server is one service station. The engine owns all Server mutable state:
// stations are called sequentially in index order, never concurrently.
//
// A Server reports a time-to-next-completion (TTNC) and is advanced with
// Update(dt); Update returns true iff a job completed during that step.
// Implementations live in this package; the set of policies is closed.
type Server interface {
	// Reset restores all mutable state to initial values so the instance
	// can be reused across runs.
	Reset()
	// Arrival admits one job at the current local clock. Its size comes
	// from the size sampler; FCFS draws it when the job enters service.
	// Precondition: !IsFull().
	Arrival()
	// Update advances the local clock by dt, deducting work from active
	// jobs. Returns true iff a job completed this step.
	Update(dt float64) bool
	// TTNC returns the time until the next completion, +Inf when idle.
	TTNC() float64
	// IsFull reports whether the station is buffered to capacity.
	IsFull() bool
	// Clone copies configuration into a fresh station with reset runtime
	// state, for use by parallel replication workers.
	Clone() Server

	// State is the number of jobs currently resident (queued + in service).
	State() int
	// Clock is the station's local time; equals the global clock at every
	// event boundary.
	Clock() float64
	NumArrivals() int64
	NumCompletions() int64
	NumRejected() int64
	// MeanResponseTime is the incremental mean of response times completed
	// at this station since the last counter reset.
	MeanResponseTime() float64
	// LastResponseTime is the response time of the most recent completion.
	LastResponseTime() float64

	bind(rng *rand.Rand)
	reject()
	resetStats()
}

// station holds the state and counters every policy shares. Policy types
// embed it and own the job containers.
type station struct {
	sizes    dist.Sampler
	rng      *rand.Rand
	channels int // number of service channels (k)
	capacity int // 0 = unlimited

	clock        float64
	state        int
	ttnc         float64
	arrivalTimes []float64 // FIFO arrival stamps; meaning is policy-specific

	numArrivals    int64
	numCompletions int64
	numRejected    int64
	meanT          float64
	lastT          float64
}

func (s *station) bind(rng *rand.Rand) { s.rng = rng }

func (s *station) resetCore() {
	s.clock = 0
	s.state = 0
	s.ttnc = math.Inf(1)
	s.arrivalTimes = s.arrivalTimes[:0]
	s.resetStats()
}

// resetStats zeroes the measurement counters without touching resident jobs.
// Called by the engine at the warmup/measurement boundary.
func (s *station) resetStats() {
	s.numArrivals = 0
	s.numCompletions = 0
	s.numRejected = 0
	s.meanT = 0
	s.lastT = 0
}

// reject counts an offered arrival that was refused because the buffer
// was full. The job never becomes resident.
func (s *station) reject() {
	s.numArrivals++
	s.numRejected++
}

// recordCompletion updates the completion counters and the incremental
// response-time mean with the given response time.
func (s *station) recordCompletion(t float64) {
	s.numCompletions++
	s.lastT = t
	s.meanT += (t - s.meanT) / float64(s.numCompletions)
}

func (s *station) TTNC() float64 { return s.ttnc }

func (s *station) IsFull() bool {
	return s.capacity > 0 && s.state >= s.capacity
}

func (s *station) State() int                { return s.state }
func (s *station) Clock() float64            { return s.clock }
func (s *station) NumArrivals() int64        { return s.numArrivals }
func (s *station) NumCompletions() int64     { return s.numCompletions }
func (s *station) NumRejected() int64        { return s.numRejected }
func (s *station) MeanResponseTime() float64 { return s.meanT }
func (s *station) LastResponseTime() float64 { return s.lastT }

// serverConfig collects NewServer options before validation.
type serverConfig struct {
	channels    int
	capacity    int
	capacitySet bool
}

// Option configures a Server at construction.
type Option func(*serverConfig)

// WithServers sets the number of service channels (k). Only FCFS and PS
// accept k > 1.
func WithServers(k int) Option {
	return func(c *serverConfig) { c.channels = k }
}

// WithCapacity sets the buffer capacity. Arrivals are rejected while the
// resident job count is at capacity.
func WithCapacity(capacity int) Option {
	return func(c *serverConfig) {
		c.capacity = capacity
		c.capacitySet = true
	}
}

// NewServer creates a station with the given service policy and size
// distribution. All validation happens here, before any mutable state
// exists.
func NewServer(policy Policy, sizes dist.Sampler, opts ...Option) (Server, error) {
	if sizes == nil {
		return nil, fmt.Errorf("%w: size sampler must not be nil", ErrConfiguration)
	}
	cfg := serverConfig{channels: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.channels < 1 {
		return nil, fmt.Errorf("%w: number of servers must be >= 1, got %d", ErrConfiguration, cfg.channels)
	}
	if cfg.capacitySet && cfg.capacity < 1 {
		return nil, fmt.Errorf("%w: buffer capacity must be >= 1, got %d", ErrConfiguration, cfg.capacity)
	}

	core := station{
		sizes:    sizes,
		channels: cfg.channels,
		capacity: cfg.capacity,
	}
	core.ttnc = math.Inf(1)

	switch policy {
	case PolicyFCFS:
		if cfg.channels == 1 {
			return &fcfsServer{station: core}, nil
		}
		return &multiFCFSServer{station: core}, nil
	case PolicyPS:
		return &psServer{station: core}, nil
	case PolicyFB:
		if cfg.channels != 1 {
			return nil, fmt.Errorf("%w: FB accepts only num_servers = 1, got %d", ErrPolicy, cfg.channels)
		}
		return &fbServer{station: core}, nil
	case PolicySRPT:
		if cfg.channels != 1 {
			return nil, fmt.Errorf("%w: SRPT accepts only num_servers = 1, got %d", ErrPolicy, cfg.channels)
		}
		return &srptServer{station: core}, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrPolicy, policy)
	}
}

// cloneCore copies configuration into a fresh station with reset state.
func (s *station) cloneCore() station {
	c := station{
		sizes:    s.sizes,
		channels: s.channels,
		capacity: s.capacity,
	}
	c.ttnc = math.Inf(1)
	return c
}
