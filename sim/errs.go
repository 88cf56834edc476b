package sim

import "errors"

// Sentinel errors for the validation surface. Callers match with errors.Is;
// constructors wrap these with context via fmt.Errorf("%w: ...").
var (
	// ErrConfiguration covers invalid buffer capacities, replication counts,
	// confidence levels, and sampler parameters.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTopology covers transition matrices with the wrong shape, rows not
	// summing to 1, or negative probabilities.
	ErrTopology = errors.New("invalid topology")

	// ErrPolicy covers a policy constructed with unsupported options, such as
	// FB or SRPT with more than one server channel.
	ErrPolicy = errors.New("invalid policy")

	// ErrEmptyLog is returned when reconstructing per-station states from an
	// event log that recorded nothing.
	ErrEmptyLog = errors.New("event log is empty")
)
