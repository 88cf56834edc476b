package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/queue-sim/queue-sim/sim/dist"
)

// StationSpec describes one station of a scenario file.
type StationSpec struct {
	Policy   string    `yaml:"policy"`
	Servers  int       `yaml:"servers,omitempty"`
	Capacity int       `yaml:"capacity,omitempty"`
	Sizes    dist.Spec `yaml:"sizes"`
}

// Scenario is a complete simulation description, loadable from YAML.
type Scenario struct {
	Seed             int64         `yaml:"seed"`
	NumEvents        int64         `yaml:"num_events"`
	Warmup           int64         `yaml:"warmup,omitempty"`
	Arrival          dist.Spec     `yaml:"arrival"`
	Stations         []StationSpec `yaml:"stations"`
	TransitionMatrix [][]float64   `yaml:"transition_matrix,omitempty"`

	// Replication settings; Replications == 0 means a single run.
	Replications int     `yaml:"replications,omitempty"`
	Confidence   float64 `yaml:"confidence,omitempty"`
	Threads      int     `yaml:"threads,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Build constructs the QueueSystem a scenario describes. All validation
// errors surface here, before any simulation state exists.
func (sc *Scenario) Build() (*QueueSystem, error) {
	if len(sc.Stations) == 0 {
		return nil, fmt.Errorf("%w: scenario has no stations", ErrConfiguration)
	}

	arrival, err := dist.New(sc.Arrival)
	if err != nil {
		return nil, fmt.Errorf("%w: arrival distribution: %v", ErrConfiguration, err)
	}

	servers := make([]Server, 0, len(sc.Stations))
	for i, spec := range sc.Stations {
		policy, err := ParsePolicy(spec.Policy)
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", i, err)
		}
		sizes, err := dist.New(spec.Sizes)
		if err != nil {
			return nil, fmt.Errorf("%w: station %d size distribution: %v", ErrConfiguration, i, err)
		}
		opts := make([]Option, 0, 2)
		if spec.Servers > 0 {
			opts = append(opts, WithServers(spec.Servers))
		}
		if spec.Capacity != 0 {
			opts = append(opts, WithCapacity(spec.Capacity))
		}
		server, err := NewServer(policy, sizes, opts...)
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", i, err)
		}
		servers = append(servers, server)
	}

	var sysOpts []SystemOption
	if len(sc.TransitionMatrix) > 0 {
		sysOpts = append(sysOpts, WithTransitionMatrix(sc.TransitionMatrix))
	}
	return NewQueueSystem(servers, arrival, sysOpts...)
}
