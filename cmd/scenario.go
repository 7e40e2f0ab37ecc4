package cmd

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/distsim/distsim/sim"
)

// Scenario describes one simulation run: the topology, the synchrony
// model and its parameters, the seed, and where the algorithm starts.
// Durations use Go syntax ("1ms", "250us").
type Scenario struct {
	Topology struct {
		Kind string `yaml:"kind"` // ring, complete, star
		Size int    `yaml:"size"`
	} `yaml:"topology"`
	Synchrony struct {
		Kind  string  `yaml:"kind"` // synchronous, asynchronous, partial, exponential
		Round string  `yaml:"round,omitempty"`
		Base  string  `yaml:"base,omitempty"`
		Bound string  `yaml:"bound,omitempty"`
		Rate  float64 `yaml:"rate,omitempty"`
	} `yaml:"synchrony"`
	Seed      int64 `yaml:"seed"`
	StepLimit int   `yaml:"step_limit,omitempty"`
	Start     []int `yaml:"start"` // pids the Start signal is scheduled at
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &sc, nil
}

// BuildSystem constructs the System the scenario describes.
func (sc *Scenario) BuildSystem() (*sim.System, error) {
	var (
		topology sim.Topology
		err      error
	)
	switch sc.Topology.Kind {
	case "ring":
		topology, err = sim.RingOfSize(sc.Topology.Size)
	case "complete":
		topology, err = sim.CompleteGraphOfSize(sc.Topology.Size)
	case "star":
		topology, err = sim.StarOfSize(sc.Topology.Size)
	default:
		return nil, fmt.Errorf("unknown topology kind %q", sc.Topology.Kind)
	}
	if err != nil {
		return nil, err
	}

	var synchrony sim.SynchronyModel
	switch sc.Synchrony.Kind {
	case "synchronous":
		round, perr := parseDuration(sc.Synchrony.Round, time.Millisecond)
		if perr != nil {
			return nil, perr
		}
		synchrony, err = sim.NewSynchronous(round)
	case "asynchronous", "":
		base, perr := parseDuration(sc.Synchrony.Base, time.Millisecond)
		if perr != nil {
			return nil, perr
		}
		synchrony, err = sim.NewAsynchronous(base)
	case "partial":
		bound, perr := parseDuration(sc.Synchrony.Bound, 10*time.Millisecond)
		if perr != nil {
			return nil, perr
		}
		synchrony, err = sim.NewPartiallySynchronous(bound)
	case "exponential":
		rate := sc.Synchrony.Rate
		if rate == 0 {
			rate = 1000
		}
		synchrony, err = sim.NewStochasticExponential(rate)
	default:
		return nil, fmt.Errorf("unknown synchrony kind %q", sc.Synchrony.Kind)
	}
	if err != nil {
		return nil, err
	}

	return sim.NewSystem(topology, synchrony), nil
}

// StartPids returns the pids the Start signal should be scheduled at,
// defaulting to p1.
func (sc *Scenario) StartPids() []sim.Pid {
	if len(sc.Start) == 0 {
		return []sim.Pid{1}
	}
	pids := make([]sim.Pid, len(sc.Start))
	for i, id := range sc.Start {
		pids[i] = sim.Pid(id)
	}
	return pids
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
