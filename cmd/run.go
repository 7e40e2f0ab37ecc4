package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/distsim/distsim/sim"
	"github.com/distsim/distsim/sim/algo"
	"github.com/distsim/distsim/sim/trace"
)

var (
	scenarioPath string // Scenario YAML describing topology, synchrony, seed
	topologyKind string // Topology generator when no scenario file is given
	topologySize int    // Number of processes
	seed         int64  // Master seed for the simulator's random source
	stepLimit    int    // Max events to process (0 = unlimited)
	outPath      string // Where the trace document is written
	withHistory  bool   // Whether per-step configurations are retained
)

// runCmd executes the topology-learning algorithm over a scenario and
// persists the resulting trace.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the topology-learning algorithm and write its trace",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := &Scenario{}
		if scenarioPath != "" {
			loaded, err := LoadScenario(scenarioPath)
			if err != nil {
				return err
			}
			sc = loaded
		} else {
			sc.Topology.Kind = topologyKind
			sc.Topology.Size = topologySize
			sc.Synchrony.Kind = "asynchronous"
			sc.Seed = seed
			sc.StepLimit = stepLimit
		}

		system, err := sc.BuildSystem()
		if err != nil {
			return err
		}

		simulator := sim.FromSystem(system, algo.NewLearnGraph(system), sim.Settings{
			Seed:        sc.Seed,
			EnableTrace: withHistory,
			StepLimit:   sc.StepLimit,
		})
		if err := simulator.Start(); err != nil {
			return err
		}
		for _, pid := range sc.StartPids() {
			if err := simulator.Schedule(algo.Start{Signal: sim.Signal{To: pid}}, 0); err != nil {
				return err
			}
		}
		if err := simulator.RunToCompletion(); err != nil {
			return err
		}

		data, err := trace.Encode(simulator.Trace())
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return err
		}
		logrus.Infof("trace written to %s (%d events)", outPath, len(simulator.Trace().EventsList))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario YAML file (overrides topology flags)")
	runCmd.Flags().StringVar(&topologyKind, "topology", "ring", "topology generator: ring, complete, star")
	runCmd.Flags().IntVar(&topologySize, "size", 4, "number of processes")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "seed for the simulator's random source")
	runCmd.Flags().IntVar(&stepLimit, "limit", 0, "maximum number of events to process (0 = unlimited)")
	runCmd.Flags().StringVar(&outPath, "out", "trace.json", "output trace file")
	runCmd.Flags().BoolVar(&withHistory, "history", true, "retain per-step configurations in the trace")
}
