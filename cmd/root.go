// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/queue-sim/queue-sim/sim"
)

var (
	scenarioPath  string
	logLevel      string
	numEvents     int64
	seed          int64
	warmup        int64
	trackEvents   bool
	trackResp     bool
	nReplications int
	confidence    float64
	nThreads      int
)

var rootCmd = &cobra.Command{
	Use:   "queuesim",
	Short: "Discrete-event simulator for open queueing networks",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single simulation from a scenario file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(); err != nil {
			return err
		}
		sc, system, err := buildSystem()
		if err != nil {
			return err
		}
		events, runSeed, warm := overrides(sc)
		logrus.Infof("Starting simulation: %d stations, %d departures, seed=%d",
			system.NumStations(), events, runSeed)

		opts := []sim.SimOption{sim.WithWarmup(warm)}
		if trackResp {
			opts = append(opts, sim.WithResponseTimes())
		}
		if trackEvents {
			opts = append(opts, sim.WithEventLog())
		}
		res, err := system.Sim(events, runSeed, opts...)
		if err != nil {
			return err
		}

		fmt.Println("=== Simulation Results ===")
		fmt.Printf("Mean number in system E[N] : %.6f\n", res.MeanN)
		fmt.Printf("Mean response time   E[T] : %.6f\n", res.MeanT)
		for i := 0; i < system.NumStations(); i++ {
			st := system.Station(i)
			fmt.Printf("Station %d: arrivals=%d completions=%d rejected=%d mean_T=%.6f\n",
				i, st.NumArrivals(), st.NumCompletions(), st.NumRejected(), st.MeanResponseTime())
		}
		if trackEvents {
			fmt.Printf("Logged events             : %d\n", system.EventLog().Len())
		}
		logrus.Info("Simulation complete.")
		return nil
	},
}

var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Run independent replications and report confidence intervals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(); err != nil {
			return err
		}
		sc, system, err := buildSystem()
		if err != nil {
			return err
		}
		events, runSeed, warm := overrides(sc)
		cfg := sim.ReplicationConfig{
			Replications: nReplications,
			NumEvents:    events,
			Seed:         runSeed,
			Warmup:       warm,
			Confidence:   confidence,
			Threads:      nThreads,
		}
		if cfg.Replications == 0 {
			cfg.Replications = sc.Replications
		}
		if sc.Confidence != 0 && !cmd.Flags().Changed("confidence") {
			cfg.Confidence = sc.Confidence
		}
		if sc.Threads != 0 && !cmd.Flags().Changed("threads") {
			cfg.Threads = sc.Threads
		}

		res, err := system.Replicate(cfg)
		if err != nil {
			return err
		}
		loN, hiN := res.CIN()
		loT, hiT := res.CIT()
		fmt.Println("=== Replication Results ===")
		fmt.Printf("Replications              : %d\n", res.Replications)
		fmt.Printf("Confidence level          : %.3f\n", res.Confidence)
		fmt.Printf("E[N] = %.6f ± %.6f  [%.6f, %.6f]\n", res.MeanN, res.CIHalfN, loN, hiN)
		fmt.Printf("E[T] = %.6f ± %.6f  [%.6f, %.6f]\n", res.MeanT, res.CIHalfT, loT, hiT)
		return nil
	},
}

func setLogLevel() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	logrus.SetLevel(level)
	return nil
}

// buildSystem loads the scenario file and constructs the network.
func buildSystem() (*sim.Scenario, *sim.QueueSystem, error) {
	sc, err := sim.LoadScenario(scenarioPath)
	if err != nil {
		return nil, nil, err
	}
	system, err := sc.Build()
	if err != nil {
		return nil, nil, err
	}
	return sc, system, nil
}

// overrides resolves events/seed/warmup between scenario values and flags;
// a flag wins when set.
func overrides(sc *sim.Scenario) (int64, int64, int64) {
	events := sc.NumEvents
	if numEvents > 0 {
		events = numEvents
	}
	runSeed := sc.Seed
	if seed != 0 {
		runSeed = seed
	}
	warm := sc.Warmup
	if warmup > 0 {
		warm = warmup
	}
	return events, runSeed, warm
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "scenario.yaml", "Path to the scenario YAML file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int64Var(&numEvents, "events", 0, "Override: number of system departures to simulate")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Override: simulation seed")
	rootCmd.PersistentFlags().Int64Var(&warmup, "warmup", 0, "Override: departures discarded before measurement")

	runCmd.Flags().BoolVar(&trackEvents, "trace-events", false, "Record the full event trace")
	runCmd.Flags().BoolVar(&trackResp, "track-response-times", false, "Record per-job response times at system exit")

	replicateCmd.Flags().IntVarP(&nReplications, "replications", "R", 0, "Number of independent replications")
	replicateCmd.Flags().Float64Var(&confidence, "confidence", 0.95, "Confidence level in (0, 1)")
	replicateCmd.Flags().IntVar(&nThreads, "threads", 0, "Worker threads (0 = one per CPU)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replicateCmd)
}
