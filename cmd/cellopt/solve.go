package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robocell/celloptimizer/celljson"
	"github.com/robocell/celloptimizer/cellerrors"
	"github.com/robocell/celloptimizer/cellmodel"
	"github.com/robocell/celloptimizer/energyprofile"
	"github.com/robocell/celloptimizer/logging"
	"github.com/robocell/celloptimizer/solver"
	"github.com/robocell/celloptimizer/solver/simplex"
)

func newSolveCmd() *cobra.Command {
	var (
		outPath       string
		paramsPath    string
		timeLimit     time.Duration
		deterministic bool
		dumpTable     bool
	)

	cmd := &cobra.Command{
		Use:   "solve <problem.json>",
		Short: "Solve a cell scheduling problem and print the solution as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(args[0], outPath, paramsPath, timeLimit, deterministic, dumpTable)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "write the solution JSON here instead of stdout")
	cmd.Flags().StringVar(&paramsPath, "params", "", "optional energy-profile parameter override file (YAML/JSON)")
	cmd.Flags().DurationVar(&timeLimit, "time-limit", 0, "wall-clock solve time limit (0 = unbounded)")
	cmd.Flags().BoolVar(&deterministic, "deterministic", true, "disable backend-internal randomized tie-breaking")
	cmd.Flags().BoolVar(&dumpTable, "table", false, "also print a human-readable schedule table to stderr")

	return cmd
}

func runSolve(problemPath, outPath, paramsPath string, timeLimit time.Duration, deterministic, dumpTable bool) error {
	log := logging.NewLogger("cellopt")

	var custom *energyprofile.Parameters
	if paramsPath != "" {
		loaded, err := loadParams(paramsPath)
		if err != nil {
			os.Exit(exitIOError)
		}
		custom = loaded
	}
	estimator := energyprofile.NewEstimator(custom)

	raw, err := os.ReadFile(problemPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitIOError)
	}

	var input celljson.Input
	if err := json.Unmarshal(raw, &input); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitIOError)
	}

	problem, err := input.ToProblem(&estimator)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitValidationError)
	}

	builder := cellmodel.NewBuilder(simplex.New(), log)
	if err := builder.Load(problem); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitValidationError)
	}

	sol, err := builder.Solve(context.Background(), backendOptions(timeLimit, deterministic))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitNonOptimal)
	}

	if dumpTable {
		sol.Dump(os.Stderr)
	}

	out := celljson.FromSolution(sol)
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return cellerrors.Wrap(err, cellerrors.SolverError, "", "marshaling solution")
	}

	if outPath == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitIOError)
	}
	return nil
}

func backendOptions(timeLimit time.Duration, deterministic bool) solver.Options {
	return solver.Options{TimeLimit: timeLimit, Deterministic: deterministic}
}

func loadParams(path string) (*energyprofile.Parameters, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading params file: %w", err)
	}
	var p energyprofile.Parameters
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("decoding params file: %w", err)
	}
	return &p, nil
}
