package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/sortbench/internal/config"
	"github.com/verte-zerg/sortbench/internal/dataset"
	"github.com/verte-zerg/sortbench/internal/executor"
	"github.com/verte-zerg/sortbench/internal/features"
	"github.com/verte-zerg/sortbench/internal/generator"
	"github.com/verte-zerg/sortbench/internal/input"
	"github.com/verte-zerg/sortbench/internal/model"
	"github.com/verte-zerg/sortbench/internal/sorting"
	"github.com/verte-zerg/sortbench/internal/stats"
	"github.com/verte-zerg/sortbench/internal/store"
	"github.com/verte-zerg/sortbench/internal/tournament"
)

var (
	valuesFile string

	benchAlgo      string
	benchShape     string
	benchSize      int
	benchSeed      int64
	benchMaxSteps  int64
	benchTimeout   time.Duration
	benchSleepUnit time.Duration

	statsCSV        string
	statsTournament string
	statsShape      string
	statsDBPath     string

	historyDBPath string
)

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the strategy catalogue",
		Args:  cobra.NoArgs,
		RunE:  runAlgorithmsCmd,
	}
}

func runAlgorithmsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := model.TournamentConfig{DefaultSize: sorting.DefaultSize, SizeClasses: fileCfg.SizeClasses}
	if fileCfg.Tournament.DefaultSize != nil {
		cfg.DefaultSize = *fileCfg.Tournament.DefaultSize
	}
	catalogue := sorting.DefaultCatalogue(sorting.Options{})
	classes := sizeClasses(cfg)
	width := 0
	for _, name := range catalogue.Names() {
		width = max(width, len(name))
	}
	w := cmd.OutOrStdout()
	for _, name := range catalogue.Names() {
		if _, err := fmt.Fprintf(w, "%-*s  %d\n", width, name, classes.For(name)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newFeaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features [values...]",
		Short: "Print the feature vector of an array",
		RunE:  runFeaturesCmd,
	}
	cmd.Flags().StringVar(&valuesFile, "file", "", "read values from a file")
	return cmd
}

func runFeaturesCmd(cmd *cobra.Command, args []string) error {
	values, err := readValues(args)
	if err != nil {
		return err
	}
	fv := features.Extract(values)
	lines := []string{
		fmt.Sprintf("length: %d", len(values)),
		fmt.Sprintf("sortedness: %s", dataset.FormatFloat(fv.SortednessPct)),
		fmt.Sprintf("inversions: %d", fv.Inversions),
		fmt.Sprintf("unique_ratio: %s", dataset.FormatFloat(fv.UniqueRatio)),
		fmt.Sprintf("misplaced_count: %d", fv.Misplaced),
		fmt.Sprintf("variance: %s", dataset.FormatFloat(fv.Variance)),
	}
	return writeLines(cmd, lines)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench --algo name [values...]",
		Short: "Run one algorithm through the instrumented executor",
		RunE:  runBenchCmd,
	}
	cmd.Flags().StringVar(&benchAlgo, "algo", "", "algorithm name (see: sortbench algorithms)")
	cmd.Flags().StringVar(&valuesFile, "file", "", "read values from a file")
	cmd.Flags().StringVar(&benchShape, "shape", "", "generate the input with this shape instead of reading values")
	cmd.Flags().IntVar(&benchSize, "size", sorting.DefaultSize, "size of the generated input")
	cmd.Flags().Int64Var(&benchSeed, "seed", 0, "generator seed (0 = time-based)")
	cmd.Flags().Int64Var(&benchMaxSteps, "max-steps", executor.DefaultMaxSteps, "step ceiling")
	cmd.Flags().DurationVar(&benchTimeout, "timeout", executor.DefaultTimeout, "wall-clock ceiling")
	cmd.Flags().DurationVar(&benchSleepUnit, "sleep-unit", sorting.DefaultSleepUnit, "sleep per unit of value for sleep_sort")
	_ = cmd.MarkFlagRequired("algo")
	return cmd
}

func runBenchCmd(cmd *cobra.Command, args []string) error {
	if benchSleepUnit <= 0 {
		return fmt.Errorf("--sleep-unit must be > 0")
	}
	catalogue := sorting.DefaultCatalogue(sorting.Options{SleepUnit: benchSleepUnit})
	strategy, ok := catalogue.Lookup(benchAlgo)
	if !ok {
		return fmt.Errorf("unknown algorithm %q (available: %s)", benchAlgo, strings.Join(catalogue.Names(), ", "))
	}

	var values []int
	if benchShape != "" {
		shape, err := model.ParseShape(benchShape)
		if err != nil {
			return err
		}
		gen, err := generator.New(benchSeed, generator.DefaultMaxValue)
		if err != nil {
			return err
		}
		if values, err = gen.Generate(shape, benchSize); err != nil {
			return err
		}
	} else {
		var err error
		if values, err = readValues(args); err != nil {
			return err
		}
	}

	runner := executor.New(executor.Limits{MaxSteps: benchMaxSteps, Timeout: benchTimeout}, nil)
	res := runner.Execute(cmd.Context(), strategy, values)
	if res.Failed() {
		return writeLines(cmd, []string{
			fmt.Sprintf("algorithm: %s", strategy.Name()),
			fmt.Sprintf("length: %d", len(values)),
			fmt.Sprintf("failed: %v", res.Err),
		})
	}
	return writeLines(cmd, []string{
		fmt.Sprintf("algorithm: %s", strategy.Name()),
		fmt.Sprintf("length: %d", len(values)),
		fmt.Sprintf("steps: %d", res.Steps),
		fmt.Sprintf("seconds: %s", dataset.FormatFloat(res.Seconds)),
	})
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a tournament",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsCSV, "csv", "", "read a dataset file instead of the database")
	cmd.Flags().StringVar(&statsTournament, "tournament", "", "tournament id (default: latest)")
	cmd.Flags().StringVar(&statsShape, "shape", "", "restrict to one array shape")
	cmd.Flags().StringVar(&statsDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	cmd.MarkFlagsMutuallyExclusive("csv", "tournament")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg := model.StatsConfig{
		TournamentID: statsTournament,
		CSVPath:      statsCSV,
	}
	if statsShape != "" {
		shape, err := model.ParseShape(statsShape)
		if err != nil {
			return err
		}
		cfg.Shape = shape
	}

	var report stats.Report
	if cfg.CSVPath != "" {
		r, err := stats.BuildReportFromCSV(cfg.CSVPath, cfg.Shape)
		if err != nil {
			return err
		}
		report = r
	} else {
		st, err := store.Open(statsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		r, err := stats.BuildReport(cmd.Context(), st, cfg)
		if errors.Is(err, store.ErrNoTournaments) {
			logErrln("No tournaments recorded. Generate one with: sortbench")
			return err
		}
		if err != nil {
			return err
		}
		report = r
	}
	return stats.Render(cmd.OutOrStdout(), report)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded tournaments",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(historyDBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	list, err := st.ListTournaments(context.Background())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return writeLines(cmd, []string{"No tournaments recorded."})
	}
	lines := make([]string, 0, len(list))
	for _, t := range list {
		status := "unfinished"
		if t.EndedAt != nil {
			status = t.EndedAt.Sub(t.StartedAt).Truncate(time.Second).String()
		}
		lines = append(lines, fmt.Sprintf("%s  %s  runs=%d failures=%d seed=%d reps=%d  %s  %s",
			t.ID, t.StartedAt.Format("2006-01-02 15:04:05"), t.Runs, t.Failures, t.Seed, t.Repetitions, status, t.OutputPath))
	}
	return writeLines(cmd, lines)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# sortbench configuration
# Uncomment a value to enable it. CLI flags override config values.

[tournament]
# out = %q
# repetitions = %d
# shapes = [%s]
# algorithms = []          # empty = whole catalogue
# default-size = %d
# max-value = %d
# seed = 0                 # 0 = time-based
# max-steps = %d
# timeout = %q
# sleep-unit = %q
# store = true
# db = %q

[size-classes]
# Largest array given to an algorithm; a pairing uses the smaller of the two.
# bogo_sort = 5
# bozo_sort = 5
# quantum_bogo_sort = 5
`,
		dataset.DefaultFilename,
		tournament.DefaultRepetitions,
		quoteAll(shapeNames(model.AllShapes)),
		sorting.DefaultSize,
		generator.DefaultMaxValue,
		executor.DefaultMaxSteps,
		executor.DefaultTimeout.String(),
		sorting.DefaultSleepUnit.String(),
		config.DefaultDBPath(),
	)
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

func readValues(args []string) ([]int, error) {
	if valuesFile != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("pass values as arguments or --file, not both")
		}
		return input.LoadValues(valuesFile)
	}
	return input.ParseValues(args)
}

func writeLines(cmd *cobra.Command, lines []string) error {
	w := cmd.OutOrStdout()
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
