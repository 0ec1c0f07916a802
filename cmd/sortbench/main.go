// Package main provides the CLI entrypoint for sortbench.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/sortbench/internal/config"
	"github.com/verte-zerg/sortbench/internal/dataset"
	"github.com/verte-zerg/sortbench/internal/executor"
	"github.com/verte-zerg/sortbench/internal/generator"
	"github.com/verte-zerg/sortbench/internal/model"
	"github.com/verte-zerg/sortbench/internal/sorting"
	"github.com/verte-zerg/sortbench/internal/store"
	"github.com/verte-zerg/sortbench/internal/tournament"
	"github.com/verte-zerg/sortbench/internal/tui"
)

var (
	genOut         string
	genRepetitions int
	genShapes      []string
	genAlgorithms  []string
	genDefaultSize int
	genMaxValue    int
	genSeed        int64
	genMaxSteps    int64
	genTimeout     time.Duration
	genSleepUnit   time.Duration
	genStore       bool
	genDBPath      string
	genPlain       bool
)

var logLevel = new(slog.LevelVar)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sortbench",
		Short: "Sorting algorithm tournament and dataset generator",
		Long: `sortbench pits sorting algorithms against each other on synthetic arrays
and writes a labelled CSV dataset: one row per algorithm per run, with the
array's structural features, the step count, the wall-clock time and
whether the algorithm beat its opponent.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runGenerateCmd,
	}

	debugLogging := rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			logLevel.Set(slog.LevelDebug)
		}
	}

	flags := rootCmd.Flags()
	flags.StringVar(&genOut, "out", dataset.DefaultFilename, "output CSV path")
	flags.IntVar(&genRepetitions, "repetitions", tournament.DefaultRepetitions, "runs per shape and pair")
	flags.StringSliceVar(&genShapes, "shapes", shapeNames(model.AllShapes), "array shapes, in enumeration order")
	flags.StringSliceVar(&genAlgorithms, "algorithms", nil, "algorithms to include (default: whole catalogue)")
	flags.IntVar(&genDefaultSize, "default-size", sorting.DefaultSize, "array size for algorithms without a size class")
	flags.IntVar(&genMaxValue, "max-value", generator.DefaultMaxValue, "exclusive upper bound of generated values")
	flags.Int64Var(&genSeed, "seed", 0, "generator seed (0 = time-based)")
	flags.Int64Var(&genMaxSteps, "max-steps", executor.DefaultMaxSteps, "step ceiling per execution")
	flags.DurationVar(&genTimeout, "timeout", executor.DefaultTimeout, "wall-clock ceiling per execution")
	flags.DurationVar(&genSleepUnit, "sleep-unit", sorting.DefaultSleepUnit, "sleep per unit of value for sleep_sort")
	flags.BoolVar(&genStore, "store", true, "record the tournament in the SQLite database")
	flags.StringVar(&genDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	flags.BoolVar(&genPlain, "plain", false, "log progress lines instead of the progress screen")

	rootCmd.AddCommand(newAlgorithmsCmd())
	rootCmd.AddCommand(newFeaturesCmd())
	rootCmd.AddCommand(newBenchCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := tournamentConfig(cmd, fileCfg)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	catalogue, err := sorting.DefaultCatalogue(sorting.Options{SleepUnit: cfg.SleepUnit}).Select(cfg.Algorithms)
	if err != nil {
		return err
	}
	if catalogue.Len() < 2 {
		return fmt.Errorf("--algorithms must name at least two algorithms")
	}
	gen, err := generator.New(cfg.Seed, cfg.MaxValue)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	useTUI := !genPlain && term.IsTerminal(int(os.Stderr.Fd()))
	log := slog.Default()
	var tuiLogs bytes.Buffer
	if useTUI {
		// Log lines would tear the progress screen; keep errors for after it closes.
		log = slog.New(slog.NewTextHandler(&tuiLogs, &slog.HandlerOptions{Level: slog.LevelError}))
	}

	runner := executor.New(executor.Limits{MaxSteps: cfg.MaxSteps, Timeout: cfg.Timeout}, log)
	tr, err := tournament.New(tournament.Config{
		Catalogue:   catalogue,
		SizeClasses: sizeClasses(cfg),
		Shapes:      cfg.Shapes,
		Repetitions: cfg.Repetitions,
	}, gen, runner, tournament.WithLogger(log))
	if err != nil {
		return err
	}

	out, err := newOutput(cfg.OutPath)
	if err != nil {
		return err
	}
	defer out.discard()

	var sink runSink
	if cfg.Store {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		id, err := st.BeginTournament(ctx, cfg, time.Now())
		if err != nil {
			return err
		}
		sink = runSink{store: st, tournamentID: id}
	}

	var tally runTally
	tr.OnProgress(tally.observe)

	var genErr error
	if useTUI {
		genErr = runWithTUI(ctx, tr, out, &sink)
		if tuiLogs.Len() > 0 {
			logErrf("%s", tuiLogs.String())
		}
	} else {
		tr.OnProgress(plainProgress(log))
		genErr = writeRecords(ctx, tr, out, &sink)
	}

	interrupted := errors.Is(genErr, context.Canceled)
	if genErr != nil && !interrupted {
		return genErr
	}
	if err := out.commit(); err != nil {
		return err
	}
	if sink.store != nil {
		if err := sink.store.FinishTournament(context.Background(), sink.tournamentID, time.Now(), tally.runs, tally.failures); err != nil {
			logErrf("failed to record tournament end: %v\n", err)
		}
	}

	w := cmd.OutOrStdout()
	if interrupted {
		slog.Warn("generation interrupted; dataset is partial", "records", out.records)
	}
	if _, err := fmt.Fprintf(w, "Wrote %d records to %s\n", out.records, cfg.OutPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Runs: %d  Skipped: %d  Failed executions: %d\n",
		tally.runs, tally.skipped, tally.failures); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if sink.store != nil {
		if _, err := fmt.Fprintf(w, "Tournament: %s\n", sink.tournamentID); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runWithTUI(ctx context.Context, tr *tournament.Tournament, out *output, sink *runSink) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := tui.NewModel(cancel)
	program := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	tr.OnProgress(func(ev tournament.ProgressEvent) {
		program.Send(tui.EventMsg(ev))
	})

	done := make(chan error, 1)
	go func() {
		err := writeRecords(ctx, tr, out, sink)
		done <- err
		program.Send(tui.DoneMsg{Err: err})
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-done
		return fmt.Errorf("failed to run progress screen: %w", err)
	}
	cancel()
	return <-done
}

// writeRecords streams the tournament into the CSV output and, when
// configured, the store. Records of one run arrive back to back.
func writeRecords(ctx context.Context, tr *tournament.Tournament, out *output, sink *runSink) error {
	for rec, err := range tr.Records(ctx) {
		if err != nil {
			return err
		}
		if err := out.write(rec); err != nil {
			return err
		}
		if err := sink.add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

type runTally struct {
	runs     int
	skipped  int
	failures int
}

func (t *runTally) observe(ev tournament.ProgressEvent) {
	switch ev.EventType {
	case tournament.EventRunComplete:
		t.runs++
		if ev.FailedA != nil {
			t.failures++
		}
		if ev.FailedB != nil {
			t.failures++
		}
	case tournament.EventRunSkipped:
		t.skipped++
	}
}

type runSink struct {
	store        *store.Store
	tournamentID string
	pending      []model.DatasetRecord
}

func (s *runSink) add(ctx context.Context, rec model.DatasetRecord) error {
	if s.store == nil {
		return nil
	}
	if len(s.pending) > 0 && s.pending[0].RunID != rec.RunID {
		s.pending = s.pending[:0]
	}
	s.pending = append(s.pending, rec)
	if len(s.pending) < 2 {
		return nil
	}
	err := s.store.InsertRun(ctx, s.tournamentID, s.pending...)
	s.pending = s.pending[:0]
	if err != nil {
		return fmt.Errorf("failed to store run %d: %w", rec.RunID, err)
	}
	return nil
}

// output writes the dataset to a temporary file renamed into place on commit.
type output struct {
	path    string
	file    *os.File
	csv     *dataset.Writer
	records int
	done    bool
}

func newOutput(path string) (*output, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.CreateTemp(dir, ".sortbench-*.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	w, err := dataset.NewWriter(file)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return nil, err
	}
	return &output{path: path, file: file, csv: w}, nil
}

func (o *output) write(rec model.DatasetRecord) error {
	if err := o.csv.Write(rec); err != nil {
		return err
	}
	o.records++
	return nil
}

func (o *output) commit() error {
	if err := o.csv.Flush(); err != nil {
		return err
	}
	if err := o.file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(o.file.Name(), o.path); err != nil {
		return fmt.Errorf("failed to write %s: %w", o.path, err)
	}
	o.done = true
	return nil
}

func (o *output) discard() {
	if o.done {
		return
	}
	_ = o.file.Close()
	_ = os.Remove(o.file.Name())
}

func tournamentConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.TournamentConfig, error) {
	fc := fileCfg.Tournament
	applyConfig(cmd, "out", &genOut, fc.Out)
	applyConfig(cmd, "repetitions", &genRepetitions, fc.Repetitions)
	applyConfig(cmd, "shapes", &genShapes, fc.Shapes)
	applyConfig(cmd, "algorithms", &genAlgorithms, fc.Algorithms)
	applyConfig(cmd, "default-size", &genDefaultSize, fc.DefaultSize)
	applyConfig(cmd, "max-value", &genMaxValue, fc.MaxValue)
	applyConfig(cmd, "seed", &genSeed, fc.Seed)
	applyConfig(cmd, "max-steps", &genMaxSteps, fc.MaxSteps)
	applyDurationConfig(cmd, "timeout", &genTimeout, fc.Timeout)
	applyDurationConfig(cmd, "sleep-unit", &genSleepUnit, fc.SleepUnit)
	applyConfig(cmd, "store", &genStore, fc.Store)
	applyConfig(cmd, "db", &genDBPath, fc.DB)

	shapes, err := model.ParseShapes(genShapes)
	if err != nil {
		return model.TournamentConfig{}, fmt.Errorf("invalid --shapes: %w", err)
	}
	algorithms := make([]string, 0, len(genAlgorithms))
	for _, a := range genAlgorithms {
		if a = strings.TrimSpace(a); a != "" {
			algorithms = append(algorithms, a)
		}
	}
	return model.TournamentConfig{
		OutPath:     genOut,
		Repetitions: genRepetitions,
		Shapes:      shapes,
		Algorithms:  algorithms,
		DefaultSize: genDefaultSize,
		SizeClasses: fileCfg.SizeClasses,
		MaxValue:    genMaxValue,
		Seed:        genSeed,
		MaxSteps:    genMaxSteps,
		Timeout:     genTimeout,
		SleepUnit:   genSleepUnit,
		Store:       genStore,
		DBPath:      genDBPath,
	}, nil
}

func sizeClasses(cfg model.TournamentConfig) sorting.SizeClasses {
	classes := sorting.DefaultSizeClasses()
	classes.Default = cfg.DefaultSize
	for name, size := range cfg.SizeClasses {
		classes.Overrides[name] = size
	}
	return classes
}

func validateConfig(cfg model.TournamentConfig) error {
	if strings.TrimSpace(cfg.OutPath) == "" {
		return fmt.Errorf("--out must not be empty")
	}
	if cfg.Repetitions < 1 {
		return fmt.Errorf("--repetitions must be >= 1")
	}
	if len(cfg.Shapes) == 0 {
		return fmt.Errorf("--shapes must name at least one shape")
	}
	if cfg.DefaultSize < 0 {
		return fmt.Errorf("--default-size must be >= 0")
	}
	if cfg.MaxValue < 1 {
		return fmt.Errorf("--max-value must be >= 1")
	}
	if cfg.MaxSteps < 1 {
		return fmt.Errorf("--max-steps must be >= 1")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.SleepUnit <= 0 {
		return fmt.Errorf("--sleep-unit must be > 0")
	}
	if cfg.Store && strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("--db must not be empty when --store is set")
	}
	known := sorting.DefaultCatalogue(sorting.Options{})
	for name, size := range cfg.SizeClasses {
		if _, ok := known.Lookup(name); !ok {
			return fmt.Errorf("size-classes: unknown algorithm %q", name)
		}
		if size < 0 {
			return fmt.Errorf("size-classes: %s must be >= 0", name)
		}
	}
	return nil
}

func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	applyConfig(cmd, name, target, &value.Duration)
}

func shapeNames(shapes []model.ArrayShape) []string {
	names := make([]string, len(shapes))
	for i, s := range shapes {
		names[i] = string(s)
	}
	return names
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		_ = err
	}
}
