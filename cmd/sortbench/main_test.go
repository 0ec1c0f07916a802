package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/sortbench/internal/config"
	"github.com/verte-zerg/sortbench/internal/dataset"
	"github.com/verte-zerg/sortbench/internal/model"
	"github.com/verte-zerg/sortbench/internal/sorting"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func validConfig() model.TournamentConfig {
	return model.TournamentConfig{
		OutPath:     "out.csv",
		Repetitions: 1,
		Shapes:      model.AllShapes,
		DefaultSize: 10,
		MaxValue:    100,
		MaxSteps:    1000,
		Timeout:     time.Second,
		SleepUnit:   time.Microsecond,
	}
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, validateConfig(validConfig()))

	cases := map[string]func(*model.TournamentConfig){
		"repetitions":  func(c *model.TournamentConfig) { c.Repetitions = 0 },
		"shapes":       func(c *model.TournamentConfig) { c.Shapes = nil },
		"default-size": func(c *model.TournamentConfig) { c.DefaultSize = -1 },
		"max-value":    func(c *model.TournamentConfig) { c.MaxValue = 0 },
		"max-steps":    func(c *model.TournamentConfig) { c.MaxSteps = 0 },
		"timeout":      func(c *model.TournamentConfig) { c.Timeout = 0 },
		"sleep-unit":   func(c *model.TournamentConfig) { c.SleepUnit = -time.Second },
		"sleep-unit 0": func(c *model.TournamentConfig) { c.SleepUnit = 0 },
		"out":          func(c *model.TournamentConfig) { c.OutPath = " " },
		"db":           func(c *model.TournamentConfig) { c.Store = true },
		"unknown size": func(c *model.TournamentConfig) { c.SizeClasses = map[string]int{"nope": 1} },
		"neg size":     func(c *model.TournamentConfig) { c.SizeClasses = map[string]int{sorting.BogoSort: -1} },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		assert.Error(t, validateConfig(cfg), name)
	}
}

func TestTournamentConfigOverlay(t *testing.T) {
	dir := isolate(t)
	path := config.DefaultConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := `
[tournament]
repetitions = 4
shapes = ["sorted", "random"]
timeout = "250ms"
out = "` + filepath.ToSlash(filepath.Join(dir, "from-config.csv")) + `"

[size-classes]
merge_sort = 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	fileCfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--repetitions", "2", "--algorithms", "merge_sort, heap_sort"}))
	cfg, err := tournamentConfig(root, fileCfg)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Repetitions, "flag wins over config")
	assert.Equal(t, []model.ArrayShape{model.ShapeSorted, model.ShapeRandom}, cfg.Shapes)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"merge_sort", "heap_sort"}, cfg.Algorithms)
	assert.Equal(t, filepath.Join(dir, "from-config.csv"), filepath.FromSlash(cfg.OutPath))
	assert.Equal(t, sorting.DefaultSleepUnit, cfg.SleepUnit)

	classes := sizeClasses(cfg)
	assert.Equal(t, 12, classes.For(sorting.MergeSort))
	assert.Equal(t, 5, classes.For(sorting.BogoSort))
	assert.Equal(t, sorting.DefaultSize, classes.For(sorting.HeapSort))
}

func TestTournamentConfigRejectsBadShape(t *testing.T) {
	isolate(t)
	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--shapes", "random,zigzag"}))
	_, err := tournamentConfig(root, config.FileConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zigzag")
}

func TestGenerateWritesDatasetAndStore(t *testing.T) {
	dir := isolate(t)
	outPath := filepath.Join(dir, "out", "dataset.csv")
	dbPath := filepath.Join(dir, "bench.db")

	out, err := execute(t, "--plain", "--out", outPath, "--db", dbPath,
		"--algorithms", "insertion_sort,merge_sort,quantum_bogo_sort",
		"--shapes", "random,sorted", "--repetitions", "1", "--default-size", "20", "--seed", "3")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Wrote 12 records")
	assert.Contains(t, out, "Failed executions: 4")

	records, err := dataset.Load(outPath)
	require.NoError(t, err)
	require.Len(t, records, 12)
	assert.Equal(t, int64(1), records[0].RunID)
	assert.Equal(t, int64(6), records[11].RunID)
	for _, r := range records {
		if r.Algorithm == sorting.QuantumBogoSort {
			assert.True(t, r.Result.Failed())
			assert.False(t, r.Won)
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "out", ".sortbench-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary output should be renamed")

	out, err = execute(t, "stats", "--db", dbPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Standings")
	assert.Contains(t, out, "Runs: 6")

	out, err = execute(t, "history", "--db", dbPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "runs=6 failures=4")

	out, err = execute(t, "stats", "--csv", outPath, "--shape", "sorted")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Records: 6")
}

func TestGenerateRejectsSingleAlgorithm(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "--plain", "--store=false", "--out", filepath.Join(dir, "x.csv"), "--algorithms", "merge_sort")
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "x.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFeaturesCmd(t *testing.T) {
	isolate(t)
	out, err := execute(t, "features", "3", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "inversions: 2")
	assert.Contains(t, out, "misplaced_count: 3")
	assert.Contains(t, out, "unique_ratio: 1.0")
}

func TestBenchCmd(t *testing.T) {
	isolate(t)
	out, err := execute(t, "bench", "--algo", "bubble_sort", "3,1,2")
	require.NoError(t, err)
	assert.Contains(t, out, "steps: 3")

	out, err = execute(t, "bench", "--algo", "quantum_bogo_sort", "2", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "failed:")

	out, err = execute(t, "bench", "--algo", "heap_sort", "--shape", "reversed", "--size", "16", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "length: 16")

	_, err = execute(t, "bench", "--algo", "nope", "1")
	require.Error(t, err)
}

func TestAlgorithmsCmd(t *testing.T) {
	isolate(t)
	out, err := execute(t, "algorithms")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, sorting.DefaultCatalogue(sorting.Options{}).Len())
	assert.True(t, strings.HasPrefix(lines[0], sorting.BubbleSort))
}

func TestAlgorithmsCmdUsesConfigSizeClasses(t *testing.T) {
	isolate(t)
	path := config.DefaultConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := `
[tournament]
default-size = 40

[size-classes]
merge_sort = 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out, err := execute(t, "algorithms")
	require.NoError(t, err)
	sizes := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		require.Len(t, fields, 2, line)
		sizes[fields[0]] = fields[1]
	}
	assert.Equal(t, "12", sizes[sorting.MergeSort])
	assert.Equal(t, "40", sizes[sorting.HeapSort])
	assert.Equal(t, "5", sizes[sorting.BogoSort])
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "template.toml")
	require.NoError(t, os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Tournament.Repetitions)
}
