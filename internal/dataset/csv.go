// Package dataset writes and reads the tournament dataset as CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/sortbench/internal/model"
)

// DefaultFilename is the output file used when none is configured.
const DefaultFilename = "algo_performance_dataset.csv"

// Header is the exact column order of the dataset.
var Header = []string{
	"array_type", "algorithm_name", "sortedness", "inversions",
	"unique_ratio", "misplaced_count", "variance", "num_steps",
	"execution_time", "winner_against", "won", "run_id",
}

const infinity = "inf"

// Writer streams records to a CSV destination.
type Writer struct {
	w *csv.Writer
}

// NewWriter writes the header and returns a Writer.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	return &Writer{w: cw}, nil
}

// Write appends one record.
func (w *Writer) Write(rec model.DatasetRecord) error {
	if err := w.w.Write(Row(rec)); err != nil {
		return fmt.Errorf("csv: write run %d: %w", rec.RunID, err)
	}
	return nil
}

// Flush writes buffered rows to the destination.
func (w *Writer) Flush() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}

// Row formats a record in Header order.
func Row(rec model.DatasetRecord) []string {
	steps, secs := infinity, infinity
	if !rec.Result.Failed() {
		steps = strconv.FormatInt(rec.Result.Steps, 10)
		secs = FormatFloat(rec.Result.Seconds)
	}
	won := "0"
	if rec.Won {
		won = "1"
	}
	return []string{
		string(rec.Shape),
		rec.Algorithm,
		FormatFloat(rec.Features.SortednessPct),
		strconv.FormatInt(rec.Features.Inversions, 10),
		FormatFloat(rec.Features.UniqueRatio),
		strconv.FormatInt(rec.Features.Misplaced, 10),
		FormatFloat(rec.Features.Variance),
		steps,
		secs,
		rec.Opponent,
		won,
		strconv.FormatInt(rec.RunID, 10),
	}
}

// FormatFloat writes the shortest round-trip form, keeping a ".0" on
// integral values so the column reads as floating point.
func FormatFloat(v float64) string {
	if math.IsInf(v, 1) {
		return infinity
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Load reads a dataset written by Writer.
func Load(path string) ([]model.DatasetRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck
	return Read(f)
}

// Read parses a dataset from r.
func Read(r io.Reader) ([]model.DatasetRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)
	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: empty dataset (no header row)")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	for i, h := range Header {
		if strings.TrimSpace(head[i]) != h {
			return nil, fmt.Errorf("csv: column %d is %q, expected %q", i+1, head[i], h)
		}
	}

	var records []model.DatasetRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: parse: %w", err)
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("csv: row %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (model.DatasetRecord, error) {
	p := rowParser{row: row}
	shape, err := model.ParseShape(row[0])
	if err != nil {
		return model.DatasetRecord{}, err
	}
	rec := model.DatasetRecord{
		Shape:     shape,
		Algorithm: row[1],
		Features: model.FeatureVector{
			SortednessPct: p.float(2),
			Inversions:    p.int(3),
			UniqueRatio:   p.float(4),
			Misplaced:     p.int(5),
			Variance:      p.float(6),
		},
		Opponent: row[9],
		Won:      p.int(10) == 1,
		RunID:    p.int(11),
	}
	if row[7] == infinity || row[8] == infinity {
		rec.Result = model.FailedRun(errors.New("failed run"))
	} else {
		rec.Result = model.RunResult{Steps: p.int(7), Seconds: p.float(8)}
	}
	if p.err != nil {
		return model.DatasetRecord{}, p.err
	}
	return rec, nil
}

type rowParser struct {
	row []string
	err error
}

func (p *rowParser) int(col int) int64 {
	v, err := strconv.ParseInt(p.row[col], 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", Header[col], err)
	}
	return v
}

func (p *rowParser) float(col int) float64 {
	v, err := strconv.ParseFloat(p.row[col], 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", Header[col], err)
	}
	return v
}
