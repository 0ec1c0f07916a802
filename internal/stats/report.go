package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/sortbench/internal/dataset"
	"github.com/verte-zerg/sortbench/internal/model"
	"github.com/verte-zerg/sortbench/internal/store"
)

// DefaultTrendWindow is the moving-average window for win trends.
const DefaultTrendWindow = 5

const trendAlgorithms = 5

// Report contains precomputed data for stats rendering.
type Report struct {
	Tournament *model.TournamentSummary
	Records    []model.DatasetRecord
	Standings  []model.AlgorithmStanding
	Winners    []ShapeWinner
	Nemeses    []Nemesis
	Trends     map[string][]float64
}

// BuildReport loads a stored tournament, the latest one when cfg names none.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	var summary model.TournamentSummary
	if cfg.TournamentID == "" {
		latest, err := st.LatestTournament(ctx)
		if err != nil {
			return Report{}, err
		}
		summary = latest
	} else {
		list, err := st.ListTournaments(ctx)
		if err != nil {
			return Report{}, err
		}
		found := false
		for _, t := range list {
			if t.ID == cfg.TournamentID {
				summary, found = t, true
				break
			}
		}
		if !found {
			return Report{}, fmt.Errorf("tournament %s not found", cfg.TournamentID)
		}
	}
	records, err := st.ListRecords(ctx, summary.ID, cfg.Shape)
	if err != nil {
		return Report{}, err
	}
	report := NewReport(records)
	report.Tournament = &summary
	return report, nil
}

// BuildReportFromCSV loads a dataset file.
func BuildReportFromCSV(path string, shape model.ArrayShape) (Report, error) {
	records, err := dataset.Load(path)
	if err != nil {
		return Report{}, err
	}
	if shape != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.Shape == shape {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	return NewReport(records), nil
}

// NewReport computes every aggregate from records.
func NewReport(records []model.DatasetRecord) Report {
	return Report{
		Records:   records,
		Standings: Standings(records),
		Winners:   ShapeWinners(records),
		Nemeses:   SelectNemeses(Matchups(records)),
		Trends:    WinSeries(records),
	}
}

// Render prints every section of the report.
func Render(w io.Writer, r Report) error {
	if err := RenderSummary(w, r.Tournament, r.Records); err != nil {
		return err
	}
	if len(r.Records) == 0 {
		return nil
	}
	if err := RenderStandings(w, r.Standings); err != nil {
		return err
	}
	if err := RenderShapeWinners(w, r.Winners); err != nil {
		return err
	}
	if err := RenderNemeses(w, r.Nemeses); err != nil {
		return err
	}
	return RenderTrends(w, r.Trends, TopAlgorithms(r.Standings, trendAlgorithms), DefaultTrendWindow)
}
