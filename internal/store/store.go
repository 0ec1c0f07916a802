// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/sortbench/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoTournaments is returned when the database holds no tournaments.
var ErrNoTournaments = errors.New("no tournaments recorded")

// Store wraps SQLite access for tournament data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tournaments (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			seed INTEGER NOT NULL,
			repetitions INTEGER NOT NULL,
			output_path TEXT NOT NULL,
			runs INTEGER NOT NULL DEFAULT 0,
			failures INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			tournament_id TEXT NOT NULL,
			run_id INTEGER NOT NULL,
			array_type TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			opponent TEXT NOT NULL,
			sortedness REAL NOT NULL,
			inversions INTEGER NOT NULL,
			unique_ratio REAL NOT NULL,
			misplaced_count INTEGER NOT NULL,
			variance REAL NOT NULL,
			num_steps INTEGER,
			execution_time REAL,
			failed INTEGER NOT NULL,
			won INTEGER NOT NULL,
			PRIMARY KEY (tournament_id, run_id, algorithm)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tournaments_started_at ON tournaments(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_records_algorithm ON records(algorithm);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// BeginTournament creates a tournament row and returns its id.
func (s *Store) BeginTournament(ctx context.Context, cfg model.TournamentConfig, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tournaments (id, started_at, seed, repetitions, output_path) VALUES (?, ?, ?, ?, ?)`,
		id, startedAt.Format(time.RFC3339Nano), cfg.Seed, cfg.Repetitions, cfg.OutPath)
	if err != nil {
		return "", fmt.Errorf("failed to insert tournament: %w", err)
	}
	return id, nil
}

// InsertRun stores both records of a run in one transaction.
func (s *Store) InsertRun(ctx context.Context, tournamentID string, recs ...model.DatasetRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (tournament_id, run_id, array_type, algorithm, opponent, sortedness, inversions, unique_ratio, misplaced_count, variance, num_steps, execution_time, failed, won)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			_ = cerr
		}
	}()
	for _, rec := range recs {
		var steps sql.NullInt64
		var secs sql.NullFloat64
		if !rec.Result.Failed() {
			steps = sql.NullInt64{Int64: rec.Result.Steps, Valid: true}
			secs = sql.NullFloat64{Float64: rec.Result.Seconds, Valid: true}
		}
		if _, err = stmt.ExecContext(ctx, tournamentID, rec.RunID, string(rec.Shape), rec.Algorithm, rec.Opponent,
			rec.Features.SortednessPct, rec.Features.Inversions, rec.Features.UniqueRatio, rec.Features.Misplaced,
			rec.Features.Variance, steps, secs, boolInt(rec.Result.Failed()), boolInt(rec.Won)); err != nil {
			return fmt.Errorf("failed to insert run %d: %w", rec.RunID, err)
		}
	}
	return tx.Commit()
}

// FinishTournament records the end time and run totals.
func (s *Store) FinishTournament(ctx context.Context, id string, endedAt time.Time, runs, failures int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tournaments SET ended_at = ?, runs = ?, failures = ? WHERE id = ?`,
		endedAt.Format(time.RFC3339Nano), runs, failures, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("tournament %s not found", id)
	}
	return nil
}

const tournamentColumns = `id, started_at, ended_at, seed, repetitions, output_path, runs, failures`

// ListTournaments returns stored tournaments, newest first.
func (s *Store) ListTournaments(ctx context.Context) ([]model.TournamentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tournamentColumns+` FROM tournaments ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			_ = cerr
		}
	}()

	var result []model.TournamentSummary
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LatestTournament returns the most recently started tournament.
func (s *Store) LatestTournament(ctx context.Context) (model.TournamentSummary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tournamentColumns+` FROM tournaments ORDER BY started_at DESC LIMIT 1`)
	t, err := scanTournament(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TournamentSummary{}, ErrNoTournaments
	}
	return t, err
}

// ListRecords returns a tournament's records ordered by run. An empty shape
// matches every shape.
func (s *Store) ListRecords(ctx context.Context, tournamentID string, shape model.ArrayShape) ([]model.DatasetRecord, error) {
	clauses := []string{"tournament_id = ?"}
	args := []any{tournamentID}
	if shape != "" {
		clauses = append(clauses, "array_type = ?")
		args = append(args, string(shape))
	}
	query := fmt.Sprintf(`SELECT run_id, array_type, algorithm, opponent, sortedness, inversions, unique_ratio,
		misplaced_count, variance, num_steps, execution_time, failed, won
		FROM records
		WHERE %s
		ORDER BY run_id ASC, rowid ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			_ = cerr
		}
	}()

	var result []model.DatasetRecord
	for rows.Next() {
		var rec model.DatasetRecord
		var shapeName string
		var steps sql.NullInt64
		var secs sql.NullFloat64
		var failed, won int
		if err := rows.Scan(&rec.RunID, &shapeName, &rec.Algorithm, &rec.Opponent,
			&rec.Features.SortednessPct, &rec.Features.Inversions, &rec.Features.UniqueRatio,
			&rec.Features.Misplaced, &rec.Features.Variance, &steps, &secs, &failed, &won); err != nil {
			return nil, err
		}
		rec.Shape = model.ArrayShape(shapeName)
		rec.Won = won == 1
		if failed == 1 || !steps.Valid || !secs.Valid {
			rec.Result = model.FailedRun(errors.New("failed run"))
		} else {
			rec.Result = model.RunResult{Steps: steps.Int64, Seconds: secs.Float64}
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTournament(row scanner) (model.TournamentSummary, error) {
	var t model.TournamentSummary
	var startedAt string
	var endedAt sql.NullString
	if err := row.Scan(&t.ID, &startedAt, &endedAt, &t.Seed, &t.Repetitions, &t.OutputPath, &t.Runs, &t.Failures); err != nil {
		return model.TournamentSummary{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return model.TournamentSummary{}, err
	}
	t.StartedAt = parsed
	if endedAt.Valid {
		ended, err := time.Parse(time.RFC3339Nano, endedAt.String)
		if err != nil {
			return model.TournamentSummary{}, err
		}
		t.EndedAt = &ended
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
