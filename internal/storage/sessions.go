package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/models"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/program"
)

// ErrNotFound is returned when a session id has no row.
var ErrNotFound = errors.New("session not found")

const sessionColumns = `id, program, started_at, ended_at, completed, error,
	completed_reps, total_hold_ms, deviations, total_correction_ms`

// InsertSession stores one finished session.
func (db *DB) InsertSession(ctx context.Context, row models.SessionRow) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		row.ID.String(), string(row.Program), row.StartedAt.UTC(), row.EndedAt.UTC(),
		row.Completed, row.Error, row.CompletedReps, row.TotalHoldMs,
		row.Deviations, row.TotalCorrectionMs)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// SaveResult persists a program result under the given session id. This is
// the orchestrator's persistence hook; runErr marks a failed session.
func (db *DB) SaveResult(ctx context.Context, sessionID uuid.UUID, res *program.Result, runErr error) error {
	return db.InsertSession(ctx, models.FromResult(sessionID, res, runErr))
}

// GetSession returns one session by id, or ErrNotFound.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.SessionRow, error) {
	row := db.sql.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id.String())
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SessionFilter narrows a history query. Zero values mean no constraint.
type SessionFilter struct {
	Start   time.Time
	End     time.Time
	Program program.ID
	Limit   int
}

// QuerySessions returns sessions matching the filter, newest first.
func (db *DB) QuerySessions(ctx context.Context, f SessionFilter) ([]models.SessionRow, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		q += fmt.Sprintf(clause, len(args))
	}
	if !f.Start.IsZero() {
		add(" AND started_at >= $%d", f.Start.UTC())
	}
	if !f.End.IsZero() {
		add(" AND started_at < $%d", f.End.UTC())
	}
	if f.Program != "" {
		add(" AND program = $%d", string(f.Program))
	}
	q += " ORDER BY started_at DESC"
	if f.Limit > 0 {
		add(" LIMIT $%d", f.Limit)
	}

	rows, err := db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []models.SessionRow
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// RecentSessions returns the latest n sessions across all programs.
func (db *DB) RecentSessions(ctx context.Context, n int) ([]models.SessionRow, error) {
	return db.QuerySessions(ctx, SessionFilter{Limit: n})
}

// SessionStats aggregates history in the given window.
func (db *DB) SessionStats(ctx context.Context, start, end time.Time) (*models.SessionStats, error) {
	stats := &models.SessionStats{}

	err := db.sql.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(completed_reps), 0),
		        COALESCE(SUM(total_hold_ms), 0),
		        COALESCE(SUM(deviations), 0),
		        COALESCE(SUM(total_correction_ms), 0)
		 FROM sessions WHERE started_at >= $1 AND started_at < $2`,
		start.UTC(), end.UTC(),
	).Scan(&stats.TotalSessions, &stats.CompletedSessions, &stats.TotalReps,
		&stats.TotalHoldMs, &stats.TotalDeviations, &stats.TotalCorrectionMs)
	if err != nil {
		return nil, fmt.Errorf("aggregating sessions: %w", err)
	}

	// Earliest and latest read the column directly: aggregate expressions
	// lose the declared type, which breaks time scanning on sqlite.
	if stats.TotalSessions > 0 {
		var earliest, latest time.Time
		err = db.sql.QueryRowContext(ctx,
			`SELECT started_at FROM sessions
			 WHERE started_at >= $1 AND started_at < $2
			 ORDER BY started_at ASC LIMIT 1`,
			start.UTC(), end.UTC()).Scan(&earliest)
		if err != nil {
			return nil, fmt.Errorf("finding earliest session: %w", err)
		}
		err = db.sql.QueryRowContext(ctx,
			`SELECT started_at FROM sessions
			 WHERE started_at >= $1 AND started_at < $2
			 ORDER BY started_at DESC LIMIT 1`,
			start.UTC(), end.UTC()).Scan(&latest)
		if err != nil {
			return nil, fmt.Errorf("finding latest session: %w", err)
		}
		stats.EarliestSession = &earliest
		stats.LatestSession = &latest
	}

	rows, err := db.sql.QueryContext(ctx,
		`SELECT program, COUNT(*),
		        COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0)
		 FROM sessions WHERE started_at >= $1 AND started_at < $2
		 GROUP BY program
		 ORDER BY COUNT(*) DESC`,
		start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying per-program stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.ProgramStat
		if err := rows.Scan(&p.Program, &p.Count, &p.Completed); err != nil {
			return nil, fmt.Errorf("scanning program stat: %w", err)
		}
		stats.ByProgram = append(stats.ByProgram, p)
	}
	return stats, rows.Err()
}

// PostureTrends buckets sessions into days. The day math runs in Go so the
// query stays identical across both dialects.
func (db *DB) PostureTrends(ctx context.Context, start, end time.Time) ([]models.TrendPoint, error) {
	sessions, err := db.QuerySessions(ctx, SessionFilter{Start: start, End: end})
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sessions, completed, deviations, correctionMs int64
	}
	byDay := map[string]*bucket{}
	var days []string
	for _, s := range sessions {
		day := s.StartedAt.UTC().Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &bucket{}
			byDay[day] = b
			days = append(days, day)
		}
		b.sessions++
		if s.Completed {
			b.completed++
		}
		b.deviations += int64(s.Deviations)
		b.correctionMs += s.TotalCorrectionMs
	}
	sort.Strings(days)

	out := make([]models.TrendPoint, 0, len(days))
	for _, day := range days {
		b := byDay[day]
		out = append(out, models.TrendPoint{
			Day:               day,
			Sessions:          b.sessions,
			Deviations:        b.deviations,
			TotalCorrectionMs: b.correctionMs,
			CompletionRate:    float64(b.completed) / float64(b.sessions),
		})
	}
	return out, nil
}

func scanSession(row interface{ Scan(...any) error }) (*models.SessionRow, error) {
	var (
		s       models.SessionRow
		id      string
		progStr string
	)
	err := row.Scan(&id, &progStr, &s.StartedAt, &s.EndedAt, &s.Completed, &s.Error,
		&s.CompletedReps, &s.TotalHoldMs, &s.Deviations, &s.TotalCorrectionMs)
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing session id %q: %w", id, err)
	}
	s.ID = parsed
	s.Program = program.ID(progStr)
	return &s, nil
}
