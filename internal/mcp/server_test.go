package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/models"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/program"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/session"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/storage"
)

// TestDefaultTimeRange verifies time range defaults (last 30 days) and
// parsing of both accepted formats.
func TestDefaultTimeRange(t *testing.T) {
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 719 || diff.Hours() > 721 { // ~720 hours = 30 days
		t.Errorf("default range = %.0f hours, want ~720", diff.Hours())
	}

	start, end, err = defaultTimeRange("2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2026 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2026-01-01", start)
	}
	if end.Day() != 31 {
		t.Errorf("end = %v, want 2026-01-31", end)
	}

	start, _, err = defaultTimeRange("2026-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	if _, _, err = defaultTimeRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid date")
	}
}

// fakeSource scripts the DataSource for handler tests.
type fakeSource struct {
	rows []models.SessionRow
	err  error

	gotFilter storage.SessionFilter
}

func (f *fakeSource) QuerySessions(_ context.Context, filter storage.SessionFilter) ([]models.SessionRow, error) {
	f.gotFilter = filter
	return f.rows, f.err
}

func (f *fakeSource) RecentSessions(context.Context, int) ([]models.SessionRow, error) {
	return f.rows, f.err
}

func (f *fakeSource) SessionStats(context.Context, time.Time, time.Time) (*models.SessionStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SessionStats{TotalSessions: int64(len(f.rows))}, nil
}

func (f *fakeSource) PostureTrends(context.Context, time.Time, time.Time) ([]models.TrendPoint, error) {
	return nil, f.err
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestGetSessionsFilter(t *testing.T) {
	ds := &fakeSource{}
	h := &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	res, err := h.getSessions(context.Background(), toolRequest(map[string]any{
		"start":   "2026-03-01",
		"end":     "2026-03-31",
		"program": "lateral_turn",
	}))
	if err != nil {
		t.Fatalf("getSessions() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("getSessions() returned tool error: %+v", res)
	}

	if ds.gotFilter.Program != program.LateralTurn {
		t.Errorf("filter program = %s, want lateral_turn", ds.gotFilter.Program)
	}
	if ds.gotFilter.Start.Day() != 1 || ds.gotFilter.End.Day() != 31 {
		t.Errorf("filter window = %v..%v, want March", ds.gotFilter.Start, ds.gotFilter.End)
	}
}

func TestGetSessionsErrors(t *testing.T) {
	h := &handlers{ds: &fakeSource{err: errors.New("db down")}, log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	res, err := h.getSessions(context.Background(), toolRequest(map[string]any{"start": "bogus"}))
	if err != nil || !res.IsError {
		t.Errorf("bad date: result = (%+v, %v), want tool error", res, err)
	}

	res, err = h.getSessions(context.Background(), toolRequest(map[string]any{"program": "jumping_jacks"}))
	if err != nil || !res.IsError {
		t.Errorf("bad program: result = (%+v, %v), want tool error", res, err)
	}

	res, err = h.getSessions(context.Background(), toolRequest(nil))
	if err != nil || !res.IsError {
		t.Errorf("store failure: result = (%+v, %v), want tool error", res, err)
	}
}

func TestGetCurrentSession(t *testing.T) {
	h := &handlers{
		ds:     &fakeSource{},
		status: func() session.Status { return session.Status{State: session.StateRunning} },
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	res, err := h.getCurrentSession(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("getCurrentSession() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("getCurrentSession() returned tool error: %+v", res)
	}

	h.status = nil
	res, _ = h.getCurrentSession(context.Background(), toolRequest(nil))
	if !res.IsError {
		t.Error("nil status func should yield a tool error")
	}
}

func TestProgramCatalogResource(t *testing.T) {
	h := &handlers{ds: &fakeSource{}, log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "posturely://program_catalog"
	contents, err := h.programCatalog(context.Background(), req)
	if err != nil {
		t.Fatalf("programCatalog() error = %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents length = %d, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] is %T, want TextResourceContents", contents[0])
	}
	for _, id := range program.All() {
		if !strings.Contains(text.Text, string(id)) {
			t.Errorf("catalog missing program %s", id)
		}
	}
}
