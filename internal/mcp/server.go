// Package mcp exposes the daemon's session history to AI assistants over
// the Model Context Protocol.
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/models"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/session"
	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/storage"
)

// DataSource is the slice of storage the assistant tools read from.
type DataSource interface {
	QuerySessions(ctx context.Context, f storage.SessionFilter) ([]models.SessionRow, error)
	RecentSessions(ctx context.Context, n int) ([]models.SessionRow, error)
	SessionStats(ctx context.Context, start, end time.Time) (*models.SessionStats, error)
	PostureTrends(ctx context.Context, start, end time.Time) ([]models.TrendPoint, error)
}

var _ DataSource = (*storage.DB)(nil)

// StatusFunc reports the live session state. Usually Orchestrator.Status.
type StatusFunc func() session.Status

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, status StatusFunc, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Posturely", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Posturely posture-coaching daemon. Query exercise session history, aggregate stats, daily posture trends, and the live session state."),
	)

	h := &handlers{ds: ds, status: status, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetSessionStats, Handler: h.getSessionStats},
		server.ServerTool{Tool: toolGetPostureTrends, Handler: h.getPostureTrends},
		server.ServerTool{Tool: toolGetCurrentSession, Handler: h.getCurrentSession},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resProgramCatalog, Handler: h.programCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds     DataSource
	status StatusFunc
	log    *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"posturely://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("The last 20 exercise sessions with completion status and per-program counters"),
	mcp.WithMIMEType("application/json"),
)

var resProgramCatalog = mcp.NewResource(
	"posturely://program_catalog",
	"Program Catalog",
	mcp.WithResourceDescription("The exercise programs this daemon can run, with a short description of each"),
	mcp.WithMIMEType("application/json"),
)
