package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/program"
)

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rows, err := h.ds.RecentSessions(ctx, 20)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, rows)
}

var programDescriptions = map[program.ID]string{
	program.LateralTurn:   "Seven repetitions of held lateral head turns, left then right, confirmed against a calibrated baseline.",
	program.VerticalTilt:  "Seven repetitions of held vertical head tilts, up then down, confirmed against a calibrated baseline.",
	program.BreathingHold: "A timed meditation sit where the clock only advances while posture stays within tolerance of the calibrated baseline.",
}

func (h *handlers) programCatalog(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type entry struct {
		ID          program.ID `json:"id"`
		Description string     `json:"description"`
	}
	catalog := make([]entry, 0, len(programDescriptions))
	for _, id := range program.All() {
		catalog = append(catalog, entry{ID: id, Description: programDescriptions[id]})
	}
	return jsonResource(req.Params.URI, catalog)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
