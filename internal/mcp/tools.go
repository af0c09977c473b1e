package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sandtable-sim/sandtable/internal/generate"
	"github.com/sandtable-sim/sandtable/internal/scenario"
)

// ScenarioGenerateInput is the MCP tool input for generating a scenario.
type ScenarioGenerateInput struct {
	Topic        string            `json:"topic" jsonschema:"research topic or context the scenario is based on"`
	GridSize     int               `json:"grid_size,omitempty" jsonschema:"terrain dimension (default 20)"`
	TerrainStyle string            `json:"terrain_style,omitempty" jsonschema:"optional terrain style hint for generated maps"`
	Intel        string            `json:"intel,omitempty" jsonschema:"optional real-time intelligence digest"`
	Doctrines    map[string]string `json:"doctrines,omitempty" jsonschema:"optional per-side doctrine text keyed by Blue or Red"`
	Model        string            `json:"model,omitempty" jsonschema:"generator model id (default gpt-4o)"`
}

// ScenarioSummaryResult is the shared MCP tool output for scenario mutations.
type ScenarioSummaryResult struct {
	ScenarioID      string `json:"scenario_id,omitempty" jsonschema:"archive identifier of the scenario"`
	FrameCount      int    `json:"frame_count" jsonschema:"number of frames in the active scenario"`
	FrameCursor     int    `json:"frame_cursor" jsonschema:"current frame index (0-based)"`
	ValidationCount int    `json:"validation_count" jsonschema:"total consistency violations across frames"`
	Description     string `json:"description,omitempty" jsonschema:"narrative of the frame under the cursor"`
}

func summaryResult(s ScenarioSummary) ScenarioSummaryResult {
	return ScenarioSummaryResult{
		ScenarioID:      s.ScenarioID,
		FrameCount:      s.FrameCount,
		FrameCursor:     s.FrameCursor,
		ValidationCount: s.ValidationCount,
		Description:     s.Description,
	}
}

// ScenarioGenerateTool defines the MCP tool schema for scenario generation.
func ScenarioGenerateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scenario_generate",
		Description: "Generate a validated tactical wargame scenario for a research topic and make it the active scenario",
	}
}

// ScenarioGenerateHandler executes a scenario generation request.
func ScenarioGenerateHandler(engine *Engine) mcp.ToolHandlerFor[ScenarioGenerateInput, ScenarioSummaryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ScenarioGenerateInput) (*mcp.CallToolResult, ScenarioSummaryResult, error) {
		opts := generate.Options{
			GridSize:     input.GridSize,
			TerrainStyle: input.TerrainStyle,
			Intel:        input.Intel,
			Model:        input.Model,
		}
		for side, text := range input.Doctrines {
			opts.Doctrines = append(opts.Doctrines, generate.Doctrine{Side: scenario.Side(side), Text: text})
		}

		summary, err := engine.Generate(ctx, input.Topic, opts)
		if err != nil {
			return nil, ScenarioSummaryResult{}, fmt.Errorf("scenario generate failed: %w", err)
		}
		return nil, summaryResult(summary), nil
	}
}

// ScenarioContinueInput is the MCP tool input for branching a scenario.
type ScenarioContinueInput struct {
	FromFrame int    `json:"from_frame" jsonschema:"frame index (0-based) to branch from; later frames are discarded"`
	Reason    string `json:"reason,omitempty" jsonschema:"optional branch premise for the continuation"`
}

// ScenarioContinueTool defines the MCP tool schema for continuations.
func ScenarioContinueTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scenario_continue",
		Description: "Branch the active scenario at a frame: discard later frames, generate five continuation frames, and re-validate",
	}
}

// ScenarioContinueHandler executes a continuation request.
func ScenarioContinueHandler(engine *Engine) mcp.ToolHandlerFor[ScenarioContinueInput, ScenarioSummaryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ScenarioContinueInput) (*mcp.CallToolResult, ScenarioSummaryResult, error) {
		summary, err := engine.Continue(ctx, input.FromFrame, input.Reason)
		if err != nil {
			return nil, ScenarioSummaryResult{}, fmt.Errorf("scenario continue failed: %w", err)
		}
		return nil, summaryResult(summary), nil
	}
}

// ScenarioValidateInput is the MCP tool input for re-validating a scenario.
type ScenarioValidateInput struct{}

// ScenarioValidateTool defines the MCP tool schema for validation.
func ScenarioValidateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scenario_validate",
		Description: "Re-run the consistency validator over the active scenario and refresh its frame annotations",
	}
}

// ScenarioValidateHandler executes a validation request.
func ScenarioValidateHandler(engine *Engine) mcp.ToolHandlerFor[ScenarioValidateInput, ScenarioSummaryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ScenarioValidateInput) (*mcp.CallToolResult, ScenarioSummaryResult, error) {
		summary, err := engine.Validate(ctx)
		if err != nil {
			return nil, ScenarioSummaryResult{}, fmt.Errorf("scenario validate failed: %w", err)
		}
		return nil, summaryResult(summary), nil
	}
}

// FrameNavigateInput is the MCP tool input for frame navigation.
type FrameNavigateInput struct{}

// FrameAdvanceTool defines the MCP tool schema for advancing the cursor.
func FrameAdvanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "frame_advance",
		Description: "Advance the frame cursor by one, clamped at the last frame",
	}
}

// FrameAdvanceHandler advances the session frame cursor.
func FrameAdvanceHandler(engine *Engine) mcp.ToolHandlerFor[FrameNavigateInput, ScenarioSummaryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ FrameNavigateInput) (*mcp.CallToolResult, ScenarioSummaryResult, error) {
		summary, err := engine.Advance(ctx)
		if err != nil {
			return nil, ScenarioSummaryResult{}, fmt.Errorf("frame advance failed: %w", err)
		}
		return nil, summaryResult(summary), nil
	}
}

// FrameRetreatTool defines the MCP tool schema for retreating the cursor.
func FrameRetreatTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "frame_retreat",
		Description: "Move the frame cursor back by one, clamped at the first frame",
	}
}

// FrameRetreatHandler retreats the session frame cursor.
func FrameRetreatHandler(engine *Engine) mcp.ToolHandlerFor[FrameNavigateInput, ScenarioSummaryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ FrameNavigateInput) (*mcp.CallToolResult, ScenarioSummaryResult, error) {
		summary, err := engine.Retreat(ctx)
		if err != nil {
			return nil, ScenarioSummaryResult{}, fmt.Errorf("frame retreat failed: %w", err)
		}
		return nil, summaryResult(summary), nil
	}
}

// ScenarioExportInput is the MCP tool input for exporting the scenario.
type ScenarioExportInput struct {
	Format string `json:"format,omitempty" jsonschema:"export format: journal, tabletop, force_table, heatmap, or document (default document)"`
}

// ScenarioExportResult is the MCP tool output for exports.
type ScenarioExportResult struct {
	Format  string `json:"format" jsonschema:"export format rendered"`
	Content string `json:"content" jsonschema:"rendered export content"`
}

// ScenarioExportTool defines the MCP tool schema for exports.
func ScenarioExportTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scenario_export",
		Description: "Export the active scenario as a commander's journal, tabletop import document, force table, presence heatmap, or interchange JSON",
	}
}

// ScenarioExportHandler renders an export of the active scenario.
func ScenarioExportHandler(engine *Engine) mcp.ToolHandlerFor[ScenarioExportInput, ScenarioExportResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ScenarioExportInput) (*mcp.CallToolResult, ScenarioExportResult, error) {
		format := ExportFormat(input.Format)
		if format == "" {
			format = ExportDocument
		}
		content, err := engine.Export(ctx, format)
		if err != nil {
			return nil, ScenarioExportResult{}, fmt.Errorf("scenario export failed: %w", err)
		}
		return nil, ScenarioExportResult{Format: string(format), Content: content}, nil
	}
}

// archiveEntry is one row of the archive resource payload.
type archiveEntry struct {
	ID         string `json:"id"`
	Topic      string `json:"topic"`
	Model      string `json:"model"`
	FrameCount int    `json:"frame_count"`
	ErrorCount int    `json:"error_count"`
	CreatedAt  string `json:"created_at"`
}

type archivePayload struct {
	Scenarios []archiveEntry `json:"scenarios"`
}

// ArchiveResource defines the archive listing resource.
func ArchiveResource() *mcp.Resource {
	return &mcp.Resource{
		URI:         "scenarios://archive",
		Name:        "scenario-archive",
		Description: "Archived scenarios, newest first",
		MIMEType:    "application/json",
	}
}

// ArchiveResourceHandler returns a readable archive listing resource.
func ArchiveResourceHandler(engine *Engine) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := ArchiveResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		records, err := engine.ListArchive(ctx, 50)
		if err != nil {
			return nil, fmt.Errorf("archive list failed: %w", err)
		}

		payload := archivePayload{Scenarios: []archiveEntry{}}
		for _, record := range records {
			payload.Scenarios = append(payload.Scenarios, archiveEntry{
				ID:         record.ID,
				Topic:      record.Topic,
				Model:      record.Model,
				FrameCount: record.FrameCount,
				ErrorCount: record.ErrorCount,
				CreatedAt:  record.CreatedAt.UTC().Format(time.RFC3339),
			})
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal archive list: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
