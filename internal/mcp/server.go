package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "sandtable"
	serverVersion = "1.0.0"
)

// NewServer builds an MCP server with every engine tool and resource
// registered.
func NewServer(engine *Engine) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, ScenarioGenerateTool(), ScenarioGenerateHandler(engine))
	mcp.AddTool(server, ScenarioContinueTool(), ScenarioContinueHandler(engine))
	mcp.AddTool(server, ScenarioValidateTool(), ScenarioValidateHandler(engine))
	mcp.AddTool(server, FrameAdvanceTool(), FrameAdvanceHandler(engine))
	mcp.AddTool(server, FrameRetreatTool(), FrameRetreatHandler(engine))
	mcp.AddTool(server, ScenarioExportTool(), ScenarioExportHandler(engine))

	server.AddResource(ArchiveResource(), ArchiveResourceHandler(engine))

	return server
}

// Serve runs the MCP server over stdio until the context is canceled.
func Serve(ctx context.Context, engine *Engine) error {
	return NewServer(engine).Run(ctx, &mcp.StdioTransport{})
}
