package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sandtable-sim/sandtable/internal/generate"
)

func connectTestClient(t *testing.T, engine *Engine) *mcp.ClientSession {
	t.Helper()

	server := NewServer(engine)
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(clientCancel)

	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestServerRegistersTools(t *testing.T) {
	engine := newTestEngine(&fakeGenerator{scenario: threeFrameScenario()}, nil)
	session := connectTestClient(t, engine)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	found := map[string]bool{}
	for _, tool := range tools.Tools {
		found[tool.Name] = true
	}
	for _, want := range []string{
		"scenario_generate", "scenario_continue", "scenario_validate",
		"frame_advance", "frame_retreat", "scenario_export",
	} {
		if !found[want] {
			t.Fatalf("missing tool %q in %v", want, found)
		}
	}
}

func TestServerGenerateTool(t *testing.T) {
	archive := newMemoryArchive()
	engine := newTestEngine(&fakeGenerator{scenario: threeFrameScenario()}, archive)
	session := connectTestClient(t, engine)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "scenario_generate",
		Arguments: map[string]any{"topic": "bridgehead"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool reported error: %+v", result.Content)
	}

	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out ScenarioSummaryResult
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if out.FrameCount != 3 || out.ScenarioID != "scn-test" {
		t.Fatalf("unexpected result %+v", out)
	}
	if _, ok := archive.records["scn-test"]; !ok {
		t.Fatal("expected scenario archived through the tool path")
	}
}

func TestServerArchiveResource(t *testing.T) {
	archive := newMemoryArchive()
	engine := newTestEngine(&fakeGenerator{scenario: threeFrameScenario()}, archive)

	if _, err := engine.Generate(context.Background(), "bridgehead", generate.Options{}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	session := connectTestClient(t, engine)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "scenarios://archive"})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(result.Contents))
	}
	text := result.Contents[0].Text
	if !strings.Contains(text, `"id": "scn-test"`) || !strings.Contains(text, `"topic": "bridgehead"`) {
		t.Fatalf("unexpected archive payload:\n%s", text)
	}
}
