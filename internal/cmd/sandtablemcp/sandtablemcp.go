// Package sandtablemcp runs the MCP server over stdio, exposing the
// scenario engine as tools and resources.
package sandtablemcp

import (
	"context"
	"flag"
	"io"
	"time"

	"github.com/sandtable-sim/sandtable/internal/generate"
	"github.com/sandtable-sim/sandtable/internal/generate/openai"
	"github.com/sandtable-sim/sandtable/internal/mcp"
	"github.com/sandtable-sim/sandtable/internal/platform/config"
	"github.com/sandtable-sim/sandtable/internal/platform/otel"
	sqlitestore "github.com/sandtable-sim/sandtable/internal/storage/sqlite"
	"github.com/sandtable-sim/sandtable/internal/telemetry"
)

// Config holds MCP server configuration.
type Config struct {
	APIKey string `env:"SANDTABLE_OPENAI_API_KEY"`
	Model  string `env:"SANDTABLE_MODEL"   envDefault:"gpt-4o"`
	DBPath string `env:"SANDTABLE_DB_PATH" envDefault:"sandtable.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Model, "model", cfg.Model, "generator model id")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the scenario archive database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server on stdio and blocks until the client
// disconnects or the context is canceled.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	shutdown, err := otel.Setup(ctx, "sandtable-mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	store, err := sqlitestore.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := openai.New(openai.Config{APIKey: cfg.APIKey})
	if err != nil {
		return err
	}
	generator := generate.NewService(client, telemetry.NewEmitter(store))

	engine := mcp.NewEngine(generator, store)
	return mcp.Serve(ctx, engine)
}
