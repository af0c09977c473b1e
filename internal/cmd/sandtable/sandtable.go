// Package sandtable parses CLI flags and drives the engine: generate,
// validate, export, and archive operations over scenarios.
package sandtable

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/sandtable-sim/sandtable/internal/errors"
	"github.com/sandtable-sim/sandtable/internal/errors/i18n"
	"github.com/sandtable-sim/sandtable/internal/generate"
	"github.com/sandtable-sim/sandtable/internal/generate/openai"
	"github.com/sandtable-sim/sandtable/internal/intel"
	"github.com/sandtable-sim/sandtable/internal/mcp"
	"github.com/sandtable-sim/sandtable/internal/platform/config"
	"github.com/sandtable-sim/sandtable/internal/scenario"
	sqlitestore "github.com/sandtable-sim/sandtable/internal/storage/sqlite"
	"github.com/sandtable-sim/sandtable/internal/telemetry"
	"github.com/sandtable-sim/sandtable/internal/terrain"
)

// Config holds sandtable command configuration.
type Config struct {
	APIKey   string `env:"SANDTABLE_OPENAI_API_KEY"`
	Model    string `env:"SANDTABLE_MODEL"     envDefault:"gpt-4o"`
	DBPath   string `env:"SANDTABLE_DB_PATH"   envDefault:"sandtable.db"`
	GridSize int    `env:"SANDTABLE_GRID_SIZE" envDefault:"20"`
	UseIntel bool   `env:"SANDTABLE_USE_INTEL"`
	Locale   string `env:"SANDTABLE_LOCALE"    envDefault:"en-US"`

	Topic        string
	TerrainStyle string
	Location     string
	DoctrineBlue string
	DoctrineRed  string
	Export       string
	LoadID       string
	List         bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Topic, "topic", cfg.Topic, "research topic to generate a scenario for")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "generator model id")
	fs.IntVar(&cfg.GridSize, "grid-size", cfg.GridSize, "terrain grid dimension")
	fs.StringVar(&cfg.TerrainStyle, "terrain-style", cfg.TerrainStyle, "terrain style hint for generated maps")
	fs.StringVar(&cfg.Location, "location", cfg.Location, "real place to fetch terrain for (overrides -terrain-style)")
	fs.BoolVar(&cfg.UseIntel, "intel", cfg.UseIntel, "gather open-source intel on the topic before generating")
	fs.StringVar(&cfg.DoctrineBlue, "doctrine-blue", cfg.DoctrineBlue, "doctrine text biasing Blue tactics")
	fs.StringVar(&cfg.DoctrineRed, "doctrine-red", cfg.DoctrineRed, "doctrine text biasing Red tactics")
	fs.StringVar(&cfg.Export, "export", cfg.Export, "export format: journal, tabletop, force_table, heatmap, or document")
	fs.StringVar(&cfg.LoadID, "load", cfg.LoadID, "load an archived scenario by id instead of generating")
	fs.BoolVar(&cfg.List, "list", cfg.List, "list archived scenarios")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the scenario archive database")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for user-facing error messages")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the sandtable command. Coded failures additionally print a
// localized user-facing line before the error propagates.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	err := run(ctx, cfg, out, errOut)
	if err != nil {
		if code := errors.CodeOf(err); code != errors.CodeUnknown {
			fmt.Fprintln(errOut, i18n.Resolve(cfg.Locale).Message(string(code), nil))
		}
	}
	return err
}

func run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	store, err := sqlitestore.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.List {
		return listArchive(ctx, store, out)
	}

	client, err := openai.New(openai.Config{APIKey: cfg.APIKey})
	if err != nil && cfg.LoadID == "" {
		return err
	}
	var generator *generate.Service
	if client != nil {
		generator = generate.NewService(client, telemetry.NewEmitter(store))
	}
	engine := mcp.NewEngine(generator, store)

	switch {
	case cfg.LoadID != "":
		summary, err := engine.LoadArchived(ctx, cfg.LoadID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Loaded scenario %s: %d frames, %d violations\n",
			summary.ScenarioID, summary.FrameCount, summary.ValidationCount)
	case strings.TrimSpace(cfg.Topic) != "":
		opts, err := buildOptions(ctx, cfg, store, errOut)
		if err != nil {
			return err
		}
		summary, err := engine.Generate(ctx, cfg.Topic, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Generated scenario %s: %d frames, %d violations\n",
			summary.ScenarioID, summary.FrameCount, summary.ValidationCount)
		if summary.ValidationCount > 0 {
			fmt.Fprintln(errOut, "warning: the scenario was accepted with known consistency defects")
		}
	default:
		return fmt.Errorf("a -topic, -load, or -list is required")
	}

	if cfg.Export != "" {
		content, err := engine.Export(ctx, mcp.ExportFormat(cfg.Export))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, content)
	}
	return nil
}

func buildOptions(ctx context.Context, cfg Config, store *sqlitestore.Store, errOut io.Writer) (generate.Options, error) {
	opts := generate.Options{
		GridSize:     cfg.GridSize,
		TerrainStyle: cfg.TerrainStyle,
		Model:        cfg.Model,
	}
	if cfg.DoctrineBlue != "" {
		opts.Doctrines = append(opts.Doctrines, generate.Doctrine{Side: scenario.SideBlue, Text: cfg.DoctrineBlue})
	}
	if cfg.DoctrineRed != "" {
		opts.Doctrines = append(opts.Doctrines, generate.Doctrine{Side: scenario.SideRed, Text: cfg.DoctrineRed})
	}

	emitter := telemetry.NewEmitter(store)
	if strings.TrimSpace(cfg.Location) != "" {
		// A real place replaces the style hint; the fetched grid is pinned.
		opts.TerrainStyle = ""
		fetcher := terrain.NewFetcher(
			terrain.NewOSMGeocoder(terrain.OSMConfig{}),
			terrain.NewOSMFeatureSource(terrain.OSMConfig{}),
			emitter,
		)
		opts.Terrain = fetcher.FetchGrid(ctx, cfg.Location, cfg.GridSize, terrain.DefaultCellSizeMeters)
	}
	if cfg.UseIntel {
		digest := intel.Digest(ctx, intel.NewInstantAnswerProvider(intel.InstantAnswerConfig{}), cfg.Topic)
		if strings.HasPrefix(digest, "[intel unavailable") {
			fmt.Fprintln(errOut, "warning: "+digest)
		} else {
			opts.Intel = digest
		}
	}
	return opts, nil
}

func listArchive(ctx context.Context, store *sqlitestore.Store, out io.Writer) error {
	records, err := store.ListScenarios(ctx, 50)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "no archived scenarios")
		return nil
	}
	for _, record := range records {
		fmt.Fprintf(out, "%s  %-30s  %s  frames=%d violations=%d  %s\n",
			record.ID,
			record.Topic,
			record.Model,
			record.FrameCount,
			record.ErrorCount,
			record.CreatedAt.UTC().Format("2006-01-02 15:04"),
		)
	}
	return nil
}
