// Package drill parses CLI flags and runs Lua consistency drills against
// the validator.
package drill

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/sandtable-sim/sandtable/internal/drill"
	"github.com/sandtable-sim/sandtable/internal/platform/config"
)

// Config holds drill command configuration.
type Config struct {
	Drill      string `env:"SANDTABLE_DRILL_FILE"`
	Assertions bool   `env:"SANDTABLE_DRILL_ASSERT" envDefault:"true"`
	Verbose    bool   `env:"SANDTABLE_DRILL_VERBOSE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Drill, "drill", cfg.Drill, "path to the Lua drill script")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "fail the run on unmet expectations")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "print every validator violation")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Drill == "" && fs.NArg() > 0 {
		cfg.Drill = fs.Arg(0)
	}
	if cfg.Drill == "" {
		return Config{}, fmt.Errorf("a drill script is required")
	}
	return cfg, nil
}

// Run loads and runs the configured drill.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	d, err := drill.LoadFile(cfg.Drill)
	if err != nil {
		return err
	}

	mode := drill.ModeLogOnly
	if cfg.Assertions {
		mode = drill.ModeStrict
	}

	report, runErr := drill.Run(d, mode)
	if cfg.Verbose {
		for _, violation := range report.Violations {
			fmt.Fprintln(out, violation)
		}
	}
	for _, failure := range report.Failures {
		fmt.Fprintln(errOut, "unmet expectation: "+failure)
	}
	if runErr != nil {
		return runErr
	}

	status := "passed"
	if !report.Passed {
		status = "failed"
	}
	fmt.Fprintf(out, "drill %q %s: %d frames, %d violations\n",
		report.Name, status, len(d.Scenario.Frames), len(report.Violations))
	return nil
}
