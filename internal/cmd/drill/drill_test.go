package drill

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cleanScript = `
local d = Drill.new("steady-advance")
d:open_grid(10)
d:frame("opening", {
  {id = "B-1", side = "Blue", type = "Infantry", x = 0, y = 0},
})
d:frame("advance", {
  {id = "B-1", side = "Blue", type = "Infantry", x = 1, y = 1},
})
d:expect_clean()
return d
`

func writeScript(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drill.lua")
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"check.lua"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Drill != "check.lua" {
		t.Fatalf("expected positional drill path, got %q", cfg.Drill)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
	if cfg.Verbose {
		t.Fatal("expected verbose to default to false")
	}
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-drill", "check.lua", "-assert=false", "-verbose"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Drill != "check.lua" || cfg.Assertions || !cfg.Verbose {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseConfigRequiresScript(t *testing.T) {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)

	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error without a drill script")
	}
}

func TestRunCleanDrill(t *testing.T) {
	cfg := Config{Drill: writeScript(t, cleanScript), Assertions: true}

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `drill "steady-advance" passed`) {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestRunStrictFailure(t *testing.T) {
	script := strings.Replace(cleanScript, "d:expect_clean()", `d:expect_violation("in Water")`, 1)
	cfg := Config{Drill: writeScript(t, script), Assertions: true}

	var errOut bytes.Buffer
	err := Run(context.Background(), cfg, nil, &errOut)
	if err == nil {
		t.Fatal("expected strict failure")
	}
	if !strings.Contains(errOut.String(), "unmet expectation") {
		t.Fatalf("unexpected error output: %s", errOut.String())
	}
}

func TestRunLogOnly(t *testing.T) {
	script := strings.Replace(cleanScript, "d:expect_clean()", `d:expect_violation("in Water")`, 1)
	cfg := Config{Drill: writeScript(t, script)}

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("log-only run must not fail: %v", err)
	}
	if !strings.Contains(out.String(), "failed") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
