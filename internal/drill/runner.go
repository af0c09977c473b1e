package drill

import (
	"fmt"
	"strings"

	"github.com/sandtable-sim/sandtable/internal/validate"
)

// Mode controls how expectation failures are surfaced.
type Mode int

const (
	// ModeStrict fails the run on any unmet expectation.
	ModeStrict Mode = iota
	// ModeLogOnly records unmet expectations in the report without failing.
	ModeLogOnly
)

// Report is the outcome of one drill run.
type Report struct {
	Name       string
	Violations []string // "Frame N: <error>" lines from the validator
	Failures   []string // unmet expectations
	Passed     bool
}

// Run validates the drill's scenario and checks its expectations. In strict
// mode an unmet expectation is an error; in log-only mode it is recorded in
// the report and the error is nil.
func Run(d *Drill, mode Mode) (Report, error) {
	if d == nil || d.Scenario == nil {
		return Report{}, fmt.Errorf("drill is empty")
	}

	validate.Scenario(d.Scenario)

	report := Report{Name: d.Name}
	for i, frame := range d.Scenario.Frames {
		for _, violation := range frame.ValidationErrors {
			report.Violations = append(report.Violations, fmt.Sprintf("Frame %d: %s", i+1, violation))
		}
	}

	for _, expectation := range d.Expectations {
		switch expectation.Kind {
		case "clean":
			if len(report.Violations) > 0 {
				report.Failures = append(report.Failures,
					fmt.Sprintf("expected a clean scenario, found %d violations", len(report.Violations)))
			}
		case "violation":
			if !anyContains(report.Violations, expectation.Substring) {
				report.Failures = append(report.Failures,
					fmt.Sprintf("expected a violation matching %q", expectation.Substring))
			}
		default:
			report.Failures = append(report.Failures,
				fmt.Sprintf("unknown expectation kind %q", expectation.Kind))
		}
	}

	report.Passed = len(report.Failures) == 0
	if mode == ModeStrict && !report.Passed {
		return report, fmt.Errorf("drill %q failed:\n%s", d.Name, strings.Join(report.Failures, "\n"))
	}
	return report, nil
}

func anyContains(values []string, substring string) bool {
	for _, value := range values {
		if strings.Contains(value, substring) {
			return true
		}
	}
	return false
}
