// Package generate orchestrates scenario generation against an external
// generative backend: it assembles instructions, validates candidates, and
// retries with corrective feedback until the scenario is clean or the retry
// budget runs out.
package generate

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sandtable-sim/sandtable/internal/errors"
	"github.com/sandtable-sim/sandtable/internal/scenario"
	"github.com/sandtable-sim/sandtable/internal/telemetry"
	"github.com/sandtable-sim/sandtable/internal/validate"
)

const (
	// DefaultGridSize is the terrain dimension used when options omit one.
	DefaultGridSize = 20
	// DefaultModel is the generator model used when options omit one.
	DefaultModel = "gpt-4o"

	// maxRetries bounds the corrective loop: 3 retries, 4 total attempts.
	maxRetries = 3
	// maxFeedbackLines caps the violations quoted back to the generator.
	maxFeedbackLines = 10
	// continuationFrames is the fixed length of a branch continuation.
	continuationFrames = 5
)

// Turn is one prior conversation turn carried into a retry attempt.
type Turn struct {
	Role    string // "assistant" or "user"
	Content string
}

// Request is what the engine sends to the generator backend.
type Request struct {
	Model             string
	SystemInstruction string
	UserInstruction   string
	History           []Turn
}

// Client is the generator backend boundary. Implementations classify
// transport failures with errors.Kind values; they never retry.
type Client interface {
	GenerateScenario(ctx context.Context, req Request) (*scenario.Scenario, error)
	GenerateExtension(ctx context.Context, req Request) (*scenario.Extension, error)
}

// Doctrine biases one side's generated tactics.
type Doctrine struct {
	Side scenario.Side
	Text string
}

// Options tune one generation call.
type Options struct {
	// GridSize is the terrain dimension; DefaultGridSize when zero.
	GridSize int
	// TerrainStyle hints at generated terrain. Mutually exclusive with
	// Terrain.
	TerrainStyle string
	// Terrain pins a pre-supplied grid. The generator is told to echo it
	// and the grid is force-reapplied to every candidate regardless.
	Terrain scenario.Grid
	// Intel is an optional real-time intelligence digest.
	Intel string
	// Doctrines are optional per-side behavioral biases.
	Doctrines []Doctrine
	// Model names the backend model; DefaultModel when empty.
	Model string
}

func (o Options) gridSize() int {
	if o.GridSize <= 0 {
		return DefaultGridSize
	}
	return o.GridSize
}

func (o Options) model() string {
	if strings.TrimSpace(o.Model) == "" {
		return DefaultModel
	}
	return o.Model
}

// State labels a point in the attempt lifecycle.
type State string

const (
	StateDrafting   State = "drafting"
	StateValidating State = "validating"
	StateAccepted   State = "accepted"
	StateRetrying   State = "retrying"
	StateExhausted  State = "exhausted"
)

// Service coordinates generation attempts. One call runs at a time; retries
// are strictly sequential because each retry's prompt carries the history of
// prior attempts.
type Service struct {
	client  Client
	emitter *telemetry.Emitter
	tracer  trace.Tracer
}

// NewService wires a generation service. The emitter may be nil.
func NewService(client Client, emitter *telemetry.Emitter) *Service {
	return &Service{
		client:  client,
		emitter: emitter,
		tracer:  otel.Tracer("sandtable/generate"),
	}
}

// GenerateScenario produces a validated scenario for the topic.
//
// Transport, auth, and parse failures from the backend surface immediately
// and are never retried here. Validation violations drive the corrective
// loop; once the budget is exhausted the annotated candidate is returned
// with a nil error, and callers must treat non-empty ValidationErrors as
// "accepted with known defects".
func (s *Service) GenerateScenario(ctx context.Context, topic string, opts Options) (*scenario.Scenario, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New(errors.CodeConfigMissingTopic, "a scenario topic is required")
	}
	if opts.Terrain != nil && strings.TrimSpace(opts.TerrainStyle) != "" {
		return nil, errors.New(errors.CodeTerrainConflict, "a terrain style hint and a pinned grid cannot both be set")
	}
	for _, doctrine := range opts.Doctrines {
		if !doctrine.Side.Valid() {
			return nil, errors.Newf(errors.CodeDoctrineBadSide, "doctrine side %q is not Blue or Red", string(doctrine.Side))
		}
	}

	req := Request{
		Model:             opts.model(),
		SystemInstruction: systemInstruction(opts),
		UserInstruction:   userInstruction(topic, opts),
	}

	ctx, span := s.tracer.Start(ctx, "generate.scenario",
		trace.WithAttributes(
			attribute.String("sandtable.model", req.Model),
			attribute.Int("sandtable.grid_size", opts.gridSize()),
		))
	defer span.End()

	for attempt := 0; ; attempt++ {
		candidate, err := s.attempt(ctx, attempt, req)
		if err != nil {
			span.SetAttributes(attribute.String("sandtable.state", "error"))
			return nil, err
		}

		if opts.Terrain != nil {
			// Generator output for terrain is untrusted when a grid is
			// pinned.
			candidate.Terrain = opts.Terrain
		}

		validate.Scenario(candidate)
		violations := validate.ErrorCount(candidate)

		if violations == 0 {
			span.SetAttributes(
				attribute.String("sandtable.state", string(StateAccepted)),
				attribute.Int("sandtable.attempts", attempt+1),
			)
			s.emit(ctx, telemetry.SeverityInfo, "scenario_accepted", topic)
			return candidate, nil
		}

		if attempt == maxRetries {
			span.SetAttributes(
				attribute.String("sandtable.state", string(StateExhausted)),
				attribute.Int("sandtable.violations", violations),
			)
			s.emit(ctx, telemetry.SeverityWarn, "retry_budget_exhausted", topic)
			return candidate, nil
		}

		serialized, err := scenario.Marshal(candidate)
		if err != nil {
			return nil, err
		}
		req.History = append(req.History,
			Turn{Role: "assistant", Content: string(serialized)},
			Turn{Role: "user", Content: correctiveFeedback(candidate)},
		)
		s.emit(ctx, telemetry.SeverityInfo, "scenario_retrying", topic)
	}
}

func (s *Service) attempt(ctx context.Context, attempt int, req Request) (*scenario.Scenario, error) {
	ctx, span := s.tracer.Start(ctx, "generate.attempt",
		trace.WithAttributes(
			attribute.Int("sandtable.attempt", attempt+1),
			attribute.String("sandtable.state", string(StateDrafting)),
		))
	defer span.End()

	candidate, err := s.client.GenerateScenario(ctx, req)
	if err != nil {
		span.SetAttributes(attribute.String("sandtable.error_kind", errors.KindOf(err).String()))
		return nil, err
	}
	span.SetAttributes(attribute.String("sandtable.state", string(StateValidating)))
	return candidate, nil
}

// ContinueScenario asks the generator for exactly five continuation frames
// extending the scenario from fromFrame. It returns only the new frames:
// the caller truncates the scenario to fromFrame+1, appends the result, and
// re-runs validation over the merged whole.
func (s *Service) ContinueScenario(ctx context.Context, sc *scenario.Scenario, fromFrame int, reason string) ([]scenario.Frame, error) {
	if sc == nil || len(sc.Frames) == 0 {
		return nil, errors.New(errors.CodeScenarioNoFrames, "scenario has no frames")
	}
	if fromFrame < 0 || fromFrame >= len(sc.Frames) {
		return nil, errors.Newf(errors.CodeContinuationSpan, "continuation point %d is past the last frame %d", fromFrame, len(sc.Frames)-1)
	}

	instruction, err := continuationInstruction(sc, fromFrame, reason)
	if err != nil {
		return nil, err
	}

	req := Request{
		Model:             DefaultModel,
		SystemInstruction: systemInstruction(Options{GridSize: sc.Terrain.Width()}),
		UserInstruction:   instruction,
	}

	ctx, span := s.tracer.Start(ctx, "generate.continuation",
		trace.WithAttributes(attribute.Int("sandtable.from_frame", fromFrame)))
	defer span.End()

	ext, err := s.client.GenerateExtension(ctx, req)
	if err != nil {
		span.SetAttributes(attribute.String("sandtable.error_kind", errors.KindOf(err).String()))
		return nil, err
	}
	s.emit(ctx, telemetry.SeverityInfo, "scenario_continued", reason)
	return ext.Frames, nil
}

func (s *Service) emit(ctx context.Context, severity telemetry.Severity, event, detail string) {
	_ = s.emitter.Emit(ctx, severity, event, detail)
}
