// Package errors provides structured error handling for the sandtable engine.
//
// Operational failures carry a machine-readable Code and a transport Kind.
// Validation violations detected by the consistency rules are not errors;
// they are data annotations on frames and never pass through this package.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors
	CodeConfigMissingAPIKey Code = "CONFIG_MISSING_API_KEY"
	CodeConfigMissingTopic  Code = "CONFIG_MISSING_TOPIC"

	// Generator backend errors
	CodeGeneratorAuth        Code = "GENERATOR_AUTH_FAILED"
	CodeGeneratorRateLimited Code = "GENERATOR_RATE_LIMITED"
	CodeGeneratorUnreachable Code = "GENERATOR_UNREACHABLE"
	CodeGeneratorBackend     Code = "GENERATOR_BACKEND_ERROR"

	// Scenario document errors
	CodeScenarioMalformed Code = "SCENARIO_MALFORMED"
	CodeScenarioNoFrames  Code = "SCENARIO_NO_FRAMES"

	// Navigation and editing errors
	CodeFrameOutOfRange  Code = "FRAME_OUT_OF_RANGE"
	CodeCellOutOfBounds  Code = "CELL_OUT_OF_BOUNDS"
	CodeUnitMissing      Code = "UNIT_MISSING"
	CodeDoctrineBadSide  Code = "DOCTRINE_INVALID_SIDE"
	CodeTerrainConflict  Code = "TERRAIN_STYLE_AND_GRID"
	CodeContinuationSpan Code = "CONTINUATION_POINT_OUT_OF_RANGE"

	// Archive errors
	CodeNotFound Code = "NOT_FOUND"
)

// Kind classifies how an error should be handled by callers. It replaces
// type-hierarchy matching on transport failures with an explicit enumeration.
type Kind int

const (
	// KindUnknown marks errors with no classification.
	KindUnknown Kind = iota
	// KindConfig marks configuration failures detected before any backend call.
	KindConfig
	// KindAuth marks authentication failures from the generator backend.
	KindAuth
	// KindRateLimit marks rate-limiting responses from the generator backend.
	KindRateLimit
	// KindConnectivity marks transport-level failures reaching the backend.
	KindConnectivity
	// KindBackend marks generic backend failures.
	KindBackend
	// KindMalformed marks schema violations on load or response parsing.
	KindMalformed
	// KindInvalid marks invalid arguments to engine operations.
	KindInvalid
	// KindNotFound marks lookups of absent records.
	KindNotFound
)

// String returns the kind's stable name.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindConnectivity:
		return "connectivity"
	case KindBackend:
		return "backend"
	case KindMalformed:
		return "malformed"
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// DefaultKind maps codes to their usual kind when the caller does not
// override it.
func (c Code) DefaultKind() Kind {
	switch c {
	case CodeConfigMissingAPIKey, CodeConfigMissingTopic:
		return KindConfig
	case CodeGeneratorAuth:
		return KindAuth
	case CodeGeneratorRateLimited:
		return KindRateLimit
	case CodeGeneratorUnreachable:
		return KindConnectivity
	case CodeGeneratorBackend:
		return KindBackend
	case CodeScenarioMalformed, CodeScenarioNoFrames:
		return KindMalformed
	case CodeFrameOutOfRange, CodeCellOutOfBounds, CodeUnitMissing,
		CodeDoctrineBadSide, CodeTerrainConflict, CodeContinuationSpan:
		return KindInvalid
	case CodeNotFound:
		return KindNotFound
	default:
		return KindUnknown
	}
}
