package i18n

const (
	CodeConfigMissingAPIKey = "CONFIG_MISSING_API_KEY"
	CodeConfigMissingTopic  = "CONFIG_MISSING_TOPIC"
	CodeGeneratorAuth       = "GENERATOR_AUTH_FAILED"
	CodeGeneratorRateLimit  = "GENERATOR_RATE_LIMITED"
	CodeGeneratorUnreach    = "GENERATOR_UNREACHABLE"
	CodeGeneratorBackend    = "GENERATOR_BACKEND_ERROR"
	CodeScenarioMalformed   = "SCENARIO_MALFORMED"
	CodeScenarioNoFrames    = "SCENARIO_NO_FRAMES"
	CodeFrameOutOfRange     = "FRAME_OUT_OF_RANGE"
	CodeCellOutOfBounds     = "CELL_OUT_OF_BOUNDS"
	CodeUnitMissing         = "UNIT_MISSING"
	CodeDoctrineBadSide     = "DOCTRINE_INVALID_SIDE"
	CodeTerrainConflict     = "TERRAIN_STYLE_AND_GRID"
	CodeContinuationSpan    = "CONTINUATION_POINT_OUT_OF_RANGE"
	CodeNotFound            = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeConfigMissingAPIKey: "Generator API key is missing; set SANDTABLE_OPENAI_API_KEY",
		CodeConfigMissingTopic:  "A scenario topic is required",
		CodeGeneratorAuth:       "The generator rejected the configured API key",
		CodeGeneratorRateLimit:  "The generator is rate limiting requests; try again later",
		CodeGeneratorUnreach:    "Could not reach the generator backend",
		CodeGeneratorBackend:    "The generator backend returned an error",
		CodeScenarioMalformed:   "Scenario document is malformed: {{.Detail}}",
		CodeScenarioNoFrames:    "Scenario has no frames",
		CodeFrameOutOfRange:     "Frame {{.Frame}} is out of range",
		CodeCellOutOfBounds:     "Cell ({{.X}}, {{.Y}}) is outside the terrain grid",
		CodeUnitMissing:         "Unit {{.UnitID}} is not present in this frame",
		CodeDoctrineBadSide:     "Doctrine side {{.Side}} is not Blue or Red",
		CodeTerrainConflict:     "A terrain style hint and a pinned grid cannot both be set",
		CodeContinuationSpan:    "Continuation point {{.Frame}} is past the last frame",
		CodeNotFound:            "Archived scenario not found",
	},
}
