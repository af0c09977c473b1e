package openai

// JSON schemas sent to the responses endpoint as the structured output
// contract. They mirror the interchange document in internal/scenario.

var unitSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"unit_id": map[string]any{"type": "string"},
		"side":    map[string]any{"type": "string", "enum": []string{"Blue", "Red"}},
		"type":    map[string]any{"type": "string"},
		"x":       map[string]any{"type": "integer"},
		"y":       map[string]any{"type": "integer"},
		"health":  map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"range":   map[string]any{"type": "integer", "minimum": 1},
		"status":  map[string]any{"type": "string"},
	},
	"required":             []string{"unit_id", "side", "type", "x", "y", "health", "range", "status"},
	"additionalProperties": false,
}

var combatEventSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"source_unit_id": map[string]any{"type": "string"},
		"target_unit_id": map[string]any{"type": "string"},
		"action_type": map[string]any{
			"type": "string",
			"enum": []string{"Move", "Fire", "Suppression", "Retreat", "Reinforce", "Intel"},
		},
		"details": map[string]any{"type": "string"},
		"outcome": map[string]any{"type": "string"},
	},
	"required":             []string{"source_unit_id", "action_type", "details"},
	"additionalProperties": false,
}

var frameSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"frame_description": map[string]any{"type": "string"},
		"unit_positions":    map[string]any{"type": "array", "items": unitSchema},
		"combat_log":        map[string]any{"type": "array", "items": combatEventSchema},
	},
	"required":             []string{"frame_description", "unit_positions", "combat_log"},
	"additionalProperties": false,
}

var terrainSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
	},
}

var scenarioSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"terrain": terrainSchema,
		"frames":  map[string]any{"type": "array", "items": frameSchema},
	},
	"required":             []string{"terrain", "frames"},
	"additionalProperties": false,
}

var extensionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"frames": map[string]any{"type": "array", "items": frameSchema},
	},
	"required":             []string{"frames"},
	"additionalProperties": false,
}
