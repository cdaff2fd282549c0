package contracts

type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
	Version     string         `json:"version"`
}

// BuildToolDefinitions describes the exposed tools for tools/list.
func BuildToolDefinitions() []ToolDefinition {
	spanSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start_line": map[string]any{"type": "integer", "minimum": 0},
			"start_col":  map[string]any{"type": "integer", "minimum": 0},
			"end_line":   map[string]any{"type": "integer", "minimum": 0},
			"end_col":    map[string]any{"type": "integer", "minimum": 0},
		},
		"required": []string{"start_line", "start_col", "end_line", "end_col"},
	}
	suggestionSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":       map[string]any{"type": "string", "description": ":: separated import path, e.g. serde::Serialize."},
			"trait_like": map[string]any{"type": "boolean", "description": "Import without binding the name (use path as _)."},
		},
		"required": []string{"path"},
	}

	return []ToolDefinition{
		{
			Name:        ToolOrganize,
			Description: "Organize the use declarations of one file; preview by default, rewrite with apply.",
			Version:     ContractVersion,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":   map[string]any{"type": "string", "description": "File path, absolute or relative to the project root."},
					"apply":  map[string]any{"type": "boolean", "description": "Rewrite the file in place instead of previewing."},
					"unused": map[string]any{"type": "array", "items": spanSchema, "description": "Spans of imports a resolver found unused; they are dropped."},
					"add":    map[string]any{"type": "array", "items": suggestionSchema, "description": "Missing imports to merge into the block."},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolScan,
			Description: "Dry-run an organize pass over the project tree and report per-file status.",
			Version:     ContractVersion,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"paths": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Roots to scan; defaults to the configured scan paths.",
					},
				},
			},
		},
		{
			Name:        ToolStatus,
			Description: "Report workspace state: version, project root, manifest dependencies, last run.",
			Version:     ContractVersion,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}
