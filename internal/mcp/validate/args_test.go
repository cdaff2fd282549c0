package validate

import (
	"strings"
	"testing"

	"usetidy/internal/mcp/contracts"
)

func TestParseToolArgs_Organize(t *testing.T) {
	input, err := ParseToolArgs(contracts.ToolOrganize, map[string]any{
		"path":  "  src/main.rs  ",
		"apply": true,
		"unused": []any{
			map[string]any{"start_line": 0, "start_col": 0, "end_line": 1, "end_col": 0},
		},
		"add": []any{
			map[string]any{"path": " serde::Serialize "},
			map[string]any{"path": "   "},
		},
	})
	if err != nil {
		t.Fatalf("parse organize args: %v", err)
	}

	typed, ok := input.(contracts.OrganizeInput)
	if !ok {
		t.Fatalf("unexpected input type %T", input)
	}
	if typed.Path != "src/main.rs" || !typed.Apply {
		t.Fatalf("unexpected input: %+v", typed)
	}
	if len(typed.Unused) != 1 || typed.Unused[0].EndLine != 1 {
		t.Fatalf("unexpected unused spans: %+v", typed.Unused)
	}
	if len(typed.Add) != 1 || typed.Add[0].Path != "serde::Serialize" {
		t.Fatalf("expected blank suggestions dropped, got %+v", typed.Add)
	}
}

func TestParseToolArgs_OrganizeRequiresPath(t *testing.T) {
	_, err := ParseToolArgs(contracts.ToolOrganize, map[string]any{"path": "  "})
	if err == nil {
		t.Fatal("expected error")
	}
	toolErr, ok := err.(contracts.ToolError)
	if !ok || toolErr.Code != contracts.ErrorInvalidArgument {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseToolArgs_OrganizeRejectsInvertedSpan(t *testing.T) {
	_, err := ParseToolArgs(contracts.ToolOrganize, map[string]any{
		"path": "main.rs",
		"unused": []any{
			map[string]any{"start_line": 2, "start_col": 0, "end_line": 1, "end_col": 0},
		},
	})
	if err == nil {
		t.Fatal("expected error for inverted span")
	}
	if !strings.Contains(err.Error(), "end at or after") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseToolArgs_ScanNormalizesPaths(t *testing.T) {
	input, err := ParseToolArgs(contracts.ToolScan, map[string]any{
		"paths": []any{" src ", "src", "", "crates"},
	})
	if err != nil {
		t.Fatalf("parse scan args: %v", err)
	}
	typed := input.(contracts.ScanInput)
	if len(typed.Paths) != 2 || typed.Paths[0] != "src" || typed.Paths[1] != "crates" {
		t.Fatalf("unexpected paths: %v", typed.Paths)
	}
}

func TestParseToolArgs_StatusIgnoresArgs(t *testing.T) {
	if _, err := ParseToolArgs(contracts.ToolStatus, nil); err != nil {
		t.Fatalf("parse status args: %v", err)
	}
}

func TestParseToolArgs_UnknownTool(t *testing.T) {
	_, err := ParseToolArgs("format", map[string]any{})
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !strings.Contains(err.Error(), "unsupported tool") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseToolArgs_BadArgShape(t *testing.T) {
	_, err := ParseToolArgs(contracts.ToolOrganize, map[string]any{"path": 42})
	if err == nil {
		t.Fatal("expected decode error")
	}
	toolErr, ok := err.(contracts.ToolError)
	if !ok || toolErr.Code != contracts.ErrorInvalidArgument {
		t.Fatalf("unexpected error: %v", err)
	}
}
