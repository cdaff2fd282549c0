package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"usetidy/internal/mcp/contracts"
)

const (
	maxPathCount   = 64
	maxUnusedCount = 256
	maxAddCount    = 64
)

// ParseToolArgs decodes and validates the arguments of one tool call into
// the typed input the tool handler expects.
func ParseToolArgs(tool string, raw map[string]any) (any, error) {
	if strings.TrimSpace(tool) == "" {
		return nil, contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "tool name is required"}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	switch tool {
	case contracts.ToolOrganize:
		var input contracts.OrganizeInput
		if err := decodeArgs(raw, &input); err != nil {
			return nil, err
		}
		input.Path = strings.TrimSpace(input.Path)
		if input.Path == "" {
			return nil, contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "path is required"}
		}
		if len(input.Unused) > maxUnusedCount {
			return nil, tooManyError("unused", maxUnusedCount)
		}
		for _, span := range input.Unused {
			if span.StartLine < 0 || span.StartCol < 0 || span.EndLine < 0 || span.EndCol < 0 {
				return nil, contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "unused spans must use non-negative coordinates"}
			}
			if span.EndLine < span.StartLine || (span.EndLine == span.StartLine && span.EndCol < span.StartCol) {
				return nil, contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "unused spans must end at or after their start"}
			}
		}
		if len(input.Add) > maxAddCount {
			return nil, tooManyError("add", maxAddCount)
		}
		adds := make([]contracts.AddSuggestion, 0, len(input.Add))
		for _, sug := range input.Add {
			sug.Path = strings.TrimSpace(sug.Path)
			if sug.Path == "" {
				continue
			}
			adds = append(adds, sug)
		}
		input.Add = adds
		return input, nil
	case contracts.ToolScan:
		var input contracts.ScanInput
		if err := decodeArgs(raw, &input); err != nil {
			return nil, err
		}
		input.Paths = normalizeStrings(input.Paths, maxPathCount)
		return input, nil
	case contracts.ToolStatus:
		var input contracts.StatusInput
		if err := decodeArgs(raw, &input); err != nil {
			return nil, err
		}
		return input, nil
	default:
		return nil, contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: fmt.Sprintf("unsupported tool: %s", tool)}
	}
}

func decodeArgs(args map[string]any, out any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "invalid args encoding"}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "invalid args", Details: map[string]any{"error": err.Error()}}
	}
	return nil
}

func normalizeStrings(values []string, maxCount int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if seen[trimmed] {
			continue
		}
		if maxCount > 0 && len(out) >= maxCount {
			break
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}

func tooManyError(field string, max int) error {
	return contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: fmt.Sprintf("%s accepts at most %d entries", field, max)}
}
