package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"usetidy/internal/mcp/contracts"
	"usetidy/internal/shared/util"
)

func runStdio(t *testing.T, input string, limiter *util.Limiter, handler Handler) []map[string]any {
	t.Helper()
	out := &bytes.Buffer{}
	s := &Stdio{serverName: "usetidy", limiter: limiter, in: strings.NewReader(input), out: out}

	if err := s.Start(context.Background(), handler); err != nil {
		t.Fatalf("serve stdio: %v", err)
	}

	var responses []map[string]any
	dec := json.NewDecoder(out)
	for dec.More() {
		var resp map[string]any
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestStdio_InitializeAndListTools(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"

	responses := runStdio(t, input, nil, func(context.Context, string, map[string]any) (any, error) {
		t.Error("no tool call expected")
		return nil, nil
	})

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}

	init, ok := responses[0]["result"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected initialize response: %+v", responses[0])
	}
	serverInfo := init["serverInfo"].(map[string]any)
	if serverInfo["name"] != "usetidy" {
		t.Fatalf("unexpected server info: %+v", serverInfo)
	}

	list := responses[1]["result"].(map[string]any)
	tools := list["tools"].([]any)
	if len(tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(tools))
	}
	first := tools[0].(map[string]any)
	if first["name"] != contracts.ToolOrganize {
		t.Fatalf("unexpected first tool: %+v", first)
	}
	if first["inputSchema"] == nil {
		t.Fatal("expected an input schema")
	}
}

func TestStdio_ToolCallRoutesToHandler(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"status","arguments":{}}}` + "\n"

	var gotTool string
	responses := runStdio(t, input, nil, func(_ context.Context, tool string, _ map[string]any) (any, error) {
		gotTool = tool
		return map[string]any{"version": "0.4.0-dev"}, nil
	})

	if gotTool != contracts.ToolStatus {
		t.Fatalf("unexpected routed tool: %q", gotTool)
	}
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	result := responses[0]["result"].(map[string]any)
	if result["isError"] != false {
		t.Fatalf("unexpected call result: %+v", result)
	}
	structured := result["structuredContent"].(map[string]any)
	if structured["version"] != "0.4.0-dev" {
		t.Fatalf("unexpected structured content: %+v", structured)
	}
}

func TestStdio_ToolCallErrorBecomesContent(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"organize","arguments":{}}}` + "\n"

	responses := runStdio(t, input, nil, func(context.Context, string, map[string]any) (any, error) {
		return nil, contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "path is required"}
	})

	result := responses[0]["result"].(map[string]any)
	if result["isError"] != true {
		t.Fatalf("expected an error result, got %+v", result)
	}
	content := result["content"].([]any)
	text := content[0].(map[string]any)["text"].(string)
	if !strings.Contains(text, "invalid_argument") || !strings.Contains(text, "path is required") {
		t.Fatalf("unexpected error content: %q", text)
	}
}

func TestStdio_LegacyEnvelope(t *testing.T) {
	input := `{"id":1,"tool":"scan","args":{}}` + "\n" +
		`{"id":2,"tool":"bogus","args":{}}` + "\n"

	responses := runStdio(t, input, nil, func(_ context.Context, tool string, _ map[string]any) (any, error) {
		if tool != contracts.ToolScan {
			return nil, contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "unsupported tool: " + tool}
		}
		return map[string]any{"files_scanned": 1}, nil
	})

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if responses[0]["ok"] != true {
		t.Fatalf("unexpected first response: %+v", responses[0])
	}
	if responses[1]["ok"] != false {
		t.Fatalf("unexpected second response: %+v", responses[1])
	}
	errObj := responses[1]["error"].(map[string]any)
	if errObj["code"] != contracts.ErrorInvalidArgument {
		t.Fatalf("unexpected error payload: %+v", errObj)
	}
}

func TestStdio_RateLimitRefusesRequest(t *testing.T) {
	input := `{"id":1,"tool":"status"}` + "\n" +
		`{"id":2,"tool":"status"}` + "\n"

	responses := runStdio(t, input, util.NewLimiter(0.001, 1), func(context.Context, string, map[string]any) (any, error) {
		return map[string]any{}, nil
	})

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if responses[0]["ok"] != true {
		t.Fatalf("first request should pass, got %+v", responses[0])
	}
	rpcErr, ok := responses[1]["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected a rate limit error, got %+v", responses[1])
	}
	if rpcErr["code"] != float64(-32005) {
		t.Fatalf("unexpected error code: %v", rpcErr["code"])
	}
}
