package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"usetidy/internal/mcp/contracts"
	"usetidy/internal/shared/util"
	"usetidy/internal/shared/version"
)

type Handler func(ctx context.Context, tool string, args map[string]any) (any, error)

type Adapter interface {
	Start(ctx context.Context, handler Handler) error
	Stop() error
}

// Stdio speaks MCP JSON-RPC over stdin/stdout, and additionally accepts the
// bare {tool,args} envelope older clients send. One request is handled at a
// time; requests over the rate limit are refused, not queued.
type Stdio struct {
	serverName string
	limiter    *util.Limiter

	in  io.Reader
	out io.Writer

	mu      sync.Mutex
	running bool
}

func NewStdio(serverName string, requestsPerSecond float64, burst int) (Adapter, error) {
	s := &Stdio{
		serverName: serverName,
		in:         os.Stdin,
		out:        os.Stdout,
	}
	if requestsPerSecond > 0 && burst > 0 {
		s.limiter = util.NewLimiter(requestsPerSecond, burst)
	}
	return s, nil
}

func (s *Stdio) Start(ctx context.Context, handler Handler) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		<-ctx.Done()
		return ctx.Err()
	}
	s.running = true
	s.mu.Unlock()

	err := s.serve(ctx, handler)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}

func (s *Stdio) Stop() error {
	return nil
}

type toolRequest struct {
	ID   any            `json:"id,omitempty"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type toolResponse struct {
	ID     any                  `json:"id,omitempty"`
	OK     bool                 `json:"ok"`
	Result any                  `json:"result,omitempty"`
	Error  *contracts.ToolError `json:"error,omitempty"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (s *Stdio) serve(ctx context.Context, handler Handler) error {
	if handler == nil {
		return contracts.ToolError{Code: contracts.ErrorInvalidArgument, Message: "stdio handler is required"}
	}

	decoder := json.NewDecoder(bufio.NewReader(s.in))
	writer := bufio.NewWriter(s.out)
	encoder := json.NewEncoder(writer)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var raw map[string]any
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if s.limiter != nil && !s.limiter.Allow(1) {
			// -32005 is the reserved JSON-RPC rate-limit code; both
			// envelopes get the same refusal shape.
			resp := rpcResponse{
				JSONRPC: "2.0",
				ID:      raw["id"],
				Error: &rpcError{
					Code:    -32005,
					Message: "rate limit exceeded",
				},
			}
			if err := writeResponse(encoder, writer, resp); err != nil {
				return err
			}
			continue
		}

		handled, err := s.handleRPCMessage(ctx, handler, raw, encoder, writer)
		if err != nil {
			return err
		}
		if handled {
			continue
		}

		req := parseLegacyToolRequest(raw)
		if req.Args == nil {
			req.Args = map[string]any{}
		}

		result, callErr := handler(ctx, req.Tool, req.Args)
		resp := toolResponse{ID: req.ID}
		if callErr != nil {
			toolErr := normalizeToolError(callErr)
			resp.Error = &toolErr
		} else {
			resp.OK = true
			resp.Result = result
		}
		if err := writeResponse(encoder, writer, resp); err != nil {
			return err
		}
	}
}

func parseLegacyToolRequest(raw map[string]any) toolRequest {
	req := toolRequest{ID: raw["id"]}
	if tool, ok := raw["tool"].(string); ok {
		req.Tool = tool
	}
	if args, ok := raw["args"].(map[string]any); ok {
		req.Args = args
	}
	return req
}

// handleRPCMessage serves one MCP JSON-RPC message. It reports false when
// the message is not JSON-RPC so the legacy envelope can take over.
func (s *Stdio) handleRPCMessage(ctx context.Context, handler Handler, raw map[string]any, encoder *json.Encoder, writer *bufio.Writer) (bool, error) {
	method, _ := raw["method"].(string)
	jsonrpc, _ := raw["jsonrpc"].(string)
	if method == "" || jsonrpc == "" {
		return false, nil
	}

	if method == "notifications/initialized" {
		return true, nil
	}

	resp := rpcResponse{
		JSONRPC: "2.0",
		ID:      raw["id"],
	}
	params, _ := raw["params"].(map[string]any)

	switch method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": "2025-06-18",
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    s.serverName,
				"version": version.Version,
			},
		}
	case "ping":
		resp.Result = map[string]any{}
	case "tools/list":
		defs := contracts.BuildToolDefinitions()
		tools := make([]map[string]any, 0, len(defs))
		for _, def := range defs {
			tools = append(tools, map[string]any{
				"name":        def.Name,
				"description": def.Description,
				"inputSchema": def.InputSchema,
			})
		}
		resp.Result = map[string]any{"tools": tools}
	case "tools/call":
		name, _ := params["name"].(string)
		args, _ := params["arguments"].(map[string]any)
		if args == nil {
			args = map[string]any{}
		}
		result, err := handler(ctx, name, args)
		if err != nil {
			toolErr := normalizeToolError(err)
			resp.Result = map[string]any{
				"isError": true,
				"content": []map[string]any{
					{"type": "text", "text": fmt.Sprintf("%s: %s", toolErr.Code, toolErr.Message)},
				},
			}
		} else {
			resp.Result = map[string]any{
				"isError":           false,
				"structuredContent": result,
				"content": []map[string]any{
					{"type": "text", "text": jsonText(result)},
				},
			}
		}
	default:
		resp.Error = &rpcError{
			Code:    -32601,
			Message: "method not found",
		}
	}

	return true, writeResponse(encoder, writer, resp)
}

func writeResponse(encoder *json.Encoder, writer *bufio.Writer, resp any) error {
	if err := encoder.Encode(resp); err != nil {
		return err
	}
	return writer.Flush()
}

func jsonText(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func normalizeToolError(err error) contracts.ToolError {
	var toolErr contracts.ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}
	return contracts.ToolError{Code: contracts.ErrorInternal, Message: err.Error()}
}
