package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/coffee-ring/internal/detection"
	"github.com/ironsheep/coffee-ring/internal/imaging"
	"github.com/ironsheep/coffee-ring/internal/ring"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ring_parameter", "image_load").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "ring_parameter":
		return s.handleRingParameter(ctx, args)
	case "ring_batch":
		return s.handleRingBatch(ctx, args)
	case "ring_detect_circle":
		return s.handleRingDetectCircle(ctx, args)
	case "image_load":
		return s.handleImageLoad(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Ring Handlers ===

type ringParameterArgs struct {
	Path           string   `json:"path"`
	NumLines       *int     `json:"num_lines"`
	ExteriorWeight *float64 `json:"exterior_weight"`
	InteriorWeight *float64 `json:"interior_weight"`
	Tolerance      *int     `json:"tolerance"`
	AreaRatio      *float64 `json:"area_ratio"`
}

type ringParameterResult struct {
	Path    string       `json:"path"`
	Value   float64      `json:"value"`
	Message string       `json:"message"`
	Result  *ring.Result `json:"result"`
}

func (s *Server) handleRingParameter(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ringParameterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	cfg := *s.cfg
	if a.NumLines != nil {
		cfg.Profiler.NumLines = *a.NumLines
	}
	if a.ExteriorWeight != nil {
		cfg.Scorer.ExteriorWeight = *a.ExteriorWeight
	}
	if a.InteriorWeight != nil {
		cfg.Scorer.InteriorWeight = *a.InteriorWeight
	}
	if a.Tolerance != nil {
		cfg.Profiler.Tolerance = *a.Tolerance
	}
	if a.AreaRatio != nil {
		cfg.Validator.AreaRatioThreshold = *a.AreaRatio
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := ring.NewAnalyzer(&cfg).WithCache(s.cache).AnalyzeFile(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	out := ringParameterResult{Path: a.Path, Value: res.Value(), Result: res}
	if res.Measured() {
		out.Message = fmt.Sprintf("Ring parameter: %.4f", res.Score)
	} else {
		out.Message = "Ring is not clearly visible"
	}
	return out, nil
}

type ringBatchArgs struct {
	Dir     string `json:"dir"`
	Workers int    `json:"workers"`
}

func (s *Server) handleRingBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ringBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Dir == "" {
		return nil, fmt.Errorf("dir is required")
	}

	// batch files are read once; keep them out of the session cache
	cfg := *s.cfg
	if a.Workers > 0 {
		cfg.Batch.Workers = a.Workers
	}
	return ring.NewAnalyzer(&cfg).AnalyzeDir(ctx, a.Dir)
}

type ringDetectCircleArgs struct {
	Path      string `json:"path"`
	RadiusMin int    `json:"radius_min"`
	RadiusMax int    `json:"radius_max"`
}

type ringDetectCircleResult struct {
	Circle detection.Circle `json:"circle"`
	Bounds image.Rectangle  `json:"bounds"`
}

func (s *Server) handleRingDetectCircle(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ringDetectCircleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	analyzer := s.analyzer
	if a.RadiusMin != 0 || a.RadiusMax != 0 {
		cfg := *s.cfg
		if a.RadiusMin != 0 {
			cfg.Localizer.RadiusMin = a.RadiusMin
		}
		if a.RadiusMax != 0 {
			cfg.Localizer.RadiusMax = a.RadiusMax
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		analyzer = ring.NewAnalyzer(&cfg).WithCache(s.cache)
	}

	loc, err := analyzer.DetectCircle(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return ringDetectCircleResult{Circle: loc.Circle, Bounds: loc.Bounds}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}
