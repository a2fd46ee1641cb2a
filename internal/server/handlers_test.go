package server

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/coffee-ring/internal/config"
	"github.com/ironsheep/coffee-ring/internal/synth"
)

// createTestImageFile writes img as a PNG into dir and returns its path
func createTestImageFile(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// newTestServer returns a server tuned to the synthetic droplets
func newTestServer() *Server {
	cfg := config.DefaultConfig()
	cfg.Localizer.CannySigma = 3
	cfg.Localizer.CropPadding = 40
	return New(cfg, "test")
}

// callTool issues a tools/call request and returns the response
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unmarshals the text content of a successful tool response
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("content is not JSON: %v", err)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, t.TempDir(), "blank.png", synth.UniformImage(100, 80, 30))

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	decodeContent(t, callTool(t, s, "image_load", map[string]interface{}{"path": path}), &info)

	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("info: got %+v", info)
	}
}

func TestHandleToolsCall_RingParameter(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, t.TempDir(), "droplet.png", synth.DarkRing().Image())

	var out struct {
		Value   float64 `json:"value"`
		Message string  `json:"message"`
		Result  struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	decodeContent(t, callTool(t, s, "ring_parameter", map[string]interface{}{"path": path}), &out)

	if out.Result.Status != "measured" {
		t.Fatalf("status: got %s", out.Result.Status)
	}
	if out.Value < 0.74 || out.Value > 0.76 {
		t.Errorf("value: got %v, want about 0.75", out.Value)
	}
	if !strings.HasPrefix(out.Message, "Ring parameter:") {
		t.Errorf("message: got %q", out.Message)
	}
}

func TestHandleToolsCall_RingParameter_Overrides(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, t.TempDir(), "droplet.png", synth.DarkRing().Image())

	var out struct {
		Value  float64 `json:"value"`
		Result struct {
			Summary struct {
				Lines []json.RawMessage `json:"lines"`
			} `json:"summary"`
		} `json:"result"`
	}
	args := map[string]interface{}{
		"path":            path,
		"num_lines":       8,
		"exterior_weight": 1.0,
		"interior_weight": 0.0,
	}
	decodeContent(t, callTool(t, s, "ring_parameter", args), &out)

	if len(out.Result.Summary.Lines) != 8 {
		t.Errorf("lines: got %d, want 8", len(out.Result.Summary.Lines))
	}
	// 1 - 50 * (1/200)
	if out.Value < 0.74 || out.Value > 0.76 {
		t.Errorf("value: got %v, want about 0.75", out.Value)
	}
	if s.cfg.Profiler.NumLines != 20 {
		t.Error("overrides must not leak into the server configuration")
	}
}

func TestHandleToolsCall_RingParameter_NotVisible(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, t.TempDir(), "disk.png", synth.SolidDisk().Image())

	var out struct {
		Value   float64 `json:"value"`
		Message string  `json:"message"`
	}
	decodeContent(t, callTool(t, s, "ring_parameter", map[string]interface{}{"path": path}), &out)

	if out.Value != 0 || out.Message != "Ring is not clearly visible" {
		t.Errorf("got %+v", out)
	}
}

func TestHandleToolsCall_RingParameter_InvalidOverride(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, t.TempDir(), "droplet.png", synth.DarkRing().Image())

	resp := callTool(t, s, "ring_parameter", map[string]interface{}{"path": path, "num_lines": 0})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected tool error, got %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Data.(string), "numLines") {
		t.Errorf("error data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_RingBatch(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()
	createTestImageFile(t, dir, "b.png", synth.SolidDisk().Image())
	createTestImageFile(t, dir, "a.png", synth.DarkRing().Image())

	var report struct {
		Items []struct {
			Path   string `json:"path"`
			Reason string `json:"reason"`
			Result *struct {
				Status string `json:"status"`
			} `json:"result"`
		} `json:"items"`
	}
	decodeContent(t, callTool(t, s, "ring_batch", map[string]interface{}{"dir": dir, "workers": 2}), &report)

	if len(report.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(report.Items))
	}
	if filepath.Base(report.Items[0].Path) != "a.png" || report.Items[0].Result.Status != "measured" {
		t.Errorf("first item: got %+v", report.Items[0])
	}
	if report.Items[1].Result.Status != "ring_not_visible" {
		t.Errorf("second item: got %+v", report.Items[1])
	}
}

func TestHandleToolsCall_RingBatch_SkipsCache(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()
	createTestImageFile(t, dir, "a.png", synth.DarkRing().Image())
	createTestImageFile(t, dir, "b.png", synth.SolidDisk().Image())

	for _, args := range []map[string]interface{}{
		{"dir": dir},
		{"dir": dir, "workers": 2},
	} {
		resp := callTool(t, s, "ring_batch", args)
		if resp.Error != nil {
			t.Fatalf("ring_batch %v failed: %+v", args, resp.Error)
		}
		if n := s.cache.Len(); n != 0 {
			t.Errorf("ring_batch %v: cache holds %d images, want 0", args, n)
		}
	}

	callTool(t, s, "ring_parameter", map[string]interface{}{"path": filepath.Join(dir, "a.png")})
	if n := s.cache.Len(); n != 1 {
		t.Errorf("ring_parameter should cache its image: got %d, want 1", n)
	}
}

func TestHandleToolsCall_DetectCircle(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, t.TempDir(), "droplet.png", synth.DarkRing().Image())

	var out struct {
		Circle struct {
			Center struct{ X, Y int } `json:"center"`
			Radius int                `json:"radius"`
		} `json:"circle"`
	}
	decodeContent(t, callTool(t, s, "ring_detect_circle", map[string]interface{}{
		"path": path, "radius_min": 50, "radius_max": 80,
	}), &out)

	if out.Circle.Radius < 60 || out.Circle.Radius > 70 {
		t.Errorf("radius: got %d", out.Circle.Radius)
	}
	if out.Circle.Center.X < 197 || out.Circle.Center.X > 203 {
		t.Errorf("center x: got %d", out.Circle.Center.X)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer()
	missing := filepath.Join(t.TempDir(), "missing.png")

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"unknown tool", "image_ocr_full", map[string]interface{}{"path": missing}},
		{"missing file", "ring_parameter", map[string]interface{}{"path": missing}},
		{"missing path", "ring_parameter", map[string]interface{}{}},
		{"missing dir", "ring_batch", map[string]interface{}{"dir": filepath.Dir(missing) + "/absent"}},
		{"load missing file", "image_load", map[string]interface{}{"path": missing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json}`),
	})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}
