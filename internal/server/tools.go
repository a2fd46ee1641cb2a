package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "ring_parameter",
			Description: "Measure the coffee-ring effect of a dried droplet image. Returns status 'measured' with the ring parameter, or 'ring_not_visible' when no distinct ring deposit exists. Optional arguments override the server configuration for this call only.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"num_lines": map[string]interface{}{
						"type":        "integer",
						"description": "Number of diameter profiles (default 20)",
						"default":     20,
					},
					"exterior_weight": map[string]interface{}{
						"type":        "number",
						"description": "Weight of the exterior background (default 0.75)",
						"default":     0.75,
					},
					"interior_weight": map[string]interface{}{
						"type":        "number",
						"description": "Weight of the interior background (default 0.25)",
						"default":     0.25,
					},
					"tolerance": map[string]interface{}{
						"type":        "integer",
						"description": "Samples trimmed next to each ring minimum (default 10)",
						"default":     10,
					},
					"area_ratio": map[string]interface{}{
						"type":        "number",
						"description": "Rejection threshold of the region area / filled-area ratio (default 0.5)",
						"default":     0.5,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ring_batch",
			Description: "Measure every image of a directory in sorted file order. Files that cannot be analyzed are reported as skipped with a reason.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the directory",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Images analyzed concurrently (default from configuration)",
					},
				},
				"required": []string{"dir"},
			},
		},
		{
			Name:        "ring_detect_circle",
			Description: "Locate the droplet boundary with the circular Hough transform and return the circle and the crop bounds used for ring analysis.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"radius_min": map[string]interface{}{
						"type":        "integer",
						"description": "Smallest candidate radius in pixels (default 20)",
						"default":     20,
					},
					"radius_max": map[string]interface{}{
						"type":        "integer",
						"description": "Largest candidate radius in pixels (default 250)",
						"default":     250,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
