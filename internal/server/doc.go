// Package server implements the MCP (Model Context Protocol) server for ring
// analysis.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - ring_parameter: measure one image, with optional per-call overrides
//   - ring_batch: measure every image of a directory
//   - ring_detect_circle: run only the droplet localizer
//   - image_load: dimensions and format of an image file
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the server process,
// so repeated calls on the same file skip decoding.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the error string, prefixed with its type (e.g. "no_circle_found: ...")
//
// A rejected ring is not an error: ring_parameter reports status
// "ring_not_visible" with value 0.
//
// # Usage
//
//	srv := server.New(cfg, version)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
