// Package server implements the MCP (Model Context Protocol) server for the
// image library.
//
// This package provides a JSON-RPC 2.0 server that exposes tagging and
// redaction through the MCP protocol, so an assistant can review a folder of
// images, mark sensitive areas and redact them.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr and never interleave with responses.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Library:
//   - image_list: List images with tags and backup state
//   - image_info: Dimensions, format, tags, regions, blur radius
//
// Tags:
//   - image_tags_get, image_tags_set
//
// Regions:
//   - image_regions_get, image_regions_set
//   - image_region_preview: Crop what a region covers
//
// Redaction:
//   - image_redact: Blur and label regions in place, keeping a backup
//   - image_restore: Put the backup back
//   - image_suggest_regions: OCR text boxes as unlabeled regions
//
// Images are addressed by file name inside the library folder. Region
// coordinates are percentages of the image width and height, so the same
// region fits any resolution of the image.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(lib, version)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal().Err(err).Msg("MCP server failed")
//	}
package server
