package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/image-tagger/internal/redact"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_redact").
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
		return errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
	// Library
	case "image_list":
		return s.handleImageList(ctx)
	case "image_info":
		return s.handleImageInfo(ctx, args)

	// Tags
	case "image_tags_get":
		return s.handleTagsGet(ctx, args)
	case "image_tags_set":
		return s.handleTagsSet(ctx, args)

	// Regions
	case "image_regions_get":
		return s.handleRegionsGet(ctx, args)
	case "image_regions_set":
		return s.handleRegionsSet(ctx, args)
	case "image_region_preview":
		return s.handleRegionPreview(ctx, args)

	// Redaction
	case "image_redact":
		return s.handleRedact(ctx, args)
	case "image_restore":
		return s.handleRestore(ctx, args)
	case "image_suggest_regions":
		return s.handleSuggestRegions(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, treating missing arguments as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type nameArgs struct {
	Name string `json:"name"`
}

// === Library Handlers ===

func (s *Server) handleImageList(ctx context.Context) (interface{}, error) {
	entries, err := s.lib.List(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"images": entries, "count": len(entries)}, nil
}

func (s *Server) handleImageInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.lib.Info(ctx, a.Name)
}

// === Tag Handlers ===

func (s *Server) handleTagsGet(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	tags, err := s.lib.Tags(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"name": a.Name, "tags": tags}, nil
}

type tagsSetArgs struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func (s *Server) handleTagsSet(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a tagsSetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.lib.SetTags(ctx, a.Name, a.Tags); err != nil {
		return nil, err
	}
	return s.handleTagsGet(ctx, args)
}

// === Region Handlers ===

func (s *Server) handleRegionsGet(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	regions, err := s.lib.Regions(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"name": a.Name, "regions": regions}, nil
}

type regionsArgs struct {
	Name    string           `json:"name"`
	Regions []redact.Request `json:"regions"`
}

func (s *Server) handleRegionsSet(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.lib.SetRegions(ctx, a.Name, a.Regions); err != nil {
		return nil, err
	}
	return s.handleRegionsGet(ctx, args)
}

type regionPreviewArgs struct {
	Name   string         `json:"name"`
	Region []redact.Point `json:"region"`
	Scale  float64        `json:"scale"`
}

func (s *Server) handleRegionPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionPreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	return s.lib.Preview(ctx, a.Name, redact.Request{Region: a.Region}, a.Scale)
}

// === Redaction Handlers ===

func (s *Server) handleRedact(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.lib.Redact(ctx, a.Name, a.Regions)
}

func (s *Server) handleRestore(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a nameArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.lib.Restore(ctx, a.Name); err != nil {
		return nil, err
	}
	return map[string]interface{}{"name": a.Name, "restored": true}, nil
}

type suggestArgs struct {
	Name string `json:"name"`
	Save bool   `json:"save"`
}

func (s *Server) handleSuggestRegions(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a suggestArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	reqs, err := s.lib.Suggest(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	if a.Save {
		if err := s.lib.SetRegions(ctx, a.Name, reqs); err != nil {
			return nil, err
		}
	}
	return map[string]interface{}{"name": a.Name, "suggestions": reqs, "saved": a.Save}, nil
}
