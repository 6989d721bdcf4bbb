package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var nameProperty = map[string]interface{}{
	"type":        "string",
	"description": "Image file name inside the library folder, e.g. \"receipt.jpg\"",
}

var pointSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x": map[string]interface{}{
			"type":        "number",
			"description": "Percent of image width (0-100)",
		},
		"y": map[string]interface{}{
			"type":        "number",
			"description": "Percent of image height (0-100)",
		},
	},
	"required": []string{"x", "y"},
}

var regionProperty = map[string]interface{}{
	"type":        "array",
	"description": "Exactly four vertices of the quadrilateral, in order",
	"items":       pointSchema,
	"minItems":    4,
	"maxItems":    4,
}

var requestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"region": regionProperty,
		"label": map[string]interface{}{
			"type":        "string",
			"description": "Optional text drawn centered over the blurred region",
		},
	},
	"required": []string{"region"},
}

func nameOnly() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": nameProperty,
		},
		"required": []string{"name"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Library
		{
			Name:        "image_list",
			Description: "List the images in the library folder with their tags, number of stored regions and whether a backup exists.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "image_info",
			Description: "Get dimensions, format, tags, stored regions, backup state and the blur radius redaction will use for an image.",
			InputSchema: nameOnly(),
		},

		// Tags
		{
			Name:        "image_tags_get",
			Description: "Get the tags of an image.",
			InputSchema: nameOnly(),
		},
		{
			Name:        "image_tags_set",
			Description: "Replace the tags of an image. Stored regions are kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": nameProperty,
					"tags": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "The complete new tag list",
					},
				},
				"required": []string{"name", "tags"},
			},
		},

		// Regions
		{
			Name:        "image_regions_get",
			Description: "Get the redaction regions stored for an image.",
			InputSchema: nameOnly(),
		},
		{
			Name:        "image_regions_set",
			Description: "Replace the redaction regions stored for an image. Every region needs exactly four vertices in percent coordinates. Tags are kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": nameProperty,
					"regions": map[string]interface{}{
						"type":  "array",
						"items": requestSchema,
					},
				},
				"required": []string{"name", "regions"},
			},
		},
		{
			Name:        "image_region_preview",
			Description: "Crop the bounding box of a region out of the current image and return it as base64-encoded PNG. Use this to check what a region covers before redacting.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":   nameProperty,
					"region": regionProperty,
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"name", "region"},
			},
		},

		// Redaction
		{
			Name:        "image_redact",
			Description: "Blur and label regions of an image IN PLACE. The first redaction keeps a .bak copy of the original. Without regions the stored regions are applied. Invalid regions are skipped and reported.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": nameProperty,
					"regions": map[string]interface{}{
						"type":        "array",
						"items":       requestSchema,
						"description": "Regions to apply in order. Omit to use the stored regions.",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "image_restore",
			Description: "Replace a redacted image with its .bak backup. The backup is kept.",
			InputSchema: nameOnly(),
		},
		{
			Name:        "image_suggest_regions",
			Description: "Find text in an image with OCR and return each text box as an unlabeled redaction region. The recognized text is never returned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": nameProperty,
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Store the suggestions as the image's regions. Default false",
						"default":     false,
					},
				},
				"required": []string{"name"},
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
