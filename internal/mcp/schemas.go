package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func searchMentorsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_mentors",
		Description: "Search active mentors by name, major or bio. Majors match common abbreviations such as cs or econ.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free text; empty returns every active mentor",
				},
				"name": map[string]interface{}{
					"type":        "boolean",
					"description": "Match against first and last name",
					"default":     false,
				},
				"major": map[string]interface{}{
					"type":        "boolean",
					"description": "Match against majors",
					"default":     false,
				},
				"bio": map[string]interface{}{
					"type":        "boolean",
					"description": "Match against the bio",
					"default":     false,
				},
				"random": map[string]interface{}{
					"type":        "integer",
					"description": "Return a random sample of at most this many matches",
					"minimum":     1,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
					"minimum":     1,
				},
			},
		},
	}
}

func getMentorTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_mentor",
		Description: "Fetch one mentor by id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Mentor id as returned by search_mentors",
				},
			},
			Required: []string{"id"},
		},
	}
}
