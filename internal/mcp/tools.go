package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/search"
	"github.com/sakif/mentor-directory/internal/service"
)

func (s *Server) handleSearchMentors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok && request.Params.Arguments != nil {
		return mcp.NewToolResultError("invalid arguments"), nil
	}

	query, _ := args["query"].(string)
	page, err := s.mentors.Search(ctx, service.SearchRequest{
		Query: search.Query{
			Text: query,
			Filters: search.Filters{
				Name:  getBool(args, "name"),
				Major: getBool(args, "major"),
				Bio:   getBool(args, "bio"),
			},
			Sample: max(getInt(args, "random"), 0),
		},
		Limit: getInt(args, "limit"),
	})
	if err != nil {
		s.logger.Error("mcp search failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching mentors: %w", err)
	}
	return jsonResult(page)
}

func (s *Server) handleGetMentor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	id, _ := args["id"].(string)
	if id == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	m, err := s.mentors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no mentor with id %s", id)), nil
		}
		s.logger.Error("mcp get_mentor failed", slog.String("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("fetching mentor: %w", err)
	}
	return jsonResult(m)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// JSON numbers arrive as float64; strings are accepted for clients that
// send query-string style values.
func getInt(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		return search.ParseSample(v)
	}
	return 0
}

func getBool(args map[string]interface{}, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	}
	return false
}
