// Package mcp exposes mentor search over the Model Context Protocol so
// assistants can query the directory through a stdio server.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/sakif/mentor-directory/internal/service"
)

const (
	ServerName    = "mentor-directory"
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server around the mentor service. Every call is made
// as an anonymous requester, so no mentor is excluded as "self".
type Server struct {
	mcp     *server.MCPServer
	mentors *service.MentorService
	logger  *slog.Logger
}

func NewServer(mentors *service.MentorService, logger *slog.Logger) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		mentors: mentors,
		logger:  logger,
	}
	s.mcp.AddTool(searchMentorsTool(), s.handleSearchMentors)
	s.mcp.AddTool(getMentorTool(), s.handleGetMentor)
	return s
}

// Serve blocks on stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
