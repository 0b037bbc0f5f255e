// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes record search tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/achntj/lab/internal/apperr"
	"github.com/achntj/lab/internal/recordservice"
)

// SearchSyntaxURI is the resource describing the query language.
const SearchSyntaxURI = "lab://search-syntax"

// Server wraps the MCP server with record tools.
type Server struct {
	mcp *server.MCPServer
	svc *recordservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *recordservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"lab",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Search every task, note, bookmark, timer, finance entry and subscription. "+
			"Date fragments such as 'dec 15', '2025 12' or '2025-12-15' match stored dates in any format. "+
			"See "+SearchSyntaxURI+" for details."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchRecords)

	s.mcp.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Fetch one record by its source and source id."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Entity kind: task, note, bookmark, timer, finance or subscription")),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("Identifier of the entity within its source")),
	), s.getRecord)

	s.mcp.AddTool(mcp.NewTool("get_note_links",
		mcp.WithDescription("List the records a note mentions with [[Title]] and the notes that mention it."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("Note identifier")),
	), s.getNoteLinks)

	s.mcp.AddResource(
		mcp.NewResource(SearchSyntaxURI, "Search Syntax",
			mcp.WithResourceDescription("How queries are tokenized, including date fragments."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSearchSyntax,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sourceID, err := req.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.GetRecord(ctx, source, sourceID)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", source, sourceID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rec)
}

func (s *Server) getNoteLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	links, err := s.svc.NoteLinks(ctx, noteID)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("note not found: %s", noteID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(links)
}

func (s *Server) readSearchSyntax(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SearchSyntaxURI,
			MIMEType: "text/markdown",
			Text:     SearchSyntax,
		},
	}, nil
}
