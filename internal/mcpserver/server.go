// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the conversion pipeline and the converted-note index to LLM
// clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/zettelport/internal/converter"
	"github.com/starford/zettelport/internal/index"
	"github.com/starford/zettelport/internal/zettel"
)

// Server wraps the MCP server with zettelport tools.
type Server struct {
	mcp *server.MCPServer
	svc *converter.Service
	db  index.NoteIndex
}

// New creates a new MCP server with all tools registered. db may be nil when
// no index is configured; index-backed tools then report an error.
func New(svc *converter.Service, db index.NoteIndex) *Server {
	s := &Server{svc: svc, db: db}

	s.mcp = server.NewMCPServer(
		"Zettelport",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("convert_document",
		mcp.WithDescription("Convert a delimited Zettel text document into linked Markdown files. "+
			"Input must follow the zettelport input format; read it via the get_input_contract "+
			"tool or the zettelport://input-format resource."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Path to the input text file")),
		mcp.WithString("output", mcp.Required(), mcp.Description("Path to the output directory")),
	), s.convertDocument)

	s.mcp.AddTool(mcp.NewTool("sanitize_title",
		mcp.WithDescription("Return the filesystem-safe form of a note title, as used for filenames and rewritten links."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title as authored")),
	), s.sanitizeTitle)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search converted notes by title or content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the filenames of all converted notes."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("unresolved_links",
		mcp.WithDescription("Report wikilinks whose target matches no converted note."),
	), s.unresolvedLinks)

	s.mcp.AddTool(mcp.NewTool("get_input_contract",
		mcp.WithDescription("Returns the zettelport input format contract. "+
			"Call this before assembling documents for convert_document."),
	), s.getInputContract)

	s.mcp.AddResource(
		mcp.NewResource("zettelport://input-format", "Input Format Contract",
			mcp.WithResourceDescription("Delimited Zettel document format that convert_document expects."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readInputFormatResource,
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

func (s *Server) requireIndex() error {
	if s.db == nil {
		return fmt.Errorf("no index configured: pass --index or set index.path")
	}
	return nil
}

func (s *Server) convertDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := req.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.Convert(ctx, input, output)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := fmt.Sprintf("created %d files in %s", len(res.Created), output)
	if len(res.Skipped) > 0 {
		summary += fmt.Sprintf(" (%d malformed blocks skipped)", len(res.Skipped))
	}
	if len(res.Created) > 0 {
		summary += "\n" + strings.Join(res.Created, "\n")
	}
	return mcp.NewToolResultText(summary), nil
}

func (s *Server) sanitizeTitle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(zettel.SanitizeTitle(title)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.requireIndex(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.requireIndex(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, _, err := s.db.ListNotes(0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no notes indexed"), nil
	}
	var names []string
	for _, r := range rows {
		names = append(names, r.Filename)
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) unresolvedLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.requireIndex(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	links, err := s.db.Unresolved()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(links) == 0 {
		return mcp.NewToolResultText("all links resolve"), nil
	}
	var lines []string
	for _, l := range links {
		lines = append(lines, fmt.Sprintf("%s -> [[%s]]", l.Source, l.Target))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getInputContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(InputFormatContract), nil
}

func (s *Server) readInputFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "zettelport://input-format",
			MIMEType: "text/markdown",
			Text:     InputFormatContract,
		},
	}, nil
}
