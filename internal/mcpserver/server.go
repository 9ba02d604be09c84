// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes autotag tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/autotag/internal/apperr"
	"github.com/starford/autotag/internal/autotag"
)

// Server wraps the MCP server with autotag tools.
type Server struct {
	mcp     *server.MCPServer
	proc    *autotag.Processor
	catalog *autotag.Catalog
}

// New creates a new MCP server with all autotag tools registered.
func New(proc *autotag.Processor, catalog *autotag.Catalog, version string) *Server {
	s := &Server{proc: proc, catalog: catalog}

	s.mcp = server.NewMCPServer(
		"autotag",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag with the number of documents linked to it, most used first."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_tag_backlinks",
		mcp.WithDescription("List the titles of the documents tagged with a tag."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag identifier (e.g. machine-learning)")),
	), s.getTagBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_document_tags",
		mcp.WithDescription("List the tags last applied to a document."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Document title: the file name without .md")),
	), s.getDocumentTags)

	s.mcp.AddTool(mcp.NewTool("process_document",
		mcp.WithDescription("Extract keywords from a Markdown document and update the tag documents "+
			"that link back to it. Returns the applied changes as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the document relative to the vault (must end with .md)")),
	), s.processDocument)

	s.mcp.AddTool(mcp.NewTool("reconcile",
		mcp.WithDescription("Repair tag documents after manual edits: drop backlinks that no snapshot "+
			"accounts for and restore missing ones."),
	), s.reconcile)

	s.mcp.AddTool(mcp.NewTool("get_tag_format",
		mcp.WithDescription("Returns the tag document format. Read it before editing tag documents by hand."),
	), s.getTagFormat)

	s.mcp.AddResource(
		mcp.NewResource(TagFormatURI, "Tag Document Format",
			mcp.WithResourceDescription("Layout of auto-tag documents and the rules for their managed region."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTagFormatResource,
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

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, err := s.catalog.TagCounts()
	if err != nil {
		return toolError(err), nil
	}
	if len(counts) == 0 {
		return mcp.NewToolResultText("no tags found"), nil
	}
	lines := make([]string, len(counts))
	for i, c := range counts {
		lines[i] = fmt.Sprintf("%s (%d)", c.Tag, c.Count)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getTagBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	titles, err := s.catalog.Backlinks(tag)
	if err != nil {
		return toolError(err), nil
	}
	if len(titles) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(titles, "\n")), nil
}

func (s *Server) getDocumentTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags, err := s.catalog.DocumentTags(title)
	if err != nil {
		return toolError(err), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags"), nil
	}
	return mcp.NewToolResultText(strings.Join(tags, "\n")), nil
}

func (s *Server) processDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.proc.ProcessFile(ctx, path)
	if err != nil {
		return toolError(err), nil
	}
	if res.Skipped {
		return mcp.NewToolResultError(fmt.Sprintf("not a document: %s", path)), nil
	}
	return jsonResult(res)
}

func (s *Server) reconcile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reports, err := s.proc.Reconcile(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if len(reports) == 0 {
		return mcp.NewToolResultText("nothing to repair"), nil
	}
	return jsonResult(reports)
}

func (s *Server) getTagFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TagFormat), nil
}

func (s *Server) readTagFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TagFormatURI,
			MIMEType: "text/markdown",
			Text:     TagFormat,
		},
	}, nil
}
