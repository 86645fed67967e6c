// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Scribe editing tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scribe/internal/codec"
	"github.com/starford/scribe/internal/docservice"
)

const shorthandURI = "scribe://shorthand"

// Server wraps the MCP server with Scribe tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Scribe tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Scribe",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List stored documents and documents open with unsaved edits."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a document as plain text or as its raw block record."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document ID (letters, digits, '.', '_' or '-')")),
		mcp.WithString("format", mcp.Description("text (default), json or yaml")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("type_text",
		mcp.WithDescription("Type characters at the caret of a document. Shorthand markers "+
			"such as '# ' or '*' followed by a space are converted to formatting. Read the "+
			"rules first via get_shorthand_contract or the scribe://shorthand resource."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
		mcp.WithString("chars", mcp.Required(), mcp.Description("Characters to type; newlines split blocks")),
	), s.typeText)

	s.mcp.AddTool(mcp.NewTool("run_command",
		mcp.WithDescription("Run a named key command such as bold, backspace or split-block."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command name")),
	), s.runCommand)

	s.mcp.AddTool(mcp.NewTool("save_document",
		mcp.WithDescription("Write the current state of a document to storage."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
		mcp.WithString("if_match", mcp.Description("Optional checksum the stored document must still have")),
	), s.saveDocument)

	s.mcp.AddTool(mcp.NewTool("get_shorthand_contract",
		mcp.WithDescription("Returns the shorthand rules and key commands. "+
			"Call this before typing so markers produce the intended formatting."),
	), s.getShorthandContract)

	s.mcp.AddResource(
		mcp.NewResource(shorthandURI, "Shorthand Contract",
			mcp.WithResourceDescription("Shorthand markers recognised while typing, in evaluation order."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readShorthandResource,
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

func (s *Server) contract() string {
	return ShorthandContract(s.svc.Shorthand(), docservice.Commands())
}

func (s *Server) listDocuments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no documents"), nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		line := it.ID
		if it.Dirty {
			line += " (unsaved)"
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := "text"
	if f, err := req.RequireString("format"); err == nil && f != "" {
		format = f
	}

	if format == "text" {
		text, err := s.svc.PlainText(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}

	f, err := codec.ParseFormat(format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Record(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := codec.Encode(rec, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) typeText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chars, err := req.RequireString("chars")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, claimed, err := s.svc.Input(ctx, id, chars)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return viewResult(struct {
		docservice.View
		Claimed bool `json:"claimed"`
	}{v, claimed}), nil
}

func (s *Server) runCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	command, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.svc.Command(ctx, id, command)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return viewResult(v), nil
}

func (s *Server) saveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ifMatch := ""
	if v, err := req.RequireString("if_match"); err == nil {
		ifMatch = v
	}
	sum, err := s.svc.Save(ctx, id, ifMatch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (checksum %s)", id, sum)), nil
}

func (s *Server) getShorthandContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.contract()), nil
}

func (s *Server) readShorthandResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      shorthandURI,
			MIMEType: "text/markdown",
			Text:     s.contract(),
		},
	}, nil
}

func viewResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}
