// ABOUTME: MCP resource providers for feedreader
// ABOUTME: Exposes the rendered reader page as HTML

package mcp

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const pageURI = "feedreader://page"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.Resource{
			URI:         pageURI,
			Name:        "Reader Page",
			Description: "The reader page as HTML: body class for the menu state, the feed menu, and the .feed container with the loaded entries",
			MIMEType:    "text/html",
		},
		s.readPage,
	)
}

func (s *Server) readPage(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var buf bytes.Buffer
	if err := s.reader.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      pageURI,
			MIMEType: "text/html",
			Text:     buf.String(),
		},
	}, nil
}
