// ABOUTME: MCP tool definitions and handlers for the feed reader
// ABOUTME: Lists and loads feeds, reads entries, toggles the menu, and runs the behavioral checks

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/feedreader/internal/checks"
	"github.com/harper/feedreader/internal/content"
	"github.com/harper/feedreader/internal/models"
	"github.com/harper/feedreader/internal/reader"
)

type FeedOutput struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Folder string `json:"folder,omitempty"`
}

type ListFeedsOutput struct {
	Feeds []FeedOutput `json:"feeds"`
	Count int          `json:"count"`
}

type LoadFeedInput struct {
	Index *int `json:"index"`
}

type EntryOutput struct {
	N           int        `json:"n"`
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Link        string     `json:"link,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Teaser      string     `json:"teaser"`
}

type PageOutput struct {
	Index    int           `json:"index"`
	Feed     FeedOutput    `json:"feed"`
	Title    string        `json:"title,omitempty"`
	Entries  []EntryOutput `json:"entries"`
	Count    int           `json:"count"`
	LoadedAt time.Time     `json:"loaded_at"`
}

type GetEntryInput struct {
	N int `json:"n"`
}

type GetEntryOutput struct {
	EntryOutput
	Content string `json:"content,omitempty"`
}

type ToggleMenuOutput struct {
	Hidden    bool   `json:"hidden"`
	BodyClass string `json:"body_class"`
}

type CheckOutput struct {
	Group      string `json:"group"`
	Spec       string `json:"spec"`
	Passed     bool   `json:"passed"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type RunChecksOutput struct {
	Passed  bool          `json:"passed"`
	Summary string        `json:"summary"`
	Results []CheckOutput `json:"results"`
}

func (s *Server) registerTools() {
	s.registerListFeedsTool()
	s.registerLoadFeedTool()
	s.registerGetEntryTool()
	s.registerToggleMenuTool()
	s.registerRunChecksTool()
}

func (s *Server) registerListFeedsTool() {
	tool := mcp.Tool{
		Name:        "list_feeds",
		Description: "List the feeds in the reader's registry in order. The index of each feed is what load_feed expects.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
	s.mcpServer.AddTool(tool, s.handleListFeeds)
}

func (s *Server) registerLoadFeedTool() {
	tool := mcp.Tool{
		Name:        "load_feed",
		Description: "Fetch the feed at the given index and replace the page with its entries. Returns the loaded page with a plain-text teaser per entry.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based feed index from list_feeds. Example: 0",
				},
			},
			Required: []string{"index"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleLoadFeed)
}

func (s *Server) registerGetEntryTool() {
	tool := mcp.Tool{
		Name:        "get_entry",
		Description: "Get one entry of the loaded page with its full content converted to Markdown. Call load_feed first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"n": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based entry position on the loaded page. Example: 0",
				},
			},
			Required: []string{"n"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleGetEntry)
}

func (s *Server) registerToggleMenuTool() {
	tool := mcp.Tool{
		Name:        "toggle_menu",
		Description: "Click the menu icon: shows the feed menu when hidden and hides it when shown. Returns the new state.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
	s.mcpServer.AddTool(tool, s.handleToggleMenu)
}

func (s *Server) registerRunChecksTool() {
	tool := mcp.Tool{
		Name:        "run_checks",
		Description: "Run the reader's behavioral checks (feed registry, menu, initial entries, feed selection, summary text) against live feeds on a separate reader, leaving the loaded page and menu untouched, and report each result.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
	s.mcpServer.AddTool(tool, s.handleRunChecks)
}

func (s *Server) handleListFeeds(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all := s.reader.AllFeeds()
	out := ListFeedsOutput{
		Feeds: make([]FeedOutput, 0, len(all)),
		Count: len(all),
	}
	for i, f := range all {
		out.Feeds = append(out.Feeds, feedOutput(i, f))
	}
	return jsonResult(out)
}

func (s *Server) handleLoadFeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input LoadFeedInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if input.Index == nil {
		return nil, fmt.Errorf("index is required")
	}

	page, err := s.reader.LoadPage(ctx, *input.Index)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed %d: %w", *input.Index, err)
	}

	return jsonResult(pageOutput(page))
}

func (s *Server) handleGetEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input GetEntryInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	entry, err := s.reader.Entry(input.N)
	if err != nil {
		return nil, fmt.Errorf("entry %d: %w", input.N, err)
	}

	return jsonResult(GetEntryOutput{
		EntryOutput: entryOutput(input.N, entry),
		Content:     content.ToMarkdown(entry.Content),
	})
}

func (s *Server) handleToggleMenu(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.reader.ClickMenuIcon()
	m := s.reader.Menu()
	return jsonResult(ToggleMenuOutput{Hidden: m.Hidden(), BodyClass: m.BodyClass()})
}

func (s *Server) handleRunChecks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Checks drive the menu and the container, so they get a reader of their own.
	runner := &checks.Runner{Timeout: s.checkTimeout, Logger: s.log}
	report := runner.Run(ctx, s.reader.Fresh())

	out := RunChecksOutput{
		Passed:  report.Passed(),
		Summary: report.Summary(),
		Results: make([]CheckOutput, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		c := CheckOutput{
			Group:      res.Group,
			Spec:       res.Spec,
			Passed:     res.Passed(),
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			c.Error = res.Err.Error()
		}
		out.Results = append(out.Results, c)
	}
	return jsonResult(out)
}

func feedOutput(i int, f models.Feed) FeedOutput {
	return FeedOutput{Index: i, Name: f.Name, URL: f.URL, Folder: f.Folder}
}

func entryOutput(n int, e models.Entry) EntryOutput {
	return EntryOutput{
		N:           n,
		ID:          e.ID,
		Title:       e.Title,
		Link:        e.Link,
		Author:      e.Author,
		PublishedAt: e.PublishedAt,
		Teaser:      e.Teaser,
	}
}

func pageOutput(p *reader.Page) PageOutput {
	out := PageOutput{
		Index:    p.Index,
		Feed:     feedOutput(p.Index, p.Feed),
		Title:    p.Title,
		Entries:  make([]EntryOutput, 0, len(p.Entries)),
		Count:    len(p.Entries),
		LoadedAt: p.LoadedAt,
	}
	for i, e := range p.Entries {
		out.Entries = append(out.Entries, entryOutput(i, e))
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
