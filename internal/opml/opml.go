// ABOUTME: OPML reading and writing for feed registries
// ABOUTME: Flattens folder outlines into ordered feed descriptors and writes them back out

package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/feedreader/internal/models"
)

// Version is the OPML version written by Write.
const Version = "2.0"

// Document is an OPML subscription list.
type Document struct {
	Title    string
	Outlines []Outline
}

// Outline is either a folder (Children set, XMLURL empty) or a feed.
type Outline struct {
	Text     string
	Title    string
	Type     string
	XMLURL   string
	Children []Outline
}

type opmlXML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    headXML  `xml:"head"`
	Body    bodyXML  `xml:"body"`
}

type headXML struct {
	Title string `xml:"title"`
}

type bodyXML struct {
	Outlines []outlineXML `xml:"outline"`
}

type outlineXML struct {
	Text     string       `xml:"text,attr"`
	Title    string       `xml:"title,attr,omitempty"`
	Type     string       `xml:"type,attr,omitempty"`
	XMLURL   string       `xml:"xmlUrl,attr,omitempty"`
	Children []outlineXML `xml:"outline,omitempty"`
}

// NewDocument creates an empty document.
func NewDocument(title string) *Document {
	return &Document{Title: title}
}

// FromFeeds builds a document from registry feeds, grouping by Folder in
// first-seen order.
func FromFeeds(title string, feeds []models.Feed) *Document {
	doc := NewDocument(title)
	for _, f := range feeds {
		// duplicates are dropped silently on export
		_ = doc.AddFeed(f)
	}
	return doc
}

// Parse decodes an OPML document.
func Parse(r io.Reader) (*Document, error) {
	var raw opmlXML
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode OPML: %w", err)
	}

	doc := &Document{
		Title:    raw.Head.Title,
		Outlines: make([]Outline, len(raw.Body.Outlines)),
	}
	for i, o := range raw.Body.Outlines {
		doc.Outlines[i] = fromXML(o)
	}
	return doc, nil
}

// ParseFile decodes the OPML document at path.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Feeds returns every feed outline in document order, depth first.
// Nested folders are flattened; a feed's Folder is its nearest folder.
func (d *Document) Feeds() []models.Feed {
	var feeds []models.Feed
	for _, o := range d.Outlines {
		feeds = collect(feeds, o, "")
	}
	return feeds
}

// AddFeed appends a feed, creating its folder if needed.
// Returns an error if the URL is already present.
func (d *Document) AddFeed(feed models.Feed) error {
	for _, existing := range d.Feeds() {
		if existing.URL == feed.URL {
			return fmt.Errorf("feed with URL %s already exists", feed.URL)
		}
	}

	outline := Outline{
		Text:   feed.Name,
		Title:  feed.Name,
		Type:   "rss",
		XMLURL: feed.URL,
	}

	if feed.Folder == "" {
		d.Outlines = append(d.Outlines, outline)
		return nil
	}

	for i := range d.Outlines {
		if d.Outlines[i].XMLURL == "" && d.Outlines[i].Text == feed.Folder {
			d.Outlines[i].Children = append(d.Outlines[i].Children, outline)
			return nil
		}
	}
	d.Outlines = append(d.Outlines, Outline{
		Text:     feed.Folder,
		Children: []Outline{outline},
	})
	return nil
}

// Write encodes the document with an XML header.
func (d *Document) Write(w io.Writer) error {
	raw := opmlXML{
		Version: Version,
		Head:    headXML{Title: d.Title},
		Body:    bodyXML{Outlines: make([]outlineXML, len(d.Outlines))},
	}
	for i, o := range d.Outlines {
		raw.Body.Outlines[i] = toXML(o)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("failed to encode OPML: %w", err)
	}
	return nil
}

// WriteFile writes the document to path, creating parent directories.
func (d *Document) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return d.Write(file)
}

func collect(feeds []models.Feed, o Outline, folder string) []models.Feed {
	if o.XMLURL != "" {
		feeds = append(feeds, models.Feed{
			Name:   outlineName(o),
			URL:    strings.TrimSpace(o.XMLURL),
			Folder: folder,
		})
	}

	childFolder := folder
	if o.XMLURL == "" && len(o.Children) > 0 {
		childFolder = o.Text
	}
	for _, child := range o.Children {
		feeds = collect(feeds, child, childFolder)
	}
	return feeds
}

func outlineName(o Outline) string {
	if strings.TrimSpace(o.Title) != "" {
		return strings.TrimSpace(o.Title)
	}
	return strings.TrimSpace(o.Text)
}

func fromXML(x outlineXML) Outline {
	o := Outline{
		Text:   x.Text,
		Title:  x.Title,
		Type:   x.Type,
		XMLURL: x.XMLURL,
	}
	for _, child := range x.Children {
		o.Children = append(o.Children, fromXML(child))
	}
	return o
}

func toXML(o Outline) outlineXML {
	x := outlineXML{
		Text:   o.Text,
		Title:  o.Title,
		Type:   o.Type,
		XMLURL: o.XMLURL,
	}
	for _, child := range o.Children {
		x.Children = append(x.Children, toXML(child))
	}
	return x
}
