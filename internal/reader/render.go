// ABOUTME: HTML rendering of the reader page: header, feed menu, and the .feed entry container
// ABOUTME: The body carries the menu-hidden class while the menu is hidden

package reader

import (
	"fmt"
	"html/template"
	"io"

	"github.com/harper/feedreader/internal/models"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.HeaderTitle}}</title>
</head>
<body{{with .BodyClass}} class="{{.}}"{{end}}>
<div class="header">
<a class="menu-icon-link" href="#"><i class="icon-list">&#9776;</i></a>
<h1 class="header-title">{{.HeaderTitle}}</h1>
</div>
<div class="slide-menu">
<h2>All Feeds</h2>
<ul class="feed-list">
{{- range $i, $f := .Feeds}}
<li><a href="#" data-id="{{$i}}">{{$f.Name}}</a></li>
{{- end}}
</ul>
</div>
<div class="feed">
{{- range .Entries}}
<a class="entry-link" href="{{.Link}}"><article class="entry"><h2>{{.Title}}</h2><p>{{.Teaser}}</p></article></a>
{{- end}}
</div>
</body>
</html>
`))

type pageView struct {
	BodyClass   string
	HeaderTitle string
	Feeds       []models.Feed
	Entries     []models.Entry
}

// Render writes the current page as an HTML document.
func (r *Reader) Render(w io.Writer) error {
	view := pageView{
		BodyClass:   r.menu.BodyClass(),
		HeaderTitle: "Feeds",
		Feeds:       r.registry.All(),
	}
	if page := r.Container(); page != nil {
		view.HeaderTitle = page.Feed.DisplayName()
		view.Entries = page.Entries
	}

	if err := pageTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
