package content

import (
	"html"
	"strings"

	"contentcms/internal/config"
	"contentcms/internal/models"
)

// Group is a loaded content group. Getters take an optional default that
// is returned when the area is missing; without one they return "".
type Group struct {
	cfg     config.Content
	content *models.ContentGroup
}

// NewGroup wraps a content group for reading.
func NewGroup(cfg config.Content, g *models.ContentGroup) *Group {
	return &Group{cfg: cfg, content: g}
}

// Content returns the wrapped content group.
func (g *Group) Content() *models.ContentGroup { return g.content }

// Config returns the content config used to build image URLs.
func (g *Group) Config() config.Content { return g.cfg }

func orDefault(def []string) string {
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// HasHTML reports whether the group has the html area.
func (g *Group) HasHTML(name string) bool { return g.content.HasHTML(name) }

// HTML returns the markup of the html area.
func (g *Group) HTML(name string, def ...string) string {
	if a, ok := g.content.FindHTML(name); ok {
		return a.HTML
	}
	return orDefault(def)
}

// HasImage reports whether the image area holds a valid image.
func (g *Group) HasImage(name string) bool { return g.content.HasImage(name) }

// ImageURL returns the public URL of a valid image: the storage base path
// is stripped from the image path and the rest is joined to the base URL.
func (g *Group) ImageURL(name string, def ...string) string {
	a, ok := g.content.FindImage(name)
	if !ok || !a.Image.Valid {
		return orDefault(def)
	}
	path := strings.ReplaceAll(a.Image.Path, `\`, "/")
	if base := strings.TrimRight(strings.ReplaceAll(g.cfg.ImageStorageBasePath, `\`, "/"), "/"); base != "" {
		if path == base || strings.HasPrefix(path, base+"/") {
			path = path[len(base):]
		}
	}
	return strings.TrimRight(g.cfg.ImageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// ImageAltText returns the alt text of a valid image.
func (g *Group) ImageAltText(name string, def ...string) string {
	if a, ok := g.content.FindImage(name); ok && a.Image.Valid && a.AltText != nil {
		return *a.AltText
	}
	return orDefault(def)
}

// HasText reports whether the group has the text area.
func (g *Group) HasText(name string) bool { return g.content.HasText(name) }

// Text returns the value of the text area.
func (g *Group) Text(name string, def ...string) string {
	if a, ok := g.content.FindText(name); ok {
		return a.Text
	}
	return orDefault(def)
}

// HasMetadata reports whether the group has the metadata entry.
func (g *Group) HasMetadata(name string) bool { return g.content.HasMetadata(name) }

// Metadata returns the value of the metadata entry.
func (g *Group) Metadata(name string, def ...string) string {
	if m, ok := g.content.FindMetadata(name); ok {
		return m.Value
	}
	return orDefault(def)
}

// HasArrayOf reports whether the array has at least one element.
func (g *Group) HasArrayOf(name string) bool { return g.content.HasArrayOf(name) }

// ArrayOf returns the loaded elements of an array field. The result is
// never nil.
func (g *Group) ArrayOf(name string) []*Group {
	elements := []*Group{}
	for _, el := range g.content.ArrayOf(name) {
		elements = append(elements, NewGroup(g.cfg, el))
	}
	return elements
}

// RenderMetadataHTML renders the metadata as head tags, one per line, in
// stored order. The "title" entry becomes a <title> element.
func (g *Group) RenderMetadataHTML() string {
	tags := make([]string, 0, len(g.content.Metadata))
	for _, m := range g.content.Metadata {
		value := html.EscapeString(m.Value)
		if m.Name == "title" {
			tags = append(tags, "<title>"+value+"</title>")
			continue
		}
		tags = append(tags, `<meta name="`+html.EscapeString(m.Name)+`" content="`+value+`" />`)
	}
	return strings.Join(tags, "\n")
}

// ImageView is the public form of an image area.
type ImageView struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
}

// View is the JSON projection of a loaded group served by the read API.
// Only valid images are included.
type View struct {
	Namespace string               `json:"namespace"`
	Name      string               `json:"name"`
	HTML      map[string]string    `json:"html"`
	Images    map[string]ImageView `json:"images"`
	Texts     map[string]string    `json:"texts"`
	Metadata  map[string]string    `json:"metadata"`
	Arrays    map[string][]View    `json:"arrays"`
}

// View projects the group and its array elements.
func (g *Group) View() View {
	c := g.content
	v := View{
		Namespace: c.Namespace,
		Name:      c.Name,
		HTML:      make(map[string]string, len(c.HTML)),
		Images:    make(map[string]ImageView, len(c.Images)),
		Texts:     make(map[string]string, len(c.Texts)),
		Metadata:  make(map[string]string, len(c.Metadata)),
		Arrays:    make(map[string][]View),
	}
	for _, a := range c.HTML {
		v.HTML[a.Name] = a.HTML
	}
	for _, a := range c.Images {
		if a.Image.Valid {
			v.Images[a.Name] = ImageView{URL: g.ImageURL(a.Name), AltText: g.ImageAltText(a.Name)}
		}
	}
	for _, a := range c.Texts {
		v.Texts[a.Name] = a.Text
	}
	for _, m := range c.Metadata {
		v.Metadata[m.Name] = m.Value
	}
	for _, child := range c.Children {
		v.Arrays[child.Name] = append(v.Arrays[child.Name], NewGroup(g.cfg, child).View())
	}
	return v
}
