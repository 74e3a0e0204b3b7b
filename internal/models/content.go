// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"
)

// ElementNamespace is the namespace of groups that only exist as elements of
// a repeatable array field. They are owned by their parent group and are
// never reconciled on their own.
const ElementNamespace = "__element__"

// ContentGroup is a named bundle of content areas belonging to a module.
// Area names are unique per kind within one group. Children hold the
// elements of repeatable array fields: a child's Name is the array field
// name, so several children share a name and form the array in order.
type ContentGroup struct {
	ID         int64           `json:"id"`
	Namespace  string          `json:"namespace"`
	Name       string          `json:"name"`
	OrderIndex int             `json:"order_index"`
	UpdatedAt  time.Time       `json:"updated_at"`
	HTML       []HTMLArea      `json:"html"`
	Images     []ImageArea     `json:"images"`
	Texts      []TextArea      `json:"texts"`
	Metadata   []Metadata      `json:"metadata"`
	Children   []*ContentGroup `json:"children"`
}

// NewContentGroup returns an unsaved group without areas.
func NewContentGroup(namespace, name string) *ContentGroup {
	return &ContentGroup{Namespace: namespace, Name: name}
}

// NewElement returns an unsaved element group for the array field name.
func NewElement(arrayName string) *ContentGroup {
	return NewContentGroup(ElementNamespace, arrayName)
}

// Key returns the "namespace.name" lookup key of the group.
func (g *ContentGroup) Key() string {
	return g.Namespace + "." + g.Name
}

// IsElement reports whether the group is an array element.
func (g *ContentGroup) IsElement() bool {
	return g.Namespace == ElementNamespace
}

// FindHTML returns the html area with the given name.
func (g *ContentGroup) FindHTML(name string) (HTMLArea, bool) {
	for _, a := range g.HTML {
		if a.Name == name {
			return a, true
		}
	}
	return HTMLArea{}, false
}

// FindImage returns the image area with the given name, whether or not it
// holds a valid image.
func (g *ContentGroup) FindImage(name string) (ImageArea, bool) {
	for _, a := range g.Images {
		if a.Name == name {
			return a, true
		}
	}
	return ImageArea{}, false
}

// FindText returns the text area with the given name.
func (g *ContentGroup) FindText(name string) (TextArea, bool) {
	for _, a := range g.Texts {
		if a.Name == name {
			return a, true
		}
	}
	return TextArea{}, false
}

// FindMetadata returns the metadata entry with the given name.
func (g *ContentGroup) FindMetadata(name string) (Metadata, bool) {
	for _, m := range g.Metadata {
		if m.Name == name {
			return m, true
		}
	}
	return Metadata{}, false
}

// HasHTML reports whether an html area with the name exists.
func (g *ContentGroup) HasHTML(name string) bool {
	_, ok := g.FindHTML(name)
	return ok
}

// HasImage reports whether an image area with the name holds a valid image.
func (g *ContentGroup) HasImage(name string) bool {
	a, ok := g.FindImage(name)
	return ok && a.Image.Valid
}

// HasText reports whether a text area with the name exists.
func (g *ContentGroup) HasText(name string) bool {
	_, ok := g.FindText(name)
	return ok
}

// HasMetadata reports whether a metadata entry with the name exists.
func (g *ContentGroup) HasMetadata(name string) bool {
	_, ok := g.FindMetadata(name)
	return ok
}

// HasArrayOf reports whether at least one element of the array exists.
func (g *ContentGroup) HasArrayOf(name string) bool {
	for _, c := range g.Children {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ArrayOf returns the elements of the array field in stored order. The
// result is never nil.
func (g *ContentGroup) ArrayOf(name string) []*ContentGroup {
	elements := []*ContentGroup{}
	for _, c := range g.Children {
		if c.Name == name {
			elements = append(elements, c)
		}
	}
	return elements
}

// ClearAreas drops every area and child of the group.
func (g *ContentGroup) ClearAreas() {
	g.HTML = nil
	g.Images = nil
	g.Texts = nil
	g.Metadata = nil
	g.Children = nil
}

// Clone returns a deep copy of the group and its children.
func (g *ContentGroup) Clone() *ContentGroup {
	if g == nil {
		return nil
	}
	c := *g
	c.HTML = append([]HTMLArea(nil), g.HTML...)
	c.Texts = append([]TextArea(nil), g.Texts...)
	c.Metadata = append([]Metadata(nil), g.Metadata...)
	c.Images = nil
	for _, a := range g.Images {
		if a.AltText != nil {
			a.AltText = StringPtr(*a.AltText)
		}
		c.Images = append(c.Images, a)
	}
	c.Children = nil
	for _, child := range g.Children {
		c.Children = append(c.Children, child.Clone())
	}
	return &c
}

// Walk calls fn for the group and every descendant, parents first.
func (g *ContentGroup) Walk(fn func(*ContentGroup)) {
	fn(g)
	for _, c := range g.Children {
		c.Walk(fn)
	}
}
