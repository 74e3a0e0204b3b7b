// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package preview renders unsaved edits. Overlay serves the edited groups
// in place of the stored ones and Interpolator tags every editable value
// with a marker naming the group ID and area it came from, so the editor
// can map rendered text back to its input.
//
// A marked value looks like
//
//	!~~~@###!<id>!:!:!<area>:!:!:<value>!~~~@###!
//
// Metadata is never marked since it renders into the document head.
package preview

import (
	"strconv"

	"contentcms/internal/config"
	"contentcms/internal/content"
	"contentcms/internal/models"
)

const (
	StartMarker   = "!~~~@###!"
	IDSeparator   = "!:!:!"
	EndOfIDMarker = ":!:!:"
	EndMarker     = "!~~~@###!"
)

// Wrap marks value as the content of area in the group with the given ID.
func Wrap(id int64, area, value string) string {
	return StartMarker + strconv.FormatInt(id, 10) + IDSeparator + area + EndOfIDMarker + value + EndMarker
}

// Interpolator marks the groups loaded from an inner source. The loaded
// groups are copies; nothing it returns is ever written back.
type Interpolator struct {
	inner content.Source
}

// NewInterpolator wraps inner.
func NewInterpolator(inner content.Source) *Interpolator {
	return &Interpolator{inner: inner}
}

// Load loads the group from the inner source and marks its values.
func (i *Interpolator) Load(key string) (*content.Group, error) {
	g, err := i.inner.Load(key)
	if err != nil {
		return nil, err
	}
	return content.NewGroup(g.Config(), Interpolate(g.Content())), nil
}

// Interpolate returns a marked copy of g and its array elements. Each
// element is marked with its own ID. Images only get their file name
// marked so the directory still maps to the public URL, and keep their
// validity.
func Interpolate(g *models.ContentGroup) *models.ContentGroup {
	out := &models.ContentGroup{
		ID:         g.ID,
		Namespace:  g.Namespace,
		Name:       g.Name,
		OrderIndex: g.OrderIndex,
		UpdatedAt:  g.UpdatedAt,
		Metadata:   append([]models.Metadata(nil), g.Metadata...),
	}
	for _, a := range g.HTML {
		out.HTML = append(out.HTML, models.HTMLArea{Name: a.Name, HTML: Wrap(g.ID, a.Name, a.HTML)})
	}
	for _, a := range g.Images {
		out.Images = append(out.Images, models.ImageArea{
			Name: a.Name,
			Image: models.Image{
				Path:           a.Image.Dir() + Wrap(g.ID, a.Name, a.Image.FileName()),
				ClientFileName: a.Image.ClientFileName,
				Valid:          a.Image.Valid,
			},
			AltText: models.StringPtr(Wrap(g.ID, a.Name, a.AltTextOrEmpty())),
		})
	}
	for _, a := range g.Texts {
		out.Texts = append(out.Texts, models.TextArea{Name: a.Name, Text: Wrap(g.ID, a.Name, a.Text)})
	}
	for _, c := range g.Children {
		out.Children = append(out.Children, Interpolate(c))
	}
	return out
}

// Overlay serves a fixed set of groups by key ahead of an inner source.
type Overlay struct {
	cfg    config.Content
	inner  content.Source
	groups map[string]*models.ContentGroup
}

// NewOverlay returns a source that loads groups from inner except the
// given ones. Later groups win over earlier groups with the same key.
func NewOverlay(cfg config.Content, inner content.Source, groups ...*models.ContentGroup) *Overlay {
	o := &Overlay{cfg: cfg, inner: inner, groups: make(map[string]*models.ContentGroup, len(groups))}
	for _, g := range groups {
		o.groups[g.Key()] = g
	}
	return o
}

// Load returns the overlaid group for key, or loads it from the inner source.
func (o *Overlay) Load(key string) (*content.Group, error) {
	if _, _, err := content.ParseKey(key); err != nil {
		return nil, err
	}
	if g, ok := o.groups[key]; ok {
		return content.NewGroup(o.cfg, g), nil
	}
	return o.inner.Load(key)
}
