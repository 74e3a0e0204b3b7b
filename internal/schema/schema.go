// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package schema describes which modules, content groups and fields should
// exist. A Schema is built once per process, validated, and never mutated
// afterwards; the reconciler, the form binder and the editor all read it.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"contentcms/internal/config"
	"contentcms/internal/models"
)

// ErrInvalidSchema is returned when a schema breaks a naming rule.
var ErrInvalidSchema = errors.New("invalid content schema")

// FieldKind is the closed set of field kinds a group can declare.
type FieldKind int

const (
	KindHTML FieldKind = iota + 1
	KindImage
	KindText
	KindMetadata
	KindArray
)

// Kinds lists every field kind.
var Kinds = []FieldKind{KindHTML, KindImage, KindText, KindMetadata, KindArray}

// String returns the wire name of the kind, also used as the form field prefix.
func (k FieldKind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindMetadata:
		return "metadata"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// ParseFieldKind converts a wire name back to a kind.
func ParseFieldKind(s string) (FieldKind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown field kind %q", ErrInvalidSchema, s)
}

// Field declares one editable value of a group.
type Field struct {
	Kind  FieldKind
	Name  string
	Label string
	Order int

	// AltText adds an alt text input to an image field.
	AltText bool
	// Selector is the CSS selector of the element an html field renders into.
	Selector string
	// Element is the schema of one element of an array field.
	Element *Group
}

// Group declares a content group and its fields, sorted by Order.
type Group struct {
	Name            string
	Label           string
	PageURL         string
	PreviewTemplate string
	Fields          []Field
}

// Field returns the field of the given kind and name.
func (g *Group) Field(kind FieldKind, name string) (Field, bool) {
	for _, f := range g.Fields {
		if f.Kind == kind && f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldsOf returns the fields of one kind in declaration order.
func (g *Group) FieldsOf(kind FieldKind) []Field {
	var fields []Field
	for _, f := range g.Fields {
		if f.Kind == kind {
			fields = append(fields, f)
		}
	}
	return fields
}

// HasPreview reports whether the group declares a preview template.
func (g *Group) HasPreview() bool {
	return strings.TrimSpace(g.PreviewTemplate) != ""
}

// Module is a named, ordered set of groups.
type Module struct {
	Name   string
	Icon   string
	Groups []*Group
}

// Group returns the group definition with the given name.
func (m *Module) Group(name string) (*Group, bool) {
	for _, g := range m.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// Schema is the validated set of modules along with the storage config
// the content is served with.
type Schema struct {
	Config  config.Content
	Modules []*Module
}

// Module returns the module with the given name.
func (s *Schema) Module(name string) (*Module, bool) {
	for _, m := range s.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Group looks a group definition up by module and group name.
func (s *Schema) Group(module, group string) (*Group, bool) {
	m, ok := s.Module(module)
	if !ok {
		return nil, false
	}
	return m.Group(group)
}

// NewModule returns a module containing the built groups in order.
func NewModule(name, icon string, groups ...*GroupBuilder) *Module {
	m := &Module{Name: name, Icon: icon}
	for _, b := range groups {
		m.Groups = append(m.Groups, b.Build())
	}
	return m
}

// Build validates the config and the modules and returns the schema. It
// fails with config.ErrIncompleteConfig before looking at any module.
func Build(cfg config.Content, modules ...*Module) (*Schema, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if err := checkName("module", m.Name); err != nil {
			return nil, err
		}
		if m.Name == models.ElementNamespace {
			return nil, fmt.Errorf("%w: module name %q is reserved", ErrInvalidSchema, m.Name)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("%w: duplicate module %q", ErrInvalidSchema, m.Name)
		}
		seen[m.Name] = true

		groups := make(map[string]bool, len(m.Groups))
		for _, g := range m.Groups {
			if err := checkName("group", g.Name); err != nil {
				return nil, fmt.Errorf("module %s: %w", m.Name, err)
			}
			if groups[g.Name] {
				return nil, fmt.Errorf("%w: duplicate group %q in module %q", ErrInvalidSchema, g.Name, m.Name)
			}
			groups[g.Name] = true
			if err := validateFields(g); err != nil {
				return nil, fmt.Errorf("group %s.%s: %w", m.Name, g.Name, err)
			}
		}
	}

	return &Schema{Config: cfg, Modules: modules}, nil
}

func validateFields(g *Group) error {
	seen := make(map[FieldKind]map[string]bool)
	for _, f := range g.Fields {
		if f.Kind < KindHTML || f.Kind > KindArray {
			return fmt.Errorf("%w: field %q has unknown kind %d", ErrInvalidSchema, f.Name, int(f.Kind))
		}
		if err := checkName(f.Kind.String()+" field", f.Name); err != nil {
			return err
		}
		if seen[f.Kind] == nil {
			seen[f.Kind] = make(map[string]bool)
		}
		if seen[f.Kind][f.Name] {
			return fmt.Errorf("%w: duplicate %s field %q", ErrInvalidSchema, f.Kind, f.Name)
		}
		seen[f.Kind][f.Name] = true
	}

	for _, f := range g.FieldsOf(KindArray) {
		if f.Element == nil {
			return fmt.Errorf("%w: array field %q has no element schema", ErrInvalidSchema, f.Name)
		}
		if err := validateFields(f.Element); err != nil {
			return fmt.Errorf("array %s: %w", f.Name, err)
		}
	}
	return nil
}

func checkName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is empty", ErrInvalidSchema, what)
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("%w: %s name %q contains '.'", ErrInvalidSchema, what, name)
	}
	return nil
}
