package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"contentcms/internal/config"
)

// Document is the YAML form of a schema:
//
//	modules:
//	  - name: pages
//	    icon: file-text
//	    groups:
//	      - name: home
//	        label: Home
//	        preset: page
//	        url: /
//	        fields:
//	          - {kind: html, name: info, label: Info, selector: "#info"}
//	          - {kind: image, name: banner, label: Banner, alt_text: true}
type Document struct {
	Modules []ModuleDocument `yaml:"modules"`
}

// ModuleDocument is one module entry of a Document.
type ModuleDocument struct {
	Name   string          `yaml:"name"`
	Icon   string          `yaml:"icon"`
	Groups []GroupDocument `yaml:"groups"`
}

// GroupDocument is one group entry. Preset is "group" (default), "page" or
// "email".
type GroupDocument struct {
	Name            string          `yaml:"name"`
	Label           string          `yaml:"label"`
	Preset          string          `yaml:"preset"`
	URL             string          `yaml:"url"`
	PreviewTemplate string          `yaml:"preview_template"`
	Fields          []FieldDocument `yaml:"fields"`
}

// FieldDocument is one field entry. Fields holds the element fields of an
// array.
type FieldDocument struct {
	Kind     string          `yaml:"kind"`
	Name     string          `yaml:"name"`
	Label    string          `yaml:"label"`
	AltText  bool            `yaml:"alt_text"`
	Selector string          `yaml:"selector"`
	Fields   []FieldDocument `yaml:"fields"`
}

// LoadFile reads and builds a schema from a YAML file.
func LoadFile(path string, cfg config.Content) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return LoadYAML(data, cfg)
}

// LoadYAML decodes a YAML schema document and builds it. Unknown keys are
// rejected.
func LoadYAML(data []byte, cfg config.Content) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidSchema, err)
	}

	modules := make([]*Module, 0, len(doc.Modules))
	for _, md := range doc.Modules {
		m := &Module{Name: md.Name, Icon: md.Icon}
		for _, gd := range md.Groups {
			b, err := groupBuilder(gd)
			if err != nil {
				return nil, fmt.Errorf("module %s: %w", md.Name, err)
			}
			if err := addFields(b, gd.Fields); err != nil {
				return nil, fmt.Errorf("group %s.%s: %w", md.Name, gd.Name, err)
			}
			m.Groups = append(m.Groups, b.Build())
		}
		modules = append(modules, m)
	}
	return Build(cfg, modules...)
}

func groupBuilder(gd GroupDocument) (*GroupBuilder, error) {
	var b *GroupBuilder
	switch gd.Preset {
	case "", "group":
		b = NewGroup(gd.Name, gd.Label)
		b.group.PageURL = gd.URL
	case "page":
		b = Page(gd.Name, gd.Label, gd.URL)
	case "email":
		b = Email(gd.Name, gd.Label)
	default:
		return nil, fmt.Errorf("%w: group %q has unknown preset %q", ErrInvalidSchema, gd.Name, gd.Preset)
	}
	return b.PreviewTemplate(gd.PreviewTemplate), nil
}

func addFields(b *GroupBuilder, fields []FieldDocument) error {
	for _, fd := range fields {
		kind, err := ParseFieldKind(fd.Kind)
		if err != nil {
			return err
		}
		if err := checkFieldOptions(kind, fd); err != nil {
			return err
		}
		switch kind {
		case KindHTML:
			b.HTML(fd.Name, fd.Label, fd.Selector)
		case KindImage:
			if fd.AltText {
				b.ImageWithAltText(fd.Name, fd.Label)
			} else {
				b.Image(fd.Name, fd.Label)
			}
		case KindText:
			b.Text(fd.Name, fd.Label)
		case KindMetadata:
			b.Metadata(fd.Name, fd.Label)
		case KindArray:
			el := Element()
			if err := addFields(el, fd.Fields); err != nil {
				return fmt.Errorf("array %s: %w", fd.Name, err)
			}
			b.ArrayOf(fd.Name, fd.Label, el)
		}
	}
	return nil
}

// checkFieldOptions rejects options the field kind does not use.
func checkFieldOptions(kind FieldKind, fd FieldDocument) error {
	switch {
	case len(fd.Fields) > 0 && kind != KindArray:
		return fmt.Errorf("%w: %s field %q declares element fields", ErrInvalidSchema, kind, fd.Name)
	case fd.AltText && kind != KindImage:
		return fmt.Errorf("%w: %s field %q declares alt_text", ErrInvalidSchema, kind, fd.Name)
	case fd.Selector != "" && kind != KindHTML:
		return fmt.Errorf("%w: %s field %q declares a selector", ErrInvalidSchema, kind, fd.Name)
	}
	return nil
}
