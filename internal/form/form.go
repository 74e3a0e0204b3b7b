// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package form maps content groups to editable form values and back. The
// field list is derived from the group's schema, so the form always shows
// exactly the declared fields no matter what the stored group holds.
package form

import (
	"errors"
	"fmt"

	"contentcms/internal/models"
	"contentcms/internal/schema"
)

// ErrInvalidValue is returned when a submitted value has the wrong type for
// its field.
var ErrInvalidValue = errors.New("invalid form value")

// Kind identifies the input a form field is edited with.
type Kind string

const (
	KindHTML         Kind = "html"
	KindImage        Kind = "image"
	KindImageAltText Kind = "image_alt_text"
	KindText         Kind = "text"
	KindMetadata     Kind = "metadata"
	KindArray        Kind = "array"
)

// FieldSpec describes one form field. Name is the wire name, the field kind
// prefix followed by the schema field name.
type FieldSpec struct {
	Name     string      `json:"name"`
	Field    string      `json:"field"`
	Kind     Kind        `json:"kind"`
	Label    string      `json:"label"`
	Selector string      `json:"selector,omitempty"`
	Element  []FieldSpec `json:"element,omitempty"`
}

// Values holds form values by wire name. Strings are used for html, text,
// metadata and alt text fields, images are *models.Image (nil when unset)
// or an ImageUpload, and arrays are []Values.
type Values map[string]any

// UploadAction says what a submitted image input does with the stored image.
type UploadAction string

const (
	UploadKeep     UploadAction = "keep"
	UploadStoreNew UploadAction = "store_new"
	UploadClear    UploadAction = "clear"
)

// ImageUpload is the submitted state of an image input. Image is only read
// for UploadStoreNew.
type ImageUpload struct {
	Action UploadAction
	Image  models.Image
}

// FieldName returns the wire name of a schema field.
func FieldName(kind schema.FieldKind, name string) string {
	return kind.String() + "_" + name
}

// AltTextFieldName returns the wire name of an image field's alt text.
func AltTextFieldName(name string) string {
	return string(KindImageAltText) + "_" + name
}

// Binder reads groups into form values and writes submitted values back.
type Binder struct{}

// Describe returns the form fields of a group definition in declaration
// order. Array fields carry the fields of one element.
func (Binder) Describe(def *schema.Group) []FieldSpec {
	specs := make([]FieldSpec, 0, len(def.Fields))
	for _, f := range def.Fields {
		spec := FieldSpec{Name: FieldName(f.Kind, f.Name), Field: f.Name, Label: f.Label}
		switch f.Kind {
		case schema.KindHTML:
			spec.Kind = KindHTML
			spec.Selector = f.Selector
		case schema.KindImage:
			spec.Kind = KindImage
		case schema.KindText:
			spec.Kind = KindText
		case schema.KindMetadata:
			spec.Kind = KindMetadata
		case schema.KindArray:
			spec.Kind = KindArray
			spec.Element = Binder{}.Describe(f.Element)
		default:
			panic(fmt.Sprintf("form: unhandled field kind %v", f.Kind))
		}
		specs = append(specs, spec)

		if f.Kind == schema.KindImage && f.AltText {
			specs = append(specs, FieldSpec{
				Name:  AltTextFieldName(f.Name),
				Field: f.Name,
				Kind:  KindImageAltText,
				Label: f.Label + " - Alt Text",
			})
		}
	}
	return specs
}

// ReadValues returns the current value of every declared field, or the
// kind's default when the group lacks it.
func (Binder) ReadValues(g *models.ContentGroup, def *schema.Group) Values {
	values := make(Values, len(def.Fields))
	for _, f := range def.Fields {
		key := FieldName(f.Kind, f.Name)
		switch f.Kind {
		case schema.KindHTML:
			a, _ := g.FindHTML(f.Name)
			values[key] = a.HTML
		case schema.KindImage:
			a, ok := g.FindImage(f.Name)
			var img any
			if ok && a.Image.Valid {
				stored := a.Image
				img = &stored
			}
			values[key] = img
			if f.AltText {
				values[AltTextFieldName(f.Name)] = a.AltTextOrEmpty()
			}
		case schema.KindText:
			a, _ := g.FindText(f.Name)
			values[key] = a.Text
		case schema.KindMetadata:
			m, _ := g.FindMetadata(f.Name)
			values[key] = m.Value
		case schema.KindArray:
			elements := []Values{}
			for _, child := range g.ArrayOf(f.Name) {
				elements = append(elements, Binder{}.ReadValues(child, f.Element))
			}
			values[key] = elements
		default:
			panic(fmt.Sprintf("form: unhandled field kind %v", f.Kind))
		}
	}
	return values
}

// ApplyValues replaces the areas and array elements of g with the submitted
// values. Empty html and image fields and absent arrays leave no area, text
// and metadata fields are always written. The group is left untouched when
// a value is invalid. Namespace and UpdatedAt are the caller's business.
func (b Binder) ApplyValues(g *models.ContentGroup, def *schema.Group, values Values) error {
	next := &models.ContentGroup{}
	if err := b.apply(next, g, def, values); err != nil {
		return err
	}
	g.HTML, g.Images, g.Texts, g.Metadata, g.Children = next.HTML, next.Images, next.Texts, next.Metadata, next.Children
	return nil
}

// apply fills next from values. prev is the group as stored, used to keep
// images the submission did not replace.
func (b Binder) apply(next, prev *models.ContentGroup, def *schema.Group, values Values) error {
	for _, f := range def.Fields {
		key := FieldName(f.Kind, f.Name)
		switch f.Kind {
		case schema.KindHTML:
			html, err := stringValue(key, values[key])
			if err != nil {
				return err
			}
			if html != "" {
				next.HTML = append(next.HTML, models.HTMLArea{Name: f.Name, HTML: html})
			}
		case schema.KindImage:
			area, ok, err := imageArea(f, prev, values)
			if err != nil {
				return err
			}
			if ok {
				next.Images = append(next.Images, area)
			}
		case schema.KindText:
			text, err := stringValue(key, values[key])
			if err != nil {
				return err
			}
			next.Texts = append(next.Texts, models.TextArea{Name: f.Name, Text: text})
		case schema.KindMetadata:
			value, err := stringValue(key, values[key])
			if err != nil {
				return err
			}
			next.Metadata = append(next.Metadata, models.Metadata{Name: f.Name, Value: value})
		case schema.KindArray:
			elements, err := arrayValue(key, values[key])
			if err != nil {
				return err
			}
			stored := prev.ArrayOf(f.Name)
			for i, ev := range elements {
				el, was := models.NewElement(f.Name), models.NewElement(f.Name)
				if i < len(stored) {
					was = stored[i]
				}
				if err := b.apply(el, was, f.Element, ev); err != nil {
					return fmt.Errorf("%s[%d]: %w", key, i, err)
				}
				next.Children = append(next.Children, el)
			}
		default:
			panic(fmt.Sprintf("form: unhandled field kind %v", f.Kind))
		}
	}
	return nil
}

// imageArea builds the area of an image field. It reports false when the
// submission leaves no area.
func imageArea(f schema.Field, prev *models.ContentGroup, values Values) (models.ImageArea, bool, error) {
	key := FieldName(schema.KindImage, f.Name)
	area := models.ImageArea{Name: f.Name}

	var alt string
	if f.AltText {
		var err error
		if alt, err = stringValue(AltTextFieldName(f.Name), values[AltTextFieldName(f.Name)]); err != nil {
			return area, false, err
		}
		area.AltText = models.StringPtr(alt)
	}

	var img *models.Image
	switch v := values[key].(type) {
	case nil:
	case *models.Image:
		img = v
	case models.Image:
		img = &v
	case ImageUpload:
		resolved, err := resolveUpload(key, v, prev, f.Name)
		if err != nil {
			return area, false, err
		}
		img = resolved
	case *ImageUpload:
		if v != nil {
			resolved, err := resolveUpload(key, *v, prev, f.Name)
			if err != nil {
				return area, false, err
			}
			img = resolved
		}
	default:
		return area, false, fmt.Errorf("%w: %s: unexpected %T for an image", ErrInvalidValue, key, v)
	}

	switch {
	case img != nil && img.Valid:
		area.Image = *img
	case img != nil || alt != "":
		// A cleared image keeps its area so the alt text survives.
		area.Image = models.EmptyImage()
	default:
		return area, false, nil
	}
	return area, true, nil
}

func resolveUpload(key string, u ImageUpload, prev *models.ContentGroup, name string) (*models.Image, error) {
	switch u.Action {
	case UploadKeep:
		if a, ok := prev.FindImage(name); ok && a.Image.Valid {
			img := a.Image
			return &img, nil
		}
		return nil, nil
	case UploadStoreNew:
		img := models.NewImage(u.Image.Path, u.Image.ClientFileName)
		if !img.Valid {
			return nil, fmt.Errorf("%w: %s: new image without a path", ErrInvalidValue, key)
		}
		return &img, nil
	case UploadClear:
		img := models.EmptyImage()
		return &img, nil
	}
	return nil, fmt.Errorf("%w: %s: unknown upload action %q", ErrInvalidValue, key, u.Action)
}

func stringValue(key string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case *string:
		if s == nil {
			return "", nil
		}
		return *s, nil
	}
	return "", fmt.Errorf("%w: %s: expected a string, got %T", ErrInvalidValue, key, v)
}

func arrayValue(key string, v any) ([]Values, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []Values:
		return list, nil
	case []map[string]any:
		out := make([]Values, len(list))
		for i, m := range list {
			out[i] = m
		}
		return out, nil
	case []any:
		out := make([]Values, len(list))
		for i, item := range list {
			switch m := item.(type) {
			case Values:
				out[i] = m
			case map[string]any:
				out[i] = m
			default:
				return nil, fmt.Errorf("%w: %s[%d]: expected an object, got %T", ErrInvalidValue, key, i, item)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s: expected a list, got %T", ErrInvalidValue, key, v)
}
