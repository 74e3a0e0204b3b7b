package schema

import (
	"sort"

	"contentcms/internal/models"
)

// presetOrderBase is the order of the first metadata field added by the
// Page and Email presets, so they sort after any field declared through the
// builder.
const presetOrderBase = 1000

// GroupBuilder collects the fields of a group in declaration order. Each
// call assigns the next order number, starting at 0.
type GroupBuilder struct {
	group Group
	order int
}

// NewGroup starts a plain group definition.
func NewGroup(name, label string) *GroupBuilder {
	return &GroupBuilder{group: Group{Name: name, Label: label}}
}

// Page starts a group for a web page. It carries title, description and
// keywords metadata after every other field.
func Page(name, label, pageURL string) *GroupBuilder {
	b := NewGroup(name, label)
	b.group.PageURL = pageURL
	b.preset("title", "Title", presetOrderBase)
	b.preset("description", "Description", presetOrderBase+1)
	b.preset("keywords", "Keywords", presetOrderBase+2)
	return b
}

// Email starts a group for an email. It carries subject metadata after
// every other field.
func Email(name, label string) *GroupBuilder {
	b := NewGroup(name, label)
	b.preset("subject", "Subject", presetOrderBase)
	return b
}

// Element starts the definition of one element of an array field.
func Element() *GroupBuilder {
	return NewGroup(models.ElementNamespace, "")
}

func (b *GroupBuilder) preset(name, label string, order int) {
	b.group.Fields = append(b.group.Fields, Field{Kind: KindMetadata, Name: name, Label: label, Order: order})
}

// add appends f with the next order number. A field of the same kind and
// name replaces the earlier one.
func (b *GroupBuilder) add(f Field) *GroupBuilder {
	f.Order = b.order
	b.order++
	for i, existing := range b.group.Fields {
		if existing.Kind == f.Kind && existing.Name == f.Name {
			b.group.Fields[i] = f
			return b
		}
	}
	b.group.Fields = append(b.group.Fields, f)
	return b
}

// HTML declares a rich markup field. The optional selector names the
// element the markup renders into.
func (b *GroupBuilder) HTML(name, label string, selector ...string) *GroupBuilder {
	f := Field{Kind: KindHTML, Name: name, Label: label}
	if len(selector) > 0 {
		f.Selector = selector[0]
	}
	return b.add(f)
}

// Image declares an image field.
func (b *GroupBuilder) Image(name, label string) *GroupBuilder {
	return b.add(Field{Kind: KindImage, Name: name, Label: label})
}

// ImageWithAltText declares an image field with an alt text input.
func (b *GroupBuilder) ImageWithAltText(name, label string) *GroupBuilder {
	return b.add(Field{Kind: KindImage, Name: name, Label: label, AltText: true})
}

// Text declares a plain text field.
func (b *GroupBuilder) Text(name, label string) *GroupBuilder {
	return b.add(Field{Kind: KindText, Name: name, Label: label})
}

// Metadata declares a metadata entry.
func (b *GroupBuilder) Metadata(name, label string) *GroupBuilder {
	return b.add(Field{Kind: KindMetadata, Name: name, Label: label})
}

// ArrayOf declares a repeatable field whose elements follow the element
// definition.
func (b *GroupBuilder) ArrayOf(name, label string, element *GroupBuilder) *GroupBuilder {
	el := element.Build()
	el.Name = name
	return b.add(Field{Kind: KindArray, Name: name, Label: label, Element: el})
}

// PreviewTemplate sets the html/template used to render a preview of the
// group while it is being edited.
func (b *GroupBuilder) PreviewTemplate(tmpl string) *GroupBuilder {
	b.group.PreviewTemplate = tmpl
	return b
}

// Build returns a copy of the group with its fields sorted by order.
func (b *GroupBuilder) Build() *Group {
	g := b.group
	g.Fields = append([]Field(nil), b.group.Fields...)
	sort.SliceStable(g.Fields, func(i, j int) bool {
		return g.Fields[i].Order < g.Fields[j].Order
	})
	return &g
}
