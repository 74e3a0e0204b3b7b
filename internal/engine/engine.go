// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders the preview templates declared in the content
// schema. A preview template is a Go html/template executed with the
// previewed group as its data. It can load other groups with the
// "content" function and emit trusted markup with "raw".
//
//	{{ $tpl := content "pages.template" }}
//	<header>{{ raw ($tpl.HTML "header") }}</header>
//	<div id="info">{{ raw (.HTML "info") }}</div>
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"contentcms/internal/content"
	"contentcms/internal/schema"
)

// ErrNoPreview is returned when a group declares no preview template.
var ErrNoPreview = errors.New("group has no preview template")

// Engine compiles and renders preview templates. It keeps an in-memory
// cache of compiled templates keyed by group and template digest, so
// repeated previews skip template.Parse.
type Engine struct {
	cache *templateCache
}

// New creates a new preview engine with an empty cache.
func New() *Engine {
	return &Engine{
		cache: newTemplateCache(),
	}
}

// funcs returns the template functions bound to a content source. A nil
// source is only good for parsing.
func funcs(src content.Source) template.FuncMap {
	return template.FuncMap{
		"content": func(key string) (*content.Group, error) {
			if src == nil {
				return nil, errors.New("no content source")
			}
			return src.Load(key)
		},
		"raw": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}

// ValidateTemplate attempts to compile a template string and returns an
// error if the Go template syntax is invalid.
func (e *Engine) ValidateTemplate(src string) error {
	if _, err := template.New("validate").Funcs(funcs(nil)).Parse(src); err != nil {
		return fmt.Errorf("invalid template syntax: %w", err)
	}
	return nil
}

// ValidateSchema checks every preview template of the schema. It is run
// at boot so that a broken template fails startup instead of a preview.
func (e *Engine) ValidateSchema(s *schema.Schema) error {
	for _, m := range s.Modules {
		for _, g := range m.Groups {
			if !g.HasPreview() {
				continue
			}
			if err := e.ValidateTemplate(g.PreviewTemplate); err != nil {
				return fmt.Errorf("%w: preview of %s.%s: %v", schema.ErrInvalidSchema, m.Name, g.Name, err)
			}
		}
	}
	return nil
}

// RenderPreview renders the preview template of def with the group stored
// under key in src. Other groups the template loads come from src too.
func (e *Engine) RenderPreview(key string, def *schema.Group, src content.Source) ([]byte, error) {
	if !def.HasPreview() {
		return nil, fmt.Errorf("render preview %s: %w", key, ErrNoPreview)
	}
	group, err := src.Load(key)
	if err != nil {
		return nil, fmt.Errorf("render preview %s: %w", key, err)
	}
	return e.compileAndRender(key, def.PreviewTemplate, src, group)
}

// compileAndRender compiles a template string, caching it under group,
// and executes a clone of it bound to src.
func (e *Engine) compileAndRender(group, tmplContent string, src content.Source, data any) ([]byte, error) {
	version := templateVersion(tmplContent)
	compiled := e.cache.get(group, version)

	if compiled == nil {
		var err error
		compiled, err = template.New("preview").Funcs(funcs(nil)).Parse(tmplContent)
		if err != nil {
			return nil, fmt.Errorf("compile template: %w", err)
		}
		e.cache.put(group, version, compiled)
	}

	bound, err := compiled.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone template: %w", err)
	}
	bound.Funcs(funcs(src))

	var buf bytes.Buffer
	if err := bound.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	return buf.Bytes(), nil
}
