// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor implements the edit workflow of content modules: listing
// the groups of a module, reading one into a form, submitting a form and
// previewing unsaved changes. Groups are created and removed only by the
// reconciler, never by editors.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contentcms/internal/content"
	"contentcms/internal/engine"
	"contentcms/internal/form"
	"contentcms/internal/models"
	"contentcms/internal/preview"
	"contentcms/internal/schema"
	"contentcms/internal/store"
)

var (
	// ErrUnknownGroup is returned for modules and groups the schema does not declare.
	ErrUnknownGroup = errors.New("unknown content group")
	// ErrUnsupportedAction is returned when creating or removing a group.
	ErrUnsupportedAction = errors.New("content groups are defined by the schema")
)

// UnknownLabel is shown for stored groups the schema does not declare.
const UnknownLabel = "<unknown>"

// Service edits the content of the modules in a schema.
type Service struct {
	schema *schema.Schema
	repo   store.Repository
	engine *engine.Engine
	clock  models.Clock
	binder form.Binder
}

// New creates an editor service. Saves go through repo, so a caching
// repository sees every write.
func New(s *schema.Schema, repo store.Repository, eng *engine.Engine, clock models.Clock) *Service {
	return &Service{schema: s, repo: repo, engine: eng, clock: clock}
}

// ModuleInfo describes a module for navigation.
type ModuleInfo struct {
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Groups int    `json:"groups"`
}

// Modules returns the modules of the schema in declaration order.
func (s *Service) Modules() []ModuleInfo {
	out := make([]ModuleInfo, 0, len(s.schema.Modules))
	for _, m := range s.schema.Modules {
		out = append(out, ModuleInfo{Name: m.Name, Icon: m.Icon, Groups: len(m.Groups)})
	}
	return out
}

// Summary is one row of a module's group listing.
type Summary struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	OrderIndex int       `json:"order_index"`
	UpdatedAt  time.Time `json:"updated_at"`
	PageURL    string    `json:"page_url,omitempty"`
	Preview    bool      `json:"preview"`
}

// List returns the stored groups of a module ordered by their order index.
func (s *Service) List(module string) ([]Summary, error) {
	m, ok := s.schema.Module(module)
	if !ok {
		return nil, fmt.Errorf("%w: module %q", ErrUnknownGroup, module)
	}

	groups, err := s.repo.Matching(store.Where().Eq(store.FieldNamespace, module))
	if err != nil {
		return nil, fmt.Errorf("list content groups of %s: %w", module, err)
	}

	rows := make([]Summary, 0, len(groups))
	for _, g := range groups {
		row := Summary{
			ID:         g.ID,
			Name:       g.Name,
			Label:      UnknownLabel,
			OrderIndex: g.OrderIndex,
			UpdatedAt:  g.UpdatedAt,
		}
		if def, ok := m.Group(g.Name); ok {
			row.Label = def.Label
			row.PageURL = def.PageURL
			row.Preview = def.HasPreview()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Form is the editable state of a group.
type Form struct {
	Module    string           `json:"module"`
	Group     string           `json:"group"`
	Label     string           `json:"label"`
	Fields    []form.FieldSpec `json:"fields"`
	Values    form.Values      `json:"values"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Form reads a group into form values.
func (s *Service) Form(module, group string) (*Form, error) {
	def, err := s.definition(module, group)
	if err != nil {
		return nil, err
	}
	g, err := s.load(module, group)
	if err != nil {
		return nil, err
	}
	return &Form{
		Module:    module,
		Group:     group,
		Label:     def.Label,
		Fields:    s.binder.Describe(def),
		Values:    s.binder.ReadValues(g, def),
		UpdatedAt: g.UpdatedAt,
	}, nil
}

// Fields returns the form fields of a group.
func (s *Service) Fields(module, group string) ([]form.FieldSpec, error) {
	def, err := s.definition(module, group)
	if err != nil {
		return nil, err
	}
	return s.binder.Describe(def), nil
}

// Submit writes the values into the group and saves it, inside a
// transaction when the repository supports one, so a failed save leaves the
// stored group as it was.
func (s *Service) Submit(module, group string, values form.Values) (*models.ContentGroup, error) {
	def, err := s.definition(module, group)
	if err != nil {
		return nil, err
	}
	g, err := s.load(module, group)
	if err != nil {
		return nil, err
	}
	if err := s.apply(g, module, def, values); err != nil {
		return nil, err
	}

	save := func(repo store.Repository) error {
		return repo.SaveAll([]*models.ContentGroup{g})
	}
	if tx, ok := s.repo.(store.Transactor); ok {
		err = tx.InTransaction(save)
	} else {
		err = save(s.repo)
	}
	if err != nil {
		return nil, fmt.Errorf("save content group %s: %w", g.Key(), err)
	}
	slog.Info("content group saved", "key", g.Key(), "id", g.ID)
	return g, nil
}

// Preview renders the group's preview template as if the values had been
// submitted. Nothing is saved.
func (s *Service) Preview(module, group string, values form.Values) ([]byte, error) {
	def, err := s.definition(module, group)
	if err != nil {
		return nil, err
	}
	if !def.HasPreview() {
		return nil, fmt.Errorf("preview %s.%s: %w", module, group, engine.ErrNoPreview)
	}
	stored, err := s.load(module, group)
	if err != nil {
		return nil, err
	}
	g := stored.Clone()
	if err := s.apply(g, module, def, values); err != nil {
		return nil, err
	}

	cfg := s.schema.Config
	src := preview.NewInterpolator(preview.NewOverlay(cfg, content.NewLoader(cfg, s.repo), g))
	return s.engine.RenderPreview(g.Key(), def, src)
}

// Create always fails: groups only come into existence through the schema.
func (s *Service) Create(module string) error {
	return fmt.Errorf("create content group in %s: %w", module, ErrUnsupportedAction)
}

// Delete always fails: groups are only removed through the schema.
func (s *Service) Delete(module, group string) error {
	return fmt.Errorf("delete content group %s.%s: %w", module, group, ErrUnsupportedAction)
}

func (s *Service) apply(g *models.ContentGroup, module string, def *schema.Group, values form.Values) error {
	if err := s.binder.ApplyValues(g, def, values); err != nil {
		return err
	}
	g.Namespace = module
	g.UpdatedAt = s.clock.Now()
	return nil
}

func (s *Service) definition(module, group string) (*schema.Group, error) {
	def, ok := s.schema.Group(module, group)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownGroup, module, group)
	}
	return def, nil
}

// load returns the stored group, or a new one when the reconciler has not
// created it yet.
func (s *Service) load(module, group string) (*models.ContentGroup, error) {
	groups, err := s.repo.Matching(store.Where().
		Eq(store.FieldNamespace, module).
		Eq(store.FieldName, group))
	if err != nil {
		return nil, fmt.Errorf("load content group %s.%s: %w", module, group, err)
	}
	if len(groups) == 0 {
		return models.NewContentGroup(module, group), nil
	}
	return groups[0], nil
}
