// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package reconcile brings the persisted content groups in line with the
// schema. Groups declared in the schema but missing from storage are
// created blank, stored groups lose undeclared areas and gain blank areas
// for new fields, and groups of removed groups or modules are deleted.
// Running it twice in a row writes nothing the second time.
//
// Array elements are not reconciled field by field: a stored group only
// loses the elements of array fields that no longer exist.
package reconcile

import (
	"fmt"
	"log/slog"
	"sort"

	"contentcms/internal/models"
	"contentcms/internal/schema"
	"contentcms/internal/store"
)

// Reconciler synchronizes a repository with a schema.
type Reconciler struct {
	repo  store.Repository
	clock models.Clock
}

// New creates a Reconciler. Writes run in one transaction when repo
// implements store.Transactor.
func New(repo store.Repository, clock models.Clock) *Reconciler {
	return &Reconciler{repo: repo, clock: clock}
}

// Plan holds the writes needed to match the schema. Create and Update are
// in schema order.
type Plan struct {
	Create []*models.ContentGroup
	Update []*models.ContentGroup
	Remove []*models.ContentGroup
}

// Empty reports whether the plan has nothing to write.
func (p *Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Remove) == 0
}

// Result counts the groups written by a run.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// Result returns the counts of the plan.
func (p *Plan) Result() Result {
	return Result{Created: len(p.Create), Updated: len(p.Update), Removed: len(p.Remove)}
}

// Run plans and applies the reconciliation. Removals are applied before
// saves; a failure of either aborts the run with nothing applied when the
// repository supports transactions.
func (r *Reconciler) Run(s *schema.Schema) (Result, error) {
	plan, err := r.Plan(s)
	if err != nil {
		return Result{}, err
	}
	if plan.Empty() {
		slog.Info("content schema already reconciled")
		return Result{}, nil
	}

	apply := func(repo store.Repository) error {
		if len(plan.Remove) > 0 {
			if err := repo.RemoveAll(plan.Remove); err != nil {
				return fmt.Errorf("remove content groups: %w", err)
			}
		}
		saves := append(append([]*models.ContentGroup{}, plan.Create...), plan.Update...)
		if len(saves) > 0 {
			if err := repo.SaveAll(saves); err != nil {
				return fmt.Errorf("save content groups: %w", err)
			}
		}
		return nil
	}

	if tx, ok := r.repo.(store.Transactor); ok {
		err = tx.InTransaction(apply)
	} else {
		err = apply(r.repo)
	}
	if err != nil {
		return Result{}, fmt.Errorf("reconcile content: %w", err)
	}

	res := plan.Result()
	slog.Info("content schema reconciled",
		"created", res.Created,
		"updated", res.Updated,
		"removed", res.Removed,
	)
	return res, nil
}

// Plan computes the writes without applying them.
func (r *Reconciler) Plan(s *schema.Schema) (*Plan, error) {
	persisted, err := r.repo.Matching(store.Where().NotEq(store.FieldNamespace, models.ElementNamespace))
	if err != nil {
		return nil, fmt.Errorf("load content groups: %w", err)
	}

	plan := &Plan{}
	byNamespace := make(map[string]map[string]*models.ContentGroup)
	for _, g := range persisted {
		if g.IsElement() {
			continue
		}
		groups := byNamespace[g.Namespace]
		if groups == nil {
			groups = make(map[string]*models.ContentGroup)
			byNamespace[g.Namespace] = groups
		}
		if _, dup := groups[g.Name]; dup {
			plan.Remove = append(plan.Remove, g)
			continue
		}
		groups[g.Name] = g
	}

	for _, m := range s.Modules {
		stored := byNamespace[m.Name]
		delete(byNamespace, m.Name)

		for i, def := range m.Groups {
			order := i + 1
			g, ok := stored[def.Name]
			if !ok {
				g = newBlankGroup(m.Name, def)
				g.OrderIndex = order
				g.UpdatedAt = r.clock.Now()
				plan.Create = append(plan.Create, g)
				continue
			}
			delete(stored, def.Name)

			before := g.Hash()
			syncAreas(g, def)
			changed := g.Hash() != before
			if g.OrderIndex != order {
				g.OrderIndex = order
				changed = true
			}
			if changed {
				plan.Update = append(plan.Update, g)
			}
		}

		plan.Remove = append(plan.Remove, sortedGroups(stored)...)
	}

	// Whatever is left belongs to modules the schema no longer declares.
	namespaces := make([]string, 0, len(byNamespace))
	for ns := range byNamespace {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	for _, ns := range namespaces {
		plan.Remove = append(plan.Remove, sortedGroups(byNamespace[ns])...)
	}

	return plan, nil
}

func sortedGroups(groups map[string]*models.ContentGroup) []*models.ContentGroup {
	out := make([]*models.ContentGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// newBlankGroup returns a group holding one blank area per declared field.
func newBlankGroup(namespace string, def *schema.Group) *models.ContentGroup {
	g := models.NewContentGroup(namespace, def.Name)
	for _, f := range def.Fields {
		addBlankArea(g, f)
	}
	return g
}

func addBlankArea(g *models.ContentGroup, f schema.Field) {
	switch f.Kind {
	case schema.KindHTML:
		g.HTML = append(g.HTML, models.HTMLArea{Name: f.Name})
	case schema.KindImage:
		g.Images = append(g.Images, models.ImageArea{Name: f.Name, Image: models.EmptyImage()})
	case schema.KindText:
		g.Texts = append(g.Texts, models.TextArea{Name: f.Name})
	case schema.KindMetadata:
		g.Metadata = append(g.Metadata, models.Metadata{Name: f.Name})
	case schema.KindArray:
		// Arrays start without elements.
	default:
		panic(fmt.Sprintf("reconcile: unhandled field kind %v", f.Kind))
	}
}

// syncAreas drops undeclared areas and array elements and appends a blank
// area for every declared field the group lacks.
func syncAreas(g *models.ContentGroup, def *schema.Group) {
	declared := func(kind schema.FieldKind, name string) bool {
		_, ok := def.Field(kind, name)
		return ok
	}

	g.HTML = filter(g.HTML, func(a models.HTMLArea) bool { return declared(schema.KindHTML, a.Name) })
	g.Images = filter(g.Images, func(a models.ImageArea) bool { return declared(schema.KindImage, a.Name) })
	g.Texts = filter(g.Texts, func(a models.TextArea) bool { return declared(schema.KindText, a.Name) })
	g.Metadata = filter(g.Metadata, func(m models.Metadata) bool { return declared(schema.KindMetadata, m.Name) })
	g.Children = filter(g.Children, func(c *models.ContentGroup) bool { return declared(schema.KindArray, c.Name) })

	for _, f := range def.Fields {
		var present bool
		switch f.Kind {
		case schema.KindHTML:
			_, present = g.FindHTML(f.Name)
		case schema.KindImage:
			_, present = g.FindImage(f.Name)
		case schema.KindText:
			present = g.HasText(f.Name)
		case schema.KindMetadata:
			present = g.HasMetadata(f.Name)
		case schema.KindArray:
			present = true
		default:
			panic(fmt.Sprintf("reconcile: unhandled field kind %v", f.Kind))
		}
		if !present {
			addBlankArea(g, f)
		}
	}
}

// filter keeps the items for which keep returns true. It returns nil when
// nothing is kept so that an emptied collection hashes like a fresh one.
func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
