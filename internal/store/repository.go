// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists content groups. Groups are stored as aggregates:
// a root group is loaded and saved together with its areas and its array
// elements. Matching only ever returns root groups.
package store

import (
	"errors"
	"strings"

	"contentcms/internal/models"
)

// ErrNotFound is returned by Get when no group has the requested ID.
var ErrNotFound = errors.New("content group not found")

// Repository is the persistence contract of the content services.
type Repository interface {
	// Matching returns the root groups satisfying every condition of c,
	// ordered by order index then ID.
	Matching(c Criteria) ([]*models.ContentGroup, error)
	// Get returns the group with the ID, root or element.
	Get(id int64) (*models.ContentGroup, error)
	// SaveAll inserts or updates each group with its areas and children.
	// New groups and all children receive their IDs.
	SaveAll(groups []*models.ContentGroup) error
	// RemoveAll deletes each group with its children. Unsaved groups are
	// ignored.
	RemoveAll(groups []*models.ContentGroup) error
}

// Transactor is implemented by repositories that can run several writes
// as one unit of work. When fn returns an error nothing it wrote is kept.
type Transactor interface {
	InTransaction(fn func(Repository) error) error
}

// Criteria fields.
const (
	FieldNamespace = "namespace"
	FieldName      = "name"
)

// Op compares a field with a value.
type Op int

const (
	OpEq Op = iota
	OpNotEq
)

// Condition is a single comparison.
type Condition struct {
	Field string
	Op    Op
	Value string
}

// Criteria is a conjunction of conditions. The zero value matches every
// root group.
type Criteria struct {
	Conditions []Condition
}

// Where returns empty criteria to chain conditions on.
func Where() Criteria {
	return Criteria{}
}

// Eq adds field = value.
func (c Criteria) Eq(field, value string) Criteria {
	return c.with(Condition{Field: field, Op: OpEq, Value: value})
}

// NotEq adds field != value.
func (c Criteria) NotEq(field, value string) Criteria {
	return c.with(Condition{Field: field, Op: OpNotEq, Value: value})
}

func (c Criteria) with(cond Condition) Criteria {
	conds := make([]Condition, len(c.Conditions), len(c.Conditions)+1)
	copy(conds, c.Conditions)
	return Criteria{Conditions: append(conds, cond)}
}

// Matches evaluates the criteria against a group in memory.
func (c Criteria) Matches(g *models.ContentGroup) bool {
	for _, cond := range c.Conditions {
		var v string
		switch cond.Field {
		case FieldNamespace:
			v = g.Namespace
		case FieldName:
			v = g.Name
		default:
			return false
		}
		if (v == cond.Value) != (cond.Op == OpEq) {
			return false
		}
	}
	return true
}

// String returns a canonical form of the criteria, such as
// "namespace=pages&name!=home".
func (c Criteria) String() string {
	parts := make([]string, len(c.Conditions))
	for i, cond := range c.Conditions {
		op := "="
		if cond.Op == OpNotEq {
			op = "!="
		}
		parts[i] = cond.Field + op + cond.Value
	}
	return strings.Join(parts, "&")
}

func validField(field string) bool {
	return field == FieldNamespace || field == FieldName
}
