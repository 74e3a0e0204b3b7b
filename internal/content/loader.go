// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content is the read side used while rendering: it loads content
// groups by "module.group" key and wraps them in accessors that never fail,
// falling back to a default when an area is missing.
package content

import (
	"errors"
	"fmt"
	"strings"

	"contentcms/internal/config"
	"contentcms/internal/models"
	"contentcms/internal/store"
)

// ErrInvalidKey is returned for keys not shaped like "module.group".
var ErrInvalidKey = errors.New("invalid content group key")

// Source loads content groups by key.
type Source interface {
	Load(key string) (*Group, error)
}

// ParseKey splits a "module.group" key into its namespace and name. Both
// parts must be non-empty: schema names never are, so such a key could only
// ever load an empty group.
func ParseKey(key string) (namespace, name string, err error) {
	namespace, name, ok := strings.Cut(key, ".")
	if !ok || namespace == "" || name == "" || strings.Contains(name, ".") {
		return "", "", fmt.Errorf("%w: expected \"module.group\", got %q", ErrInvalidKey, key)
	}
	return namespace, name, nil
}

// Loader loads groups from a repository and remembers every group it
// returned, so each key is queried at most once per Loader. A Loader is
// meant to live for one request and is not safe for concurrent use.
type Loader struct {
	cfg    config.Content
	repo   store.Repository
	loaded map[string]*Group
}

// NewLoader creates a Loader reading from repo.
func NewLoader(cfg config.Content, repo store.Repository) *Loader {
	return &Loader{cfg: cfg, repo: repo, loaded: make(map[string]*Group)}
}

// Load returns the group stored under key. A group that was never stored
// loads as an empty group with the key's namespace and name.
func (l *Loader) Load(key string) (*Group, error) {
	namespace, name, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	if g, ok := l.loaded[key]; ok {
		return g, nil
	}

	groups, err := l.repo.Matching(store.Where().
		Eq(store.FieldNamespace, namespace).
		Eq(store.FieldName, name))
	if err != nil {
		return nil, fmt.Errorf("load content group %s: %w", key, err)
	}

	entity := models.NewContentGroup(namespace, name)
	if len(groups) > 0 {
		entity = groups[0]
	}
	g := NewGroup(l.cfg, entity)
	l.loaded[key] = g
	return g, nil
}
