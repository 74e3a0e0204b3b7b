// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"contentcms/internal/config"
	"contentcms/internal/content"
	"contentcms/internal/store"
)

// Public serves content to sites.
type Public struct {
	cfg  config.Content
	repo store.Repository
}

// NewPublic creates a new Public handler group. repo is usually the Valkey
// cache in front of the database.
func NewPublic(cfg config.Content, repo store.Repository) *Public {
	return &Public{cfg: cfg, repo: repo}
}

// Content returns the group stored under the "module.group" key. Groups
// that were never stored are served empty.
func (p *Public) Content(w http.ResponseWriter, r *http.Request) {
	// A loader per request keeps its memo request-scoped.
	loader := content.NewLoader(p.cfg, p.repo)
	g, err := loader.Load(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}
