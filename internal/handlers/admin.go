// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the content service.
// Handlers are grouped by concern (admin editing, public reads) and receive
// their dependencies through the handler struct.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"contentcms/internal/editor"
	"contentcms/internal/form"
)

// Admin groups the content editing handlers.
type Admin struct {
	editor *editor.Service
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(ed *editor.Service) *Admin {
	return &Admin{editor: ed}
}

// Modules lists the modules of the schema.
func (a *Admin) Modules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.editor.Modules())
}

// GroupsList lists the stored groups of a module.
func (a *Admin) GroupsList(w http.ResponseWriter, r *http.Request) {
	rows, err := a.editor.List(chi.URLParam(r, "module"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GroupCreate is always refused: groups come from the schema.
func (a *Admin) GroupCreate(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, a.editor.Create(chi.URLParam(r, "module")))
}

// GroupEdit returns the form of a group.
func (a *Admin) GroupEdit(w http.ResponseWriter, r *http.Request) {
	f, err := a.editor.Form(chi.URLParam(r, "module"), chi.URLParam(r, "group"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// GroupUpdate saves a submitted form and returns the form as stored.
func (a *Admin) GroupUpdate(w http.ResponseWriter, r *http.Request) {
	module, group := chi.URLParam(r, "module"), chi.URLParam(r, "group")
	values, err := a.decodeValues(w, r, module, group)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := a.editor.Submit(module, group, values); err != nil {
		writeError(w, r, err)
		return
	}

	f, err := a.editor.Form(module, group)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// GroupDelete is always refused: groups come from the schema.
func (a *Admin) GroupDelete(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, a.editor.Delete(chi.URLParam(r, "module"), chi.URLParam(r, "group")))
}

// GroupPreview renders a submitted form with the group's preview template
// without saving it.
func (a *Admin) GroupPreview(w http.ResponseWriter, r *http.Request) {
	module, group := chi.URLParam(r, "module"), chi.URLParam(r, "group")
	values, err := a.decodeValues(w, r, module, group)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.editor.Preview(module, group, values)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

func (a *Admin) decodeValues(w http.ResponseWriter, r *http.Request, module, group string) (form.Values, error) {
	specs, err := a.editor.Fields(module, group)
	if err != nil {
		return nil, err
	}
	raw, err := decodeBody(w, r)
	if err != nil {
		return nil, err
	}
	return form.Decode(specs, raw)
}
