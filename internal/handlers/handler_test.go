// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go exercises the handlers over an in-memory store seeded by
// reconciling the example schema.
package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"contentcms/internal/config"
	"contentcms/internal/editor"
	"contentcms/internal/engine"
	"contentcms/internal/models"
	"contentcms/internal/preview"
	"contentcms/internal/reconcile"
	"contentcms/internal/schema"
	"contentcms/internal/store"
)

var testConfig = config.Content{ImageStorageBasePath: "/var/images", ImageBaseURL: "/images"}

type testEnv struct {
	repo   *store.MemoryStore
	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := schema.Example(testConfig)
	if err != nil {
		t.Fatalf("Example: %v", err)
	}
	clock := models.ClockFunc(func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) })
	repo := store.NewMemoryStore()
	if _, err := reconcile.New(repo, clock).Run(s); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	admin := NewAdmin(editor.New(s, repo, engine.New(), clock))
	public := NewPublic(testConfig, repo)

	r := chi.NewRouter()
	r.Get("/api/content/{key}", public.Content)
	r.Get("/admin/modules", admin.Modules)
	r.Get("/admin/modules/{module}/groups", admin.GroupsList)
	r.Post("/admin/modules/{module}/groups", admin.GroupCreate)
	r.Get("/admin/modules/{module}/groups/{group}", admin.GroupEdit)
	r.Put("/admin/modules/{module}/groups/{group}", admin.GroupUpdate)
	r.Delete("/admin/modules/{module}/groups/{group}", admin.GroupDelete)
	r.Post("/admin/modules/{module}/groups/{group}/preview", admin.GroupPreview)

	return &testEnv{repo: repo, router: r}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestStatusCodes(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"modules", http.MethodGet, "/admin/modules", "", http.StatusOK},
		{"list", http.MethodGet, "/admin/modules/pages/groups", "", http.StatusOK},
		{"list unknown module", http.MethodGet, "/admin/modules/blog/groups", "", http.StatusNotFound},
		{"create", http.MethodPost, "/admin/modules/pages/groups", "{}", http.StatusMethodNotAllowed},
		{"edit", http.MethodGet, "/admin/modules/pages/groups/home", "", http.StatusOK},
		{"edit unknown group", http.MethodGet, "/admin/modules/pages/groups/nope", "", http.StatusNotFound},
		{"update malformed", http.MethodPut, "/admin/modules/pages/groups/home", "{not json", http.StatusBadRequest},
		{"update invalid value", http.MethodPut, "/admin/modules/pages/groups/home", `{"html_info": 3}`, http.StatusBadRequest},
		{"update unknown group", http.MethodPut, "/admin/modules/pages/groups/nope", `{}`, http.StatusNotFound},
		{"delete", http.MethodDelete, "/admin/modules/pages/groups/home", "", http.StatusMethodNotAllowed},
		{"preview without template", http.MethodPost, "/admin/modules/pages/groups/template/preview", "{}", http.StatusNotFound},
		{"content", http.MethodGet, "/api/content/pages.home", "", http.StatusOK},
		{"content missing group", http.MethodGet, "/api/content/pages.unknown", "", http.StatusOK},
		{"content invalid key", http.MethodGet, "/api/content/invalid", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestGroupsList(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/admin/modules/pages/groups", "")

	var rows []editor.Summary
	decode(t, rec, &rows)
	if len(rows) != 2 || rows[0].Name != "template" || rows[1].Label != "Home" || !rows[1].Preview {
		t.Errorf("rows = %+v", rows)
	}
}

func TestUpdateAndRead(t *testing.T) {
	env := newTestEnv(t)

	body := `{
		"html_info": "<p>X</p>",
		"image_banner": {"action": "store_new", "path": "/var/images/pages/banner.png", "client_file_name": "b.png"},
		"image_alt_text_banner": "Banner",
		"metadata_title": "Home",
		"array_features": [{"text_title": "Fast", "html_body": "<b>very</b>"}]
	}`
	rec := env.do(t, http.MethodPut, "/admin/modules/pages/groups/home", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var f struct {
		Values map[string]any `json:"values"`
	}
	decode(t, rec, &f)
	if f.Values["html_info"] != "<p>X</p>" || f.Values["metadata_title"] != "Home" {
		t.Errorf("values = %v", f.Values)
	}

	rec = env.do(t, http.MethodGet, "/api/content/pages.home", "")
	var view struct {
		HTML   map[string]string `json:"html"`
		Images map[string]struct {
			URL     string `json:"url"`
			AltText string `json:"alt_text"`
		} `json:"images"`
		Arrays map[string][]struct {
			Texts map[string]string `json:"texts"`
		} `json:"arrays"`
	}
	decode(t, rec, &view)
	if view.HTML["info"] != "<p>X</p>" {
		t.Errorf("html = %v", view.HTML)
	}
	if img := view.Images["banner"]; img.URL != "/images/pages/banner.png" || img.AltText != "Banner" {
		t.Errorf("banner = %+v", img)
	}
	if len(view.Arrays["features"]) != 1 || view.Arrays["features"][0].Texts["title"] != "Fast" {
		t.Errorf("arrays = %+v", view.Arrays)
	}
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t)
	groups, _ := env.repo.Matching(store.Where().Eq(store.FieldNamespace, "pages").Eq(store.FieldName, "home"))
	home := groups[0]
	saved, _ := env.repo.Writes()

	rec := env.do(t, http.MethodPost, "/admin/modules/pages/groups/home/preview", `{"html_info": "<p>X</p>"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if want := preview.Wrap(home.ID, "info", "<p>X</p>"); !strings.Contains(rec.Body.String(), want) {
		t.Errorf("expected %q in preview:\n%s", want, rec.Body.String())
	}
	if after, _ := env.repo.Writes(); after != saved {
		t.Error("preview saved the group")
	}
}
