// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"contentcms/internal/database"
	"contentcms/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "contentcms")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "contentcms")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if _, err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanNamespace removes every group of a test namespace. Call in t.Cleanup().
func cleanNamespace(t *testing.T, db *sql.DB, namespaces ...string) {
	t.Helper()
	for _, ns := range namespaces {
		db.Exec("DELETE FROM content_groups WHERE namespace = $1 AND parent_id IS NULL", ns)
	}
}

// fixtureGroup returns an unsaved group with one area of every kind and
// two array elements.
func fixtureGroup(namespace, name string) *models.ContentGroup {
	g := models.NewContentGroup(namespace, name)
	g.OrderIndex = 1
	g.HTML = []models.HTMLArea{{Name: "info", HTML: "<p>Info</p>"}}
	g.Images = []models.ImageArea{
		{Name: "banner", Image: models.NewImage("/var/images/banner.png", "banner.png"), AltText: models.StringPtr("Banner")},
		{Name: "logo", Image: models.EmptyImage()},
	}
	g.Texts = []models.TextArea{{Name: "tagline", Text: "Hello"}}
	g.Metadata = []models.Metadata{{Name: "title", Value: "Home"}, {Name: "description", Value: ""}}

	for _, caption := range []string{"first", "second"} {
		el := models.NewElement("slides")
		el.Texts = []models.TextArea{{Name: "caption", Text: caption}}
		g.Children = append(g.Children, el)
	}
	return g
}

// repositoryContract exercises the behaviour every Repository must share.
func repositoryContract(t *testing.T, repo Repository, ns string) {
	t.Helper()

	home := fixtureGroup(ns, "home")
	about := fixtureGroup(ns, "about")
	about.OrderIndex = 0
	other := fixtureGroup(ns+"_other", "home")

	if err := repo.SaveAll([]*models.ContentGroup{home, about, other}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if home.ID == 0 || about.ID == 0 || home.Children[0].ID == 0 {
		t.Fatal("SaveAll should assign IDs to groups and children")
	}

	t.Run("matching by namespace", func(t *testing.T) {
		got, err := repo.Matching(Where().Eq(FieldNamespace, ns))
		if err != nil {
			t.Fatalf("Matching: %v", err)
		}
		if len(got) != 2 || got[0].Name != "about" || got[1].Name != "home" {
			t.Fatalf("got %d groups, want about then home", len(got))
		}
	})

	t.Run("loads full aggregate", func(t *testing.T) {
		got, err := repo.Matching(Where().Eq(FieldNamespace, ns).Eq(FieldName, "home"))
		if err != nil || len(got) != 1 {
			t.Fatalf("Matching: %v (%d groups)", err, len(got))
		}
		g := got[0]
		if g.Hash() != home.Hash() {
			t.Errorf("loaded group differs from saved group:\n got %+v\nwant %+v", g, home)
		}
		if g.HasImage("logo") {
			t.Error("empty image marker loaded as valid")
		}
		if _, ok := g.FindImage("logo"); !ok {
			t.Error("empty image area lost")
		}
		slides := g.ArrayOf("slides")
		if len(slides) != 2 || slides[1].Texts[0].Text != "second" {
			t.Errorf("children not loaded in order: %+v", slides)
		}
	})

	t.Run("not equal excludes", func(t *testing.T) {
		got, err := repo.Matching(Where().Eq(FieldNamespace, ns).NotEq(FieldName, "home"))
		if err != nil {
			t.Fatalf("Matching: %v", err)
		}
		if len(got) != 1 || got[0].Name != "about" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		if _, err := repo.Matching(Where().Eq("id", "1")); err == nil {
			t.Error("expected error for unknown criteria field")
		}
	})

	t.Run("get", func(t *testing.T) {
		g, err := repo.Get(home.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if g.Key() != ns+".home" {
			t.Errorf("Get returned %s", g.Key())
		}
		child, err := repo.Get(home.Children[1].ID)
		if err != nil {
			t.Fatalf("Get child: %v", err)
		}
		if !child.IsElement() {
			t.Error("child should be an element")
		}
		if _, err := repo.Get(-1); err == nil {
			t.Error("expected ErrNotFound")
		}
	})

	t.Run("update replaces areas and children", func(t *testing.T) {
		home.Texts = []models.TextArea{{Name: "tagline", Text: "Changed"}}
		home.Children = home.Children[:1]
		if err := repo.SaveAll([]*models.ContentGroup{home}); err != nil {
			t.Fatalf("SaveAll: %v", err)
		}
		g, err := repo.Get(home.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if a, _ := g.FindText("tagline"); a.Text != "Changed" {
			t.Errorf("tagline = %q", a.Text)
		}
		if len(g.Children) != 1 {
			t.Errorf("children = %d, want 1", len(g.Children))
		}
	})

	t.Run("remove", func(t *testing.T) {
		if err := repo.RemoveAll([]*models.ContentGroup{about, models.NewContentGroup(ns, "unsaved")}); err != nil {
			t.Fatalf("RemoveAll: %v", err)
		}
		got, err := repo.Matching(Where().Eq(FieldNamespace, ns))
		if err != nil {
			t.Fatalf("Matching: %v", err)
		}
		if len(got) != 1 || got[0].Name != "home" {
			t.Errorf("after remove got %d groups", len(got))
		}
	})
}
