package store

import (
	"errors"
	"testing"

	"contentcms/internal/models"
)

func TestMemoryStoreContract(t *testing.T) {
	repositoryContract(t, NewMemoryStore(), "pages")
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()
	g := fixtureGroup("pages", "home")
	if err := s.SaveAll([]*models.ContentGroup{g}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	g.Texts[0].Text = "mutated after save"
	got, _ := s.Get(g.ID)
	if got.Texts[0].Text != "Hello" {
		t.Error("store shares state with the saved group")
	}

	got.Texts[0].Text = "mutated after load"
	again, _ := s.Get(g.ID)
	if again.Texts[0].Text != "Hello" {
		t.Error("store shares state with loaded groups")
	}
}

func TestMemoryStoreTransaction(t *testing.T) {
	s := NewMemoryStore()
	kept := fixtureGroup("pages", "kept")
	if err := s.SaveAll([]*models.ContentGroup{kept}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	boom := errors.New("boom")
	err := s.InTransaction(func(r Repository) error {
		if err := r.RemoveAll([]*models.ContentGroup{kept}); err != nil {
			return err
		}
		if err := r.SaveAll([]*models.ContentGroup{fixtureGroup("pages", "new")}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, _ := s.Matching(Where().Eq(FieldNamespace, "pages"))
	if len(got) != 1 || got[0].Name != "kept" {
		t.Errorf("rollback failed, store holds %d groups", len(got))
	}
	if saved, removed := s.Writes(); saved != 1 || removed != 0 {
		t.Errorf("Writes() = %d, %d after rollback, want 1, 0", saved, removed)
	}

	err = s.InTransaction(func(r Repository) error {
		return r.RemoveAll([]*models.ContentGroup{kept})
	})
	if err != nil {
		t.Fatalf("InTransaction: %v", err)
	}
	if got, _ := s.Matching(Where()); len(got) != 0 {
		t.Errorf("commit failed, store holds %d groups", len(got))
	}
}

func TestGetNotFound(t *testing.T) {
	_, err := NewMemoryStore().Get(42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCriteria(t *testing.T) {
	g := models.NewContentGroup("pages", "home")
	tests := []struct {
		name string
		c    Criteria
		want bool
		str  string
	}{
		{"empty", Where(), true, ""},
		{"namespace eq", Where().Eq(FieldNamespace, "pages"), true, "namespace=pages"},
		{"namespace not eq", Where().NotEq(FieldNamespace, models.ElementNamespace), true, "namespace!=__element__"},
		{"conjunction", Where().Eq(FieldNamespace, "pages").Eq(FieldName, "about"), false, "namespace=pages&name=about"},
		{"unknown field", Where().Eq("id", "1"), false, "id=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Matches(g); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
			if got := tt.c.String(); got != tt.str {
				t.Errorf("String = %q, want %q", got, tt.str)
			}
		})
	}

	base := Where().Eq(FieldNamespace, "pages")
	a := base.Eq(FieldName, "a")
	b := base.Eq(FieldName, "b")
	if a.String() == b.String() {
		t.Error("chained criteria share their condition slice")
	}
}
