// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"contentcms/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so the same store code
// runs inside and outside a transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ContentGroupStore persists content groups in PostgreSQL. A group is one
// row in content_groups plus one row per area in the area tables; array
// elements are content_groups rows pointing at their parent.
type ContentGroupStore struct {
	db *sql.DB
	q  querier
}

// NewContentGroupStore creates a new ContentGroupStore with the given database connection.
func NewContentGroupStore(db *sql.DB) *ContentGroupStore {
	return &ContentGroupStore{db: db, q: db}
}

const groupColumns = `id, namespace, name, order_index, updated_at`

// Matching returns the root groups satisfying c with their areas and
// children loaded.
func (s *ContentGroupStore) Matching(c Criteria) ([]*models.ContentGroup, error) {
	where := []string{"parent_id IS NULL"}
	args := make([]any, 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		if !validField(cond.Field) {
			return nil, fmt.Errorf("match content groups: unknown field %q", cond.Field)
		}
		op := "="
		if cond.Op == OpNotEq {
			op = "<>"
		}
		args = append(args, cond.Value)
		where = append(where, fmt.Sprintf("%s %s $%d", cond.Field, op, len(args)))
	}

	rows, err := s.q.Query(`
		SELECT `+groupColumns+`
		FROM content_groups
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY order_index, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("match content groups: %w", err)
	}
	groups, err := scanGroups(rows, nil)
	if err != nil {
		return nil, err
	}
	if err := s.loadTree(groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Get retrieves a group by ID.
func (s *ContentGroupStore) Get(id int64) (*models.ContentGroup, error) {
	rows, err := s.q.Query(`SELECT `+groupColumns+` FROM content_groups WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get content group: %w", err)
	}
	groups, err := scanGroups(rows, nil)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("get content group %d: %w", id, ErrNotFound)
	}
	if err := s.loadTree(groups); err != nil {
		return nil, err
	}
	return groups[0], nil
}

// scanGroups reads group rows. When parents is non-nil every row carries
// a trailing parent_id column and is appended to its parent's children.
func scanGroups(rows *sql.Rows, parents map[int64]*models.ContentGroup) ([]*models.ContentGroup, error) {
	defer rows.Close()

	var groups []*models.ContentGroup
	for rows.Next() {
		g := &models.ContentGroup{}
		var updatedAt sql.NullTime
		dest := []any{&g.ID, &g.Namespace, &g.Name, &g.OrderIndex, &updatedAt}
		var parentID int64
		if parents != nil {
			dest = append(dest, &parentID)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan content group: %w", err)
		}
		if updatedAt.Valid {
			g.UpdatedAt = updatedAt.Time
		}
		if parent, ok := parents[parentID]; ok {
			parent.Children = append(parent.Children, g)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// loadTree fills in the areas of the groups and loads their children
// level by level until a level has none.
func (s *ContentGroupStore) loadTree(groups []*models.ContentGroup) error {
	for len(groups) > 0 {
		byID := make(map[int64]*models.ContentGroup, len(groups))
		ids := make([]int64, 0, len(groups))
		for _, g := range groups {
			byID[g.ID] = g
			ids = append(ids, g.ID)
		}
		if err := s.loadAreas(ids, byID); err != nil {
			return err
		}

		rows, err := s.q.Query(`
			SELECT `+groupColumns+`, parent_id
			FROM content_groups
			WHERE parent_id = ANY($1)
			ORDER BY parent_id, order_index, id
		`, ids)
		if err != nil {
			return fmt.Errorf("load content group children: %w", err)
		}
		groups, err = scanGroups(rows, byID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ContentGroupStore) loadAreas(ids []int64, byID map[int64]*models.ContentGroup) error {
	rows, err := s.q.Query(`
		SELECT content_group_id, name, html FROM content_group_html_areas
		WHERE content_group_id = ANY($1) ORDER BY content_group_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("load html areas: %w", err)
	}
	err = eachRow(rows, func() error {
		var id int64
		var a models.HTMLArea
		if err := rows.Scan(&id, &a.Name, &a.HTML); err != nil {
			return err
		}
		byID[id].HTML = append(byID[id].HTML, a)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan html area: %w", err)
	}

	rows, err = s.q.Query(`
		SELECT content_group_id, name, image_path, client_file_name, alt_text FROM content_group_image_areas
		WHERE content_group_id = ANY($1) ORDER BY content_group_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("load image areas: %w", err)
	}
	err = eachRow(rows, func() error {
		var id int64
		var name, path, client string
		var alt sql.NullString
		if err := rows.Scan(&id, &name, &path, &client, &alt); err != nil {
			return err
		}
		a := models.ImageArea{Name: name, Image: models.NewImage(path, client)}
		if alt.Valid {
			a.AltText = models.StringPtr(alt.String)
		}
		byID[id].Images = append(byID[id].Images, a)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan image area: %w", err)
	}

	rows, err = s.q.Query(`
		SELECT content_group_id, name, text FROM content_group_text_areas
		WHERE content_group_id = ANY($1) ORDER BY content_group_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("load text areas: %w", err)
	}
	err = eachRow(rows, func() error {
		var id int64
		var a models.TextArea
		if err := rows.Scan(&id, &a.Name, &a.Text); err != nil {
			return err
		}
		byID[id].Texts = append(byID[id].Texts, a)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan text area: %w", err)
	}

	rows, err = s.q.Query(`
		SELECT content_group_id, name, value FROM content_group_metadata
		WHERE content_group_id = ANY($1) ORDER BY content_group_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("load metadata: %w", err)
	}
	err = eachRow(rows, func() error {
		var id int64
		var m models.Metadata
		if err := rows.Scan(&id, &m.Name, &m.Value); err != nil {
			return err
		}
		byID[id].Metadata = append(byID[id].Metadata, m)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan metadata: %w", err)
	}
	return nil
}

// eachRow calls fn for every row and closes rows.
func eachRow(rows *sql.Rows, fn func() error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SaveAll persists the groups. It should run inside InTransaction when
// several groups must be saved atomically.
func (s *ContentGroupStore) SaveAll(groups []*models.ContentGroup) error {
	for _, g := range groups {
		if err := s.save(g, 0); err != nil {
			return err
		}
	}
	return nil
}

func (s *ContentGroupStore) save(g *models.ContentGroup, parentID int64) error {
	parent := sql.NullInt64{Int64: parentID, Valid: parentID != 0}
	updatedAt := sql.NullTime{Time: g.UpdatedAt, Valid: !g.UpdatedAt.IsZero()}

	if g.ID == 0 {
		err := s.q.QueryRow(`
			INSERT INTO content_groups (parent_id, namespace, name, order_index, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, parent, g.Namespace, g.Name, g.OrderIndex, updatedAt).Scan(&g.ID)
		if err != nil {
			return fmt.Errorf("insert content group %s: %w", g.Key(), err)
		}
	} else {
		res, err := s.q.Exec(`
			UPDATE content_groups
			SET namespace = $1, name = $2, order_index = $3, updated_at = $4
			WHERE id = $5
		`, g.Namespace, g.Name, g.OrderIndex, updatedAt, g.ID)
		if err != nil {
			return fmt.Errorf("update content group %s: %w", g.Key(), err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("update content group %d: %w", g.ID, ErrNotFound)
		}
		if err := s.deleteContents(g.ID); err != nil {
			return err
		}
	}

	if err := s.insertAreas(g); err != nil {
		return err
	}

	for i, c := range g.Children {
		c.ID = 0
		c.OrderIndex = i + 1
		if err := s.save(c, g.ID); err != nil {
			return err
		}
	}
	return nil
}

// deleteContents drops the areas and children of a group before they are
// written again. Children cascade to their own areas.
func (s *ContentGroupStore) deleteContents(id int64) error {
	for _, table := range []string{
		"content_group_html_areas",
		"content_group_image_areas",
		"content_group_text_areas",
		"content_group_metadata",
	} {
		if _, err := s.q.Exec(`DELETE FROM `+table+` WHERE content_group_id = $1`, id); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if _, err := s.q.Exec(`DELETE FROM content_groups WHERE parent_id = $1`, id); err != nil {
		return fmt.Errorf("clear content group children: %w", err)
	}
	return nil
}

func (s *ContentGroupStore) insertAreas(g *models.ContentGroup) error {
	for i, a := range g.HTML {
		if _, err := s.q.Exec(`
			INSERT INTO content_group_html_areas (content_group_id, name, position, html)
			VALUES ($1, $2, $3, $4)
		`, g.ID, a.Name, i, a.HTML); err != nil {
			return fmt.Errorf("insert html area %s: %w", a.Name, err)
		}
	}
	for i, a := range g.Images {
		alt := sql.NullString{}
		if a.AltText != nil {
			alt = sql.NullString{String: *a.AltText, Valid: true}
		}
		if _, err := s.q.Exec(`
			INSERT INTO content_group_image_areas (content_group_id, name, position, image_path, client_file_name, alt_text)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, g.ID, a.Name, i, a.Image.Path, a.Image.ClientFileName, alt); err != nil {
			return fmt.Errorf("insert image area %s: %w", a.Name, err)
		}
	}
	for i, a := range g.Texts {
		if _, err := s.q.Exec(`
			INSERT INTO content_group_text_areas (content_group_id, name, position, text)
			VALUES ($1, $2, $3, $4)
		`, g.ID, a.Name, i, a.Text); err != nil {
			return fmt.Errorf("insert text area %s: %w", a.Name, err)
		}
	}
	for i, m := range g.Metadata {
		if _, err := s.q.Exec(`
			INSERT INTO content_group_metadata (content_group_id, name, position, value)
			VALUES ($1, $2, $3, $4)
		`, g.ID, m.Name, i, m.Value); err != nil {
			return fmt.Errorf("insert metadata %s: %w", m.Name, err)
		}
	}
	return nil
}

// RemoveAll deletes the groups. Areas and children cascade.
func (s *ContentGroupStore) RemoveAll(groups []*models.ContentGroup) error {
	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		if g.ID != 0 {
			ids = append(ids, g.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.q.Exec(`DELETE FROM content_groups WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("remove content groups: %w", err)
	}
	return nil
}

// InTransaction runs fn with a store bound to a new transaction, committing
// when fn succeeds and rolling back otherwise. A store that is already
// bound to a transaction runs fn directly.
func (s *ContentGroupStore) InTransaction(fn func(Repository) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&ContentGroupStore{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
