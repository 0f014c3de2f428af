// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"blogdesk/internal/models"
)

func TestCategoryStoreCRUD(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List (empty): %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", items)
	}

	c := &models.Category{Title: "Tech", Slug: "tech"}
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID != 1 {
		t.Errorf("first ID = %d, want 1", c.ID)
	}

	got, err := s.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil || got.Title != "Tech" || got.Slug != "tech" || got.Thumbnail != nil {
		t.Fatalf("unexpected category: %+v", got)
	}

	thumb := "http://localhost:5000/static/uploads/tech.png"
	updated, prev, err := s.Update(ctx, c.ID, models.CategoryPatch{Title: strPtr("Technology"), Thumbnail: &thumb})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if prev != nil {
		t.Errorf("previous thumbnail = %v, want nil", *prev)
	}
	if updated.Title != "Technology" || updated.Slug != "tech" || *updated.Thumbnail != thumb {
		t.Errorf("unexpected updated row: %+v", updated)
	}

	_, prev, err = s.Update(ctx, c.ID, models.CategoryPatch{Thumbnail: strPtr("http://x/new.png")})
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if prev == nil || *prev != thumb {
		t.Errorf("previous thumbnail = %v, want %q", prev, thumb)
	}

	deleted, err := s.Delete(ctx, c.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted == nil || deleted.ID != c.ID {
		t.Fatalf("Delete returned %+v", deleted)
	}

	got, err = s.FindByID(ctx, c.ID)
	if err != nil || got != nil {
		t.Errorf("FindByID after delete: %+v, %v", got, err)
	}
}

func TestCategoryStoreMissing(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	updated, _, err := s.Update(ctx, 42, models.CategoryPatch{Title: strPtr("x")})
	if err != nil || updated != nil {
		t.Errorf("Update missing: %+v, %v", updated, err)
	}
	deleted, err := s.Delete(ctx, 42)
	if err != nil || deleted != nil {
		t.Errorf("Delete missing: %+v, %v", deleted, err)
	}
}

func TestCategoryStoreDeleteInUse(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	c := mustCategory(t, db, "News", "news")
	if err := NewArticleStore(db).Create(ctx, &models.Article{Title: "A", Slug: "a", Body: "b", CategoryID: c.ID}); err != nil {
		t.Fatalf("create article: %v", err)
	}

	_, err := s.Delete(ctx, c.ID)
	if !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("Delete: got %v, want ErrCategoryInUse", err)
	}
	if got, _ := s.FindByID(ctx, c.ID); got == nil {
		t.Error("category was deleted despite having children")
	}
}

func TestCategoryStoreIDsNotReused(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	a := mustCategory(t, db, "A", "a")
	if _, err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	b := mustCategory(t, db, "B", "b")
	if b.ID <= a.ID {
		t.Errorf("ID %d reused after delete of %d", b.ID, a.ID)
	}
}
