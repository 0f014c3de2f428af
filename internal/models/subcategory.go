// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// SubCategory is a child of exactly one Category.
type SubCategory struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	Thumbnail     *string `json:"thumbnail"`
	CategoryID    int64   `json:"category_id"`
	CategoryTitle string  `json:"category_title"` // joined from categories
}

// SubCategoryPatch carries the fields of a partial update.
type SubCategoryPatch struct {
	Title      *string
	Slug       *string
	Thumbnail  *string
	CategoryID *int64
}

// Apply copies the non-nil fields of p onto s.
func (p SubCategoryPatch) Apply(s *SubCategory) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Slug != nil {
		s.Slug = *p.Slug
	}
	if p.Thumbnail != nil {
		s.Thumbnail = p.Thumbnail
	}
	if p.CategoryID != nil {
		s.CategoryID = *p.CategoryID
	}
}
