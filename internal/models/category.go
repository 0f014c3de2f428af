// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is the top level of the content hierarchy. SubCategories and
// Articles reference it by ID.
type Category struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	Thumbnail *string `json:"thumbnail"` // public URL, null when absent
}

// CategoryPatch carries the fields of a partial update. Nil fields are
// left unchanged.
type CategoryPatch struct {
	Title     *string
	Slug      *string
	Thumbnail *string
}

// Apply copies the non-nil fields of p onto c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Thumbnail != nil {
		c.Thumbnail = p.Thumbnail
	}
}
