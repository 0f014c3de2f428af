// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// PreviewLength is the number of characters kept by Article.Preview.
const PreviewLength = 200

// Article is a piece of long-form content filed under a Category.
type Article struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	Body          string  `json:"body"`
	Thumbnail     *string `json:"thumbnail"`
	CategoryID    int64   `json:"category_id"`
	CategoryTitle string  `json:"category_title"`
}

// Preview returns a copy of a with Body cut to the first n characters.
// "..." is appended only when something was cut.
func (a Article) Preview(n int) Article {
	runes := []rune(a.Body)
	if len(runes) > n {
		a.Body = string(runes[:n]) + "..."
	}
	return a
}

// ArticlePatch carries the fields of a partial update.
type ArticlePatch struct {
	Title      *string
	Slug       *string
	Body       *string
	Thumbnail  *string
	CategoryID *int64
}

// Apply copies the non-nil fields of p onto a.
func (p ArticlePatch) Apply(a *Article) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Slug != nil {
		a.Slug = *p.Slug
	}
	if p.Body != nil {
		a.Body = *p.Body
	}
	if p.Thumbnail != nil {
		a.Thumbnail = p.Thumbnail
	}
	if p.CategoryID != nil {
		a.CategoryID = *p.CategoryID
	}
}

// ArticlePage is one page of a paginated article listing.
type ArticlePage struct {
	Articles    []Article `json:"articles"`
	TotalPages  int       `json:"total_pages"`
	CurrentPage int       `json:"current_page"`
}

// Stats holds the entity counts shown on the admin dashboard.
type Stats struct {
	Categories    int `json:"categories"`
	SubCategories int `json:"subcategories"`
	Articles      int `json:"articles"`
}
