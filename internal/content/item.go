// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package content

// Type identifies the kind of recommendable content.
type Type string

const (
	TypeCourse Type = "course"
	TypeBlog   Type = "blog"
	TypeForum  Type = "forum"
)

// DefaultType is assigned to items that arrive without a content type.
const DefaultType = TypeCourse

// Valid reports whether t is one of the known content types.
func (t Type) Valid() bool {
	switch t {
	case TypeCourse, TypeBlog, TypeForum:
		return true
	default:
		return false
	}
}

// Item is one recommendable unit as delivered by a content store.
//
// Only ID, Title and ContentType are always meaningful. Every other field
// is optional and the zero value means "absent". Items are never mutated
// once they have been handed to the index.
type Item struct {
	ID               string   `json:"_id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	ShortDescription string   `json:"desc,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Labels           []string `json:"labels,omitempty"`
	Category         string   `json:"category,omitempty"`
	Author           string   `json:"author,omitempty"`
	Creator          string   `json:"creator,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	ContentType      Type     `json:"content_type"`

	// Passthrough fields, copied into recommendations unchanged.
	CoverImage    string   `json:"cover_image,omitempty"`
	Image         string   `json:"image,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty"`
	Views         int64    `json:"views,omitempty"`
	Replies       int64    `json:"replies,omitempty"`
}

// WithType returns a copy of the item tagged with t.
func (it Item) WithType(t Type) Item { //nolint:gocritic // hugeParam: value semantics keep source items immutable
	it.ContentType = t
	return it
}

// EnsureType returns a copy with ContentType defaulted when it is unset or unknown.
func (it Item) EnsureType() Item { //nolint:gocritic // hugeParam: value semantics keep source items immutable
	if !it.ContentType.Valid() {
		it.ContentType = DefaultType
	}
	return it
}

// TagAll tags every item in items with t and returns a new slice.
func TagAll(items []Item, t Type) []Item {
	out := make([]Item, len(items))
	for i := range items {
		out[i] = items[i].WithType(t)
	}
	return out
}
