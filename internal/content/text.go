// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package content

import "strings"

// BuildText converts an item into the weighted text that gets embedded.
//
// Field order is fixed: title (twice), description or desc, tags, labels,
// category (twice), author or creator, difficulty. Repetition raises the
// weight of a field. Absent fields contribute nothing, so identical items
// always produce identical text.
func BuildText(it *Item) string {
	parts := make([]string, 0, 10)

	if it.Title != "" {
		parts = append(parts, it.Title, it.Title)
	}

	switch {
	case it.Description != "":
		parts = append(parts, it.Description)
	case it.ShortDescription != "":
		parts = append(parts, it.ShortDescription)
	}

	if len(it.Tags) > 0 {
		parts = append(parts, strings.Join(it.Tags, " "))
	}
	if len(it.Labels) > 0 {
		parts = append(parts, strings.Join(it.Labels, " "))
	}

	if it.Category != "" {
		parts = append(parts, it.Category, it.Category)
	}

	switch {
	case it.Author != "":
		parts = append(parts, it.Author)
	case it.Creator != "":
		parts = append(parts, it.Creator)
	}

	if it.Difficulty != "" {
		parts = append(parts, it.Difficulty)
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

// BuildTexts applies BuildText to every item, preserving order.
func BuildTexts(items []Item) []string {
	texts := make([]string, len(items))
	for i := range items {
		texts[i] = BuildText(&items[i])
	}
	return texts
}

// QueryText joins topics into the single string embedded for a search.
func QueryText(topics []string) string {
	return strings.Join(topics, " ")
}
