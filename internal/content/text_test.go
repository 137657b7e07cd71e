// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package content

import "testing"

func TestBuildText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "all fields",
			item: Item{
				Title:       "Go Basics",
				Description: "Learn Go",
				Tags:        []string{"go", "backend"},
				Labels:      []string{"help"},
				Category:    "Programming",
				Author:      "Ada",
				Difficulty:  "Beginner",
			},
			want: "Go Basics Go Basics Learn Go go backend help Programming Programming Ada Beginner",
		},
		{
			name: "short description used when description missing",
			item: Item{Title: "T", ShortDescription: "short"},
			want: "T T short",
		},
		{
			name: "description wins over short description",
			item: Item{Title: "T", Description: "long", ShortDescription: "short"},
			want: "T T long",
		},
		{
			name: "creator used when author missing",
			item: Item{Title: "T", Creator: "Bob"},
			want: "T T Bob",
		},
		{
			name: "author wins over creator",
			item: Item{Title: "T", Author: "Ada", Creator: "Bob"},
			want: "T T Ada",
		},
		{
			name: "missing fields contribute nothing",
			item: Item{Category: "AI"},
			want: "AI AI",
		},
		{
			name: "empty item",
			item: Item{},
			want: "",
		},
		{
			name: "empty tag list ignored",
			item: Item{Title: "T", Tags: []string{}, Labels: nil, Difficulty: "Hard"},
			want: "T T Hard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := BuildText(&tt.item)
			if got != tt.want {
				t.Errorf("BuildText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildTextDeterministic(t *testing.T) {
	t.Parallel()

	item := Item{Title: "Intro to AI", Category: "AI", Tags: []string{"ml", "ai"}}
	first := BuildText(&item)
	for i := 0; i < 10; i++ {
		if got := BuildText(&item); got != first {
			t.Fatalf("BuildText() not stable: %q vs %q", got, first)
		}
	}
}

func TestBuildTexts(t *testing.T) {
	t.Parallel()

	items := []Item{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	texts := BuildTexts(items)
	if len(texts) != 3 {
		t.Fatalf("len(texts) = %d, want 3", len(texts))
	}
	for i, want := range []string{"a a", "b b", "c c"} {
		if texts[i] != want {
			t.Errorf("texts[%d] = %q, want %q", i, texts[i], want)
		}
	}
}

func TestQueryText(t *testing.T) {
	t.Parallel()

	if got := QueryText([]string{"AI", "Cloud"}); got != "AI Cloud" {
		t.Errorf("QueryText() = %q, want %q", got, "AI Cloud")
	}
	if got := QueryText([]string{"solo"}); got != "solo" {
		t.Errorf("QueryText() = %q, want %q", got, "solo")
	}
}

func TestSampleItems(t *testing.T) {
	t.Parallel()

	items := SampleItems()
	if len(items) != 10 {
		t.Fatalf("len(SampleItems()) = %d, want 10", len(items))
	}
	for i, it := range items {
		if it.ContentType != TypeCourse {
			t.Errorf("items[%d].ContentType = %q, want %q", i, it.ContentType, TypeCourse)
		}
		if it.Title == "" {
			t.Errorf("items[%d] has empty title", i)
		}
	}

	// Each call returns an independent copy.
	items[0].Tags[0] = "mutated"
	if SampleItems()[0].Tags[0] == "mutated" {
		t.Error("SampleItems() shares backing arrays between calls")
	}
}
