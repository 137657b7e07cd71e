// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package recommend

import (
	"strings"

	"github.com/tomtom215/synapse/internal/content"
)

// Defaults applied to recommendations when the item leaves a field empty.
const (
	DefaultTitle       = "Untitled Course"
	DefaultDescription = "No description available"
	DefaultDifficulty  = "Intermédiaire"
	DefaultAuthor      = "Expert Synapse"
	DefaultTopic       = "General"

	maxDescriptionRunes = 200
	placeholderImage    = "picsum.photos"
)

// Recommendation is one enriched search result as returned to clients.
type Recommendation struct {
	Title         string   `json:"title"`
	Desc          string   `json:"desc"`
	Image         string   `json:"image"`
	Score         float64  `json:"score"`
	Topic         string   `json:"topic"`
	ContentType   string   `json:"content_type"`
	ID            string   `json:"_id"`
	Tags          []string `json:"tags"`
	Difficulty    string   `json:"difficulty"`
	DurationHours *float64 `json:"duration_hours"`
	Author        string   `json:"author"`
	Views         int64    `json:"views"`
	Replies       int64    `json:"replies"`
	Labels        []string `json:"labels"`
}

// Topic images. The title rule scans them in this order.
var topicImages = []struct {
	topic string
	url   string
}{
	{"AI", "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=400"},
	{"Machine Learning", "https://images.unsplash.com/photo-1555949963-aa79dcee981c?w=400"},
	{"Web Development", "https://images.unsplash.com/photo-1498050108023-c5249f4df085?w=400"},
	{"Data Science", "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=400"},
	{"Cloud", "https://images.unsplash.com/photo-1451187580459-43490279c0fa?w=400"},
	{"Cybersecurity", "https://images.unsplash.com/photo-1550751827-4bd374c3f58b?w=400"},
}

// DefaultImage is used when no rule matches.
const DefaultImage = "https://images.unsplash.com/photo-1516321318423-f06f85e504b3?w=400"

// categoryTopics maps lower-cased catalogue categories to image topics.
// Mobile has no image and falls through to the next rule.
var categoryTopics = map[string]string{
	"développement web":         "Web Development",
	"design graphique":          "UX/UI",
	"cybersécurité":             "Cybersecurity",
	"intelligence artificielle": "AI",
	"data science":              "Data Science",
	"cloud":                     "Cloud",
	"mobile":                    "Mobile",
}

// tagTopics maps lower-cased tags to image topics.
var tagTopics = map[string]string{
	"deep-learning": "AI",
	"ml":            "AI",
	"ai":            "AI",
	"frontend":      "Web Development",
	"backend":       "Web Development",
	"web":           "Web Development",
	"cloud":         "Cloud",
	"aws":           "Cloud",
	"azure":         "Cloud",
	"security":      "Cybersecurity",
	"cybersecurity": "Cybersecurity",
	"data":          "Data Science",
	"analytics":     "Data Science",
}

func topicImage(topic string) (string, bool) {
	for _, ti := range topicImages {
		if ti.topic == topic {
			return ti.url, true
		}
	}
	return "", false
}

// rule resolves one field from an item or reports that it does not apply.
type rule func(it *content.Item) (string, bool)

// resolve returns the first rule result, or fallback.
func resolve(it *content.Item, rules []rule, fallback string) string {
	for _, r := range rules {
		if v, ok := r(it); ok {
			return v
		}
	}
	return fallback
}

var imageRules = []rule{
	coverImage,
	flatImage,
	categoryImage,
	tagImage,
	titleImage,
}

var topicRules = []rule{
	func(it *content.Item) (string, bool) { return it.Category, it.Category != "" },
	func(it *content.Item) (string, bool) { return first(it.Tags) },
	func(it *content.Item) (string, bool) { return first(it.Labels) },
}

func coverImage(it *content.Item) (string, bool) {
	if it.CoverImage == "" || strings.Contains(it.CoverImage, placeholderImage) {
		return "", false
	}
	return it.CoverImage, true
}

func flatImage(it *content.Item) (string, bool) {
	return it.Image, it.Image != ""
}

func categoryImage(it *content.Item) (string, bool) {
	topic, ok := categoryTopics[strings.ToLower(it.Category)]
	if !ok {
		return "", false
	}
	return topicImage(topic)
}

func tagImage(it *content.Item) (string, bool) {
	for _, tag := range it.Tags {
		if topic, ok := tagTopics[strings.ToLower(tag)]; ok {
			return topicImage(topic)
		}
	}
	return "", false
}

func titleImage(it *content.Item) (string, bool) {
	title := strings.ToLower(it.Title)
	for _, ti := range topicImages {
		if strings.Contains(title, strings.ToLower(ti.topic)) {
			return ti.url, true
		}
	}
	return "", false
}

func first(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ResolveImage picks the image for an item.
func ResolveImage(it *content.Item) string {
	return resolve(it, imageRules, DefaultImage)
}

// ResolveTopic picks the primary topic for an item.
func ResolveTopic(it *content.Item) string {
	return resolve(it, topicRules, DefaultTopic)
}

// TruncateDescription shortens s to at most 200 runes, ending in "..."
// when it was cut.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionRunes {
		return s
	}
	return string(runes[:maxDescriptionRunes-3]) + "..."
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// Enrich turns a search result into a Recommendation.
func Enrich(r *Result) Recommendation {
	it := &r.Item

	desc := it.Description
	if desc == "" {
		desc = it.ShortDescription
	}

	return Recommendation{
		Title:         orDefault(it.Title, DefaultTitle),
		Desc:          TruncateDescription(orDefault(desc, DefaultDescription)),
		Image:         ResolveImage(it),
		Score:         r.Score,
		Topic:         ResolveTopic(it),
		ContentType:   orDefault(string(it.ContentType), string(content.DefaultType)),
		ID:            it.ID,
		Tags:          nonNil(it.Tags),
		Difficulty:    orDefault(it.Difficulty, DefaultDifficulty),
		DurationHours: it.DurationHours,
		Author:        orDefault(orDefault(it.Author, it.Creator), DefaultAuthor),
		Views:         it.Views,
		Replies:       it.Replies,
		Labels:        nonNil(it.Labels),
	}
}
