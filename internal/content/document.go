// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package content

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Document is a schemaless record as read from a document store or an
// incoming event payload.
type Document = map[string]interface{}

// rawDocument is the decode target for a Document. _id stays raw because
// ObjectIDs are byte arrays that weak decoding would turn into garbage, and
// the counters are floats so NaN and Inf can be rejected before truncation.
type rawDocument struct {
	ID          interface{} `mapstructure:"_id"`
	Title       string      `mapstructure:"title"`
	Description string      `mapstructure:"description"`
	Desc        string      `mapstructure:"desc"`
	Tags        []string    `mapstructure:"tags"`
	Labels      []string    `mapstructure:"labels"`
	Category    string      `mapstructure:"category"`
	Author      string      `mapstructure:"author"`
	Creator     string      `mapstructure:"creator"`
	Difficulty  string      `mapstructure:"difficulty"`
	ContentType string      `mapstructure:"content_type"`
	Image       string      `mapstructure:"image"`
	Images      struct {
		CoverImage string `mapstructure:"cover_image"`
	} `mapstructure:"images"`
	DurationHours *float64 `mapstructure:"duration_hours"`
	Views         float64  `mapstructure:"views"`
	Replies       float64  `mapstructure:"replies"`
}

// FromDocument normalizes a heterogeneous document into an Item.
//
// Decoding is weakly typed: a single tag or label string becomes a
// one-element list, numbers in text fields become strings and numeric
// strings fill the counters. Nested image references are read from
// images.cover_image. Unknown keys are ignored and fields of an unusable
// shape are left empty.
func FromDocument(doc Document) Item {
	it, _ := decodeDocument(doc)
	return it
}

// decodeDocument is FromDocument that also reports which fields could not
// be decoded. The returned Item holds every field that could.
func decodeDocument(doc Document) (Item, error) {
	var raw rawDocument
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return Item{}, fmt.Errorf("document decoder: %w", err)
	}
	decodeErr := dec.Decode(doc)

	return Item{
		ID:               idString(raw.ID),
		Title:            raw.Title,
		Description:      raw.Description,
		ShortDescription: raw.Desc,
		Tags:             cleanList(raw.Tags),
		Labels:           cleanList(raw.Labels),
		Category:         raw.Category,
		Author:           raw.Author,
		Creator:          raw.Creator,
		Difficulty:       raw.Difficulty,
		ContentType:      Type(raw.ContentType),
		CoverImage:       raw.Images.CoverImage,
		Image:            raw.Image,
		DurationHours:    raw.DurationHours,
		Views:            toInt(raw.Views),
		Replies:          toInt(raw.Replies),
	}, decodeErr
}

// FromDocuments normalizes every document and tags it with t.
func FromDocuments(docs []Document, t Type) []Item {
	items := make([]Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, FromDocument(d).WithType(t))
	}
	return items
}

// idString renders string IDs as-is, ObjectIDs as hex and numbers without
// a trailing fraction.
func idString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case interface{ Hex() string }:
		return id.Hex()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func cleanList(l []string) []string {
	out := make([]string, 0, len(l))
	for _, s := range l {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toInt(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}
