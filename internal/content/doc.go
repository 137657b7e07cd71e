// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package content defines the recommendable content model and the text
representation used for embedding.

# Content Model

Courses, blog articles and forum posts are stored with different schemas.
FromDocument reads any of them into a single Item:

	doc := content.Document{
	    "_id":    "65f0c1...",
	    "title":  "Intro to Go",
	    "tags":   []interface{}{"go", "backend"},
	    "images": map[string]interface{}{"cover_image": "https://..."},
	}
	item := content.FromDocument(doc).WithType(content.TypeCourse)

Items are values. Tagging an item with its content type returns a copy, so
records owned by a content store are never modified.

# Text Representation

BuildText produces the weighted text for an item. Titles and categories are
repeated so they dominate the embedding:

	title title description tags labels category category author difficulty

QueryText joins the topics of a recommendation request with single spaces.

# Sample Catalogue

SampleItems returns ten introductory courses. The lifecycle manager indexes
them when the content store returns no documents at all.
*/
package content
