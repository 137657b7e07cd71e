// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package events

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/synapse/internal/content"
)

// ErrInvalidEvent marks payloads that can never be processed. They are
// acknowledged and dropped instead of retried.
var ErrInvalidEvent = errors.New("invalid content event")

// Metadata keys set on published messages.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataCollection    = "collection"
)

// ContentUpserted announces new or changed documents in a collection.
type ContentUpserted struct {
	Collection string             `json:"collection"`
	Items      []content.Document `json:"items"`
}

// RefreshRequested asks for a full index rebuild.
type RefreshRequested struct {
	Reason string `json:"reason,omitempty"`
}

func newMessage(payload interface{}) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), data), nil
}

// decodeUpserted parses a content.upserted payload.
func decodeUpserted(data []byte) (*ContentUpserted, error) {
	var ev ContentUpserted
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if ev.Collection == "" {
		return nil, fmt.Errorf("%w: collection is required", ErrInvalidEvent)
	}
	return &ev, nil
}

// decodeRefresh parses a content.refresh payload. An empty body is a valid
// request.
func decodeRefresh(data []byte) (*RefreshRequested, error) {
	var ev RefreshRequested
	if len(data) == 0 {
		return &ev, nil
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return &ev, nil
}
