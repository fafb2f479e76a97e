package feed

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myspares/catalog-platform/internal/models"
)

type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Collection identifies a watched table. Handlers are dispatched by this
// tag rather than by comparing raw channel names.
type Collection string

const (
	CollectionBrands     Collection = "brands"
	CollectionBikeModels Collection = "bike_models"
	CollectionCategories Collection = "categories"
	CollectionProducts   Collection = "products"
)

// WatchedCollections is the fixed set of catalog tables the listener
// subscribes to.
func WatchedCollections() []Collection {
	return []Collection{CollectionBrands, CollectionBikeModels, CollectionCategories, CollectionProducts}
}

// ChangeEvent is one notification from a collection's change feed. For
// updates the trigger sends the post-image row, so handlers always see
// current state.
type ChangeEvent struct {
	Collection    Collection      `json:"collection"`
	Operation     Operation       `json:"operation"`
	DocumentKey   uuid.UUID       `json:"document_key"`
	FullDocument  json.RawMessage `json:"full_document,omitempty"`
	UpdatedFields []string        `json:"updated_fields,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ParseEvent decodes a trigger payload into a ChangeEvent.
func ParseEvent(payload []byte) (*ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode change payload: %w", err)
	}

	switch event.Operation {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return nil, fmt.Errorf("unknown operation %q in change payload", event.Operation)
	}

	if event.DocumentKey == uuid.Nil {
		return nil, fmt.Errorf("change payload for %q has no document key", event.Collection)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	return &event, nil
}

// FieldChanged reports whether the update touched the named field, or any
// nested field under it (e.g. "offers" matches "offers.valid_to").
func (e *ChangeEvent) FieldChanged(name string) bool {
	for _, f := range e.UpdatedFields {
		if f == name || strings.HasPrefix(f, name+".") {
			return true
		}
	}

	return false
}

// Product decodes the event's full document as a product row.
func (e *ChangeEvent) Product() (*models.Product, error) {
	if len(e.FullDocument) == 0 {
		return nil, fmt.Errorf("change event for product %s carries no document", e.DocumentKey)
	}

	var product models.Product
	if err := json.Unmarshal(e.FullDocument, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product document: %w", err)
	}

	return &product, nil
}
