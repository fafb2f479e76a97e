package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditRecord is an immutable log entry for one change-feed notification.
// Records are only ever appended; the janitor removes them after the
// retention window.
type AuditRecord struct {
	ID            uuid.UUID       `json:"id"`
	Collection    string          `json:"collection"`
	Operation     string          `json:"operation"`
	DocumentKey   uuid.UUID       `json:"document_key"`
	FullDocument  json.RawMessage `json:"full_document,omitempty"`
	UpdatedFields []string        `json:"updated_fields,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// AuditQuery filters the audit stream. Zero values mean "no filter".
type AuditQuery struct {
	Collection string    `json:"collection,omitempty"`
	Operation  string    `json:"operation,omitempty" validate:"omitempty,oneof=insert update delete"`
	From       time.Time `json:"from,omitempty"`
	To         time.Time `json:"to,omitempty"`
	Match      string    `json:"match,omitempty"`
	Page       int       `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize   int       `json:"page_size,omitempty" validate:"omitempty,min=1,max=100"`
}
