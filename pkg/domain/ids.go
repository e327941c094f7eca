// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "proofwall/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a GrantID where a ContentID is expected.
type (
	ContentID uuid.UUID
	GrantID   uuid.UUID
)

// NewContentID returns a fresh random content identifier.
func NewContentID() ContentID { return ContentID(uuid.New()) }

// NewGrantID returns a fresh random grant identifier.
func NewGrantID() GrantID { return GrantID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseContentID(s string) (ContentID, error) {
	id, err := parseUUID(s, "content ID")
	return ContentID(id), err
}

func ParseGrantID(s string) (GrantID, error) {
	id, err := parseUUID(s, "grant ID")
	return GrantID(id), err
}

func (id ContentID) String() string { return uuid.UUID(id).String() }
func (id GrantID) String() string   { return uuid.UUID(id).String() }

func (id ContentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id GrantID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets IDs appear as plain strings in JSON payloads and map keys.
func (id ContentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id GrantID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *ContentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *GrantID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here so store lookups return a proper not-found
// instead of a format error; use IsNil() for business validation.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
