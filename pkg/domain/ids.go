package domain

import (
	"github.com/google/uuid"

	dErrors "marksman/pkg/domain-errors"
)

// Typed UUID identifiers. Distinct types keep person, document, queue-item,
// and user identifiers from being swapped at call sites; the compiler enforces
// what code review would otherwise have to catch.
type (
	PersonID    uuid.UUID
	DocumentID  uuid.UUID
	QueueItemID uuid.UUID
	SessionID   uuid.UUID
	UserID      uuid.UUID
)

func (id PersonID) String() string    { return uuid.UUID(id).String() }
func (id DocumentID) String() string  { return uuid.UUID(id).String() }
func (id QueueItemID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string   { return uuid.UUID(id).String() }
func (id UserID) String() string      { return uuid.UUID(id).String() }

func (id PersonID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id QueueItemID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }

// NewQueueItemID mints an identifier for a freshly enqueued routing item.
func NewQueueItemID() QueueItemID { return QueueItemID(uuid.New()) }

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Validation happens at trust boundaries so domain code can
// assume well-formed identifiers.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

func ParsePersonID(raw string) (PersonID, error) {
	parsed, err := parseUUID(raw, "person")
	return PersonID(parsed), err
}

func ParseDocumentID(raw string) (DocumentID, error) {
	parsed, err := parseUUID(raw, "document")
	return DocumentID(parsed), err
}

func ParseQueueItemID(raw string) (QueueItemID, error) {
	parsed, err := parseUUID(raw, "queue item")
	return QueueItemID(parsed), err
}

func ParseSessionID(raw string) (SessionID, error) {
	parsed, err := parseUUID(raw, "session")
	return SessionID(parsed), err
}

func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	return UserID(parsed), err
}
