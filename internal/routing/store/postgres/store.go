// Package postgres persists routing-queue items in PostgreSQL. Claim
// acquisition is a single conditional UPDATE so two claimants can never both
// observe "unclaimed".
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marksman/internal/routing"
	id "marksman/pkg/domain"
	"marksman/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS routing_items (
	id               UUID PRIMARY KEY,
	document_id      UUID NOT NULL,
	form_type        TEXT NOT NULL,
	person_id        UUID,
	status           TEXT NOT NULL,
	required_roles   TEXT[] NOT NULL,
	completed_roles  TEXT[] NOT NULL DEFAULT '{}',
	current_role     TEXT NOT NULL DEFAULT '',
	claimed_by       UUID,
	claimed_at       TIMESTAMPTZ,
	last_action_note TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS routing_items_inbox_idx
	ON routing_items (current_role, status, form_type);
`

const itemColumns = `id, document_id, form_type, person_id, status,
	required_roles, completed_roles, current_role,
	claimed_by, claimed_at, last_action_note, created_at, updated_at`

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the routing schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate routing schema: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, item *routing.Item) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO routing_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(item.ID), uuid.UUID(item.Document), item.FormType, personID(item.PersonID),
		string(item.Status), rolesToStrings(item.RequiredRoles), rolesToStrings(item.CompletedRoles),
		string(item.CurrentRole), claimantID(item.ClaimedBy), item.ClaimedAt,
		item.LastActionNote, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert routing item: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, itemID id.QueueItemID) (*routing.Item, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM routing_items WHERE id = $1`, uuid.UUID(itemID))
	return scanItem(row)
}

func (s *Store) Claim(ctx context.Context, itemID id.QueueItemID, userID id.UserID, at time.Time) (*routing.Item, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE routing_items
		SET claimed_by = $2, claimed_at = $3, status = $4, updated_at = $3
		WHERE id = $1 AND claimed_by IS NULL AND status NOT IN ($5, $6)
		RETURNING `+itemColumns,
		uuid.UUID(itemID), uuid.UUID(userID), at, string(routing.StatusClaimed),
		string(routing.StatusCompleted), string(routing.StatusCancelled),
	)
	item, err := scanItem(row)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	// No row matched: distinguish missing, terminal, and already-claimed.
	existing, getErr := s.Get(ctx, itemID)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status.Terminal() {
		return nil, sentinel.ErrInvalidState
	}
	return nil, sentinel.ErrConflict
}

// Update is conditional like Claim: the row must still carry the updated_at
// the caller read and must not have gone terminal in the meantime.
func (s *Store) Update(ctx context.Context, item *routing.Item, readAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE routing_items
		SET status = $2, completed_roles = $3, current_role = $4,
			claimed_by = $5, claimed_at = $6, last_action_note = $7, updated_at = $8
		WHERE id = $1 AND updated_at = $9 AND status NOT IN ($10, $11)`,
		uuid.UUID(item.ID), string(item.Status), rolesToStrings(item.CompletedRoles),
		string(item.CurrentRole), claimantID(item.ClaimedBy), item.ClaimedAt,
		item.LastActionNote, item.UpdatedAt, readAt,
		string(routing.StatusCompleted), string(routing.StatusCancelled),
	)
	if err != nil {
		return fmt.Errorf("update routing item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// No row matched: distinguish missing, terminal, and stale reads.
		existing, getErr := s.Get(ctx, item.ID)
		if getErr != nil {
			return getErr
		}
		if existing.Status.Terminal() {
			return sentinel.ErrInvalidState
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter routing.Filter) ([]*routing.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM routing_items
		WHERE ($1 = '' OR current_role = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR form_type = $3)
		ORDER BY created_at`,
		string(filter.Role), string(filter.Status), filter.FormType,
	)
	if err != nil {
		return nil, fmt.Errorf("list routing items: %w", err)
	}
	defer rows.Close()

	var out []*routing.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanItem(row pgx.Row) (*routing.Item, error) {
	var (
		item           routing.Item
		itemID, docID  uuid.UUID
		person, holder *uuid.UUID
		status         string
		required       []string
		completed      []string
		current        string
	)
	err := row.Scan(
		&itemID, &docID, &item.FormType, &person, &status,
		&required, &completed, &current,
		&holder, &item.ClaimedAt, &item.LastActionNote, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan routing item: %w", err)
	}
	item.ID = id.QueueItemID(itemID)
	item.Document = id.DocumentID(docID)
	item.Status = routing.Status(status)
	item.RequiredRoles = stringsToRoles(required)
	item.CompletedRoles = stringsToRoles(completed)
	item.CurrentRole = routing.Role(current)
	if person != nil {
		p := id.PersonID(*person)
		item.PersonID = &p
	}
	if holder != nil {
		u := id.UserID(*holder)
		item.ClaimedBy = &u
	}
	return &item, nil
}

func personID(p *id.PersonID) *uuid.UUID {
	if p == nil {
		return nil
	}
	u := uuid.UUID(*p)
	return &u
}

func claimantID(u *id.UserID) *uuid.UUID {
	if u == nil {
		return nil
	}
	raw := uuid.UUID(*u)
	return &raw
}

func rolesToStrings(roles []routing.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func stringsToRoles(raw []string) []routing.Role {
	out := make([]routing.Role, len(raw))
	for i, r := range raw {
		out[i] = routing.Role(r)
	}
	return out
}
