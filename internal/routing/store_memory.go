package routing

import (
	"context"
	"sort"
	"sync"
	"time"

	id "marksman/pkg/domain"
	"marksman/pkg/platform/sentinel"
)

// InMemoryStore keeps the default deployment and unit tests lightweight. It
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu    sync.RWMutex
	items map[id.QueueItemID]*Item
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[id.QueueItemID]*Item)}
}

func (s *InMemoryStore) Create(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; exists {
		return sentinel.ErrConflict
	}
	s.items[item.ID] = item.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, itemID id.QueueItemID) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return item.Clone(), nil
}

// Claim performs the conditional claim under the store lock, so two
// concurrent claimants can never both observe "unclaimed".
func (s *InMemoryStore) Claim(_ context.Context, itemID id.QueueItemID, userID id.UserID, at time.Time) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if item.Status.Terminal() {
		return nil, sentinel.ErrInvalidState
	}
	if item.ClaimedBy != nil {
		return nil, sentinel.ErrConflict
	}
	item.ClaimedBy = &userID
	item.ClaimedAt = &at
	item.Status = StatusClaimed
	item.UpdatedAt = at
	return item.Clone(), nil
}

// Update replaces the item only when nothing changed since the caller's read.
// A terminal item never leaves its terminal state.
func (s *InMemoryStore) Update(_ context.Context, item *Item, readAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[item.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Status.Terminal() {
		return sentinel.ErrInvalidState
	}
	if !stored.UpdatedAt.Equal(readAt) {
		return sentinel.ErrConflict
	}
	s.items[item.ID] = item.Clone()
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Item
	for _, item := range s.items {
		if filter.Matches(item) {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}
