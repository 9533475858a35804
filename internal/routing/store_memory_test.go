package routing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "marksman/pkg/domain"
	"marksman/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newItem(roles ...Role) *Item {
	return &Item{
		ID:            id.NewQueueItemID(),
		Document:      id.DocumentID(uuid.New()),
		FormType:      "sustainment_form",
		Status:        StatusPending,
		RequiredRoles: roles,
		CurrentRole:   roles[0],
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}
}

func (s *InMemoryStoreSuite) TestCreateAndGet() {
	item := s.newItem("range_master", "armory_officer")
	s.Require().NoError(s.store.Create(s.ctx, item))

	got, err := s.store.Get(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(item.ID, got.ID)
	s.Equal(StatusPending, got.Status)

	s.Run("duplicate id conflicts", func() {
		s.ErrorIs(s.store.Create(s.ctx, item), sentinel.ErrConflict)
	})

	s.Run("missing id is not found", func() {
		_, err := s.store.Get(s.ctx, id.NewQueueItemID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("reads are isolated from caller mutation", func() {
		got.RequiredRoles[0] = "tampered"
		again, err := s.store.Get(s.ctx, item.ID)
		s.Require().NoError(err)
		s.Equal(Role("range_master"), again.RequiredRoles[0])
	})
}

func (s *InMemoryStoreSuite) TestClaim() {
	item := s.newItem("range_master")
	s.Require().NoError(s.store.Create(s.ctx, item))
	alice := id.UserID(uuid.New())
	bob := id.UserID(uuid.New())

	claimed, err := s.store.Claim(s.ctx, item.ID, alice, s.now)
	s.Require().NoError(err)
	s.Equal(StatusClaimed, claimed.Status)
	s.Require().NotNil(claimed.ClaimedBy)
	s.Equal(alice, *claimed.ClaimedBy)

	s.Run("second claimant conflicts", func() {
		_, err := s.store.Claim(s.ctx, item.ID, bob, s.now)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("same user cannot double-claim either", func() {
		_, err := s.store.Claim(s.ctx, item.ID, alice, s.now)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("terminal item refuses claims", func() {
		done := s.newItem("range_master")
		done.Status = StatusCompleted
		s.Require().NoError(s.store.Create(s.ctx, done))
		_, err := s.store.Claim(s.ctx, done.ID, alice, s.now)
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("missing item is not found", func() {
		_, err := s.store.Claim(s.ctx, id.NewQueueItemID(), alice, s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestConcurrentClaims races many claimants at one item and requires exactly
// one winner.
func (s *InMemoryStoreSuite) TestConcurrentClaims() {
	item := s.newItem("range_master")
	s.Require().NoError(s.store.Create(s.ctx, item))

	const claimants = 32
	var wg sync.WaitGroup
	wins := make(chan id.UserID, claimants)
	for range claimants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := id.UserID(uuid.New())
			if _, err := s.store.Claim(s.ctx, item.ID, userID, s.now); err == nil {
				wins <- userID
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []id.UserID
	for w := range wins {
		winners = append(winners, w)
	}
	s.Require().Len(winners, 1)

	got, err := s.store.Get(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.ClaimedBy)
	s.Equal(winners[0], *got.ClaimedBy)
}

func (s *InMemoryStoreSuite) TestUpdate() {
	item := s.newItem("range_master")
	s.Require().NoError(s.store.Create(s.ctx, item))

	updated := item.Clone()
	updated.LastActionNote = "scores verified"
	updated.UpdatedAt = s.now.Add(time.Minute)
	s.Require().NoError(s.store.Update(s.ctx, updated, item.UpdatedAt))

	got, err := s.store.Get(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal("scores verified", got.LastActionNote)

	s.Run("a stale read loses to the earlier write", func() {
		stale := item.Clone()
		stale.LastActionNote = "computed from the first read"
		s.ErrorIs(s.store.Update(s.ctx, stale, item.UpdatedAt), sentinel.ErrConflict)
	})

	s.Run("updating a missing item is not found", func() {
		ghost := s.newItem("range_master")
		s.ErrorIs(s.store.Update(s.ctx, ghost, ghost.UpdatedAt), sentinel.ErrNotFound)
	})
}

// TestUpdateTerminalGuard replays a sign-off computed before a cancel landed;
// the cancelled item must stay cancelled.
func (s *InMemoryStoreSuite) TestUpdateTerminalGuard() {
	item := s.newItem("range_master")
	s.Require().NoError(s.store.Create(s.ctx, item))
	alice := id.UserID(uuid.New())

	claimed, err := s.store.Claim(s.ctx, item.ID, alice, s.now.Add(time.Minute))
	s.Require().NoError(err)

	cancelled := claimed.Clone()
	cancelled.Status = StatusCancelled
	cancelled.ClaimedBy = nil
	cancelled.ClaimedAt = nil
	cancelled.UpdatedAt = s.now.Add(2 * time.Minute)
	s.Require().NoError(s.store.Update(s.ctx, cancelled, claimed.UpdatedAt))

	// Alice's sign-off was computed from her pre-cancel read.
	completed := claimed.Clone()
	completed.Status = StatusCompleted
	completed.CompletedRoles = []Role{"range_master"}
	completed.ClaimedBy = nil
	completed.ClaimedAt = nil
	completed.UpdatedAt = s.now.Add(3 * time.Minute)
	s.ErrorIs(s.store.Update(s.ctx, completed, claimed.UpdatedAt), sentinel.ErrInvalidState)

	got, err := s.store.Get(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(StatusCancelled, got.Status)
}

func (s *InMemoryStoreSuite) TestList() {
	first := s.newItem("range_master")
	second := s.newItem("armory_officer")
	second.CreatedAt = s.now.Add(time.Minute)
	second.FormType = "screening_form"
	third := s.newItem("range_master")
	third.CreatedAt = s.now.Add(2 * time.Minute)
	third.Status = StatusCompleted
	third.CurrentRole = ""
	for _, item := range []*Item{second, third, first} {
		s.Require().NoError(s.store.Create(s.ctx, item))
	}

	s.Run("no filter returns everything in creation order", func() {
		items, err := s.store.List(s.ctx, Filter{})
		s.Require().NoError(err)
		s.Require().Len(items, 3)
		s.Equal(first.ID, items[0].ID)
		s.Equal(second.ID, items[1].ID)
		s.Equal(third.ID, items[2].ID)
	})

	s.Run("role filter matches the waiting role only", func() {
		items, err := s.store.List(s.ctx, Filter{Role: "range_master"})
		s.Require().NoError(err)
		s.Require().Len(items, 1)
		s.Equal(first.ID, items[0].ID)
	})

	s.Run("status and form filters combine", func() {
		items, err := s.store.List(s.ctx, Filter{Status: StatusPending, FormType: "screening_form"})
		s.Require().NoError(err)
		s.Require().Len(items, 1)
		s.Equal(second.ID, items[0].ID)
	})
}
