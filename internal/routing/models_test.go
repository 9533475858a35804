package routing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "marksman/pkg/domain"
	"marksman/pkg/testutil"
)

func TestNextRole(t *testing.T) {
	item := &Item{RequiredRoles: []Role{"range_master", "armory_officer", "commanding_officer"}}

	testutil.Given(t, "no role has signed", func(t *testing.T) {
		next, ok := item.NextRole()
		require.True(t, ok)
		assert.Equal(t, Role("range_master"), next)
	})

	testutil.When(t, "a later role signed out of order", func(t *testing.T) {
		item := item.Clone()
		item.CompletedRoles = []Role{"armory_officer"}
		next, ok := item.NextRole()
		require.True(t, ok)
		assert.Equal(t, Role("range_master"), next, "order stays authoritative")

		item.CompletedRoles = append(item.CompletedRoles, "range_master")
		next, ok = item.NextRole()
		require.True(t, ok)
		assert.Equal(t, Role("commanding_officer"), next, "already-satisfied roles are skipped")
	})

	testutil.Then(t, "a fully signed chain has no next role", func(t *testing.T) {
		item := item.Clone()
		item.CompletedRoles = []Role{"commanding_officer", "range_master", "armory_officer"}
		_, ok := item.NextRole()
		assert.False(t, ok)
	})
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusClaimed.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestClone(t *testing.T) {
	userID := id.UserID(uuid.New())
	at := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	person := id.PersonID(uuid.New())
	orig := &Item{
		ID:             id.NewQueueItemID(),
		PersonID:       &person,
		RequiredRoles:  []Role{"range_master"},
		CompletedRoles: []Role{},
		ClaimedBy:      &userID,
		ClaimedAt:      &at,
	}

	clone := orig.Clone()
	clone.RequiredRoles[0] = "tampered"
	*clone.ClaimedBy = id.UserID(uuid.New())
	*clone.ClaimedAt = at.Add(time.Hour)

	assert.Equal(t, Role("range_master"), orig.RequiredRoles[0])
	assert.Equal(t, userID, *orig.ClaimedBy)
	assert.Equal(t, at, *orig.ClaimedAt)
}

func TestFilterMatches(t *testing.T) {
	item := &Item{
		FormType:    "sustainment_form",
		Status:      StatusPending,
		CurrentRole: "range_master",
	}

	assert.True(t, Filter{}.Matches(item))
	assert.True(t, Filter{Role: "range_master", Status: StatusPending, FormType: "sustainment_form"}.Matches(item))
	assert.False(t, Filter{Role: "armory_officer"}.Matches(item))
	assert.False(t, Filter{Status: StatusClaimed}.Matches(item))
	assert.False(t, Filter{FormType: "screening_form"}.Matches(item))
}
