package routing

import (
	"slices"
	"time"

	id "marksman/pkg/domain"
)

// Status is the lifecycle state of a routing-queue item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusClaimed   Status = "claimed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Role is an approver role in a signature chain.
type Role string

// Item is one document moving through a multi-role signature chain.
//
// Invariants:
//   - CurrentRole, when set, is a required role not yet completed.
//   - Status is Completed iff CompletedRoles covers RequiredRoles.
//   - At most one active claimant at any time.
type Item struct {
	ID       id.QueueItemID
	Document id.DocumentID
	FormType string
	PersonID *id.PersonID

	Status         Status
	RequiredRoles  []Role
	CompletedRoles []Role
	CurrentRole    Role

	ClaimedBy *id.UserID
	ClaimedAt *time.Time

	LastActionNote string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Claimed reports whether an active claimant holds the item.
func (i *Item) Claimed() bool { return i.ClaimedBy != nil }

// ClaimedByUser reports whether the given user holds the active claim.
func (i *Item) ClaimedByUser(userID id.UserID) bool {
	return i.ClaimedBy != nil && *i.ClaimedBy == userID
}

// RoleCompleted reports whether a role has already signed.
func (i *Item) RoleCompleted(role Role) bool {
	return slices.Contains(i.CompletedRoles, role)
}

// NextRole returns the first required role not yet completed, in
// required-roles order. Roles satisfied out of order are skipped. The second
// return is false when every required role has signed.
func (i *Item) NextRole() (Role, bool) {
	for _, role := range i.RequiredRoles {
		if !i.RoleCompleted(role) {
			return role, true
		}
	}
	return "", false
}

// Clone returns a deep copy so stores never hand out aliased slices.
func (i *Item) Clone() *Item {
	out := *i
	out.RequiredRoles = slices.Clone(i.RequiredRoles)
	out.CompletedRoles = slices.Clone(i.CompletedRoles)
	if i.PersonID != nil {
		p := *i.PersonID
		out.PersonID = &p
	}
	if i.ClaimedBy != nil {
		u := *i.ClaimedBy
		out.ClaimedBy = &u
	}
	if i.ClaimedAt != nil {
		t := *i.ClaimedAt
		out.ClaimedAt = &t
	}
	return &out
}

// Filter narrows inbox queries. Zero fields match everything.
type Filter struct {
	Role     Role
	Status   Status
	FormType string
}

// Matches applies the filter to one item. Role filters on the role whose
// signature the item is currently waiting for.
func (f Filter) Matches(i *Item) bool {
	if f.Role != "" && i.CurrentRole != f.Role {
		return false
	}
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	if f.FormType != "" && i.FormType != f.FormType {
		return false
	}
	return true
}
