package handler

import (
	"time"

	"marksman/internal/routing"
	id "marksman/pkg/domain"
)

// EnqueueRequest is posted by the form-ingestion collaborator once a document
// requiring signatures is recognized.
type EnqueueRequest struct {
	DocumentID    string   `json:"document_id"`
	FormType      string   `json:"form_type"`
	PersonID      string   `json:"person_id,omitempty"`
	RequiredRoles []string `json:"required_roles"`
}

// ActionRequest carries the free-text note for record-action and cancel.
type ActionRequest struct {
	Note string `json:"note"`
}

// ItemResponse is the wire shape of a queue item.
type ItemResponse struct {
	ID             string     `json:"id"`
	DocumentID     string     `json:"document_id"`
	FormType       string     `json:"form_type"`
	PersonID       string     `json:"person_id,omitempty"`
	Status         string     `json:"status"`
	RequiredRoles  []string   `json:"required_roles"`
	CompletedRoles []string   `json:"completed_roles"`
	CurrentRole    string     `json:"current_role,omitempty"`
	ClaimedBy      string     `json:"claimed_by,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
	LastActionNote string     `json:"last_action_note,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func fromItem(item *routing.Item) ItemResponse {
	out := ItemResponse{
		ID:             item.ID.String(),
		DocumentID:     item.Document.String(),
		FormType:       item.FormType,
		Status:         string(item.Status),
		RequiredRoles:  rolesToStrings(item.RequiredRoles),
		CompletedRoles: rolesToStrings(item.CompletedRoles),
		CurrentRole:    string(item.CurrentRole),
		ClaimedAt:      item.ClaimedAt,
		LastActionNote: item.LastActionNote,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	if item.PersonID != nil {
		out.PersonID = item.PersonID.String()
	}
	if item.ClaimedBy != nil {
		out.ClaimedBy = item.ClaimedBy.String()
	}
	return out
}

func fromItems(items []*routing.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = fromItem(item)
	}
	return out
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

func parsePersonID(raw string) (*id.PersonID, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := id.ParsePersonID(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
