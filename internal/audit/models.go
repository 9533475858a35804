package audit

import "time"

// Event is emitted from domain logic to capture key workflow actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor,omitempty"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Document  string    `json:"document,omitempty"`
	FormType  string    `json:"form_type,omitempty"`
	Role      string    `json:"role,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// Workflow actions recorded against routing-queue items.
const (
	ActionEnqueued  = "enqueued"
	ActionClaimed   = "claimed"
	ActionRecorded  = "action_recorded"
	ActionReleased  = "released"
	ActionCancelled = "cancelled"
)
