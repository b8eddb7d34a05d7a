// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// Activity event types carried in ActivityEvent.Type.
const (
	TypeAmalgamationCreated = "amalgamation.created"
	TypeBadgeAwarded        = "badge.awarded"
)

// ActivityQueueName is the durable queue all activity events flow through.
const ActivityQueueName = "activity.events"

// ActivityEvent is published when something notable happens: a new
// amalgamation or a badge award. It carries enough for downstream
// consumers to log or notify without querying the primary database.
// Fields irrelevant to the event type stay zero.
type ActivityEvent struct {
	Type           string `json:"type"`
	UserID         uint64 `json:"user_id"`
	Username       string `json:"username"`
	AmalgamationID uint64 `json:"amalgamation_id,omitempty"`
	Term1          string `json:"term1,omitempty"`
	Term2          string `json:"term2,omitempty"`
	Mode           string `json:"mode,omitempty"`
	BadgeID        uint64 `json:"badge_id,omitempty"`
	BadgeName      string `json:"badge_name,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}
