package models

import (
	"time"

	"github.com/google/uuid"
)

type ScheduledEvent struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CampaignEvent links a campaign page to a scheduled event at a sort position.
type CampaignEvent struct {
	ID             uuid.UUID       `json:"id"`
	CampaignPageID uuid.UUID       `json:"campaign_page_id"`
	EventID        uuid.UUID       `json:"event_id"`
	SortOrder      int             `json:"sort_order"`
	Event          *ScheduledEvent `json:"event,omitempty"`
}

// FutureEvents keeps events starting after now, preserving the sort order.
func FutureEvents(links []CampaignEvent, now time.Time) []CampaignEvent {
	var out []CampaignEvent
	for _, l := range links {
		if l.Event != nil && l.Event.StartsAt.After(now) {
			out = append(out, l)
		}
	}
	return out
}
