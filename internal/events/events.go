package events

import (
	"context"
	"time"
)

// Streams
const (
	StreamPetitions = "events:petitions"
	StreamDonations = "events:donations"
)

// Event types
const (
	EventPetitionSigned   = "petition_signed"
	EventDonationRecorded = "donation_recorded"
)

type Event struct {
	Type    string         `json:"type"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// PetitionSigned carries only what the public signature list shows.
func PetitionSigned(petitionID, firstName, lastName, comment string) Event {
	return Event{
		Type: EventPetitionSigned,
		Payload: map[string]any{
			"petition_id": petitionID,
			"first_name":  firstName,
			"last_name":   lastName,
			"comment":     comment,
		},
	}
}

func DonationRecorded(donationID, amount string) Event {
	return Event{
		Type: EventDonationRecorded,
		Payload: map[string]any{
			"donation_id": donationID,
			"amount":      amount,
		},
	}
}

// PetitionID extracts the petition an event belongs to, "" when absent.
func (e Event) PetitionID() string {
	id, _ := e.Payload["petition_id"].(string)
	return id
}
