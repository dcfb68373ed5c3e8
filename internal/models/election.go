package models

import (
	"time"

	"github.com/google/uuid"
)

// Election windows are assumed ordered; nothing enforces it.
type Election struct {
	ID                            uuid.UUID `json:"id"`
	Title                         string    `json:"title"`
	Description                   *string   `json:"description,omitempty"`
	MembershipEligibilityDeadline time.Time `json:"membership_eligibility_deadline"`
	NominationsOpen               time.Time `json:"nominations_open"`
	NominationsClose              time.Time `json:"nominations_close"`
	VotingOpens                   time.Time `json:"voting_opens"`
	VotingCloses                  time.Time `json:"voting_closes"`
	CreatedAt                     time.Time `json:"created_at"`
	UpdatedAt                     time.Time `json:"updated_at"`
}

func (e *Election) EligibilityOpen(now time.Time) bool {
	return now.Before(e.MembershipEligibilityDeadline)
}

func (e *Election) EligibilityClosed(now time.Time) bool {
	return !now.Before(e.MembershipEligibilityDeadline)
}

func (e *Election) NominationsAreOpen(now time.Time) bool {
	return !now.Before(e.NominationsOpen) && now.Before(e.NominationsClose)
}

func (e *Election) NominationsAreClosed(now time.Time) bool {
	return !now.Before(e.NominationsClose)
}

func (e *Election) VotingIsOpen(now time.Time) bool {
	return !now.Before(e.VotingOpens) && now.Before(e.VotingCloses)
}

func (e *Election) VotingIsClosed(now time.Time) bool {
	return !now.Before(e.VotingCloses)
}

type ElectionStatus struct {
	EligibilityOpen   bool `json:"eligibility_open"`
	EligibilityClosed bool `json:"eligibility_closed"`
	NominationsOpen   bool `json:"nominations_open"`
	NominationsClosed bool `json:"nominations_closed"`
	VotingOpen        bool `json:"voting_open"`
	VotingClosed      bool `json:"voting_closed"`
}

func (e *Election) Status(now time.Time) ElectionStatus {
	return ElectionStatus{
		EligibilityOpen:   e.EligibilityOpen(now),
		EligibilityClosed: e.EligibilityClosed(now),
		NominationsOpen:   e.NominationsAreOpen(now),
		NominationsClosed: e.NominationsAreClosed(now),
		VotingOpen:        e.VotingIsOpen(now),
		VotingClosed:      e.VotingIsClosed(now),
	}
}
