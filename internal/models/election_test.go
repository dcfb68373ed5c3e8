package models

import (
	"testing"
	"time"
)

func TestElectionStatus(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	e := &Election{
		MembershipEligibilityDeadline: base,
		NominationsOpen:               base.Add(24 * time.Hour),
		NominationsClose:              base.Add(48 * time.Hour),
		VotingOpens:                   base.Add(72 * time.Hour),
		VotingCloses:                  base.Add(96 * time.Hour),
	}

	tests := []struct {
		name string
		now  time.Time
		want ElectionStatus
	}{
		{"before deadline", base.Add(-time.Second), ElectionStatus{EligibilityOpen: true}},
		{"at deadline", base, ElectionStatus{EligibilityClosed: true}},
		{"nominations open boundary", base.Add(24 * time.Hour), ElectionStatus{EligibilityClosed: true, NominationsOpen: true}},
		{"nominations close boundary", base.Add(48 * time.Hour), ElectionStatus{EligibilityClosed: true, NominationsClosed: true}},
		{"voting", base.Add(80 * time.Hour), ElectionStatus{EligibilityClosed: true, NominationsClosed: true, VotingOpen: true}},
		{"after voting", base.Add(96 * time.Hour), ElectionStatus{EligibilityClosed: true, NominationsClosed: true, VotingClosed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Status(tt.now); got != tt.want {
				t.Errorf("Status = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestElectionWindowsNotValidated(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	e := &Election{NominationsOpen: base.Add(time.Hour), NominationsClose: base}

	if e.NominationsAreOpen(base.Add(30 * time.Minute)) {
		t.Error("inverted window can never be open")
	}
	if !e.NominationsAreClosed(base.Add(30 * time.Minute)) {
		t.Error("inverted window reads as closed once close has passed")
	}
}

func TestMembershipActiveAt(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	m := &Membership{StartDate: start, EndDate: &end}

	if m.ActiveAt(start.Add(-time.Hour)) {
		t.Error("not active before start")
	}
	if !m.ActiveAt(start) {
		t.Error("active at start")
	}
	if m.ActiveAt(end) {
		t.Error("not active at end")
	}
	m.EndDate = nil
	if !m.ActiveAt(end.AddDate(5, 0, 0)) {
		t.Error("open-ended membership stays active")
	}
}

func TestFutureEvents(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	links := []CampaignEvent{
		{SortOrder: 0, Event: &ScheduledEvent{Title: "past", StartsAt: now.Add(-time.Hour)}},
		{SortOrder: 1, Event: &ScheduledEvent{Title: "soon", StartsAt: now.Add(time.Hour)}},
		{SortOrder: 2},
		{SortOrder: 3, Event: &ScheduledEvent{Title: "later", StartsAt: now.Add(48 * time.Hour)}},
	}

	got := FutureEvents(links, now)
	if len(got) != 2 || got[0].Event.Title != "soon" || got[1].Event.Title != "later" {
		t.Errorf("unexpected future events: %+v", got)
	}
}
