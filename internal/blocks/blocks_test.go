package blocks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

type fakePetitions struct {
	rows  map[uuid.UUID]*models.Petition
	calls int
}

func (f *fakePetitions) GetPetitionsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Petition, error) {
	f.calls++
	out := map[uuid.UUID]*models.Petition{}
	for _, id := range ids {
		if p, ok := f.rows[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func TestResolvePetitionReference(t *testing.T) {
	p := &models.Petition{ID: uuid.New(), Title: "Fix the lane", Active: true, DisplayOnCampaignPage: true}
	lookup := &fakePetitions{rows: map[uuid.UUID]*models.Petition{p.ID: p}}
	r := NewResolver(lookup, nil)

	body := models.Stream{
		models.NewTextBlock(models.BlockTypeHTML, "<p>intro</p>"),
		models.NewPetitionBlock(p.ID, true),
	}

	out, err := r.Resolve(context.Background(), body)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(out))
	}
	if out[1].Petition == nil || out[1].Petition.ID != p.ID {
		t.Fatalf("petition not resolved: %+v", out[1])
	}
	if !out[1].Display {
		t.Error("expected petition to display")
	}
	if lookup.calls != 1 {
		t.Errorf("expected one bulk lookup, got %d", lookup.calls)
	}
}

func TestResolveDeletedPetitionRendersAbsent(t *testing.T) {
	r := NewResolver(&fakePetitions{rows: map[uuid.UUID]*models.Petition{}}, nil)

	malformed, _ := json.Marshal(models.PetitionBlockValue{Petition: "not-a-uuid"})
	body := models.Stream{
		models.NewPetitionBlock(uuid.New(), true),
		{ID: "b2", Type: models.BlockTypePetition, Value: malformed},
	}

	out, err := r.Resolve(context.Background(), body)
	if err != nil {
		t.Fatalf("Resolve must not fail on vanished references: %v", err)
	}
	for _, b := range out {
		if b.Petition != nil {
			t.Errorf("block %s: expected absent petition", b.ID)
		}
		if b.Display {
			t.Errorf("block %s: absent petition must not display", b.ID)
		}
	}
}

func TestResolveSkipsUnknownBlocks(t *testing.T) {
	r := NewResolver(&fakePetitions{}, nil)
	body := models.Stream{
		{ID: "x", Type: "embed", Value: json.RawMessage(`{"url":"https://example.org"}`)},
		models.NewTextBlock(models.BlockTypeParagraph, "<p>hello</p>"),
	}

	out, err := r.Resolve(context.Background(), body)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(out) != 1 || out[0].Type != models.BlockTypeParagraph {
		t.Fatalf("unexpected output: %+v", out)
	}
	if string(out[0].HTML) != "<p>hello</p>" {
		t.Errorf("HTML = %q", out[0].HTML)
	}
}

func TestFindPetition(t *testing.T) {
	p := &models.Petition{ID: uuid.New(), Title: "Crosswalks"}
	other := uuid.New()
	lookup := &fakePetitions{rows: map[uuid.UUID]*models.Petition{
		p.ID:  p,
		other: {ID: other, Title: "Elsewhere"},
	}}
	r := NewResolver(lookup, nil)
	body := models.Stream{models.NewPetitionBlock(p.ID, false)}

	got, err := r.FindPetition(context.Background(), body, p.ID)
	if err != nil || got == nil || got.ID != p.ID {
		t.Fatalf("FindPetition(referenced) = %v, %v", got, err)
	}

	got, err = r.FindPetition(context.Background(), body, other)
	if err != nil || got != nil {
		t.Fatalf("petition not in body must not resolve, got %v, %v", got, err)
	}
}

func TestShouldDisplayOverride(t *testing.T) {
	p := &models.Petition{DisplayOnCampaignPage: true}
	tests := []struct {
		value    models.PetitionBlockValue
		expected bool
	}{
		{models.PetitionBlockValue{OverrideDisplay: false, DisplayOnCampaignPage: false}, true},
		{models.PetitionBlockValue{OverrideDisplay: true, DisplayOnCampaignPage: false}, false},
		{models.PetitionBlockValue{OverrideDisplay: true, DisplayOnCampaignPage: true}, true},
	}
	for _, tt := range tests {
		if got := p.ShouldDisplay(tt.value); got != tt.expected {
			t.Errorf("ShouldDisplay(%+v) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func TestChoices(t *testing.T) {
	petitions := []models.Petition{
		{ID: uuid.New(), Title: "Alpha", Active: true},
		{ID: uuid.New(), Title: "Beta", Active: false},
	}
	got := Choices(petitions)
	if got[0].Label != "Alpha" || got[1].Label != "Beta (inactive)" {
		t.Errorf("unexpected labels: %+v", got)
	}
}
