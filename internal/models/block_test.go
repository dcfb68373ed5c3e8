package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestStreamValidate(t *testing.T) {
	tests := []struct {
		name    string
		stream  Stream
		wantErr bool
	}{
		{"empty", Stream{}, false},
		{"text and petition", Stream{
			NewTextBlock(BlockTypeParagraph, "<p>hi</p>"),
			NewPetitionBlock(uuid.New(), true),
		}, false},
		{"unknown type kept", Stream{{Type: "video", Value: json.RawMessage(`{}`)}}, false},
		{"missing type", Stream{{Value: json.RawMessage(`"x"`)}}, true},
		{"paragraph not a string", Stream{{Type: BlockTypeParagraph, Value: json.RawMessage(`{}`)}}, true},
		{"petition without id", Stream{{Type: BlockTypePetition, Value: json.RawMessage(`{"override_display":true}`)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.stream.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStreamKeepsUnknownBlocks(t *testing.T) {
	raw := `[{"id":"a","type":"embed","value":{"url":"https://example.org"}}]`
	var s Stream
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != raw {
		t.Errorf("round trip changed body:\n got %s\nwant %s", out, raw)
	}
}

func TestNormalizeAssignsIDs(t *testing.T) {
	s := Stream{{Type: BlockTypeHTML, Value: json.RawMessage(`"x"`)}, {ID: "keep", Type: BlockTypeHTML}}
	s.Normalize()
	if s[0].ID == "" {
		t.Error("expected generated id")
	}
	if s[1].ID != "keep" {
		t.Error("existing id must be kept")
	}
}

func TestPetitionBlockStoresIdentifierString(t *testing.T) {
	id := uuid.New()
	b := NewPetitionBlock(id, true)
	var raw map[string]any
	if err := json.Unmarshal(b.Value, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["petition"] != id.String() {
		t.Errorf("petition = %v, want %s", raw["petition"], id)
	}
	if raw["override_display"] != false {
		t.Error("override_display should default to false")
	}
}
