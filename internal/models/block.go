package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Block types accepted in a campaign body.
const (
	BlockTypeParagraph = "paragraph"
	BlockTypePetition  = "petition"
	BlockTypeImage     = "image"
	BlockTypeHTML      = "html"
)

// Block is one typed unit of structured page content. Value is kept raw so
// unknown block types survive a load/save round trip untouched.
type Block struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Stream is the ordered body of a page.
type Stream []Block

// PetitionBlockValue stores the petition as a plain identifier string, never
// the record itself.
type PetitionBlockValue struct {
	Petition              string `json:"petition"`
	OverrideDisplay       bool   `json:"override_display"`
	DisplayOnCampaignPage bool   `json:"display_on_campaign_page"`
}

type ImageBlockValue struct {
	Image      string `json:"image"`
	AltText    string `json:"alt_text"`
	Decorative bool   `json:"decorative"`
}

func IsValidBlockType(t string) bool {
	switch t {
	case BlockTypeParagraph, BlockTypePetition, BlockTypeImage, BlockTypeHTML:
		return true
	}
	return false
}

func NewTextBlock(blockType, html string) Block {
	raw, _ := json.Marshal(html)
	return Block{ID: uuid.NewString(), Type: blockType, Value: raw}
}

func NewPetitionBlock(petitionID uuid.UUID, displayOnCampaignPage bool) Block {
	raw, _ := json.Marshal(PetitionBlockValue{
		Petition:              petitionID.String(),
		OverrideDisplay:       false,
		DisplayOnCampaignPage: displayOnCampaignPage,
	})
	return Block{ID: uuid.NewString(), Type: BlockTypePetition, Value: raw}
}

// Text decodes the value of a paragraph or html block.
func (b Block) Text() (string, error) {
	if b.Type != BlockTypeParagraph && b.Type != BlockTypeHTML {
		return "", fmt.Errorf("block %s is not a text block", b.Type)
	}
	var s string
	if err := json.Unmarshal(b.Value, &s); err != nil {
		return "", fmt.Errorf("decode %s block: %w", b.Type, err)
	}
	return s, nil
}

func (b Block) PetitionValue() (PetitionBlockValue, error) {
	var v PetitionBlockValue
	if b.Type != BlockTypePetition {
		return v, fmt.Errorf("block %s is not a petition block", b.Type)
	}
	if err := json.Unmarshal(b.Value, &v); err != nil {
		return v, fmt.Errorf("decode petition block: %w", err)
	}
	return v, nil
}

func (b Block) ImageValue() (ImageBlockValue, error) {
	var v ImageBlockValue
	if b.Type != BlockTypeImage {
		return v, fmt.Errorf("block %s is not an image block", b.Type)
	}
	if err := json.Unmarshal(b.Value, &v); err != nil {
		return v, fmt.Errorf("decode image block: %w", err)
	}
	return v, nil
}

// Normalize assigns ids to blocks that arrived without one.
func (s Stream) Normalize() Stream {
	for i := range s {
		if s[i].ID == "" {
			s[i].ID = uuid.NewString()
		}
	}
	return s
}

// Validate rejects blocks of known type whose value does not decode. Blocks of
// unknown type are passed through untouched and skipped at render time.
func (s Stream) Validate() error {
	for i, b := range s {
		if b.Type == "" {
			return fmt.Errorf("block %d: type is required", i)
		}
		if !IsValidBlockType(b.Type) {
			continue
		}
		var err error
		switch b.Type {
		case BlockTypeParagraph, BlockTypeHTML:
			_, err = b.Text()
		case BlockTypePetition:
			var v PetitionBlockValue
			if v, err = b.PetitionValue(); err == nil && v.Petition == "" {
				err = fmt.Errorf("petition is required")
			}
		case BlockTypeImage:
			_, err = b.ImageValue()
		}
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}
