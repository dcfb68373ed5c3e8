// Package blocks resolves the identifiers stored inside a page body against
// live records. A reference that no longer resolves renders as absent.
package blocks

import (
	"context"
	"fmt"
	"html/template"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

type PetitionLookup interface {
	GetPetitionsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Petition, error)
}

type ImageLookup interface {
	GetImagesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Image, error)
}

// Rendered is a block ready for a template. Petition and Image are nil when
// the stored identifier is malformed or points at a deleted row.
type Rendered struct {
	ID       string
	Type     string
	HTML     template.HTML
	Petition *models.Petition
	Display  bool
	Image    *models.Image
	AltText  string
}

type Resolver struct {
	petitions PetitionLookup
	images    ImageLookup
}

func NewResolver(petitions PetitionLookup, images ImageLookup) *Resolver {
	return &Resolver{petitions: petitions, images: images}
}

// Resolve dereferences every block of the stream in two bulk lookups.
// Blocks of unknown type are dropped from the output.
func (r *Resolver) Resolve(ctx context.Context, body models.Stream) ([]Rendered, error) {
	var petitionIDs, imageIDs []uuid.UUID
	for _, b := range body {
		switch b.Type {
		case models.BlockTypePetition:
			if v, err := b.PetitionValue(); err == nil {
				if id, err := uuid.Parse(v.Petition); err == nil {
					petitionIDs = append(petitionIDs, id)
				}
			}
		case models.BlockTypeImage:
			if v, err := b.ImageValue(); err == nil {
				if id, err := uuid.Parse(v.Image); err == nil {
					imageIDs = append(imageIDs, id)
				}
			}
		}
	}

	petitions := map[uuid.UUID]*models.Petition{}
	if len(petitionIDs) > 0 {
		found, err := r.petitions.GetPetitionsByIDs(ctx, petitionIDs)
		if err != nil {
			return nil, fmt.Errorf("lookup petitions: %w", err)
		}
		petitions = found
	}
	images := map[uuid.UUID]*models.Image{}
	if len(imageIDs) > 0 && r.images != nil {
		found, err := r.images.GetImagesByIDs(ctx, imageIDs)
		if err != nil {
			return nil, fmt.Errorf("lookup images: %w", err)
		}
		images = found
	}

	out := make([]Rendered, 0, len(body))
	for _, b := range body {
		rb := Rendered{ID: b.ID, Type: b.Type}
		switch b.Type {
		case models.BlockTypeParagraph, models.BlockTypeHTML:
			text, err := b.Text()
			if err != nil {
				continue
			}
			rb.HTML = template.HTML(text)
		case models.BlockTypePetition:
			v, err := b.PetitionValue()
			if err != nil {
				continue
			}
			if id, err := uuid.Parse(v.Petition); err == nil {
				rb.Petition = petitions[id]
			}
			if rb.Petition != nil {
				rb.Display = rb.Petition.ShouldDisplay(v)
			}
		case models.BlockTypeImage:
			v, err := b.ImageValue()
			if err != nil {
				continue
			}
			if id, err := uuid.Parse(v.Image); err == nil {
				rb.Image = images[id]
			}
			if !v.Decorative {
				rb.AltText = v.AltText
			}
		default:
			continue
		}
		out = append(out, rb)
	}
	return out, nil
}

// FindPetition returns the petition with the given id if, and only if, the
// body references it and it still exists.
func (r *Resolver) FindPetition(ctx context.Context, body models.Stream, petitionID uuid.UUID) (*models.Petition, error) {
	referenced := false
	for _, b := range body {
		if b.Type != models.BlockTypePetition {
			continue
		}
		v, err := b.PetitionValue()
		if err != nil {
			continue
		}
		if id, err := uuid.Parse(v.Petition); err == nil && id == petitionID {
			referenced = true
			break
		}
	}
	if !referenced {
		return nil, nil
	}

	found, err := r.petitions.GetPetitionsByIDs(ctx, []uuid.UUID{petitionID})
	if err != nil {
		return nil, fmt.Errorf("lookup petition: %w", err)
	}
	return found[petitionID], nil
}

// Petitions lists the live petitions referenced by the body, in body order.
func (r *Resolver) Petitions(ctx context.Context, body models.Stream) ([]*models.Petition, error) {
	rendered, err := r.Resolve(ctx, body)
	if err != nil {
		return nil, err
	}
	var out []*models.Petition
	for _, rb := range rendered {
		if rb.Petition != nil {
			out = append(out, rb.Petition)
		}
	}
	return out, nil
}

// Choice is one entry of the petition chooser.
type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Choices expects petitions already ordered active first, then by title.
func Choices(petitions []models.Petition) []Choice {
	out := make([]Choice, 0, len(petitions))
	for i := range petitions {
		out = append(out, Choice{ID: petitions[i].ID.String(), Label: petitions[i].ChoiceLabel()})
	}
	return out
}
