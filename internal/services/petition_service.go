package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/civic-action/platform/internal/blocks"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPetitionNotFound      = errors.New("petition not found")
	ErrInvalidSignatureField = errors.New("invalid signature field")
	ErrMissingRecipients     = errors.New("email recipients are required when sending email")
)

// PetitionService is the administrative side of petitions. Signing lives in
// SignService.
type PetitionService struct {
	petitionRepo  *repositories.PetitionRepo
	signatureRepo *repositories.SignatureRepo
	auditRepo     *repositories.AuditRepo
	log           *zap.Logger
}

func NewPetitionService(
	petitionRepo *repositories.PetitionRepo,
	signatureRepo *repositories.SignatureRepo,
	auditRepo *repositories.AuditRepo,
	log *zap.Logger,
) *PetitionService {
	return &PetitionService{
		petitionRepo:  petitionRepo,
		signatureRepo: signatureRepo,
		auditRepo:     auditRepo,
		log:           log,
	}
}

func validatePetition(p *models.Petition) error {
	for _, f := range p.SignatureFields {
		if !models.IsValidSignatureField(f) {
			return fmt.Errorf("%w: %q", ErrInvalidSignatureField, f)
		}
	}
	if p.SendEmail && len(p.Recipients()) == 0 {
		return ErrMissingRecipients
	}
	return nil
}

func (s *PetitionService) Create(ctx context.Context, actorID uuid.UUID, p *models.Petition) error {
	if err := validatePetition(p); err != nil {
		return err
	}
	if err := s.petitionRepo.Create(ctx, p); err != nil {
		return err
	}
	s.audit(ctx, actorID, "petition_created", p.ID)
	return nil
}

func (s *PetitionService) Update(ctx context.Context, actorID uuid.UUID, p *models.Petition) error {
	if err := validatePetition(p); err != nil {
		return err
	}
	if err := s.petitionRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPetitionNotFound
		}
		return err
	}
	s.audit(ctx, actorID, "petition_updated", p.ID)
	return nil
}

// Delete removes the petition. Campaign bodies keep the dangling identifier
// and render it as absent.
func (s *PetitionService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.petitionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPetitionNotFound
		}
		return err
	}
	s.audit(ctx, actorID, "petition_deleted", id)
	return nil
}

func (s *PetitionService) Get(ctx context.Context, id uuid.UUID) (*models.Petition, error) {
	p, err := s.petitionRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPetitionNotFound
	}
	return p, err
}

func (s *PetitionService) List(ctx context.Context, f repositories.PetitionFilter) ([]models.Petition, error) {
	return s.petitionRepo.List(ctx, f)
}

// Choices feeds the petition block chooser.
func (s *PetitionService) Choices(ctx context.Context) ([]blocks.Choice, error) {
	petitions, err := s.petitionRepo.ListForChooser(ctx)
	if err != nil {
		return nil, err
	}
	return blocks.Choices(petitions), nil
}

type SignatureList struct {
	Total      int                        `json:"total"`
	Signatures []models.PetitionSignature `json:"signatures"`
}

func (s *PetitionService) Signatures(ctx context.Context, petitionID uuid.UUID, limit, offset int) (*SignatureList, error) {
	if _, err := s.Get(ctx, petitionID); err != nil {
		return nil, err
	}
	total, err := s.signatureRepo.Count(ctx, petitionID)
	if err != nil {
		return nil, err
	}
	sigs, err := s.signatureRepo.Latest(ctx, petitionID, false, limit, offset)
	if err != nil {
		return nil, err
	}
	return &SignatureList{Total: total, Signatures: sigs}, nil
}

func (s *PetitionService) SetSignatureVisible(ctx context.Context, actorID, signatureID uuid.UUID, visible bool) error {
	if err := s.signatureRepo.SetVisible(ctx, signatureID, visible); err != nil {
		return err
	}
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      "signature_visibility_changed",
		EntityType:  models.EntityPetitionSignature,
		EntityID:    &signatureID,
		Meta:        map[string]any{"visible": visible},
	})
	return nil
}

func (s *PetitionService) audit(ctx context.Context, actorID uuid.UUID, action string, id uuid.UUID) {
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      action,
		EntityType:  models.EntityPetition,
		EntityID:    &id,
	})
}
