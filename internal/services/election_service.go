package services

import (
	"context"
	"errors"
	"time"

	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrElectionNotFound = errors.New("election not found")

type ElectionService struct {
	electionRepo *repositories.ElectionRepo
	auditRepo    *repositories.AuditRepo
	log          *zap.Logger
}

func NewElectionService(electionRepo *repositories.ElectionRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *ElectionService {
	return &ElectionService{electionRepo: electionRepo, auditRepo: auditRepo, log: log}
}

// ElectionView pairs an election with its statuses at the time of the request.
type ElectionView struct {
	*models.Election
	Status models.ElectionStatus `json:"status"`
}

func NewElectionView(e *models.Election, now time.Time) ElectionView {
	return ElectionView{Election: e, Status: e.Status(now)}
}

func (s *ElectionService) Get(ctx context.Context, id uuid.UUID) (*ElectionView, error) {
	e, err := s.electionRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrElectionNotFound
	}
	if err != nil {
		return nil, err
	}
	v := NewElectionView(e, time.Now())
	return &v, nil
}

func (s *ElectionService) List(ctx context.Context, search string, limit, offset int) ([]ElectionView, error) {
	elections, err := s.electionRepo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]ElectionView, 0, len(elections))
	for i := range elections {
		out = append(out, NewElectionView(&elections[i], now))
	}
	return out, nil
}

// Create stores the election as given; the order of its windows is not checked.
func (s *ElectionService) Create(ctx context.Context, actorID uuid.UUID, e *models.Election) error {
	if err := s.electionRepo.Create(ctx, e); err != nil {
		return err
	}
	s.audit(ctx, actorID, "election_created", e.ID)
	return nil
}

func (s *ElectionService) Update(ctx context.Context, actorID uuid.UUID, e *models.Election) error {
	if err := s.electionRepo.Update(ctx, e); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrElectionNotFound
		}
		return err
	}
	s.audit(ctx, actorID, "election_updated", e.ID)
	return nil
}

func (s *ElectionService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.electionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrElectionNotFound
		}
		return err
	}
	s.audit(ctx, actorID, "election_deleted", id)
	return nil
}

func (s *ElectionService) audit(ctx context.Context, actorID uuid.UUID, action string, id uuid.UUID) {
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      action,
		EntityType:  models.EntityElection,
		EntityID:    &id,
	})
}
