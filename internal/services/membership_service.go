package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrTierNotFound      = errors.New("donation tier not found")
	ErrTierAtEdge        = errors.New("donation tier cannot move further")
	ErrProductNotFound   = errors.New("donation product not found")
	ErrInvalidTier       = errors.New("invalid donation tier")
	ErrInvalidMembership = errors.New("invalid membership")
)

// MembershipService administers donation tiers, products and donations.
type MembershipService struct {
	pool         *pgxpool.Pool
	donationRepo *repositories.DonationRepo
	auditRepo    *repositories.AuditRepo
	log          *zap.Logger
}

func NewMembershipService(pool *pgxpool.Pool, donationRepo *repositories.DonationRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *MembershipService {
	return &MembershipService{pool: pool, donationRepo: donationRepo, auditRepo: auditRepo, log: log}
}

func (s *MembershipService) ListTiers(ctx context.Context, activeOnly bool) ([]models.DonationTier, error) {
	return s.donationRepo.ListTiers(ctx, activeOnly)
}

// CreateTier appends a tier. Price, cost and recurrence are fixed afterwards.
func (s *MembershipService) CreateTier(ctx context.Context, actorID uuid.UUID, t *models.DonationTier) error {
	if !models.IsValidRecurrence(t.Recurrence) {
		return fmt.Errorf("%w: recurrence %q", ErrInvalidTier, t.Recurrence)
	}
	if !t.Cost.IsPositive() {
		return fmt.Errorf("%w: cost must be positive", ErrInvalidTier)
	}
	if err := s.donationRepo.CreateTier(ctx, t); err != nil {
		return err
	}
	s.audit(ctx, actorID, "donation_tier_created", models.EntityDonationTier, t.ID, nil)
	return nil
}

func (s *MembershipService) SetTierActive(ctx context.Context, actorID, id uuid.UUID, active bool) error {
	if err := s.donationRepo.SetTierActive(ctx, id, active); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTierNotFound
		}
		return err
	}
	s.audit(ctx, actorID, "donation_tier_updated", models.EntityDonationTier, id, map[string]any{"active": active})
	return nil
}

// MoveTier swaps the tier's position with its neighbour above (up) or below.
func (s *MembershipService) MoveTier(ctx context.Context, actorID, id uuid.UUID, up bool) error {
	err := repositories.RunInTx(ctx, s.pool, func(tx pgx.Tx) error {
		repo := repositories.NewDonationRepo(tx)
		t, err := repo.GetTier(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTierNotFound
		}
		if err != nil {
			return err
		}
		n, err := repo.NeighbourTier(ctx, t.Order, up)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTierAtEdge
		}
		if err != nil {
			return err
		}
		if err := repo.SetTierOrder(ctx, t.ID, n.Order); err != nil {
			return err
		}
		return repo.SetTierOrder(ctx, n.ID, t.Order)
	})
	if err != nil {
		return err
	}
	direction := "down"
	if up {
		direction = "up"
	}
	s.audit(ctx, actorID, "donation_tier_moved", models.EntityDonationTier, id, map[string]any{"direction": direction})
	return nil
}

func (s *MembershipService) ListProducts(ctx context.Context) ([]models.DonationProduct, error) {
	return s.donationRepo.ListProducts(ctx)
}

func (s *MembershipService) GetProduct(ctx context.Context, id uuid.UUID) (*models.DonationProduct, error) {
	p, err := s.donationRepo.GetProduct(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *MembershipService) CreateProduct(ctx context.Context, actorID uuid.UUID, p *models.DonationProduct) error {
	if err := s.donationRepo.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.audit(ctx, actorID, "donation_product_created", models.EntityDonationProduct, p.ID, nil)
	return nil
}

func (s *MembershipService) UpdateProduct(ctx context.Context, actorID uuid.UUID, p *models.DonationProduct) error {
	if err := s.donationRepo.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.audit(ctx, actorID, "donation_product_updated", models.EntityDonationProduct, p.ID, nil)
	return nil
}

func (s *MembershipService) ListDonations(ctx context.Context, f repositories.DonationFilter) ([]models.Donation, error) {
	return s.donationRepo.ListDonations(ctx, f)
}

func (s *MembershipService) Memberships(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	return s.donationRepo.ListMemberships(ctx, userID)
}

// GrantMembership records a membership by hand, typically a comp.
func (s *MembershipService) GrantMembership(ctx context.Context, actorID uuid.UUID, m *models.Membership) error {
	if !models.IsValidMembershipKind(m.Kind) {
		return fmt.Errorf("%w: kind %q", ErrInvalidMembership, m.Kind)
	}
	if m.EndDate != nil && !m.EndDate.After(m.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidMembership)
	}
	if err := s.donationRepo.CreateMembership(ctx, m); err != nil {
		return err
	}
	s.audit(ctx, actorID, "membership_granted", models.EntityMembership, m.ID, map[string]any{
		"user_id": m.UserID.String(),
		"kind":    m.Kind,
	})
	return nil
}

// IsActiveMember reports whether any membership of the user covers now.
func IsActiveMember(memberships []models.Membership, now time.Time) bool {
	for i := range memberships {
		if memberships[i].ActiveAt(now) {
			return true
		}
	}
	return false
}

func (s *MembershipService) audit(ctx context.Context, actorID uuid.UUID, action, entity string, id uuid.UUID, meta map[string]any) {
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorStaff,
		Action:      action,
		EntityType:  entity,
		EntityID:    &id,
		Meta:        meta,
	})
}

// ParseCost reads a tier cost such as "25" or "25.00".
func ParseCost(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: cost %q", ErrInvalidTier, s)
	}
	return d.Round(2), nil
}
