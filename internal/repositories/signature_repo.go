package repositories

import (
	"context"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

type SignatureRepo struct {
	db DBTX
}

func NewSignatureRepo(db DBTX) *SignatureRepo {
	return &SignatureRepo{db: db}
}

const signatureColumns = `id, petition_id, first_name, last_name, email, phone_number,
	postal_address_line_1, postal_address_line_2, city, state, zip_code, comment,
	visible, newsletter_opt_in, create_account_opt_in, created_at`

func (r *SignatureRepo) Create(ctx context.Context, s *models.PetitionSignature) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO petition_signatures (petition_id, first_name, last_name, email, phone_number,
		       postal_address_line_1, postal_address_line_2, city, state, zip_code, comment,
		       visible, newsletter_opt_in, create_account_opt_in)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`, s.PetitionID, s.FirstName, s.LastName, s.Email, s.PhoneNumber,
		s.PostalAddressLine1, s.PostalAddressLine2, s.City, s.State, s.ZipCode, s.Comment,
		s.Visible, s.NewsletterOptIn, s.CreateAccountOptIn,
	).Scan(&s.ID, &s.CreatedAt)
}

// ExistsByEmail matches the email case-insensitively.
func (r *SignatureRepo) ExistsByEmail(ctx context.Context, petitionID uuid.UUID, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM petition_signatures WHERE petition_id = $1 AND lower(email) = lower($2))
	`, petitionID, email).Scan(&exists)
	return exists, err
}

// Latest returns the newest signatures of a petition, visible ones only when visibleOnly is set.
func (r *SignatureRepo) Latest(ctx context.Context, petitionID uuid.UUID, visibleOnly bool, limit, offset int) ([]models.PetitionSignature, error) {
	limit = clampLimit(limit, 10, 500)
	rows, err := r.db.Query(ctx, `
		SELECT `+signatureColumns+` FROM petition_signatures
		WHERE petition_id = $1 AND (visible OR NOT $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4
	`, petitionID, visibleOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []models.PetitionSignature
	for rows.Next() {
		var s models.PetitionSignature
		if err := rows.Scan(&s.ID, &s.PetitionID, &s.FirstName, &s.LastName, &s.Email, &s.PhoneNumber,
			&s.PostalAddressLine1, &s.PostalAddressLine2, &s.City, &s.State, &s.ZipCode, &s.Comment,
			&s.Visible, &s.NewsletterOptIn, &s.CreateAccountOptIn, &s.CreatedAt); err != nil {
			return nil, err
		}
		sigs = append(sigs, s)
	}
	return sigs, rows.Err()
}

func (r *SignatureRepo) Count(ctx context.Context, petitionID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM petition_signatures WHERE petition_id = $1`, petitionID).Scan(&n)
	return n, err
}

func (r *SignatureRepo) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE petition_signatures SET visible = $1 WHERE id = $2`, visible, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
