package repositories

import (
	"context"
	"fmt"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

type ElectionRepo struct {
	db DBTX
}

func NewElectionRepo(db DBTX) *ElectionRepo {
	return &ElectionRepo{db: db}
}

const electionColumns = `id, title, description, membership_eligibility_deadline, nominations_open,
	nominations_close, voting_opens, voting_closes, created_at, updated_at`

func scanElection(row interface{ Scan(...any) error }, e *models.Election) error {
	return row.Scan(&e.ID, &e.Title, &e.Description, &e.MembershipEligibilityDeadline,
		&e.NominationsOpen, &e.NominationsClose, &e.VotingOpens, &e.VotingCloses,
		&e.CreatedAt, &e.UpdatedAt)
}

func (r *ElectionRepo) Create(ctx context.Context, e *models.Election) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO elections (title, description, membership_eligibility_deadline, nominations_open,
		       nominations_close, voting_opens, voting_closes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, e.Title, e.Description, e.MembershipEligibilityDeadline, e.NominationsOpen,
		e.NominationsClose, e.VotingOpens, e.VotingCloses,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *ElectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Election, error) {
	var e models.Election
	if err := scanElection(r.db.QueryRow(ctx, `SELECT `+electionColumns+` FROM elections WHERE id = $1`, id), &e); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *ElectionRepo) Update(ctx context.Context, e *models.Election) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE elections SET title = $1, description = $2, membership_eligibility_deadline = $3,
		       nominations_open = $4, nominations_close = $5, voting_opens = $6, voting_closes = $7,
		       updated_at = now()
		WHERE id = $8
	`, e.Title, e.Description, e.MembershipEligibilityDeadline, e.NominationsOpen,
		e.NominationsClose, e.VotingOpens, e.VotingCloses, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ElectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM elections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List orders by eligibility deadline, newest first.
func (r *ElectionRepo) List(ctx context.Context, search string, limit, offset int) ([]models.Election, error) {
	query := `SELECT ` + electionColumns + ` FROM elections`
	args := []any{}
	argIdx := 1
	if search != "" {
		query += fmt.Sprintf(" WHERE title ILIKE $%d OR description ILIKE $%d", argIdx, argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}
	query += fmt.Sprintf(" ORDER BY membership_eligibility_deadline DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, clampLimit(limit, 50, 200), offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Election
	for rows.Next() {
		var e models.Election
		if err := scanElection(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
