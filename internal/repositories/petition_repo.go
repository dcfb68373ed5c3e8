package repositories

import (
	"context"
	"fmt"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

type PetitionRepo struct {
	db DBTX
}

func NewPetitionRepo(db DBTX) *PetitionRepo {
	return &PetitionRepo{db: db}
}

const petitionColumns = `id, title, letter, call_to_action, call_to_action_header, display_on_campaign_page,
	active, signature_goal, show_submissions, send_email, mailto_send, email_subject, email_body,
	email_to, email_cc, email_include_comment, create_account_opt_in, redirect_after,
	signature_fields, created_at, updated_at`

func scanPetition(row interface{ Scan(...any) error }, p *models.Petition) error {
	return row.Scan(&p.ID, &p.Title, &p.Letter, &p.CallToAction, &p.CallToActionHeader,
		&p.DisplayOnCampaignPage, &p.Active, &p.SignatureGoal, &p.ShowSubmissions,
		&p.SendEmail, &p.MailtoSend, &p.EmailSubject, &p.EmailBody, &p.EmailTo, &p.EmailCC,
		&p.EmailIncludeComment, &p.CreateAccountOptIn, &p.RedirectAfter, &p.SignatureFields,
		&p.CreatedAt, &p.UpdatedAt)
}

func (r *PetitionRepo) Create(ctx context.Context, p *models.Petition) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO petitions (title, letter, call_to_action, call_to_action_header, display_on_campaign_page,
		       active, signature_goal, show_submissions, send_email, mailto_send, email_subject, email_body,
		       email_to, email_cc, email_include_comment, create_account_opt_in, redirect_after, signature_fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Letter, p.CallToAction, p.CallToActionHeader, p.DisplayOnCampaignPage,
		p.Active, p.SignatureGoal, p.ShowSubmissions, p.SendEmail, p.MailtoSend, p.EmailSubject,
		p.EmailBody, p.EmailTo, p.EmailCC, p.EmailIncludeComment, p.CreateAccountOptIn,
		p.RedirectAfter, p.SignatureFields,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapErr(err)
}

func (r *PetitionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Petition, error) {
	var p models.Petition
	row := r.db.QueryRow(ctx, `SELECT `+petitionColumns+` FROM petitions WHERE id = $1`, id)
	if err := scanPetition(row, &p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// GetPetitionsByIDs returns the petitions that still exist, keyed by id.
func (r *PetitionRepo) GetPetitionsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Petition, error) {
	rows, err := r.db.Query(ctx, `SELECT `+petitionColumns+` FROM petitions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*models.Petition, len(ids))
	for rows.Next() {
		var p models.Petition
		if err := scanPetition(rows, &p); err != nil {
			return nil, err
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}

func (r *PetitionRepo) Update(ctx context.Context, p *models.Petition) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE petitions SET title = $1, letter = $2, call_to_action = $3, call_to_action_header = $4,
		       display_on_campaign_page = $5, active = $6, signature_goal = $7, show_submissions = $8,
		       send_email = $9, mailto_send = $10, email_subject = $11, email_body = $12, email_to = $13,
		       email_cc = $14, email_include_comment = $15, create_account_opt_in = $16,
		       redirect_after = $17, signature_fields = $18, updated_at = now()
		WHERE id = $19
	`, p.Title, p.Letter, p.CallToAction, p.CallToActionHeader, p.DisplayOnCampaignPage,
		p.Active, p.SignatureGoal, p.ShowSubmissions, p.SendEmail, p.MailtoSend, p.EmailSubject,
		p.EmailBody, p.EmailTo, p.EmailCC, p.EmailIncludeComment, p.CreateAccountOptIn,
		p.RedirectAfter, p.SignatureFields, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the petition. Page bodies that still reference it resolve to nothing.
func (r *PetitionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM petitions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type PetitionFilter struct {
	Active                *bool
	DisplayOnCampaignPage *bool
	Search                string
	Limit                 int
	Offset                int
}

func (r *PetitionRepo) List(ctx context.Context, f PetitionFilter) ([]models.Petition, error) {
	query := `SELECT ` + petitionColumns + ` FROM petitions`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", argIdx))
		args = append(args, *f.Active)
		argIdx++
	}
	if f.DisplayOnCampaignPage != nil {
		where = append(where, fmt.Sprintf("display_on_campaign_page = $%d", argIdx))
		args = append(args, *f.DisplayOnCampaignPage)
		argIdx++
	}
	if f.Search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR letter ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}
	query += whereClause(where)

	limit := clampLimit(f.Limit, 50, 200)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	return r.query(ctx, query, args...)
}

// ListForChooser orders active petitions first, then by title.
func (r *PetitionRepo) ListForChooser(ctx context.Context) ([]models.Petition, error) {
	return r.query(ctx, `SELECT `+petitionColumns+` FROM petitions ORDER BY active DESC, title`)
}

func (r *PetitionRepo) query(ctx context.Context, query string, args ...any) ([]models.Petition, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var petitions []models.Petition
	for rows.Next() {
		var p models.Petition
		if err := scanPetition(rows, &p); err != nil {
			return nil, err
		}
		petitions = append(petitions, p)
	}
	return petitions, rows.Err()
}
