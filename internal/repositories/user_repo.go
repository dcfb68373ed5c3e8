package repositories

import (
	"context"
	"time"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, is_staff, is_organizer, created_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsStaff, &u.IsOrganizer, &u.CreatedAt, &u.LastLoginAt)
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, is_staff, is_organizer)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsStaff, u.IsOrganizer,
	).Scan(&u.ID, &u.CreatedAt)
	return mapErr(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email), &u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}

func (r *UserRepo) SetStaff(ctx context.Context, id uuid.UUID, staff bool) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET is_staff = $1 WHERE id = $2`, staff, id)
	return err
}

// Delete cascades to the profile, shirt orders, memberships and applications.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NewsletterSubscribers lists emails of opted-in members not on the do-not-email list.
func (r *UserRepo) NewsletterSubscribers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.email FROM users u JOIN profiles p ON p.user_id = u.id
		WHERE p.newsletter_opt_in
		  AND NOT EXISTS (SELECT 1 FROM do_not_email d WHERE lower(d.email) = lower(u.email))
		ORDER BY u.email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
