package repositories

import (
	"context"
	"errors"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RedirectRepo struct {
	db DBTX
}

func NewRedirectRepo(db DBTX) *RedirectRepo {
	return &RedirectRepo{db: db}
}

// GetOrCreate leaves an existing redirect for oldPath untouched.
func (r *RedirectRepo) GetOrCreate(ctx context.Context, oldPath string, pageID uuid.UUID) (*models.Redirect, bool, error) {
	var rd models.Redirect
	err := r.db.QueryRow(ctx, `
		INSERT INTO redirects (old_path, redirect_page_id) VALUES ($1, $2)
		ON CONFLICT (old_path) DO NOTHING
		RETURNING id, old_path, redirect_page_id, is_permanent, created_at
	`, oldPath, pageID).Scan(&rd.ID, &rd.OldPath, &rd.RedirectPageID, &rd.IsPermanent, &rd.CreatedAt)
	if err == nil {
		return &rd, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	existing, err := r.GetByOldPath(ctx, oldPath)
	return existing, false, err
}

func (r *RedirectRepo) GetByOldPath(ctx context.Context, oldPath string) (*models.Redirect, error) {
	var rd models.Redirect
	err := r.db.QueryRow(ctx, `
		SELECT id, old_path, redirect_page_id, is_permanent, created_at FROM redirects WHERE old_path = $1
	`, oldPath).Scan(&rd.ID, &rd.OldPath, &rd.RedirectPageID, &rd.IsPermanent, &rd.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &rd, nil
}
