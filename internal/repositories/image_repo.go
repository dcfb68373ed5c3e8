package repositories

import (
	"context"
	"errors"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ImageRepo struct {
	db DBTX
}

func NewImageRepo(db DBTX) *ImageRepo {
	return &ImageRepo{db: db}
}

// GetOrCreateByTitle returns the first image with the title, creating one pointing at file otherwise.
func (r *ImageRepo) GetOrCreateByTitle(ctx context.Context, title, file string) (*models.Image, error) {
	var img models.Image
	err := r.db.QueryRow(ctx, `
		SELECT id, title, file, created_at FROM images WHERE title = $1 ORDER BY created_at LIMIT 1
	`, title).Scan(&img.ID, &img.Title, &img.File, &img.CreatedAt)
	if err == nil {
		return &img, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	img = models.Image{Title: title, File: file}
	err = r.db.QueryRow(ctx, `
		INSERT INTO images (title, file) VALUES ($1, $2) RETURNING id, created_at
	`, title, file).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *ImageRepo) GetImagesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Image, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, file, created_at FROM images WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*models.Image, len(ids))
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.Title, &img.File, &img.CreatedAt); err != nil {
			return nil, err
		}
		out[img.ID] = &img
	}
	return out, rows.Err()
}
