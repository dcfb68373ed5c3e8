package repositories

import (
	"context"

	"github.com/civic-action/platform/internal/models"
	"github.com/google/uuid"
)

type EventRepo struct {
	db DBTX
}

func NewEventRepo(db DBTX) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Create(ctx context.Context, e *models.ScheduledEvent) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO scheduled_events (title, description, location, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt).Scan(&e.ID, &e.CreatedAt)
}

func (r *EventRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduledEvent, error) {
	var e models.ScheduledEvent
	err := r.db.QueryRow(ctx, `
		SELECT id, title, description, location, starts_at, ends_at, created_at
		FROM scheduled_events WHERE id = $1
	`, id).Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *EventRepo) List(ctx context.Context, limit, offset int) ([]models.ScheduledEvent, error) {
	limit = clampLimit(limit, 50, 200)
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, location, starts_at, ends_at, created_at
		FROM scheduled_events ORDER BY starts_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.ScheduledEvent
	for rows.Next() {
		var e models.ScheduledEvent
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
