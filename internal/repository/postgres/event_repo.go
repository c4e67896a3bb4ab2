package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"frameit/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, name, description, location, start_time, welcome_message,
		access_code, qr_code_key, cover_image_key, creator_id, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (id, name, description, location, start_time, welcome_message,
			access_code, qr_code_key, cover_image_key, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := tx.ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.Location, e.StartTime, e.WelcomeMessage,
		e.AccessCode, e.QRCodeKey, nullString(e.CoverImageKey), e.CreatorID, e.CreatedAt, e.UpdatedAt,
	); err != nil {
		return err
	}
	for _, tag := range e.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_tags (event_id, tag) VALUES ($1, $2) ON CONFLICT (event_id, tag) DO NOTHING`,
			e.ID, tag,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	tags, err := r.loadTags(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Tags = tags
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, fields domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.Description != nil {
		add("description", *fields.Description)
	}
	if fields.Location != nil {
		add("location", *fields.Location)
	}
	if fields.StartTime != nil {
		add("start_time", *fields.StartTime)
	}
	if fields.WelcomeMessage != nil {
		add("welcome_message", *fields.WelcomeMessage)
	}
	if fields.CoverImageKey != nil {
		add("cover_image_key", *fields.CoverImageKey)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns+`
	`, strings.Join(setClauses, ", "), n)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	if fields.Tags != nil {
		if _, err := r.DB.ExecContext(ctx, `DELETE FROM event_tags WHERE event_id = $1`, id); err != nil {
			return nil, err
		}
		for _, tag := range fields.Tags {
			if _, err := r.DB.ExecContext(ctx,
				`INSERT INTO event_tags (event_id, tag) VALUES ($1, $2) ON CONFLICT (event_id, tag) DO NOTHING`,
				id, tag,
			); err != nil {
				return nil, err
			}
		}
	}
	tags, err := r.loadTags(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Tags = tags
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) loadTags(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT tag FROM event_tags WHERE event_id = $1 ORDER BY tag`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, welcomeNull, coverNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Name, &descNull, &e.Location, &e.StartTime, &welcomeNull,
		&e.AccessCode, &e.QRCodeKey, &coverNull, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Description = descNull.String
	e.WelcomeMessage = welcomeNull.String
	e.CoverImageKey = coverNull.String
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
