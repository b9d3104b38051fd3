package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"animal-registry/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

func (r *EventsRepo) Create(ctx context.Context, e events.RegistryEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO registry_events (
			id, animal_id,
			type, occurred_at, recorded_at,
			title, notes,
			actor_type, actor_id,
			source,
			status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		e.ID,
		e.AnimalID,
		string(e.Type),
		e.OccurredAt,
		e.RecordedAt,
		e.Title,
		e.Notes,
		string(e.Actor.Type),
		e.Actor.ID,
		string(e.Source),
		string(e.Status),
	)
	return err
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.RegistryEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.RegistryEvent{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, animal_id,
			type, occurred_at, recorded_at,
			title, notes,
			actor_type, actor_id,
			source,
			status
		FROM registry_events
		WHERE id = $1
	`, id)

	var e events.RegistryEvent
	var typ, actorType, source, status string
	if err := row.Scan(
		&e.ID,
		&e.AnimalID,
		&typ,
		&e.OccurredAt,
		&e.RecordedAt,
		&e.Title,
		&e.Notes,
		&actorType,
		&e.Actor.ID,
		&source,
		&status,
	); err != nil {
		if err == sql.ErrNoRows {
			return events.RegistryEvent{}, ErrNotFound
		}
		return events.RegistryEvent{}, err
	}

	e.Type = events.EventType(typ)
	e.Actor.Type = events.ActorType(actorType)
	e.Source = events.Source(source)
	e.Status = events.EventStatus(status)

	return e, nil
}

func (r *EventsRepo) ListByAnimal(ctx context.Context, animalID string, filter events.ListFilter) ([]events.RegistryEvent, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, nil
	}

	// Base query
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, animal_id,
			type, occurred_at, recorded_at,
			title, notes,
			actor_type, actor_id,
			source,
			status
		FROM registry_events
		WHERE animal_id = $1
	`)

	args := []any{animalID}
	argN := 2

	// types filter
	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(t))
			argN++
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	// from/to
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	// q: búsqueda simple en title + notes
	if strings.TrimSpace(filter.Query) != "" {
		sb.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR notes ILIKE $%d)", argN, argN))
		args = append(args, "%"+strings.TrimSpace(filter.Query)+"%")
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY occurred_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.RegistryEvent, 0)
	for rows.Next() {
		var e events.RegistryEvent
		var typ, actorType, source, status string

		if err := rows.Scan(
			&e.ID,
			&e.AnimalID,
			&typ,
			&e.OccurredAt,
			&e.RecordedAt,
			&e.Title,
			&e.Notes,
			&actorType,
			&e.Actor.ID,
			&source,
			&status,
		); err != nil {
			return nil, err
		}

		e.Type = events.EventType(typ)
		e.Actor.Type = events.ActorType(actorType)
		e.Source = events.Source(source)
		e.Status = events.EventStatus(status)

		out = append(out, e)
	}

	return out, rows.Err()
}

func (r *EventsRepo) Void(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE registry_events
		SET status = 'voided'
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
