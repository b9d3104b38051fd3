package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"animal-registry/internal/domain/transfers"
)

type TransfersRepo struct {
	db *sql.DB
}

func NewTransfersRepo(db *sql.DB) *TransfersRepo {
	return &TransfersRepo{db: db}
}

func (r *TransfersRepo) Create(ctx context.Context, t transfers.Transfer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ownership_transfers (
			id, animal_id,
			from_owner_id, to_owner_id,
			status, notes,
			created_at, updated_at, resolved_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		t.ID,
		t.AnimalID,
		t.FromOwnerID,
		t.ToOwnerID,
		string(t.Status),
		t.Notes,
		t.CreatedAt,
		t.UpdatedAt,
		toNullTime(t.ResolvedAt),
	)
	return err
}

func (r *TransfersRepo) Update(ctx context.Context, t transfers.Transfer) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ownership_transfers
		SET
			status = $2,
			notes = $3,
			updated_at = $4,
			resolved_at = $5
		WHERE id = $1
	`,
		t.ID,
		string(t.Status),
		t.Notes,
		t.UpdatedAt,
		toNullTime(t.ResolvedAt),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TransfersRepo) GetByID(ctx context.Context, id string) (transfers.Transfer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return transfers.Transfer{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, animal_id,
			from_owner_id, to_owner_id,
			status, notes,
			created_at, updated_at, resolved_at
		FROM ownership_transfers
		WHERE id = $1
	`, id)

	return scanTransfer(row)
}

func (r *TransfersRepo) ListByAnimal(ctx context.Context, animalID string) ([]transfers.Transfer, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, animal_id,
			from_owner_id, to_owner_id,
			status, notes,
			created_at, updated_at, resolved_at
		FROM ownership_transfers
		WHERE animal_id = $1
		ORDER BY created_at ASC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransfers(rows)
}

func (r *TransfersRepo) ListByOwner(ctx context.Context, ownerID string) ([]transfers.Transfer, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, animal_id,
			from_owner_id, to_owner_id,
			status, notes,
			created_at, updated_at, resolved_at
		FROM ownership_transfers
		WHERE from_owner_id = $1 OR to_owner_id = $1
		ORDER BY created_at ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransfers(rows)
}

func scanTransfer(row rowScanner) (transfers.Transfer, error) {
	var t transfers.Transfer
	var status string
	var resolved sql.NullTime

	if err := row.Scan(
		&t.ID,
		&t.AnimalID,
		&t.FromOwnerID,
		&t.ToOwnerID,
		&status,
		&t.Notes,
		&t.CreatedAt,
		&t.UpdatedAt,
		&resolved,
	); err != nil {
		if err == sql.ErrNoRows {
			return transfers.Transfer{}, ErrNotFound
		}
		return transfers.Transfer{}, err
	}

	t.Status = transfers.Status(status)
	if resolved.Valid {
		v := resolved.Time
		t.ResolvedAt = &v
	}

	return t, nil
}

func collectTransfers(rows *sql.Rows) ([]transfers.Transfer, error) {
	out := make([]transfers.Transfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
