package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"animal-registry/internal/domain/animals"
	"animal-registry/internal/ports/registrylookup"
)

// AnimalsRepo persiste el registro en la tabla animals. Los campos planos
// van a columnas; los historiales (roles, números internos) y los agregados
// (customer, genomic/activity/workflow) van como JSONB.
type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, registry_id, name,
	species, sex, status,
	roles,
	age, weight, height, color, breed, microchip, date_of_birth,
	father_name, mother_name, father_id, mother_id, family,
	current_internal_number, internal_number_history,
	owner, customer, current_location, purpose,
	genomic_data, activity_data, workflow_data,
	notes,
	registration_date, created_at, updated_at
`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	cols, err := toAnimalRow(a)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
		        $20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32)
	`, cols...)
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	cols, err := toAnimalRow(a)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			registry_id = $2, name = $3,
			species = $4, sex = $5, status = $6,
			roles = $7,
			age = $8, weight = $9, height = $10, color = $11, breed = $12,
			microchip = $13, date_of_birth = $14,
			father_name = $15, mother_name = $16, father_id = $17, mother_id = $18, family = $19,
			current_internal_number = $20, internal_number_history = $21,
			owner = $22, customer = $23, current_location = $24, purpose = $25,
			genomic_data = $26, activity_data = $27, workflow_data = $28,
			notes = $29,
			registration_date = $30, created_at = $31, updated_at = $32
		WHERE id = $1
	`, cols...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = $1
	`, id)

	return scanAnimal(row)
}

func (r *AnimalsRepo) GetByRegistryID(ctx context.Context, registryID string) (animals.Animal, error) {
	registryID = strings.TrimSpace(registryID)
	if registryID == "" {
		return animals.Animal{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE registry_id = $1
	`, registryID)

	return scanAnimal(row)
}

func (r *AnimalsRepo) List(ctx context.Context) ([]animals.Animal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

func (r *AnimalsRepo) ListRegistryIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT registry_id FROM animals`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) ListInternalNumbers(ctx context.Context) ([]string, error) {
	// El historial completo cuenta: un número cerrado no se reusa.
	rows, err := r.db.QueryContext(ctx, `
		SELECT rec->>'InternalNumber'
		FROM animals, jsonb_array_elements(internal_number_history) AS rec
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var n sql.NullString
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		if n.Valid && n.String != "" {
			out = append(out, n.String)
		}
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) Exists(ctx context.Context, field registrylookup.Field, value, excludeID string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}

	var col string
	switch field {
	case registrylookup.FieldRegistryID:
		col = "registry_id"
	case registrylookup.FieldMicrochip:
		col = "microchip"
	default:
		return false, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM animals
			WHERE `+col+` = $1 AND id <> $2
		)
	`, value, excludeID).Scan(&exists)
	return exists, err
}

// --- row mapping ---

type rowScanner interface {
	Scan(dest ...any) error
}

func toAnimalRow(a animals.Animal) ([]any, error) {
	roles, err := json.Marshal(a.Roles)
	if err != nil {
		return nil, err
	}
	history, err := json.Marshal(a.InternalNumberHistory)
	if err != nil {
		return nil, err
	}
	current, err := marshalNullable(a.CurrentInternalNumber)
	if err != nil {
		return nil, err
	}
	customer, err := marshalNullable(a.Customer)
	if err != nil {
		return nil, err
	}
	genomic, err := marshalNullable(a.GenomicData)
	if err != nil {
		return nil, err
	}
	activity, err := marshalNullable(a.ActivityData)
	if err != nil {
		return nil, err
	}
	workflow, err := marshalNullable(a.WorkflowData)
	if err != nil {
		return nil, err
	}

	return []any{
		a.ID, a.RegistryID, a.Name,
		string(a.Species), string(a.Sex), string(a.Status),
		roles,
		toNullFloat(a.Age), toNullFloat(a.Weight), toNullFloat(a.Height), a.Color, a.Breed,
		a.Microchip, toNullDate(a.DateOfBirth),
		a.FatherName, a.MotherName, a.FatherID, a.MotherID, a.Family,
		current, history,
		a.Owner, customer, a.CurrentLocation, string(a.Purpose),
		genomic, activity, workflow,
		a.Notes,
		a.RegistrationDate, a.CreatedAt, a.UpdatedAt,
	}, nil
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var species, sex, status, purpose string
	var age, weight, height sql.NullFloat64
	var dob sql.NullTime
	var roles, history []byte
	var current, customer, genomic, activity, workflow []byte

	if err := row.Scan(
		&a.ID, &a.RegistryID, &a.Name,
		&species, &sex, &status,
		&roles,
		&age, &weight, &height, &a.Color, &a.Breed, &a.Microchip, &dob,
		&a.FatherName, &a.MotherName, &a.FatherID, &a.MotherID, &a.Family,
		&current, &history,
		&a.Owner, &customer, &a.CurrentLocation, &purpose,
		&genomic, &activity, &workflow,
		&a.Notes,
		&a.RegistrationDate, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, ErrNotFound
		}
		return animals.Animal{}, err
	}

	a.Species = animals.Species(species)
	a.Sex = animals.Sex(sex)
	a.Status = animals.Status(status)
	a.Purpose = animals.Purpose(purpose)

	a.Age = fromNullFloat(age)
	a.Weight = fromNullFloat(weight)
	a.Height = fromNullFloat(height)

	if dob.Valid {
		t := dob.Time
		a.DateOfBirth = &t
	}

	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &a.Roles); err != nil {
			return animals.Animal{}, err
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.InternalNumberHistory); err != nil {
			return animals.Animal{}, err
		}
	}
	if err := unmarshalNullable(current, &a.CurrentInternalNumber); err != nil {
		return animals.Animal{}, err
	}
	if err := unmarshalNullable(customer, &a.Customer); err != nil {
		return animals.Animal{}, err
	}
	if err := unmarshalNullable(genomic, &a.GenomicData); err != nil {
		return animals.Animal{}, err
	}
	if err := unmarshalNullable(activity, &a.ActivityData); err != nil {
		return animals.Animal{}, err
	}
	if err := unmarshalNullable(workflow, &a.WorkflowData); err != nil {
		return animals.Animal{}, err
	}

	return a, nil
}

// marshalNullable serializa punteros opcionales: nil => NULL en la columna.
func marshalNullable[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalNullable[T any](raw []byte, dst **T) error {
	if len(raw) == 0 || string(raw) == "null" {
		*dst = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// date_of_birth es DATE, lo pasamos como NullTime para simplificar
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
