package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"animal-registry/internal/ports/registrylookup"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrValidationFailed: el veredicto tiene errores; el registro no se persiste.
	// El Verdict devuelto junto al error tiene el detalle.
	ErrValidationFailed = errors.New("validation failed")
)

// Service orquesta validación, generación de identificadores y persistencia.
// El lookup de unicidad es inyectado: por defecto el propio repo, o un
// registro central remoto si está configurado.
type Service struct {
	repo   Repository
	lookup registrylookup.Lookup
	cfg    Config
	now    func() time.Time
}

func NewService(repo Repository, lookup registrylookup.Lookup, cfg Config) *Service {
	if lookup == nil {
		lookup = repo
	}
	return &Service{
		repo:   repo,
		lookup: lookup,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *Service) validator() *Validator {
	return NewValidator(s.cfg).WithClock(s.now)
}

// Config expone las tablas (para handlers que listan especies/roles).
func (s *Service) Config() Config {
	return s.cfg
}

// Validate corre la validación completa de un candidato, incluyendo los
// chequeos async de unicidad (registryID, microchip). Si el lookup falla,
// devuelve ErrLookupUnavailable: validación incompleta, nunca "válido".
func (s *Service) Validate(ctx context.Context, c Candidate, excludeID string) (Verdict, error) {
	verdict := s.validator().Validate(c)

	for _, check := range []struct {
		field registrylookup.Field
		value string
	}{
		{registrylookup.FieldRegistryID, c.RegistryID},
		{registrylookup.FieldMicrochip, c.Microchip},
	} {
		d, err := CheckUnique(ctx, s.lookup, check.field, check.value, excludeID)
		if err != nil {
			return verdict, err
		}
		if d != nil {
			verdict.add(*d)
		}
	}

	verdict.IsValid = len(verdict.Errors) == 0
	return verdict, nil
}

// Register da de alta un animal: genera el registry ID si no viene, valida,
// bloquea con errores (warnings no bloquean) y persiste.
func (s *Service) Register(ctx context.Context, c Candidate, actor string) (Animal, Verdict, error) {
	c.RegistryID = strings.TrimSpace(c.RegistryID)
	c.Name = strings.TrimSpace(c.Name)

	now := s.now()

	if c.RegistryID == "" {
		existing, err := s.repo.ListRegistryIDs(ctx)
		if err != nil {
			return Animal{}, Verdict{}, err
		}
		c.RegistryID = NextRegistryID(s.cfg, c.Species, now.Year(), existing)
	}

	verdict, err := s.Validate(ctx, c, "")
	if err != nil {
		return Animal{}, verdict, err
	}
	if !verdict.IsValid {
		return Animal{}, verdict, ErrValidationFailed
	}

	a := Animal{
		ID:               uuid.NewString(),
		RegistryID:       c.RegistryID,
		Name:             c.Name,
		Species:          c.Species,
		Sex:              c.Sex,
		Status:           c.Status,
		Age:              c.Age,
		Weight:           c.Weight,
		Microchip:        strings.TrimSpace(c.Microchip),
		Breed:            strings.TrimSpace(c.Breed),
		Color:            strings.TrimSpace(c.Color),
		Owner:            strings.TrimSpace(c.Owner),
		Customer:         c.Customer,
		Purpose:          c.Purpose,
		Notes:            strings.TrimSpace(c.Notes),
		RegistrationDate: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if dob, ok := parseDOB(c.DateOfBirth); ok {
		a.DateOfBirth = &dob
	}

	for _, r := range c.SelectedRoles {
		if hasAssignment(a.Roles, r) {
			continue
		}
		a.Roles = append(a.Roles, RoleAssignment{
			Role:       r,
			AssignedAt: now,
			AssignedBy: actor,
			IsActive:   true,
		})
	}

	if c.GenerateInternalNumber {
		numbers, err := s.repo.ListInternalNumbers(ctx)
		if err != nil {
			return Animal{}, verdict, err
		}
		applyInternalNumber(&a, NextInternalNumber(now.Year(), numbers), actor, "initial registration", now)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, verdict, err
	}
	return a, verdict, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByRegistryID(ctx context.Context, registryID string) (Animal, error) {
	registryID = strings.TrimSpace(registryID)
	if registryID == "" {
		return Animal{}, ErrInvalidInput
	}
	return s.repo.GetByRegistryID(ctx, registryID)
}

// List filtra y ordena sobre el snapshot del repo.
func (s *Service) List(ctx context.Context, f FilterOptions, key SortKey, dir SortDirection) ([]Animal, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return SortBy(Filter(all, f), key, dir), nil
}

// UpdateProfileInput: punteros para PATCH real, nil = no tocar.
type UpdateProfileInput struct {
	Name        *string
	Age         *float64
	Weight      *float64
	Height      *float64
	Color       *string
	Breed       *string
	Microchip   *string
	DateOfBirth *string // "" = limpiar
	Owner       *string
	Location    *string
	Purpose     *string
	Notes       *string
}

// UpdateProfile aplica el patch, re-valida el registro completo y solo
// persiste si no hay errores. UpdatedAt se estampa en toda mutación exitosa.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (Animal, Verdict, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, Verdict{}, err
	}

	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.Age != nil {
		a.Age = in.Age
	}
	if in.Weight != nil {
		a.Weight = in.Weight
	}
	if in.Height != nil {
		a.Height = in.Height
	}
	if in.Color != nil {
		a.Color = strings.TrimSpace(*in.Color)
	}
	if in.Breed != nil {
		a.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Microchip != nil {
		a.Microchip = strings.TrimSpace(*in.Microchip)
	}
	if in.DateOfBirth != nil {
		if strings.TrimSpace(*in.DateOfBirth) == "" {
			a.DateOfBirth = nil
		} else if dob, ok := parseDOB(*in.DateOfBirth); ok {
			a.DateOfBirth = &dob
		} else {
			return Animal{}, Verdict{}, ErrInvalidInput
		}
	}
	if in.Owner != nil {
		a.Owner = strings.TrimSpace(*in.Owner)
	}
	if in.Location != nil {
		a.CurrentLocation = strings.TrimSpace(*in.Location)
	}
	if in.Purpose != nil {
		a.Purpose = Purpose(strings.TrimSpace(*in.Purpose))
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}

	return s.revalidateAndUpdate(ctx, a)
}

// AssignRole agrega una asignación activa (append-only) y re-valida:
// p.ej. Sire sobre hembra queda bloqueado con ROLE_SEX_MISMATCH.
func (s *Service) AssignRole(ctx context.Context, id string, role Role, assignedBy, notes string) (Animal, Verdict, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, Verdict{}, err
	}
	if !s.cfg.KnownRole(role) {
		return Animal{}, Verdict{}, ErrInvalidInput
	}
	if hasAssignment(a.Roles, role) {
		// idempotente
		return a, s.validator().Validate(CandidateFrom(a)), nil
	}

	a.Roles = append(a.Roles, RoleAssignment{
		Role:       role,
		AssignedAt: s.now(),
		AssignedBy: assignedBy,
		Notes:      notes,
		IsActive:   true,
	})

	return s.revalidateAndUpdate(ctx, a)
}

// RevokeRole desactiva la asignación (nunca borra) y estampa RevokedAt.
func (s *Service) RevokeRole(ctx context.Context, id string, role Role) (Animal, Verdict, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, Verdict{}, err
	}

	now := s.now()
	found := false
	for i := range a.Roles {
		if a.Roles[i].Role == role && a.Roles[i].IsActive {
			a.Roles[i].IsActive = false
			a.Roles[i].RevokedAt = &now
			found = true
		}
	}
	if !found {
		return Animal{}, Verdict{}, ErrNotFound
	}

	return s.revalidateAndUpdate(ctx, a)
}

// AssignInternalNumber cierra la entrada activa (si la hay) y agrega una
// nueva. Invariante: a lo sumo una entrada activa en el historial, espejada
// por CurrentInternalNumber.
func (s *Service) AssignInternalNumber(ctx context.Context, id, assignedBy, reason string) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	numbers, err := s.repo.ListInternalNumbers(ctx)
	if err != nil {
		return Animal{}, err
	}

	now := s.now()
	applyInternalNumber(&a, NextInternalNumber(now.Year(), numbers), assignedBy, reason, now)
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// EndInternalNumber cierra la entrada activa sin abrir una nueva.
func (s *Service) EndInternalNumber(ctx context.Context, id string) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	now := s.now()
	if !closeActiveInternalNumber(&a, now) {
		return Animal{}, ErrNotFound
	}
	a.CurrentInternalNumber = nil
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// ChangeStatus cambia el estado del registro.
func (s *Service) ChangeStatus(ctx context.Context, id string, status Status) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	valid := false
	for _, st := range KnownStatuses() {
		if status == st {
			valid = true
			break
		}
	}
	if !valid {
		return Animal{}, ErrInvalidInput
	}

	a.Status = status
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// MarkTransferred se usa al aceptar una transferencia de propiedad.
func (s *Service) MarkTransferred(ctx context.Context, id, newOwner string) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	a.Status = StatusTransferred
	if strings.TrimSpace(newOwner) != "" {
		a.Owner = strings.TrimSpace(newOwner)
	}
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// ApplyTransfer es la variante de MarkTransferred que consumen los
// handlers de transfers a través de una interfaz local.
func (s *Service) ApplyTransfer(ctx context.Context, id, newOwner string) error {
	_, err := s.MarkTransferred(ctx, id, newOwner)
	return err
}

// OwnerOf expone el owner de un animal (evita ciclos de import con transfers).
func (s *Service) OwnerOf(ctx context.Context, id string) (string, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return a.Owner, nil
}

// RowResult es el veredicto de una fila de import.
type RowResult struct {
	Index      int
	RegistryID string
	Verdict    Verdict
}

// BulkReport resume un import masivo.
type BulkReport struct {
	Summary  BulkSummary
	Imported int
	Results  []RowResult
}

// ImportBulk valida cada fila y persiste las válidas (warnings no bloquean).
// Nunca aborta el lote por una fila mala. El progreso se reporta por fila.
func (s *Service) ImportBulk(ctx context.Context, rows []ImportRow, actor string, progress func(done, total int)) (BulkReport, error) {
	report := BulkReport{Results: make([]RowResult, 0, len(rows))}
	verdicts := make([]Verdict, 0, len(rows))

	for i, row := range rows {
		c := CandidateFromRow(row)

		a, verdict, err := s.Register(ctx, c, actor)
		if err != nil && !errors.Is(err, ErrValidationFailed) {
			// Falla de infraestructura (store/lookup): esto sí corta el lote,
			// porque ya no podemos distinguir filas válidas de inválidas.
			return report, err
		}

		result := RowResult{Index: i, Verdict: verdict}
		if err == nil {
			result.RegistryID = a.RegistryID
			report.Imported++
		}
		report.Results = append(report.Results, result)
		verdicts = append(verdicts, verdict)

		if progress != nil {
			progress(i+1, len(rows))
		}
	}

	report.Summary = Summarize(verdicts)
	return report, nil
}

// Stats calcula los contadores del dashboard sobre todo el repo.
func (s *Service) Stats(ctx context.Context) (SummaryStats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return SummaryStats{}, err
	}
	return Stats(s.cfg, all, s.now()), nil
}

// WarningsFor deriva los flags de atención de un animal.
func (s *Service) WarningsFor(ctx context.Context, id string) ([]string, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return Warnings(a, s.now()), nil
}

// ExportFormat csv|json.
type ExportFormat string

const (
	ExportCSVFormat  ExportFormat = "csv"
	ExportJSONFormat ExportFormat = "json"
)

// Export serializa la colección filtrada.
func (s *Service) Export(ctx context.Context, f FilterOptions, format ExportFormat) ([]byte, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := Filter(all, f)

	switch format {
	case ExportJSONFormat:
		return ExportJSON(filtered)
	case ExportCSVFormat, "":
		return ExportCSV(filtered)
	default:
		return nil, ErrInvalidInput
	}
}

// --- helpers ---

func (s *Service) revalidateAndUpdate(ctx context.Context, a Animal) (Animal, Verdict, error) {
	verdict := s.validator().Validate(CandidateFrom(a))
	if !verdict.IsValid {
		return Animal{}, verdict, ErrValidationFailed
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, verdict, err
	}
	return a, verdict, nil
}

func hasAssignment(roles []RoleAssignment, role Role) bool {
	for _, r := range roles {
		if r.Role == role && r.IsActive {
			return true
		}
	}
	return false
}

// closeActiveInternalNumber cierra todas las entradas activas.
// Invariante del historial: a lo sumo una entrada activa.
func closeActiveInternalNumber(a *Animal, now time.Time) bool {
	closed := false
	for i := range a.InternalNumberHistory {
		if a.InternalNumberHistory[i].IsActive {
			a.InternalNumberHistory[i].IsActive = false
			a.InternalNumberHistory[i].EndedAt = &now
			closed = true
		}
	}
	return closed
}

func applyInternalNumber(a *Animal, number, assignedBy, reason string, now time.Time) {
	closeActiveInternalNumber(a, now)

	rec := InternalNumberRecord{
		ID:             uuid.NewString(),
		InternalNumber: number,
		AssignedAt:     now,
		AssignedBy:     assignedBy,
		Reason:         reason,
		IsActive:       true,
	}
	a.InternalNumberHistory = append(a.InternalNumberHistory, rec)
	a.CurrentInternalNumber = &CurrentInternalNumber{
		ID:             rec.ID,
		InternalNumber: rec.InternalNumber,
		IsActive:       true,
		AssignedAt:     now,
	}
}
