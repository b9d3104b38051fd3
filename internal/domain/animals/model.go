package animals

import "time"

// RoleAssignment es una entrada del historial de roles.
// Append-only: revocar = IsActive=false + RevokedAt, nunca se borra.
type RoleAssignment struct {
	Role       Role
	AssignedAt time.Time
	RevokedAt  *time.Time
	AssignedBy string
	Notes      string
	IsActive   bool
}

// InternalNumberRecord es una entrada del historial de números internos.
// Append-only igual que los roles (se cierra con EndedAt).
type InternalNumberRecord struct {
	ID             string
	InternalNumber string
	AssignedAt     time.Time
	EndedAt        *time.Time
	AssignedBy     string
	Reason         string
	Notes          string
	IsActive       bool
}

// CurrentInternalNumber refleja la entrada activa del historial (si la hay).
type CurrentInternalNumber struct {
	ID             string
	InternalNumber string
	IsActive       bool
	AssignedAt     time.Time
}

// Customer es el cliente dueño del animal.
type Customer struct {
	Name          string
	CustomerID    string
	Region        string
	ContactNumber string
	Email         string
	Category      CustomerCategory
}

// GenomicData resume qué datos genómicos existen para el animal.
// El contenido real vive en otros sistemas; acá solo flags/resumen.
type GenomicData struct {
	HasSNPData   bool
	HasBeadChip  bool
	SNPCount     int
	BeadChipID   string
	QualityScore float64
	LastUpdated  *time.Time
}

// ActivityData resume la actividad registrada del animal.
type ActivityData struct {
	TotalRecords int
	LastActivity *time.Time
}

// WorkflowSummary es el workflow en curso (si lo hay).
type WorkflowSummary struct {
	ID       string
	Name     string
	Step     string
	Progress int
	DueDate  *time.Time
}

// WorkflowData resume la participación del animal en workflows.
type WorkflowData struct {
	Current            *WorkflowSummary
	ActiveWorkflows    int
	CompletedWorkflows int
}

// Animal es el registro completo de un animal.
type Animal struct {
	ID         string // clave de storage (opaca, la asigna el repo/servicio)
	RegistryID string // ID público PREFIX-YYYY-NNN, único
	Name       string

	Species Species
	Sex     Sex
	Status  Status

	Roles []RoleAssignment

	Age         *float64 // años; puede ser fraccional (0.5 = 6 meses)
	Weight      *float64 // kg
	Height      *float64 // cm
	Color       string
	Breed       string
	Microchip   string
	DateOfBirth *time.Time

	// Linaje
	FatherName string
	MotherName string
	FatherID   string
	MotherID   string
	Family     string

	CurrentInternalNumber *CurrentInternalNumber
	InternalNumberHistory []InternalNumberRecord

	Owner           string
	Customer        *Customer
	CurrentLocation string
	Purpose         Purpose

	GenomicData  *GenomicData
	ActivityData *ActivityData
	WorkflowData *WorkflowData

	Notes string

	RegistrationDate time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasActiveRole responde si el animal tiene el rol activo.
// Es EL predicado de "rol activo": validador, filtros, stats y warnings
// usan esta misma función para no divergir entre sí.
func HasActiveRole(a Animal, role Role) bool {
	for _, r := range a.Roles {
		if r.Role == role && r.IsActive {
			return true
		}
	}
	return false
}

// HasAnyActiveRole responde si el animal tiene al menos un rol activo.
func HasAnyActiveRole(a Animal) bool {
	for _, r := range a.Roles {
		if r.IsActive {
			return true
		}
	}
	return false
}

// ActiveRoles devuelve las asignaciones activas, en orden de asignación.
func ActiveRoles(a Animal) []RoleAssignment {
	out := make([]RoleAssignment, 0, len(a.Roles))
	for _, r := range a.Roles {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out
}

// HasActiveInternalNumber responde si hay un número interno activo.
func HasActiveInternalNumber(a Animal) bool {
	return a.CurrentInternalNumber != nil && a.CurrentInternalNumber.IsActive
}

// HasGenomicData responde si el animal tiene datos genómicos (SNP o beadchip).
func HasGenomicData(a Animal) bool {
	return a.GenomicData != nil && (a.GenomicData.HasSNPData || a.GenomicData.HasBeadChip)
}

// HasActiveWorkflow responde si el animal participa en algún workflow activo.
func HasActiveWorkflow(a Animal) bool {
	return a.WorkflowData != nil && a.WorkflowData.ActiveWorkflows > 0
}
