package animals

import (
	"sort"
	"strings"
	"time"
)

// Motor de consultas sobre colecciones de animales. Todos los predicados
// reutilizan los mismos helpers de estado/rol que el validador (HasActiveRole
// y compañía) para que las vistas de lista y la validación nunca difieran.

// AgeRange / DateRange para filtros numéricos y de fecha.
type AgeRange struct {
	Min float64
	Max float64
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

// FilterOptions es un filtro conjuntivo: todos los campos presentes deben
// matchear (AND); un campo ausente matchea todo.
type FilterOptions struct {
	Species []Species
	Roles   []Role
	Status  []Status
	Purpose []Purpose

	HasInternalNumber *bool
	HasActiveWorkflow *bool
	HasGenomicData    *bool

	AgeRange  *AgeRange
	DateRange *DateRange // sobre RegistrationDate

	Customer string // substring case-insensitive sobre customer.name
	Location string // substring case-insensitive sobre currentLocation
}

// Filter aplica el filtro conjuntivo preservando el orden de entrada.
func Filter(animalsIn []Animal, f FilterOptions) []Animal {
	out := make([]Animal, 0, len(animalsIn))
	for _, a := range animalsIn {
		if matches(a, f) {
			out = append(out, a)
		}
	}
	return out
}

func matches(a Animal, f FilterOptions) bool {
	if len(f.Species) > 0 && !containsSpecies(f.Species, a.Species) {
		return false
	}

	if len(f.Roles) > 0 {
		ok := false
		for _, r := range f.Roles {
			if HasActiveRole(a, r) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if len(f.Status) > 0 && !containsStatus(f.Status, a.Status) {
		return false
	}

	if len(f.Purpose) > 0 {
		if a.Purpose == "" || !containsPurpose(f.Purpose, a.Purpose) {
			return false
		}
	}

	if f.HasInternalNumber != nil && *f.HasInternalNumber != HasActiveInternalNumber(a) {
		return false
	}
	if f.HasActiveWorkflow != nil && *f.HasActiveWorkflow != HasActiveWorkflow(a) {
		return false
	}
	if f.HasGenomicData != nil && *f.HasGenomicData != HasGenomicData(a) {
		return false
	}

	if f.AgeRange != nil && a.Age != nil {
		if *a.Age < f.AgeRange.Min || *a.Age > f.AgeRange.Max {
			return false
		}
	}

	if f.DateRange != nil {
		if a.RegistrationDate.Before(f.DateRange.Start) || a.RegistrationDate.After(f.DateRange.End) {
			return false
		}
	}

	if f.Customer != "" {
		if a.Customer == nil || !strings.Contains(strings.ToLower(a.Customer.Name), strings.ToLower(f.Customer)) {
			return false
		}
	}

	if f.Location != "" {
		if !strings.Contains(strings.ToLower(a.CurrentLocation), strings.ToLower(f.Location)) {
			return false
		}
	}

	return true
}

// SortKey son las claves de orden soportadas por las vistas de tabla.
type SortKey string

const (
	SortByRegistryID       SortKey = "registryID"
	SortByName             SortKey = "name"
	SortBySpecies          SortKey = "species"
	SortByAge              SortKey = "age"
	SortByRegistrationDate SortKey = "registrationDate"
	SortByStatus           SortKey = "status"
	SortByCustomer         SortKey = "customer"
)

// SortDirection asc|desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortBy devuelve una copia ordenada (estable). Claves desconocidas caen
// al orden por registry ID.
func SortBy(animalsIn []Animal, key SortKey, dir SortDirection) []Animal {
	out := make([]Animal, len(animalsIn))
	copy(out, animalsIn)

	cmp := func(a, b Animal) int {
		switch key {
		case SortByName:
			return strings.Compare(a.Name, b.Name)
		case SortBySpecies:
			return strings.Compare(string(a.Species), string(b.Species))
		case SortByAge:
			av, bv := 0.0, 0.0
			if a.Age != nil {
				av = *a.Age
			}
			if b.Age != nil {
				bv = *b.Age
			}
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		case SortByRegistrationDate:
			switch {
			case a.RegistrationDate.Before(b.RegistrationDate):
				return -1
			case a.RegistrationDate.After(b.RegistrationDate):
				return 1
			default:
				return 0
			}
		case SortByStatus:
			return strings.Compare(string(a.Status), string(b.Status))
		case SortByCustomer:
			an, bn := "", ""
			if a.Customer != nil {
				an = a.Customer.Name
			}
			if b.Customer != nil {
				bn = b.Customer.Name
			}
			return strings.Compare(an, bn)
		default:
			return strings.Compare(a.RegistryID, b.RegistryID)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if dir == SortDesc {
			return c > 0
		}
		return c < 0
	})

	return out
}

// SummaryStats son los contadores del dashboard.
type SummaryStats struct {
	Total               int
	Active              int
	BySpecies           map[Species]int
	ByRole              map[Role]int // solo asignaciones ACTIVAS
	ByStatus            map[Status]int
	WithInternalNumbers int
	WithActiveWorkflows int
	WithGenomicData     int
	RecentlyAdded       int // creados en los últimos 7 días
}

// Stats calcula los contadores sobre la colección. El reloj viene por
// parámetro para que "recién agregados" sea determinístico en tests.
func Stats(cfg Config, animalsIn []Animal, now time.Time) SummaryStats {
	s := SummaryStats{
		Total:     len(animalsIn),
		BySpecies: make(map[Species]int),
		ByRole:    make(map[Role]int),
		ByStatus:  make(map[Status]int),
	}

	for _, sp := range cfg.KnownSpecies() {
		s.BySpecies[sp] = 0
	}
	for _, r := range KnownRoles() {
		s.ByRole[r] = 0
	}
	for _, st := range KnownStatuses() {
		s.ByStatus[st] = 0
	}

	weekAgo := now.AddDate(0, 0, -7)

	for _, a := range animalsIn {
		if a.Status == StatusActive {
			s.Active++
		}
		s.BySpecies[a.Species]++
		s.ByStatus[a.Status]++

		for _, r := range KnownRoles() {
			if HasActiveRole(a, r) {
				s.ByRole[r]++
			}
		}

		if HasActiveInternalNumber(a) {
			s.WithInternalNumbers++
		}
		if HasActiveWorkflow(a) {
			s.WithActiveWorkflows++
		}
		if HasGenomicData(a) {
			s.WithGenomicData++
		}
		if a.CreatedAt.After(weekAgo) {
			s.RecentlyAdded++
		}
	}

	return s
}

// Warnings deriva los flags de atención de un animal para la UI.
// Reusa HasActiveRole / HasActiveInternalNumber: un animal que valida limpio
// y uno que lista limpio son el mismo animal.
func Warnings(a Animal, now time.Time) []string {
	var out []string

	if a.Status == StatusActive && !HasActiveInternalNumber(a) {
		out = append(out, "Missing internal number")
	}

	if a.ActivityData != nil && a.ActivityData.LastActivity != nil {
		if a.ActivityData.LastActivity.Before(now.AddDate(0, -6, 0)) {
			out = append(out, "No recent activity (6+ months)")
		}
	}

	if HasActiveRole(a, RoleReference) && (a.GenomicData == nil || !a.GenomicData.HasSNPData) {
		out = append(out, "Reference animal missing genomic data")
	}

	if a.WorkflowData != nil && a.WorkflowData.Current != nil && a.WorkflowData.Current.DueDate != nil {
		if a.WorkflowData.Current.DueDate.Before(now) {
			out = append(out, "Overdue workflow task")
		}
	}

	return out
}

// moduleFilters: qué roles/estados habilitan a un animal para cada módulo
// downstream (dropdowns de selección por módulo).
var moduleFilters = map[string]struct {
	Roles    []Role
	Statuses []Status
}{
	"flushing":         {Roles: []Role{RoleDonor}, Statuses: []Status{StatusActive}},
	"embryo-transfer":  {Roles: []Role{RoleRecipient}, Statuses: []Status{StatusActive}},
	"breeding":         {Roles: []Role{RoleDonor, RoleSire}, Statuses: []Status{StatusActive}},
	"semen-collection": {Roles: []Role{RoleSire}, Statuses: []Status{StatusActive}},
	"laboratory":       {Roles: []Role{RoleLabSample}, Statuses: []Status{StatusActive}},
	"genomics":         {Roles: []Role{RoleReference, RoleDonor}, Statuses: []Status{StatusActive}},
	"ultrasound":       {Roles: []Role{RoleDonor, RoleRecipient}, Statuses: []Status{StatusActive}},
	"vaccination":      {Statuses: []Status{StatusActive}},
	"phenotype":        {Statuses: []Status{StatusActive}},
}

// ForModule filtra animales aptos para un módulo. Módulo desconocido = todos.
func ForModule(animalsIn []Animal, module string) []Animal {
	f, ok := moduleFilters[module]
	if !ok {
		return animalsIn
	}

	out := make([]Animal, 0, len(animalsIn))
	for _, a := range animalsIn {
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, a.Status) {
			continue
		}
		if len(f.Roles) > 0 {
			ok := false
			for _, r := range f.Roles {
				if HasActiveRole(a, r) {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func containsSpecies(list []Species, v Species) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsStatus(list []Status, v Status) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsPurpose(list []Purpose, v Purpose) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
