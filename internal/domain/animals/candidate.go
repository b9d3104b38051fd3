package animals

import (
	"strconv"
	"strings"
	"time"
)

// Candidate es el registro candidato que se valida: lo arma un formulario,
// una fila de import masivo o el propio servicio antes de persistir.
// Es el único input del validador (más la Config estática).
type Candidate struct {
	RegistryID string
	Name       string
	Species    Species
	Sex        Sex
	Status     Status

	Age    *float64
	Weight *float64

	Microchip   string
	DateOfBirth string // YYYY-MM-DD; se parsea en la regla (para poder reportar INVALID_DATE)

	SelectedRoles []Role

	Breed string
	Color string

	Owner    string
	Customer *Customer

	Purpose Purpose
	Notes   string

	// true => el servicio asigna número interno al registrar
	GenerateInternalNumber bool
}

// CustomerEmail / CustomerPhone con tolerancia a Customer nil.
func (c Candidate) CustomerEmail() string {
	if c.Customer == nil {
		return ""
	}
	return c.Customer.Email
}

func (c Candidate) CustomerPhone() string {
	if c.Customer == nil {
		return ""
	}
	return c.Customer.ContactNumber
}

func (c Candidate) CustomerName() string {
	if c.Customer == nil {
		return ""
	}
	return c.Customer.Name
}

// CandidateFrom proyecta un Animal persistido a Candidate, para re-validar
// después de una mutación (asignar rol, cambiar estado, etc.) con las mismas
// reglas que usa el alta.
func CandidateFrom(a Animal) Candidate {
	dob := ""
	if a.DateOfBirth != nil {
		dob = a.DateOfBirth.Format("2006-01-02")
	}

	roles := make([]Role, 0, len(a.Roles))
	for _, r := range ActiveRoles(a) {
		roles = append(roles, r.Role)
	}

	return Candidate{
		RegistryID:    a.RegistryID,
		Name:          a.Name,
		Species:       a.Species,
		Sex:           a.Sex,
		Status:        a.Status,
		Age:           a.Age,
		Weight:        a.Weight,
		Microchip:     a.Microchip,
		DateOfBirth:   dob,
		SelectedRoles: roles,
		Breed:         a.Breed,
		Color:         a.Color,
		Owner:         a.Owner,
		Customer:      a.Customer,
		Purpose:       a.Purpose,
		Notes:         a.Notes,
	}
}

// ImportRow es una fila cruda de import masivo (CSV / JSON plano).
// Todos los campos son strings: el parseo tolerante pasa lo que pueda
// y deja que el validador reporte el resto.
type ImportRow struct {
	RegistryID    string
	Name          string
	Species       string
	Sex           string
	Status        string
	Age           string
	Weight        string
	Microchip     string
	DateOfBirth   string
	Roles         string // separados por coma
	Breed         string
	Color         string
	Owner         string
	CustomerName  string
	CustomerID    string
	CustomerEmail string
	CustomerPhone string
	Purpose       string
	Notes         string
}

// CandidateFromRow convierte una fila de import a Candidate.
// Defaults alineados con el alta por formulario: species BOVINE, sex FEMALE,
// status ACTIVE cuando vienen vacíos.
func CandidateFromRow(row ImportRow) Candidate {
	c := Candidate{
		RegistryID:  strings.TrimSpace(row.RegistryID),
		Name:        strings.TrimSpace(row.Name),
		Species:     SpeciesBovine,
		Sex:         SexFemale,
		Status:      StatusActive,
		Microchip:   strings.TrimSpace(row.Microchip),
		DateOfBirth: strings.TrimSpace(row.DateOfBirth),
		Breed:       strings.TrimSpace(row.Breed),
		Color:       strings.TrimSpace(row.Color),
		Owner:       strings.TrimSpace(row.Owner),
		Purpose:     Purpose(strings.TrimSpace(row.Purpose)),
		Notes:       strings.TrimSpace(row.Notes),
	}

	if v := strings.TrimSpace(row.Species); v != "" {
		c.Species = Species(strings.ToUpper(v))
	}
	if v := strings.TrimSpace(row.Sex); v != "" {
		c.Sex = Sex(strings.ToUpper(v))
	}
	if v := strings.TrimSpace(row.Status); v != "" {
		c.Status = Status(strings.ToUpper(v))
	}

	if v := strings.TrimSpace(row.Age); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Age = &f
		}
	}
	if v := strings.TrimSpace(row.Weight); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Weight = &f
		}
	}

	if v := strings.TrimSpace(row.Roles); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				c.SelectedRoles = append(c.SelectedRoles, Role(part))
			}
		}
	}

	if row.CustomerName != "" || row.CustomerID != "" || row.CustomerEmail != "" || row.CustomerPhone != "" {
		c.Customer = &Customer{
			Name:          strings.TrimSpace(row.CustomerName),
			CustomerID:    strings.TrimSpace(row.CustomerID),
			Email:         strings.TrimSpace(row.CustomerEmail),
			ContactNumber: strings.TrimSpace(row.CustomerPhone),
			Category:      CustomerStandard,
		}
		if c.Owner == "" {
			c.Owner = strings.TrimSpace(row.CustomerName)
		}
	}

	return c
}

// parseDOB intenta parsear la fecha de nacimiento (YYYY-MM-DD).
func parseDOB(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
