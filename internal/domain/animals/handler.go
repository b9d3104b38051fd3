package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animal-registry/internal/domain/events"
	"animal-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, activity *events.Service) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", registerAnimalHandler(svc, activity))
		ar.Get("/", listAnimalsHandler(svc))

		ar.Post("/validate", validateAnimalHandler(svc))
		ar.Post("/validate/{field}", validateFieldHandler(svc))
		ar.Post("/import", importAnimalsHandler(svc, activity))

		ar.Get("/stats", statsHandler(svc))
		ar.Get("/export", exportHandler(svc))
		ar.Get("/config", configHandler(svc))
		ar.Get("/modules/{module}", listForModuleHandler(svc))
		ar.Get("/by-registry/{registryID}", getByRegistryIDHandler(svc))

		ar.Route("/{animalID}", func(air chi.Router) {
			air.Get("/", getAnimalHandler(svc))
			air.Patch("/", updateAnimalHandler(svc, activity))
			air.Get("/warnings", warningsHandler(svc))

			air.Post("/roles", assignRoleHandler(svc, activity))
			air.Post("/roles/{role}/revoke", revokeRoleHandler(svc, activity))

			air.Post("/internal-numbers", assignInternalNumberHandler(svc, activity))
			air.Post("/internal-numbers/end", endInternalNumberHandler(svc, activity))

			air.Post("/status", changeStatusHandler(svc, activity))
		})
	})
}

type customerPayload struct {
	Name          string `json:"name"`
	CustomerID    string `json:"customer_id"`
	Region        string `json:"region"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Category      string `json:"category"`
}

type candidateRequest struct {
	RegistryID  string   `json:"registry_id"`
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Sex         string   `json:"sex"`
	Status      string   `json:"status"`
	Age         *float64 `json:"age"`
	Weight      *float64 `json:"weight"`
	Microchip   string   `json:"microchip"`
	DateOfBirth string   `json:"date_of_birth"` // YYYY-MM-DD
	Roles       []string `json:"roles"`
	Breed       string   `json:"breed"`
	Color       string   `json:"color"`
	Owner       string   `json:"owner"`
	Purpose     string   `json:"purpose"`
	Notes       string   `json:"notes"`

	Customer *customerPayload `json:"customer"`

	GenerateInternalNumber bool `json:"generate_internal_number"`
}

func (req candidateRequest) toCandidate() Candidate {
	c := Candidate{
		RegistryID:             strings.TrimSpace(req.RegistryID),
		Name:                   req.Name,
		Species:                Species(strings.ToUpper(strings.TrimSpace(req.Species))),
		Sex:                    Sex(strings.ToUpper(strings.TrimSpace(req.Sex))),
		Status:                 Status(strings.ToUpper(strings.TrimSpace(req.Status))),
		Age:                    req.Age,
		Weight:                 req.Weight,
		Microchip:              strings.TrimSpace(req.Microchip),
		DateOfBirth:            strings.TrimSpace(req.DateOfBirth),
		Breed:                  strings.TrimSpace(req.Breed),
		Color:                  strings.TrimSpace(req.Color),
		Owner:                  strings.TrimSpace(req.Owner),
		Purpose:                Purpose(strings.TrimSpace(req.Purpose)),
		Notes:                  req.Notes,
		GenerateInternalNumber: req.GenerateInternalNumber,
	}

	// Defaults alineados con el formulario de alta
	if c.Species == "" {
		c.Species = SpeciesBovine
	}
	if c.Sex == "" {
		c.Sex = SexFemale
	}
	if c.Status == "" {
		c.Status = StatusActive
	}

	for _, raw := range req.Roles {
		if raw = strings.TrimSpace(raw); raw != "" {
			c.SelectedRoles = append(c.SelectedRoles, Role(raw))
		}
	}

	if req.Customer != nil {
		c.Customer = &Customer{
			Name:          strings.TrimSpace(req.Customer.Name),
			CustomerID:    strings.TrimSpace(req.Customer.CustomerID),
			Region:        strings.TrimSpace(req.Customer.Region),
			ContactNumber: strings.TrimSpace(req.Customer.ContactNumber),
			Email:         strings.TrimSpace(req.Customer.Email),
			Category:      CustomerCategory(strings.TrimSpace(req.Customer.Category)),
		}
		if c.Customer.Category == "" {
			c.Customer.Category = CustomerStandard
		}
	}

	return c
}

type diagnosticResponse struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
}

type verdictResponse struct {
	IsValid  bool                          `json:"is_valid"`
	Errors   []diagnosticResponse          `json:"errors"`
	Warnings []diagnosticResponse          `json:"warnings"`
	Fields   map[string]diagnosticResponse `json:"fields"`
}

type roleAssignmentResponse struct {
	Role       string     `json:"role"`
	AssignedAt time.Time  `json:"assigned_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	AssignedBy string     `json:"assigned_by,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	IsActive   bool       `json:"is_active"`
}

type internalNumberResponse struct {
	ID             string     `json:"id"`
	InternalNumber string     `json:"internal_number"`
	AssignedAt     time.Time  `json:"assigned_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	AssignedBy     string     `json:"assigned_by,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	IsActive       bool       `json:"is_active"`
}

type animalResponse struct {
	ID         string `json:"id"`
	RegistryID string `json:"registry_id"`
	Name       string `json:"name"`

	Species string `json:"species"`
	Sex     string `json:"sex"`
	Status  string `json:"status"`

	Roles []roleAssignmentResponse `json:"roles"`

	Age         *float64   `json:"age,omitempty"`
	Weight      *float64   `json:"weight,omitempty"`
	Microchip   string     `json:"microchip,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Breed       string     `json:"breed,omitempty"`
	Color       string     `json:"color,omitempty"`

	CurrentInternalNumber *internalNumberResponse  `json:"current_internal_number,omitempty"`
	InternalNumberHistory []internalNumberResponse `json:"internal_number_history,omitempty"`

	Owner           string           `json:"owner,omitempty"`
	Customer        *customerPayload `json:"customer,omitempty"`
	CurrentLocation string           `json:"current_location,omitempty"`
	Purpose         string           `json:"purpose,omitempty"`
	Notes           string           `json:"notes,omitempty"`

	RegistrationDate time.Time `json:"registration_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type registerResponse struct {
	Animal  animalResponse  `json:"animal"`
	Verdict verdictResponse `json:"verdict"`
}

func registerAnimalHandler(svc *Service, activity *events.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req candidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, verdict, err := svc.Register(r.Context(), req.toCandidate(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrValidationFailed) {
				// 422: el cuerpo lleva el veredicto con el detalle por campo
				writeJSON(w, http.StatusUnprocessableEntity, toVerdictResponse(verdict))
				return
			}
			if errors.Is(err, ErrLookupUnavailable) {
				http.Error(w, "uniqueness check unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		actor := events.Actor{Type: events.ActorTypeStaffUser, ID: claims.UserID}
		_, _ = activity.Record(r.Context(), a.ID, actor, events.EventTypeRegistered,
			"Registered as "+a.RegistryID)

		writeJSON(w, http.StatusCreated, registerResponse{
			Animal:  toAnimalResponse(a),
			Verdict: toVerdictResponse(verdict),
		})
	}
}

func validateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			candidateRequest
			ExcludeID string `json:"exclude_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		verdict, err := svc.Validate(r.Context(), req.toCandidate(), strings.TrimSpace(req.ExcludeID))
		if err != nil {
			if errors.Is(err, ErrLookupUnavailable) {
				http.Error(w, "uniqueness check unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toVerdictResponse(verdict))
	}
}

// validateFieldHandler valida un solo campo (validación en vivo de formularios).
func validateFieldHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req candidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		field := chi.URLParam(r, "field")
		d := NewValidator(svc.Config()).ValidateField(field, req.toCandidate())
		if d == nil {
			writeJSON(w, http.StatusOK, map[string]any{"field": field, "ok": true})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"field": field, "ok": false, "diagnostic": toDiagnosticResponse(*d)})
	}
}

type importRowRequest struct {
	RegistryID    string `json:"registry_id"`
	Name          string `json:"name"`
	Species       string `json:"species"`
	Sex           string `json:"sex"`
	Status        string `json:"status"`
	Age           string `json:"age"`
	Weight        string `json:"weight"`
	Microchip     string `json:"microchip"`
	DateOfBirth   string `json:"date_of_birth"`
	Roles         string `json:"roles"`
	Breed         string `json:"breed"`
	Color         string `json:"color"`
	Owner         string `json:"owner"`
	CustomerName  string `json:"customer_name"`
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Purpose       string `json:"purpose"`
	Notes         string `json:"notes"`
}

type rowResultResponse struct {
	Index      int             `json:"index"`
	RegistryID string          `json:"registry_id,omitempty"`
	Verdict    verdictResponse `json:"verdict"`
}

type importResponse struct {
	Total         int                 `json:"total"`
	Imported      int                 `json:"imported"`
	Valid         int                 `json:"valid"`
	WithWarnings  int                 `json:"with_warnings"`
	WithErrors    int                 `json:"with_errors"`
	ErrorMessages []string            `json:"error_messages"`
	Results       []rowResultResponse `json:"results"`
}

func importAnimalsHandler(svc *Service, activity *events.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Rows []importRowRequest `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if len(req.Rows) == 0 {
			http.Error(w, "rows required", http.StatusBadRequest)
			return
		}

		rows := make([]ImportRow, 0, len(req.Rows))
		for _, rr := range req.Rows {
			rows = append(rows, ImportRow{
				RegistryID:    rr.RegistryID,
				Name:          rr.Name,
				Species:       rr.Species,
				Sex:           rr.Sex,
				Status:        rr.Status,
				Age:           rr.Age,
				Weight:        rr.Weight,
				Microchip:     rr.Microchip,
				DateOfBirth:   rr.DateOfBirth,
				Roles:         rr.Roles,
				Breed:         rr.Breed,
				Color:         rr.Color,
				Owner:         rr.Owner,
				CustomerName:  rr.CustomerName,
				CustomerID:    rr.CustomerID,
				CustomerEmail: rr.CustomerEmail,
				CustomerPhone: rr.CustomerPhone,
				Purpose:       rr.Purpose,
				Notes:         rr.Notes,
			})
		}

		report, err := svc.ImportBulk(r.Context(), rows, claims.UserID, nil)
		if err != nil {
			if errors.Is(err, ErrLookupUnavailable) {
				http.Error(w, "uniqueness check unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		actor := events.Actor{Type: events.ActorTypeImport, ID: claims.UserID}
		for _, res := range report.Results {
			if res.RegistryID == "" {
				continue
			}
			if a, err := svc.GetByRegistryID(r.Context(), res.RegistryID); err == nil {
				_, _ = activity.Record(r.Context(), a.ID, actor, events.EventTypeRegistered,
					"Imported as "+a.RegistryID)
			}
		}

		out := importResponse{
			Total:         report.Summary.Total,
			Imported:      report.Imported,
			Valid:         report.Summary.Valid,
			WithWarnings:  report.Summary.WithWarnings,
			WithErrors:    report.Summary.WithErrors,
			ErrorMessages: report.Summary.ErrorMessages,
			Results:       make([]rowResultResponse, 0, len(report.Results)),
		}
		for _, res := range report.Results {
			out.Results = append(out.Results, rowResultResponse{
				Index:      res.Index,
				RegistryID: res.RegistryID,
				Verdict:    toVerdictResponse(res.Verdict),
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f, key, dir := parseListQuery(r)

		items, err := svc.List(r.Context(), f, key, dir)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// parseListQuery traduce los query params a FilterOptions + orden.
// Campos CSV: species, roles, status, purpose. Tri-estado: has_internal_number,
// has_active_workflow, has_genomic_data (ausente = no filtrar).
func parseListQuery(r *http.Request) (FilterOptions, SortKey, SortDirection) {
	q := r.URL.Query()

	var f FilterOptions
	for _, v := range splitCSV(q.Get("species")) {
		f.Species = append(f.Species, Species(strings.ToUpper(v)))
	}
	for _, v := range splitCSV(q.Get("roles")) {
		f.Roles = append(f.Roles, Role(v))
	}
	for _, v := range splitCSV(q.Get("status")) {
		f.Status = append(f.Status, Status(strings.ToUpper(v)))
	}
	for _, v := range splitCSV(q.Get("purpose")) {
		f.Purpose = append(f.Purpose, Purpose(v))
	}

	f.HasInternalNumber = parseBoolParam(q.Get("has_internal_number"))
	f.HasActiveWorkflow = parseBoolParam(q.Get("has_active_workflow"))
	f.HasGenomicData = parseBoolParam(q.Get("has_genomic_data"))

	if minS, maxS := q.Get("age_min"), q.Get("age_max"); minS != "" || maxS != "" {
		ar := AgeRange{Min: 0, Max: 999}
		if v, err := strconv.ParseFloat(minS, 64); err == nil {
			ar.Min = v
		}
		if v, err := strconv.ParseFloat(maxS, 64); err == nil {
			ar.Max = v
		}
		f.AgeRange = &ar
	}

	if fromS, toS := q.Get("registered_from"), q.Get("registered_to"); fromS != "" && toS != "" {
		from, err1 := time.Parse("2006-01-02", fromS)
		to, err2 := time.Parse("2006-01-02", toS)
		if err1 == nil && err2 == nil {
			f.DateRange = &DateRange{Start: from, End: to.Add(24*time.Hour - time.Nanosecond)}
		}
	}

	f.Customer = strings.TrimSpace(q.Get("customer"))
	f.Location = strings.TrimSpace(q.Get("location"))

	key := SortKey(strings.TrimSpace(q.Get("sort")))
	if key == "" {
		key = SortByRegistryID
	}
	dir := SortDirection(strings.TrimSpace(q.Get("dir")))
	if dir != SortDesc {
		dir = SortAsc
	}

	return f, key, dir
}

func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func getByRegistryIDHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByRegistryID(r.Context(), chi.URLParam(r, "registryID"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

type updateAnimalRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string  `json:"name"`
	Age         *float64 `json:"age"`
	Weight      *float64 `json:"weight"`
	Height      *float64 `json:"height"`
	Color       *string  `json:"color"`
	Breed       *string  `json:"breed"`
	Microchip   *string  `json:"microchip"`
	DateOfBirth *string  `json:"date_of_birth"` // "" = limpiar
	Owner       *string  `json:"owner"`
	Location    *string  `json:"location"`
	Purpose     *string  `json:"purpose"`
	Notes       *string  `json:"notes"`
}

func updateAnimalHandler(svc *Service, activity *events.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		animalID := chi.URLParam(r, "animalID")

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateAnimalRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, verdict, err := svc.UpdateProfile(r.Context(), animalID, UpdateProfileInput{
			Name:        req.Name,
			Age:         req.Age,
			Weight:      req.Weight,
			Height:      req.Height,
			Color:       req.Color,
			Breed:       req.Breed,
			Microchip:   req.Microchip,
			DateOfBirth: req.DateOfBirth,
			Owner:       req.Owner,
			Location:    req.Location,
			Purpose:     req.Purpose,
			Notes:       req.Notes,
		})
		if err != nil {
			writeAnimalError(w, verdict, err)
			return
		}

		actor := events.Actor{Type: events.ActorTypeStaffUser, ID: claims.UserID}
		_, _ = activity.Record(r.Context(), a.ID, actor, events.EventTypeProfileUpdated, "Profile updated")

		writeJSON(w, http.StatusOK, registerResponse{
			Animal:  toAnimalResponse(a),
			Verdict: toVerdictResponse(verdict),
		})
	}
}

type assignRoleRequest struct {
	Role  string `json:"role"`
	Notes string `json:"notes"`
}

func assignRoleHandler(svc *Service, activity *events.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req assignRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Role) == "" {
			http.Error(w, "role required", http.StatusBadRequest)
			return
		}

		animalID := chi.URLParam(r, "animalID")
		a, verdict, err := svc.AssignRole(r.Context(), animalID, Role(strings.TrimSpace(req.Role)), claims.UserID, req.Notes)
		if err != nil {
			writeAnimalError(w, verdict, err)
			return
		}

		actor := events.Actor{Type: events.ActorTypeStaffUser, ID: claims.UserID}
		_, _ = activity.Record(r.Context(), a.ID, actor, events.EventTypeRoleAssigned,
			"Role assigned: "+strings.TrimSpace(req.Role))

		writeJSON(w, http.StatusOK, registerResponse{
			Animal:  toAnimalResponse(a),
			Verdict: toVerdictResponse(verdict),
		})
	}
}

func revokeRoleHandler(svc *Service, activity *events.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		animalID := chi.URLParam(r, "animalID")
		role := chi.URLParam(r, "role")

		a, verdict, err := svc.RevokeRole(r.Context(), animalID, Role(role))
		if err != nil {
			writeAnimalError(w, verdict, err)
			return
		}

		actor := events.Actor{Type: events.ActorTypeStaffUser, ID: claims.UserID}
		_, _ = activity.Record(r.Context(), a.ID, actor, events.EventTypeRoleRevoked,
			"Role revoked: "+role)

		writeJSON(w, http.StatusOK, registerResponse{
			Animal:  toAnimalResponse(a),
			Verdict: toVerdictResponse(verdict),
		})
	}
}

type assignInternalNumberRequest struct {
	Reason string `json:"reason"`
}

func assignInternalNumberHandler(svc *Service, activity *events.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req assignInternalNumberRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		animalID := chi.URLParam(r, "animalID")
		a, err := svc.AssignInternalNumber(r.Context(), animalID, claims.UserID, strings.TrimSpace(req.Reason))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		actor := events.Actor{Type: events.ActorTypeStaffUser, ID: claims.UserID}
		title := "Internal number assigned"
		if a.CurrentInternalNumber != nil {
			title = "Internal number assigned: " + a.CurrentInternalNumber.InternalNumber
		}
		_, _ = activity.Record(r.Context(), a.ID, actor, events.EventTypeInternalNumAssigned, title)

		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func endInternalNumberHandler(svc *Service, activity *events.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		animalID := chi.URLParam(r, "animalID")
		a, err := svc.EndInternalNumber(r.Context(), animalID)
		if err != nil {
			http.Error(w, "no active internal number", http.StatusConflict)
			return
		}

		actor := events.Actor{Type: events.ActorTypeStaffUser, ID: claims.UserID}
		_, _ = activity.Record(r.Context(), a.ID, actor, events.EventTypeInternalNumEnded, "Internal number ended")

		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func changeStatusHandler(svc *Service, activity *events.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req changeStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		animalID := chi.URLParam(r, "animalID")
		status := Status(strings.ToUpper(strings.TrimSpace(req.Status)))

		a, err := svc.ChangeStatus(r.Context(), animalID, status)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "unknown status", http.StatusBadRequest)
			default:
				http.Error(w, "animal not found", http.StatusNotFound)
			}
			return
		}

		actor := events.Actor{Type: events.ActorTypeStaffUser, ID: claims.UserID}
		_, _ = activity.Record(r.Context(), a.ID, actor, events.EventTypeStatusChanged,
			"Status changed to "+string(status))

		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

type statsResponse struct {
	Total               int            `json:"total"`
	Active              int            `json:"active"`
	BySpecies           map[string]int `json:"by_species"`
	ByRole              map[string]int `json:"by_role"`
	ByStatus            map[string]int `json:"by_status"`
	WithInternalNumbers int            `json:"with_internal_numbers"`
	WithActiveWorkflows int            `json:"with_active_workflows"`
	WithGenomicData     int            `json:"with_genomic_data"`
	RecentlyAdded       int            `json:"recently_added"`
}

func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := statsResponse{
			Total:               stats.Total,
			Active:              stats.Active,
			BySpecies:           make(map[string]int, len(stats.BySpecies)),
			ByRole:              make(map[string]int, len(stats.ByRole)),
			ByStatus:            make(map[string]int, len(stats.ByStatus)),
			WithInternalNumbers: stats.WithInternalNumbers,
			WithActiveWorkflows: stats.WithActiveWorkflows,
			WithGenomicData:     stats.WithGenomicData,
			RecentlyAdded:       stats.RecentlyAdded,
		}
		for k, v := range stats.BySpecies {
			out.BySpecies[string(k)] = v
		}
		for k, v := range stats.ByRole {
			out.ByRole[string(k)] = v
		}
		for k, v := range stats.ByStatus {
			out.ByStatus[string(k)] = v
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func exportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f, _, _ := parseListQuery(r)
		format := ExportFormat(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))))

		data, err := svc.Export(r.Context(), f, format)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "format must be csv or json", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		switch format {
		case ExportJSONFormat:
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Disposition", `attachment; filename="animals.json"`)
		default:
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="animals.csv"`)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

type speciesConfigResponse struct {
	Label          string    `json:"label"`
	Prefix         string    `json:"prefix"`
	Breeds         []string  `json:"breeds"`
	Colors         []string  `json:"colors"`
	MaxAge         float64   `json:"max_age"`
	MinBreedingAge float64   `json:"min_breeding_age"`
	WeightRange    []float64 `json:"weight_range"`
}

type roleConfigResponse struct {
	Description       string   `json:"description"`
	AssociatedModules []string `json:"associated_modules"`
}

func configHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		cfg := svc.Config()

		species := make(map[string]speciesConfigResponse, len(cfg.Species))
		for sp, sc := range cfg.Species {
			species[string(sp)] = speciesConfigResponse{
				Label:          sc.Label,
				Prefix:         sc.Prefix,
				Breeds:         sc.Breeds,
				Colors:         sc.Colors,
				MaxAge:         sc.MaxAge,
				MinBreedingAge: sc.MinBreedingAge,
				WeightRange:    []float64{sc.WeightRange.Min, sc.WeightRange.Max},
			}
		}

		roles := make(map[string]roleConfigResponse, len(cfg.Roles))
		for role, rc := range cfg.Roles {
			roles[string(role)] = roleConfigResponse{
				Description:       rc.Description,
				AssociatedModules: rc.AssociatedModules,
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"species": species,
			"roles":   roles,
		})
	}
}

func listForModuleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context(), FilterOptions{}, SortByRegistryID, SortAsc)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		eligible := ForModule(items, chi.URLParam(r, "module"))
		out := make([]animalResponse, 0, len(eligible))
		for _, a := range eligible {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func warningsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		warnings, err := svc.WarningsFor(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if warnings == nil {
			warnings = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"warnings": warnings})
	}
}

// writeAnimalError mapea los sentinels del servicio a status HTTP. Con
// ErrValidationFailed el cuerpo lleva el veredicto.
func writeAnimalError(w http.ResponseWriter, verdict Verdict, err error) {
	switch {
	case errors.Is(err, ErrValidationFailed):
		writeJSON(w, http.StatusUnprocessableEntity, toVerdictResponse(verdict))
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toDiagnosticResponse(d Diagnostic) diagnosticResponse {
	return diagnosticResponse{
		Field:    d.Field,
		Message:  d.Message,
		Severity: d.Severity.String(),
		Code:     string(d.Code),
	}
}

func toVerdictResponse(v Verdict) verdictResponse {
	out := verdictResponse{
		IsValid:  v.IsValid,
		Errors:   make([]diagnosticResponse, 0, len(v.Errors)),
		Warnings: make([]diagnosticResponse, 0, len(v.Warnings)),
		Fields:   make(map[string]diagnosticResponse, len(v.Fields)),
	}
	for _, d := range v.Errors {
		out.Errors = append(out.Errors, toDiagnosticResponse(d))
	}
	for _, d := range v.Warnings {
		out.Warnings = append(out.Warnings, toDiagnosticResponse(d))
	}
	for field, d := range v.Fields {
		out.Fields[field] = toDiagnosticResponse(d)
	}
	return out
}

func toAnimalResponse(a Animal) animalResponse {
	out := animalResponse{
		ID:               a.ID,
		RegistryID:       a.RegistryID,
		Name:             a.Name,
		Species:          string(a.Species),
		Sex:              string(a.Sex),
		Status:           string(a.Status),
		Roles:            make([]roleAssignmentResponse, 0, len(a.Roles)),
		Age:              a.Age,
		Weight:           a.Weight,
		Microchip:        a.Microchip,
		DateOfBirth:      a.DateOfBirth,
		Breed:            a.Breed,
		Color:            a.Color,
		Owner:            a.Owner,
		CurrentLocation:  a.CurrentLocation,
		Purpose:          string(a.Purpose),
		Notes:            a.Notes,
		RegistrationDate: a.RegistrationDate,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}

	for _, ra := range a.Roles {
		out.Roles = append(out.Roles, roleAssignmentResponse{
			Role:       string(ra.Role),
			AssignedAt: ra.AssignedAt,
			RevokedAt:  ra.RevokedAt,
			AssignedBy: ra.AssignedBy,
			Notes:      ra.Notes,
			IsActive:   ra.IsActive,
		})
	}

	if a.CurrentInternalNumber != nil {
		out.CurrentInternalNumber = &internalNumberResponse{
			ID:             a.CurrentInternalNumber.ID,
			InternalNumber: a.CurrentInternalNumber.InternalNumber,
			AssignedAt:     a.CurrentInternalNumber.AssignedAt,
			IsActive:       a.CurrentInternalNumber.IsActive,
		}
	}
	for _, rec := range a.InternalNumberHistory {
		out.InternalNumberHistory = append(out.InternalNumberHistory, internalNumberResponse{
			ID:             rec.ID,
			InternalNumber: rec.InternalNumber,
			AssignedAt:     rec.AssignedAt,
			EndedAt:        rec.EndedAt,
			AssignedBy:     rec.AssignedBy,
			Reason:         rec.Reason,
			IsActive:       rec.IsActive,
		})
	}

	if a.Customer != nil {
		out.Customer = &customerPayload{
			Name:          a.Customer.Name,
			CustomerID:    a.Customer.CustomerID,
			Region:        a.Customer.Region,
			ContactNumber: a.Customer.ContactNumber,
			Email:         a.Customer.Email,
			Category:      string(a.Customer.Category),
		}
	}

	return out
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBoolParam(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
