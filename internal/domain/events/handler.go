package events

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animal-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/animals/{animalID}/events", func(er chi.Router) {
		er.Post("/", createEventHandler(svc))
		er.Get("/", listEventsHandler(svc))
		er.Post("/{eventID}/void", voidEventHandler(svc))
	})
}

type createEventRequest struct {
	Type       string `json:"type"`
	OccurredAt string `json:"occurred_at"` // RFC3339
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	Source     string `json:"source"`
}

type eventResponse struct {
	ID         string    `json:"id"`
	AnimalID   string    `json:"animal_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	RecordedAt time.Time `json:"recorded_at"`
	Title      string    `json:"title"`
	Notes      string    `json:"notes"`
	ActorType  string    `json:"actor_type"`
	ActorID    string    `json:"actor_id"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
}

func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		occurred, err := time.Parse(time.RFC3339, strings.TrimSpace(req.OccurredAt))
		if err != nil {
			http.Error(w, "occurred_at must be RFC3339", http.StatusBadRequest)
			return
		}

		actor := Actor{Type: ActorTypeStaffUser, ID: claims.UserID}

		e, err := svc.Create(r.Context(), chi.URLParam(r, "animalID"), actor, CreateInput{
			Type:       EventType(strings.TrimSpace(req.Type)),
			OccurredAt: occurred,
			Title:      req.Title,
			Notes:      req.Notes,
			Source:     Source(strings.TrimSpace(req.Source)),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()

		var filter ListFilter
		for _, t := range strings.Split(q.Get("type"), ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Types = append(filter.Types, EventType(t))
			}
		}
		if v := strings.TrimSpace(q.Get("from")); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				filter.From = &t
			}
		}
		if v := strings.TrimSpace(q.Get("to")); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				filter.To = &t
			}
		}
		filter.Query = strings.TrimSpace(q.Get("q"))
		if v := strings.TrimSpace(q.Get("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}

		items, err := svc.ListByAnimal(r.Context(), chi.URLParam(r, "animalID"), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func voidEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		e, err := svc.Void(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

func toEventResponse(e RegistryEvent) eventResponse {
	return eventResponse{
		ID:         e.ID,
		AnimalID:   e.AnimalID,
		Type:       string(e.Type),
		OccurredAt: e.OccurredAt,
		RecordedAt: e.RecordedAt,
		Title:      e.Title,
		Notes:      e.Notes,
		ActorType:  string(e.Actor.Type),
		ActorID:    e.Actor.ID,
		Source:     string(e.Source),
		Status:     string(e.Status),
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (animals/events/transfers) para no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
