package transfers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"animal-registry/internal/domain/events"
	"animal-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// AnimalRegistry evita importar el paquete animals (rompe ciclos).
type AnimalRegistry interface {
	OwnerOf(ctx context.Context, animalID string) (string, error)
	ApplyTransfer(ctx context.Context, animalID, newOwner string) error
}

func RegisterRoutes(r chi.Router, svc *Service, registry AnimalRegistry, activity *events.Service) {
	// Acciones del titular actual, scoped por animal
	r.Route("/animals/{animalID}/transfers", func(tr chi.Router) {
		tr.Post("/", requestTransferHandler(svc, registry))
		tr.Get("/", listTransfersByAnimalHandler(svc))
	})

	// Resolución, scoped por transfer id
	r.Route("/transfers/{transferID}", func(tr chi.Router) {
		tr.Post("/accept", acceptTransferHandler(svc, registry, activity))
		tr.Post("/decline", declineTransferHandler(svc))
		tr.Post("/cancel", cancelTransferHandler(svc))
	})

	// Titular: ver sus solicitudes (entrantes y salientes)
	r.Route("/me/transfers", func(mr chi.Router) {
		mr.Get("/", listMyTransfersHandler(svc))
	})
}

type requestTransferRequest struct {
	ToOwnerID string `json:"to_owner_id"`
	Notes     string `json:"notes"`
}

type transferResponse struct {
	ID          string     `json:"id"`
	AnimalID    string     `json:"animal_id"`
	FromOwnerID string     `json:"from_owner_id"`
	ToOwnerID   string     `json:"to_owner_id"`
	Status      Status     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

func requestTransferHandler(svc *Service, registry AnimalRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		animalID := chi.URLParam(r, "animalID")

		ownerID, err := registry.OwnerOf(r.Context(), animalID)
		if err != nil || strings.TrimSpace(ownerID) == "" {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req requestTransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.ToOwnerID) == "" {
			http.Error(w, "to_owner_id required", http.StatusBadRequest)
			return
		}

		t, err := svc.Request(r.Context(), RequestInput{
			AnimalID:    animalID,
			FromOwnerID: claims.UserID,
			ToOwnerID:   strings.TrimSpace(req.ToOwnerID),
			Notes:       req.Notes,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toTransferResponse(t))
	}
}

func listTransfersByAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByAnimal(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]transferResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTransferResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listMyTransfersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// status=requested,accepted (CSV opcional)
		allowed := parseStatusFilter(r.URL.Query().Get("status"))

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(allowed) > 0 {
			filtered := make([]Transfer, 0, len(items))
			for _, t := range items {
				if _, ok := allowed[t.Status]; ok {
					filtered = append(filtered, t)
				}
			}
			items = filtered
		}

		out := make([]transferResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTransferResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func acceptTransferHandler(svc *Service, registry AnimalRegistry, activity *events.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		transferID := chi.URLParam(r, "transferID")
		t, err := svc.Accept(r.Context(), transferID, claims.UserID)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			case ErrBadState:
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		if err := registry.ApplyTransfer(r.Context(), t.AnimalID, t.ToOwnerID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		actor := events.Actor{Type: events.ActorTypeStaffUser, ID: claims.UserID}
		_, _ = activity.Record(r.Context(), t.AnimalID, actor,
			events.EventTypeOwnershipTransferred,
			"Ownership transferred to "+t.ToOwnerID)

		writeJSON(w, http.StatusOK, toTransferResponse(t))
	}
}

func declineTransferHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		transferID := chi.URLParam(r, "transferID")
		t, err := svc.Decline(r.Context(), transferID, claims.UserID)
		if err != nil {
			writeTransferError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toTransferResponse(t))
	}
}

func cancelTransferHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		transferID := chi.URLParam(r, "transferID")
		t, err := svc.Cancel(r.Context(), transferID, claims.UserID)
		if err != nil {
			writeTransferError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toTransferResponse(t))
	}
}

func writeTransferError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrForbidden:
		http.Error(w, "forbidden", http.StatusForbidden)
	case ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	case ErrBadState:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toTransferResponse(t Transfer) transferResponse {
	return transferResponse{
		ID:          t.ID,
		AnimalID:    t.AnimalID,
		FromOwnerID: t.FromOwnerID,
		ToOwnerID:   t.ToOwnerID,
		Status:      t.Status,
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		ResolvedAt:  t.ResolvedAt,
	}
}

func parseStatusFilter(raw string) map[Status]struct{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := map[Status]struct{}{}
	for _, p := range parts {
		s := Status(strings.TrimSpace(p))
		if s == "" {
			continue
		}
		out[s] = struct{}{}
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
