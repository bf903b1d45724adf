package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"starbuddy/internal/domain"
	"starbuddy/internal/session"
)

// RegisterRoutes registers the session API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/catalog", h.GetCatalog)
		r.Get("/medals", h.GetMedals)
		r.Post("/activities", h.SubmitActivity)
		r.Post("/reward/claim", h.ClaimReward)
		r.Post("/session/new", h.StartNewSession)
		r.Post("/store/purchase", h.Purchase)
		r.Post("/store/equip", h.Equip)
	})
}

// GetState returns the full session state snapshot.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.svc.State())
}

// GetCatalog returns the static outfit catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"outfits": domain.AvailableOutfits,
	})
}

// GetMedals returns the evaluated medal standings.
func (h *Handler) GetMedals(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"medals": h.svc.Medals(),
	})
}

type submitRequest struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// SubmitActivity audits one prompt/response pair and returns the new record.
func (h *Handler) SubmitActivity(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	activity, err := h.svc.SubmitActivity(r.Context(), req.Prompt, req.Response)
	switch {
	case errors.Is(err, session.ErrEmptyPrompt):
		Error(w, http.StatusBadRequest, "prompt is required")
		return
	case errors.Is(err, session.ErrSubmitInFlight):
		Error(w, http.StatusConflict, "analysis_in_progress")
		return
	case err != nil:
		slog.Error("Failed to submit activity", "error", err)
		Error(w, http.StatusInternalServerError, "failed to log activity")
		return
	}

	JSON(w, http.StatusOK, activity)
}

// ClaimReward consumes the session's daily reward claim.
func (h *Handler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	awarded, err := h.svc.ClaimDailyReward(r.Context())
	if err != nil {
		slog.Error("Failed to claim reward", "error", err)
		Error(w, http.StatusInternalServerError, "failed to claim reward")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"awarded": awarded,
		"claimed": h.svc.State().DayRewardClaimed,
	})
}

// StartNewSession re-opens the daily-reward gate.
func (h *Handler) StartNewSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.StartNewSession(r.Context()); err != nil {
		slog.Error("Failed to start new session", "error", err)
		Error(w, http.StatusInternalServerError, "failed to start new session")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type outfitRequest struct {
	OutfitID string `json:"outfit_id"`
}

// Purchase buys an outfit. Business rejections (unknown, owned, unaffordable)
// are a success=false payload, not an HTTP error.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req outfitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.svc.PurchaseItem(r.Context(), req.OutfitID)
	if err != nil {
		slog.Error("Failed to purchase outfit", "error", err, "outfit_id", req.OutfitID)
		Error(w, http.StatusInternalServerError, "failed to purchase outfit")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"success": ok,
		"coins":   h.svc.State().Coins,
	})
}

// Equip sets or toggles the active outfit. Empty outfit_id unequips.
func (h *Handler) Equip(w http.ResponseWriter, r *http.Request) {
	var req outfitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.EquipItem(r.Context(), req.OutfitID); err != nil {
		if errors.Is(err, session.ErrNotOwned) {
			Error(w, http.StatusBadRequest, "outfit not owned")
			return
		}
		slog.Error("Failed to equip outfit", "error", err, "outfit_id", req.OutfitID)
		Error(w, http.StatusInternalServerError, "failed to equip outfit")
		return
	}
	JSON(w, http.StatusOK, map[string]string{
		"active_outfit_id": h.svc.State().ActiveOutfitID,
	})
}
