package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.repo.ListRestaurants(r.Context())
	if err != nil {
		h.logger.Error("failed to list restaurants", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) HandleGetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	restaurant, err := h.repo.GetRestaurant(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get restaurant", "error", err, "restaurant_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if restaurant == nil {
		h.writeError(w, http.StatusNotFound, "restaurant not found")
		return
	}

	h.writeJSON(w, http.StatusOK, restaurant)
}

func (h *Handler) HandleListMenu(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	items, err := h.repo.ListMenu(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list menu", "error", err, "restaurant_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("menu listed", "restaurant_id", id, "count", len(items))
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleGetMenuItem(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("itemId"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	item, err := h.repo.GetMenuItem(r.Context(), restaurantID, itemID)
	if err != nil {
		h.logger.Error("failed to get menu item", "error", err, "item_id", itemID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if item == nil {
		h.writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
