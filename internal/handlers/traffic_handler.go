package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/smarttoll/backend/internal/models"
	"github.com/smarttoll/backend/internal/services"
)

// TrafficService recomputes hourly traffic buckets.
type TrafficService interface {
	AggregateTraffic(ctx context.Context, plazaID int64, window models.Window) ([]models.HourlyBucket, error)
}

type TrafficHandler struct {
	service TrafficService
}

func NewTrafficHandler(service TrafficService) *TrafficHandler {
	return &TrafficHandler{service: service}
}

// Aggregate recomputes a plaza's hourly traffic over a window
// @Summary Aggregate plaza traffic
// @Description Recompute and store hourly buckets for [from, to). Re-running overwrites the buckets.
// @Tags traffic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plazaId path int true "Plaza ID"
// @Param request body models.Window true "Time window (RFC 3339)"
// @Success 200 {array} models.HourlyBucket
// @Failure 400 {object} services.ErrorResponse
// @Router /plazas/{plazaId}/traffic/aggregate [post]
func (h *TrafficHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	plazaID, ok := pathID(w, chi.URLParam(r, "plazaId"), "plaza id")
	if !ok {
		return
	}

	var window models.Window
	if !decodeJSON(w, r, &window) {
		return
	}
	if err := window.Validate(); err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	buckets, err := h.service.AggregateTraffic(r.Context(), plazaID, window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}
