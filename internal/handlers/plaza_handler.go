package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// RateCache drops cached rate lists after a plaza's rates are edited.
type RateCache interface {
	InvalidatePlaza(ctx context.Context, plazaID int64) error
}

type PlazaHandler struct {
	rates RateCache
}

func NewPlazaHandler(rates RateCache) *PlazaHandler {
	return &PlazaHandler{rates: rates}
}

// InvalidateRates forgets the cached rates of a plaza
// @Summary Invalidate cached plaza rates
// @Description Call after editing toll_rates so the next crossing reads the new rates.
// @Tags plazas
// @Security BearerAuth
// @Param plazaId path int true "Plaza ID"
// @Success 204
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /plazas/{plazaId}/rates/invalidate [post]
func (h *PlazaHandler) InvalidateRates(w http.ResponseWriter, r *http.Request) {
	plazaID, ok := pathID(w, chi.URLParam(r, "plazaId"), "plaza id")
	if !ok {
		return
	}

	if err := h.rates.InvalidatePlaza(r.Context(), plazaID); err != nil {
		writeError(w, r, err)
		return
	}
	log.WithField("plaza_id", plazaID).Info("Plaza rate cache invalidated")
	w.WriteHeader(http.StatusNoContent)
}
