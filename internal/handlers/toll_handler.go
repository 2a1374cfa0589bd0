package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/smarttoll/backend/internal/middleware"
	"github.com/smarttoll/backend/internal/models"
	"github.com/smarttoll/backend/internal/services"
)

// TollProcessor is the toll service surface the HTTP layer depends on.
type TollProcessor interface {
	ProcessToll(ctx context.Context, req services.ProcessRequest) (*models.Receipt, error)
	GetReceipt(ctx context.Context, txnID string) (*models.Receipt, error)
	RefundToll(ctx context.Context, txnID string) (*services.RefundResult, error)
	LookupVehicle(ctx context.Context, numberOrTag string) (*models.Vehicle, error)
	VehicleHistory(ctx context.Context, vehicleID int64, limit int) ([]models.TollTransaction, error)
}

type TollHandler struct {
	service TollProcessor
}

func NewTollHandler(service TollProcessor) *TollHandler {
	return &TollHandler{service: service}
}

// ProcessToll settles a vehicle crossing
// @Summary Process a toll crossing
// @Description Price a crossing and settle it by wallet, cash or UPI. The operator is taken from the token.
// @Tags tolls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.ProcessRequest true "Crossing event"
// @Success 201 {object} models.Receipt
// @Failure 400 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /tolls [post]
func (h *TollHandler) ProcessToll(w http.ResponseWriter, r *http.Request) {
	var req services.ProcessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if claims, ok := middleware.ClaimsFrom(r.Context()); ok && claims.Role.CanOperateLane() {
		operatorID := claims.UserID
		req.OperatorID = &operatorID
	}

	receipt, err := h.service.ProcessToll(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// GetReceipt returns the receipt of a toll transaction
// @Summary Get toll receipt
// @Tags tolls
// @Produce json
// @Security BearerAuth
// @Param txnId path string true "Toll transaction ID"
// @Success 200 {object} models.Receipt
// @Failure 404 {object} services.ErrorResponse
// @Router /tolls/{txnId} [get]
func (h *TollHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.GetReceipt(r.Context(), chi.URLParam(r, "txnId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// RefundToll credits a wallet-paid toll back to the wallet
// @Summary Refund a toll
// @Tags tolls
// @Produce json
// @Security BearerAuth
// @Param txnId path string true "Toll transaction ID"
// @Success 200 {object} services.RefundResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /tolls/{txnId}/refund [post]
func (h *TollHandler) RefundToll(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RefundToll(r.Context(), chi.URLParam(r, "txnId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LookupVehicle finds a vehicle by registration number or RFID tag
// @Summary Look up a vehicle
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param q query string true "Registration number or RFID tag"
// @Success 200 {object} models.Vehicle
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /vehicles/lookup [get]
func (h *TollHandler) LookupVehicle(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		services.SendErrorResponse(w, "Query parameter q is required", http.StatusBadRequest, nil)
		return
	}

	vehicle, err := h.service.LookupVehicle(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// VehicleHistory lists the tolls of a vehicle
// @Summary Vehicle toll history
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param vehicleId path int true "Vehicle ID"
// @Param limit query int false "Maximum entries (default 50, max 500)"
// @Success 200 {array} models.TollTransaction
// @Failure 404 {object} services.ErrorResponse
// @Router /vehicles/{vehicleId}/history [get]
func (h *TollHandler) VehicleHistory(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(w, chi.URLParam(r, "vehicleId"), "vehicle id")
	if !ok {
		return
	}

	history, err := h.service.VehicleHistory(r.Context(), vehicleID, queryLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
