package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ReceiptRenderer renders stored receipts as PNG QR codes.
type ReceiptRenderer interface {
	ReceiptQR(ctx context.Context, txnID string) ([]byte, error)
}

type QRHandler struct {
	service ReceiptRenderer
}

func NewQRHandler(service ReceiptRenderer) *QRHandler {
	return &QRHandler{service: service}
}

// ReceiptQR returns the receipt of a toll transaction as a QR code
// @Summary Receipt QR code
// @Description PNG QR code encoding the receipt, for printing at the booth
// @Tags tolls
// @Produce png
// @Security BearerAuth
// @Param txnId path string true "Toll transaction ID"
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /tolls/{txnId}/qr [get]
func (h *QRHandler) ReceiptQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.ReceiptQR(r.Context(), chi.URLParam(r, "txnId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
