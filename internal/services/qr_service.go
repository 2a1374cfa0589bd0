package services

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/smarttoll/backend/internal/models"
)

// ReceiptSource loads stored receipts.
type ReceiptSource interface {
	GetReceipt(ctx context.Context, txnID string) (*models.Receipt, error)
}

// QRService renders toll receipts as QR codes for printing at the booth.
type QRService struct {
	receipts ReceiptSource
	size     int
}

func NewQRService(receipts ReceiptSource) *QRService {
	return &QRService{receipts: receipts, size: 256}
}

type receiptPayload struct {
	TransactionID string `json:"txn"`
	VehicleNumber string `json:"veh"`
	PlazaID       int64  `json:"plaza"`
	LaneNo        int    `json:"lane"`
	Amount        string `json:"amt"`
	PaymentMode   string `json:"mode"`
	Status        string `json:"status"`
	Timestamp     int64  `json:"ts"`
}

// ReceiptPayload is the text encoded in a receipt's QR code.
func ReceiptPayload(r *models.Receipt) (string, error) {
	data, err := json.Marshal(receiptPayload{
		TransactionID: r.TransactionID,
		VehicleNumber: r.VehicleNumber,
		PlazaID:       r.PlazaID,
		LaneNo:        r.LaneNo,
		Amount:        r.Amount.String(),
		PaymentMode:   string(r.PaymentMode),
		Status:        string(r.Status),
		Timestamp:     r.Timestamp.UTC().Truncate(time.Second).Unix(),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EncodeReceipt renders r as a PNG QR code.
func (s *QRService) EncodeReceipt(r *models.Receipt) ([]byte, error) {
	payload, err := ReceiptPayload(r)
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(s.size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReceiptQR loads the receipt of txnID and renders it.
func (s *QRService) ReceiptQR(ctx context.Context, txnID string) ([]byte, error) {
	receipt, err := s.receipts.GetReceipt(ctx, txnID)
	if err != nil {
		return nil, err
	}
	return s.EncodeReceipt(receipt)
}
