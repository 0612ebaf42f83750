package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"collegefee_backend/internals/features/finance/receipts/model"
)

type ReceiptResponse struct {
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Amount        decimal.Decimal `json:"amount"`
	HasDocument   bool            `json:"has_document"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

func ToReceiptResponses(rows []model.ReceiptModel) []ReceiptResponse {
	out := make([]ReceiptResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReceiptResponse{
			ReceiptID:     r.ReceiptID,
			PaymentID:     r.ReceiptPaymentID,
			ReceiptNumber: r.ReceiptNumber,
			Amount:        r.ReceiptAmount,
			HasDocument:   r.ReceiptDocumentKey != nil,
			GeneratedAt:   r.ReceiptGeneratedAt,
		})
	}
	return out
}
