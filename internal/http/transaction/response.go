package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

type transactionResponse struct {
	ID         uuid.UUID        `json:"id"`
	Date       time.Time        `json:"date"`
	Type       transaction.Type `json:"type"`
	Amount     decimal.Decimal  `json:"amount"`
	CategoryID uuid.UUID        `json:"category_id"`
	Category   string           `json:"category"`
	MerchantID uuid.UUID        `json:"merchant_id"`
	Merchant   string           `json:"merchant"`
	Note       string           `json:"note,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:         tx.ID,
		Date:       tx.Date,
		Type:       tx.Type,
		Amount:     tx.Amount,
		CategoryID: tx.CategoryID,
		Category:   tx.CategoryName,
		MerchantID: tx.MerchantID,
		Merchant:   tx.MerchantName,
		Note:       tx.Note,
		CreatedAt:  tx.CreatedAt,
		UpdatedAt:  tx.UpdatedAt,
	}
}

// ToResponseList is shared with the dashboard handler for its recent list.
func ToResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
