package payment

import (
	"context"

	"travelo/internal/models"
)

type Provider interface {
	CreateOrder(ctx context.Context, request *OrderRequest) (*OrderResponse, error)
	Refund(ctx context.Context, request *RefundRequest) (*RefundResponse, error)
	VerifyCallback(payload []byte, signature string) error
}

type OrderRequest struct {
	OrderID     string                 `json:"order_id"`
	Amount      models.Cents           `json:"amount"`
	Currency    string                 `json:"currency"`
	Description string                 `json:"description"`
	CustomerID  string                 `json:"customer_id"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type OrderResponse struct {
	GatewayOrderID string       `json:"gateway_order_id"`
	Status         string       `json:"status"`
	Amount         models.Cents `json:"amount"`
	Currency       string       `json:"currency"`
	CreatedAt      int64        `json:"created_at"`
}

type RefundRequest struct {
	GatewayOrderID string       `json:"gateway_order_id"`
	Amount         models.Cents `json:"amount"`
	Reason         string       `json:"reason"`
}

type RefundResponse struct {
	RefundID  string       `json:"refund_id"`
	Status    string       `json:"status"`
	Amount    models.Cents `json:"amount"`
	CreatedAt int64        `json:"created_at"`
}
