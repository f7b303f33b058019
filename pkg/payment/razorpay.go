package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/razorpay/razorpay-go"

	"travelo/internal/models"
)

type RazorpayProvider struct {
	client        *razorpay.Client
	webhookSecret string
}

func NewRazorpayProvider(keyID, keySecret, webhookSecret string) *RazorpayProvider {
	client := razorpay.NewClient(keyID, keySecret)

	return &RazorpayProvider{
		client:        client,
		webhookSecret: webhookSecret,
	}
}

func (r *RazorpayProvider) CreateOrder(ctx context.Context, request *OrderRequest) (*OrderResponse, error) {
	orderData := map[string]interface{}{
		"amount":   int64(request.Amount), // Amount in paise
		"currency": request.Currency,
		"receipt":  request.OrderID,
		"notes":    request.Metadata,
	}

	order, err := r.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Razorpay authorizes the payment on the frontend; the result arrives
	// through the payment callback.
	return &OrderResponse{
		GatewayOrderID: order["id"].(string),
		Status:         "created",
		Amount:         request.Amount,
		Currency:       request.Currency,
		CreatedAt:      int64(order["created_at"].(int)),
	}, nil
}

func (r *RazorpayProvider) Refund(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	refundData := map[string]interface{}{
		"notes": map[string]interface{}{
			"reason": request.Reason,
		},
	}

	amount := int(request.Amount)
	refund, err := r.client.Payment.Refund(request.GatewayOrderID, amount, refundData, map[string]string{})
	if err != nil {
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}

	return &RefundResponse{
		RefundID:  refund["id"].(string),
		Status:    refund["status"].(string),
		Amount:    models.Cents(int64(refund["amount"].(int))),
		CreatedAt: int64(refund["created_at"].(int)),
	}, nil
}

func (r *RazorpayProvider) VerifyCallback(payload []byte, signature string) error {
	expected := r.generateSignature(string(payload))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return models.SignatureError{Gateway: "razorpay"}
	}
	return nil
}

func (r *RazorpayProvider) generateSignature(payload string) string {
	h := hmac.New(sha256.New, []byte(r.webhookSecret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
