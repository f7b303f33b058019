package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"travelo/internal/models"
)

type StripeProvider struct {
	client        *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{
		client:        sc,
		webhookSecret: webhookSecret,
	}
}

func (s *StripeProvider) CreateOrder(ctx context.Context, request *OrderRequest) (*OrderResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(int64(request.Amount)),
		Currency:    stripe.String(request.Currency),
		Description: stripe.String(request.Description),
	}
	params.AddMetadata("order_id", request.OrderID)
	if request.CustomerID != "" {
		params.Customer = stripe.String(request.CustomerID)
	}
	for key, value := range request.Metadata {
		params.AddMetadata(key, fmt.Sprintf("%v", value))
	}

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &OrderResponse{
		GatewayOrderID: pi.ID,
		Status:         string(pi.Status),
		Amount:         models.Cents(pi.Amount),
		Currency:       string(pi.Currency),
		CreatedAt:      pi.Created,
	}, nil
}

func (s *StripeProvider) Refund(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(request.GatewayOrderID),
	}
	if request.Reason != "" {
		params.Reason = stripe.String(request.Reason)
	}
	if request.Amount > 0 {
		params.Amount = stripe.Int64(int64(request.Amount))
	}

	refund, err := s.client.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}

	return &RefundResponse{
		RefundID:  refund.ID,
		Status:    string(refund.Status),
		Amount:    models.Cents(refund.Amount),
		CreatedAt: refund.Created,
	}, nil
}

func (s *StripeProvider) VerifyCallback(payload []byte, signature string) error {
	if _, err := webhook.ConstructEvent(payload, signature, s.webhookSecret); err != nil {
		return models.SignatureError{Gateway: "stripe"}
	}
	return nil
}
