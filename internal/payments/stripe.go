// Package payments implements the hosted checkout provider on Stripe.
package payments

import (
	"context"
	"errors"
	"strconv"

	"certifyrpg/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrNotConfigured = errors.New("stripe is not configured")

type StripeCheckout struct {
	api      *client.API
	currency string
	logger   zerolog.Logger
}

// NewStripeCheckout returns a provider for the given secret key. Without a key
// every session request fails with ErrNotConfigured.
func NewStripeCheckout(secretKey, currency string, logger zerolog.Logger) *StripeCheckout {
	var api *client.API
	if secretKey != "" {
		api = client.New(secretKey, nil)
	}
	return &StripeCheckout{
		api:      api,
		currency: currency,
		logger:   logger,
	}
}

func (s *StripeCheckout) CreateCheckoutSession(ctx context.Context, p *models.CheckoutParams) (*models.CheckoutSession, error) {
	if s.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.Product.Name),
						Description: stripe.String(strconv.FormatInt(p.Product.Credits, 10) + " credits"),
					},
					UnitAmount: stripe.Int64(toMinorUnits(p.UnitPrice)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("userId", p.UserID)
	params.AddMetadata("productKey", p.Product.Key)
	params.AddMetadata("credits", strconv.FormatInt(p.Product.Credits, 10))

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", p.UserID).Msg("Stripe checkout session failed")
		return nil, err
	}

	return &models.CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

func toMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
