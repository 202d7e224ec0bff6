package services

import (
	"context"
	"fmt"
	"strings"

	"certifyrpg/internal/catalog"
	"certifyrpg/internal/models"

	"github.com/rs/zerolog"
)

// CheckoutProvider opens a hosted payment session for one credit pack. The
// session must carry userId, productKey and credits back in its metadata.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, params *models.CheckoutParams) (*models.CheckoutSession, error)
}

type CheckoutService struct {
	catalog  *catalog.Catalog
	balance  *BalanceService
	provider CheckoutProvider
	appURL   string
	logger   zerolog.Logger
}

func NewCheckoutService(c *catalog.Catalog, balance *BalanceService, provider CheckoutProvider, appURL string, logger zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		catalog:  c,
		balance:  balance,
		provider: provider,
		appURL:   strings.TrimRight(appURL, "/"),
		logger:   logger,
	}
}

// Offers lists the catalog priced for the account's tier.
func (s *CheckoutService) Offers(ctx context.Context, userID string) ([]models.ProductOffer, error) {
	summary, err := s.balance.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	products := s.catalog.All()
	offers := make([]models.ProductOffer, 0, len(products))
	for _, p := range products {
		offers = append(offers, models.ProductOffer{
			Product:         p,
			DiscountedPrice: p.DiscountedPrice(summary.Account.Tier),
		})
	}
	return offers, nil
}

func (s *CheckoutService) CreateSession(ctx context.Context, userID, productKey string) (*models.CheckoutSession, error) {
	product, ok := s.catalog.Lookup(productKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, productKey)
	}

	summary, err := s.balance.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	params := &models.CheckoutParams{
		UserID:     userID,
		Product:    product,
		UnitPrice:  product.DiscountedPrice(summary.Account.Tier),
		SuccessURL: s.appURL + "/dashboard/credits?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.appURL + "/dashboard/credits?canceled=true",
	}

	session, err := s.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("product", productKey).Msg("Error creating checkout session")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("product", productKey).
		Str("session_id", session.SessionID).
		Str("price", params.UnitPrice.StringFixed(2)).
		Msg("Checkout session created")

	return session, nil
}
