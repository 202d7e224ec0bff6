package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"certifyrpg/internal/metrics"
	"certifyrpg/internal/models"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"

	webhookTolerance = 5 * time.Minute
)

// SettlementOutcome tells the webhook handler what happened to an event.
type SettlementOutcome string

const (
	OutcomeCredited  SettlementOutcome = "credited"
	OutcomeDuplicate SettlementOutcome = "duplicate"
	OutcomeIgnored   SettlementOutcome = "ignored"
)

type SettlementService struct {
	balance       *BalanceService
	webhookSecret string
	logger        zerolog.Logger
}

func NewSettlementService(balance *BalanceService, webhookSecret string, logger zerolog.Logger) *SettlementService {
	return &SettlementService{
		balance:       balance,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// SettlePurchase verifies and applies one payment provider event. Each
// checkout session credits at most once, however often it is delivered.
func (s *SettlementService) SettlePurchase(ctx context.Context, payload []byte, signature string) (SettlementOutcome, error) {
	if err := webhook.ValidatePayloadWithTolerance(payload, signature, s.webhookSecret, webhookTolerance); err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "invalid_signature").Inc()
		s.logger.Warn().Err(err).Msg("Webhook signature verification failed")
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "malformed").Inc()
		return "", fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	eventType := string(event.Type)
	log := s.logger.With().Str("event_id", event.ID).Str("event_type", eventType).Logger()

	var outcome SettlementOutcome
	var err error
	switch eventType {
	case EventCheckoutCompleted:
		outcome, err = s.settleCheckout(ctx, &event, log)
	case EventPaymentFailed:
		var intent stripe.PaymentIntent
		if event.Data != nil {
			_ = json.Unmarshal(event.Data.Raw, &intent)
		}
		log.Warn().Str("payment_intent", intent.ID).Msg("Payment failed")
		outcome = OutcomeIgnored
	default:
		log.Debug().Msg("Unhandled webhook event")
		outcome = OutcomeIgnored
	}

	if err != nil {
		metrics.WebhookEvents.WithLabelValues(eventType, "error").Inc()
		return "", err
	}
	metrics.WebhookEvents.WithLabelValues(eventType, string(outcome)).Inc()
	return outcome, nil
}

func (s *SettlementService) settleCheckout(ctx context.Context, event *stripe.Event, log zerolog.Logger) (SettlementOutcome, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return "", fmt.Errorf("%w: missing event data", ErrMalformedEvent)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if session.ID == "" {
		return "", fmt.Errorf("%w: missing checkout session id", ErrMalformedEvent)
	}

	userID := session.Metadata["userId"]
	productKey := session.Metadata["productKey"]
	if userID == "" {
		return "", fmt.Errorf("%w: missing userId metadata", ErrMalformedEvent)
	}
	credits, err := strconv.ParseInt(session.Metadata["credits"], 10, 64)
	if err != nil || credits <= 0 {
		return "", fmt.Errorf("%w: invalid credits metadata %q", ErrMalformedEvent, session.Metadata["credits"])
	}

	tx, err := s.balance.Credit(ctx, &models.CreditRequest{
		AccountID:   userID,
		Amount:      credits,
		Kind:        models.KindPurchase,
		Description: fmt.Sprintf("Purchase: %s (%d credits)", productKey, credits),
		ReferenceID: session.ID,
		ExternalID:  "checkout_session:" + session.ID,
	})
	switch {
	case errors.Is(err, models.ErrDuplicateTransaction):
		log.Info().Str("session_id", session.ID).Msg("Checkout session already settled")
		return OutcomeDuplicate, nil
	case errors.Is(err, models.ErrAccountNotFound):
		return "", fmt.Errorf("%w: unknown account %s", ErrMalformedEvent, userID)
	case err != nil:
		return "", err
	}

	log.Info().
		Str("account_id", userID).
		Str("session_id", session.ID).
		Str("transaction_id", tx.ID).
		Int64("credits", credits).
		Msg("Purchase settled")
	return OutcomeCredited, nil
}
