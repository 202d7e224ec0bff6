package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"certifyrpg/internal/llm"
	"certifyrpg/internal/metrics"
	"certifyrpg/internal/models"
	"certifyrpg/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type GenerationService struct {
	store   store.LedgerStore
	balance *BalanceService
	llm     llm.Client
	timeout time.Duration
	logger  zerolog.Logger
}

func NewGenerationService(s store.LedgerStore, balance *BalanceService, client llm.Client, timeout time.Duration, logger zerolog.Logger) *GenerationService {
	return &GenerationService{
		store:   s,
		balance: balance,
		llm:     client,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate produces one AI artifact and charges the kind's cost for it.
// Nothing is charged when the balance is short or the provider fails.
func (s *GenerationService) Generate(ctx context.Context, userID string, req *models.GenerationRequest) (*models.PaidResult[*models.Generation], error) {
	cost := req.Kind.Cost()

	observed, err := s.balance.precheck(ctx, userID, cost, models.KindAIGeneration)
	if err != nil {
		return nil, err
	}

	messages := buildPrompt(req)

	llmCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := s.llm.Complete(llmCtx, messages)
	metrics.LLMDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMRequests.WithLabelValues(string(req.Kind), "error").Inc()
		s.logger.Error().Err(err).Str("user_id", userID).Str("kind", string(req.Kind)).Msg("Generation failed")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	metrics.LLMRequests.WithLabelValues(string(req.Kind), "ok").Inc()

	content := stripCodeFence(completion.Content)
	if !json.Valid([]byte(content)) {
		s.logger.Warn().Str("user_id", userID).Str("kind", string(req.Kind)).Msg("Model returned invalid JSON")
		return nil, fmt.Errorf("%w: model returned invalid JSON", ErrProviderUnavailable)
	}

	gen := &models.Generation{
		ID:          uuid.New().String(),
		UserID:      userID,
		CampaignID:  req.CampaignID,
		Kind:        req.Kind,
		Prompt:      messages[len(messages)-1].Content,
		Content:     json.RawMessage(content),
		Model:       completion.Model,
		TokensUsed:  completion.TokensUsed,
		CostCredits: cost,
	}
	if err := s.store.CreateGeneration(ctx, gen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	remaining, pending := s.balance.chargeArtifact(ctx, &models.SpendRequest{
		AccountID:   userID,
		Cost:        cost,
		Kind:        models.KindAIGeneration,
		Description: fmt.Sprintf("AI %s generation", req.Kind),
		ReferenceID: gen.ID,
	}, observed)

	s.logger.Info().
		Str("user_id", userID).
		Str("generation_id", gen.ID).
		Str("kind", string(gen.Kind)).
		Int("tokens", gen.TokensUsed).
		Msg("Generation created")

	return &models.PaidResult[*models.Generation]{
		Success:          true,
		Artifact:         gen,
		CreditsUsed:      cost,
		CreditsRemaining: remaining,
		BillingPending:   pending,
	}, nil
}

func (s *GenerationService) History(ctx context.Context, userID string, limit, offset int) ([]*models.Generation, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	gens, err := s.store.ListGenerations(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return gens, nil
}
