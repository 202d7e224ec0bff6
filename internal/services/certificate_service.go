package services

import (
	"context"
	"fmt"
	"strings"

	"certifyrpg/internal/models"
	"certifyrpg/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CertificateService struct {
	store   store.LedgerStore
	balance *BalanceService
	logger  zerolog.Logger
}

func NewCertificateService(s store.LedgerStore, balance *BalanceService, logger zerolog.Logger) *CertificateService {
	return &CertificateService{
		store:   s,
		balance: balance,
		logger:  logger,
	}
}

func (s *CertificateService) Create(ctx context.Context, userID string, req *models.CertificateRequest) (*models.PaidResult[*models.Certificate], error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.PlayerName) == "" || strings.TrimSpace(req.Achievement) == "" {
		return nil, fmt.Errorf("%w: title, playerName and achievement are required", ErrInvalidRequest)
	}

	template := req.Template
	switch template {
	case "":
		template = models.TemplateClassic
	case models.TemplateClassic, models.TemplateFantasy, models.TemplateModern, models.TemplateCustom:
	default:
		return nil, fmt.Errorf("%w: unknown template %q", ErrInvalidRequest, template)
	}

	observed, err := s.balance.precheck(ctx, userID, models.CertificateCost, models.KindCertificate)
	if err != nil {
		return nil, err
	}

	cert := &models.Certificate{
		ID:            uuid.New().String(),
		UserID:        userID,
		CampaignID:    req.CampaignID,
		Title:         req.Title,
		Description:   req.Description,
		PlayerName:    req.PlayerName,
		CharacterName: req.CharacterName,
		Achievement:   req.Achievement,
		Template:      template,
	}
	if err := s.store.CreateCertificate(ctx, cert); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	remaining, pending := s.balance.chargeArtifact(ctx, &models.SpendRequest{
		AccountID:   userID,
		Cost:        models.CertificateCost,
		Kind:        models.KindCertificate,
		Description: fmt.Sprintf("Certificate: %s", cert.Title),
		ReferenceID: cert.ID,
	}, observed)

	s.logger.Info().Str("user_id", userID).Str("certificate_id", cert.ID).Msg("Certificate created")

	return &models.PaidResult[*models.Certificate]{
		Success:          true,
		Artifact:         cert,
		CreditsUsed:      models.CertificateCost,
		CreditsRemaining: remaining,
		BillingPending:   pending,
	}, nil
}

func (s *CertificateService) List(ctx context.Context, userID string, limit, offset int) ([]*models.Certificate, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	certs, err := s.store.ListCertificates(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return certs, nil
}
