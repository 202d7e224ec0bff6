package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"certifyrpg/internal/models"
)

func (s *Store) CreateGeneration(ctx context.Context, gen *models.Generation) error {
	gen.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, queryInsertGeneration,
		gen.ID, gen.UserID, nullString(gen.CampaignID), string(gen.Kind), gen.Prompt,
		string(gen.Content), gen.Model, gen.TokensUsed, gen.CostCredits, gen.CreatedAt)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", gen.UserID).Msg("Error saving generation")
		return fmt.Errorf("failed to save generation: %w", err)
	}
	return nil
}

func (s *Store) ListGenerations(ctx context.Context, userID string, limit, offset int) ([]*models.Generation, error) {
	rows, err := s.db.QueryContext(ctx, queryListGenerations, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var out []*models.Generation
	for rows.Next() {
		var g models.Generation
		var campaignID sql.NullString
		var kind, content string
		err := rows.Scan(&g.ID, &g.UserID, &campaignID, &kind, &g.Prompt, &content,
			&g.Model, &g.TokensUsed, &g.CostCredits, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning generation: %w", err)
		}
		g.CampaignID = campaignID.String
		g.Kind = models.GenerationKind(kind)
		g.Content = []byte(content)
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (s *Store) CreateCertificate(ctx context.Context, cert *models.Certificate) error {
	cert.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, queryInsertCertificate,
		cert.ID, cert.UserID, nullString(cert.CampaignID), cert.Title, nullString(cert.Description),
		cert.PlayerName, nullString(cert.CharacterName), cert.Achievement, string(cert.Template), cert.CreatedAt)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", cert.UserID).Msg("Error saving certificate")
		return fmt.Errorf("failed to save certificate: %w", err)
	}
	return nil
}

func (s *Store) ListCertificates(ctx context.Context, userID string, limit, offset int) ([]*models.Certificate, error) {
	rows, err := s.db.QueryContext(ctx, queryListCertificates, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var out []*models.Certificate
	for rows.Next() {
		var c models.Certificate
		var campaignID, description, characterName sql.NullString
		var template string
		err := rows.Scan(&c.ID, &c.UserID, &campaignID, &c.Title, &description,
			&c.PlayerName, &characterName, &c.Achievement, &template, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning certificate: %w", err)
		}
		c.CampaignID = campaignID.String
		c.Description = description.String
		c.CharacterName = characterName.String
		c.Template = models.CertificateTemplate(template)
		out = append(out, &c)
	}
	return out, rows.Err()
}
