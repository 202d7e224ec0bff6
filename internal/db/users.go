package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certifyrpg/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, queryInsertUser,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.ReferralCode, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating user")
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, queryGetUserByID, userID))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, queryGetUserByEmail, email))
}

func (s *Store) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, queryGetUserByReferralCode, code))
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.ReferralCode, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &u, nil
}

func (s *Store) UserExists(ctx context.Context, email, username string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, queryUserExists, email, username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return false, fmt.Errorf("database error: %w", err)
	}
	return true, nil
}
