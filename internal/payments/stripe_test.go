package payments

import (
	"context"
	"errors"
	"testing"

	"certifyrpg/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"17.99", 1799},
		{"16.19", 1619},
		{"9.995", 1000},
		{"70", 7000},
	}

	for _, tt := range tests {
		if got := toMinorUnits(decimal.RequireFromString(tt.price)); got != tt.want {
			t.Errorf("toMinorUnits(%s) = %d, want %d", tt.price, got, tt.want)
		}
	}
}

func TestCreateCheckoutSession_NotConfigured(t *testing.T) {
	s := NewStripeCheckout("", "brl", zerolog.Nop())

	_, err := s.CreateCheckoutSession(context.Background(), &models.CheckoutParams{UserID: "u-1"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}
