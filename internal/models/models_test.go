package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		spent int64
		want  Tier
	}{
		{0, TierBronze},
		{99, TierBronze},
		{100, TierSilver},
		{499, TierSilver},
		{500, TierGold},
		{999, TierGold},
		{1000, TierPlatinum},
		{250000, TierPlatinum},
	}

	for _, tt := range tests {
		if got := TierFor(tt.spent); got != tt.want {
			t.Errorf("TierFor(%d) = %s, want %s", tt.spent, got, tt.want)
		}
	}
}

func TestTierBenefits(t *testing.T) {
	tests := []struct {
		tier     Tier
		discount int64
		bonus    int64
	}{
		{TierBronze, 0, 0},
		{TierSilver, 5, 10},
		{TierGold, 10, 25},
		{TierPlatinum, 15, 50},
	}

	for _, tt := range tests {
		b := tt.tier.Benefits()
		if b.DiscountPercent != tt.discount || b.MonthlyBonus != tt.bonus {
			t.Errorf("%s benefits = %d%%/+%d, want %d%%/+%d", tt.tier, b.DiscountPercent, b.MonthlyBonus, tt.discount, tt.bonus)
		}
	}
}

func TestGenerationCost(t *testing.T) {
	tests := []struct {
		kind GenerationKind
		want int64
	}{
		{GenerationNPC, 10},
		{GenerationItem, 8},
		{GenerationLocation, 12},
		{GenerationStory, 15},
		{GenerationQuest, 20},
		{"", DefaultAICost},
		{"dragon", DefaultAICost},
	}

	for _, tt := range tests {
		if got := tt.kind.Cost(); got != tt.want {
			t.Errorf("%q.Cost() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestDiscountedPrice(t *testing.T) {
	basic := Product{Key: "BASIC_PACK", Credits: 100, Price: decimal.RequireFromString("17.99")}

	tests := []struct {
		tier Tier
		want string
	}{
		{TierBronze, "17.99"},
		{TierSilver, "17.09"},
		{TierGold, "16.19"},
		{TierPlatinum, "15.29"},
	}

	for _, tt := range tests {
		if got := basic.DiscountedPrice(tt.tier).StringFixed(2); got != tt.want {
			t.Errorf("%s price = %s, want %s", tt.tier, got, tt.want)
		}
	}
}

func TestInsufficientCreditsError(t *testing.T) {
	var err error = &InsufficientCreditsError{Required: 15, Available: 2}

	if !errors.Is(err, ErrInsufficientCredits) {
		t.Error("Expected errors.Is to match ErrInsufficientCredits")
	}

	var typed *InsufficientCreditsError
	if !errors.As(err, &typed) || typed.Required != 15 || typed.Available != 2 {
		t.Errorf("Expected required=15 available=2, got %+v", typed)
	}
}
