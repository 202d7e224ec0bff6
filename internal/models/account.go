package models

import "time"

type Account struct {
	ID         string    `json:"id"`
	Balance    int64     `json:"balance"`
	TotalSpent int64     `json:"total_spent"`
	Tier       Tier      `json:"tier"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

type TierBenefits struct {
	Name            string   `json:"name"`
	DiscountPercent int64    `json:"discount_percent"`
	MonthlyBonus    int64    `json:"monthly_bonus"`
	Features        []string `json:"features"`
}

// TierFor maps cumulative credit spend to a tier. Thresholds are checked
// highest first.
func TierFor(totalSpent int64) Tier {
	switch {
	case totalSpent >= 1000:
		return TierPlatinum
	case totalSpent >= 500:
		return TierGold
	case totalSpent >= 100:
		return TierSilver
	default:
		return TierBronze
	}
}

func (t Tier) Benefits() TierBenefits {
	switch t {
	case TierSilver:
		return TierBenefits{
			Name:            "Silver",
			DiscountPercent: 5,
			MonthlyBonus:    10,
			Features:        []string{"5% discount", "+10 credits/month", "Premium templates"},
		}
	case TierGold:
		return TierBenefits{
			Name:            "Gold",
			DiscountPercent: 10,
			MonthlyBonus:    25,
			Features:        []string{"10% discount", "+25 credits/month", "All templates", "Priority support"},
		}
	case TierPlatinum:
		return TierBenefits{
			Name:            "Platinum",
			DiscountPercent: 15,
			MonthlyBonus:    50,
			Features:        []string{"15% discount", "+50 credits/month", "Unlimited everything", "VIP support", "Beta features"},
		}
	default:
		return TierBenefits{
			Name:     "Bronze",
			Features: []string{"Basic access", "Free templates"},
		}
	}
}

type AccountSummary struct {
	Account  *Account     `json:"account"`
	Benefits TierBenefits `json:"benefits"`
}
