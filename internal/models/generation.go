package models

import (
	"encoding/json"
	"time"
)

type Generation struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	CampaignID  string          `json:"campaign_id,omitempty"`
	Kind        GenerationKind  `json:"type"`
	Prompt      string          `json:"prompt"`
	Content     json.RawMessage `json:"content"`
	Model       string          `json:"model"`
	TokensUsed  int             `json:"tokens_used"`
	CostCredits int64           `json:"cost_credits"`
	CreatedAt   time.Time       `json:"created_at"`
}

// GenerationRequest is the client payload for an AI generation. Fields not
// used by a kind are ignored by its prompt.
type GenerationRequest struct {
	Kind        GenerationKind `json:"type"`
	CampaignID  string         `json:"campaignId,omitempty"`
	Name        string         `json:"name,omitempty"`
	Race        string         `json:"race,omitempty"`
	Class       string         `json:"class,omitempty"`
	Rarity      string         `json:"rarity,omitempty"`
	Setting     string         `json:"setting,omitempty"`
	Theme       string         `json:"theme,omitempty"`
	Difficulty  string         `json:"difficulty,omitempty"`
	Context     string         `json:"context,omitempty"`
	Description string         `json:"description,omitempty"`
}

// PaidResult is the envelope returned by every credit-costing action.
type PaidResult[T any] struct {
	Success          bool  `json:"success"`
	Artifact         T     `json:"data"`
	CreditsUsed      int64 `json:"creditsUsed"`
	CreditsRemaining int64 `json:"creditsRemaining"`
	BillingPending   bool  `json:"billingPending,omitempty"`
}
