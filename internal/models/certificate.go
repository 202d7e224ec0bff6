package models

import "time"

type Certificate struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	CampaignID    string              `json:"campaign_id,omitempty"`
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	PlayerName    string              `json:"player_name"`
	CharacterName string              `json:"character_name,omitempty"`
	Achievement   string              `json:"achievement"`
	Template      CertificateTemplate `json:"template"`
	CreatedAt     time.Time           `json:"created_at"`
}

type CertificateTemplate string

const (
	TemplateClassic CertificateTemplate = "classic"
	TemplateFantasy CertificateTemplate = "fantasy"
	TemplateModern  CertificateTemplate = "modern"
	TemplateCustom  CertificateTemplate = "custom"
)

type CertificateRequest struct {
	CampaignID    string              `json:"campaignId,omitempty"`
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	PlayerName    string              `json:"playerName"`
	CharacterName string              `json:"characterName,omitempty"`
	Achievement   string              `json:"achievement"`
	Template      CertificateTemplate `json:"template,omitempty"`
}
