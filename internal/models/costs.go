package models

const (
	CertificateCost int64 = 5
	AIImageCost     int64 = 25
	DefaultAICost   int64 = 10
	WelcomeBonus    int64 = 100
	ReferralBonus   int64 = 50
)

type GenerationKind string

const (
	GenerationNPC      GenerationKind = "npc"
	GenerationItem     GenerationKind = "item"
	GenerationLocation GenerationKind = "location"
	GenerationStory    GenerationKind = "story"
	GenerationQuest    GenerationKind = "quest"
)

// Cost returns the credit price of one generation. Kinds without an entry
// are charged DefaultAICost.
func (k GenerationKind) Cost() int64 {
	switch k {
	case GenerationNPC:
		return 10
	case GenerationItem:
		return 8
	case GenerationLocation:
		return 12
	case GenerationStory:
		return 15
	case GenerationQuest:
		return 20
	default:
		return DefaultAICost
	}
}

func (k GenerationKind) Known() bool {
	switch k {
	case GenerationNPC, GenerationItem, GenerationLocation, GenerationStory, GenerationQuest:
		return true
	}
	return false
}
