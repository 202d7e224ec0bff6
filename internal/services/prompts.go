package services

import (
	"fmt"
	"strings"

	"certifyrpg/internal/llm"
	"certifyrpg/internal/models"
)

const jsonOnly = "Always answer with valid JSON that follows the structure you are given."

var systemPrompts = map[models.GenerationKind]string{
	models.GenerationNPC:      "You are an experienced tabletop RPG game master who writes detailed, memorable non-player characters with personality, motives and history.",
	models.GenerationItem:     "You are an experienced tabletop RPG game master who designs unique magic items and equipment with clear properties and game mechanics.",
	models.GenerationLocation: "You are an experienced tabletop RPG game master who builds immersive locations with points of interest, inhabitants and adventure hooks.",
	models.GenerationStory:    "You are an experienced tabletop RPG game master who writes engaging stories with a beginning, a middle, an end and a twist.",
	models.GenerationQuest:    "You are an experienced tabletop RPG game master who designs quests with clear objectives, fair challenges and fitting rewards.",
}

var outputShapes = map[models.GenerationKind]string{
	models.GenerationNPC: `{
  "name": "", "race": "", "class": "", "level": 1, "alignment": "",
  "appearance": "", "personality": "", "background": "", "motivations": "",
  "quirks": [], "voice": "", "relationships": "", "secrets": "", "hooks": []
}`,
	models.GenerationItem: `{
  "name": "", "type": "", "rarity": "", "description": "", "appearance": "",
  "properties": [], "mechanics": "", "history": "", "curse": "", "attunement": "", "value": ""
}`,
	models.GenerationLocation: `{
  "name": "", "type": "", "size": "", "description": "", "atmosphere": "", "history": "",
  "pointsOfInterest": [{"name": "", "description": ""}], "npcs": [{"name": "", "role": ""}],
  "secrets": [], "encounters": [], "loot": "", "hooks": []
}`,
	models.GenerationStory: `{
  "title": "", "summary": "", "setting": "", "characters": [{"name": "", "role": ""}],
  "acts": [{"title": "", "description": ""}], "twist": "", "ending": ""
}`,
	models.GenerationQuest: `{
  "title": "", "type": "", "difficulty": "", "summary": "", "questGiver": "",
  "objectives": [], "challenges": [], "rewards": [], "hooks": []
}`,
}

// buildPrompt renders the conversation for a generation request. Unknown
// kinds fall back to the story prompt.
func buildPrompt(req *models.GenerationRequest) []llm.Message {
	kind := req.Kind
	if !kind.Known() {
		kind = models.GenerationStory
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s for a tabletop RPG with these traits:\n", kind)
	for _, f := range []struct{ label, value string }{
		{"Name", req.Name},
		{"Race", req.Race},
		{"Class", req.Class},
		{"Rarity", req.Rarity},
		{"Theme", req.Theme},
		{"Difficulty", req.Difficulty},
		{"Setting", req.Setting},
		{"Description", req.Description},
		{"Additional context", req.Context},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "- %s: %s\n", f.label, f.value)
		}
	}
	b.WriteString("\nAnswer ONLY with JSON in this structure:\n")
	b.WriteString(outputShapes[kind])

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompts[kind] + "\n" + jsonOnly},
		{Role: llm.RoleUser, Content: b.String()},
	}
}

// stripCodeFence removes the markdown fences models like to wrap JSON in.
func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
