package combat

import "strings"

// Boss is one entry of the guild's bounty target list.
type Boss struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Bounty      string `json:"bounty"`
	Description string `json:"description"`
}

// Bosses is the guild bounty vocabulary. Order matters: detection walks the
// list top to bottom and the first hit wins.
var Bosses = []Boss{
	{
		ID:          "auvio",
		Name:        "Auvio",
		Bounty:      "6,800,000 Spina",
		Description: "The Thunder Emperor who commands the storms. His lightning strikes without warning.",
	},
	{
		ID:          "castila",
		Name:        "Castila",
		Bounty:      "4,500,000 Spina",
		Description: "The Artificial Spirit created by the researchers. Her power rivals that of ancient gods.",
	},
	{
		ID:          "eto",
		Name:        "Eto",
		Bounty:      "3,200,000 Spina",
		Description: "The Shadow Assassin who moves unseen. No one has ever witnessed her true form.",
	},
	{
		ID:          "ferzen",
		Name:        "Ferzen",
		Bounty:      "5,600,000 Spina",
		Description: "The Ice Lord whose frozen domain knows no mercy. His cold heart matches his frozen powers.",
	},
	{
		ID:          "gespents",
		Name:        "Gespents",
		Bounty:      "4,100,000 Spina",
		Description: "The Phantom Knight who guards the cursed ruins. His spectral blade cuts through reality itself.",
	},
	{
		ID:          "igneus",
		Name:        "Igneus",
		Bounty:      "5,200,000 Spina",
		Description: "The Flame General who commands the volcanic legions. His anger burns eternal.",
	},
	{
		ID:          "merzehal",
		Name:        "Merzehal",
		Bounty:      "7,500,000 Spina",
		Description: "The Ancient Dragon who has lived for millennia. His wisdom is matched only by his devastating power.",
	},
	{
		ID:          "mimyu",
		Name:        "Mimyu",
		Bounty:      "3,900,000 Spina",
		Description: "The Mystic Sorceress who weaves illusions and reality. Her magic defies all known laws.",
	},
	{
		ID:          "pedrio",
		Name:        "Pedrio",
		Bounty:      "3,800,000 Spina",
		Description: "A prodigy of the blade who seeks only the strongest opponents. His technique is flawless.",
	},
	{
		ID:          "vatudo",
		Name:        "Vatudo",
		Bounty:      "8,200,000 Spina",
		Description: "The Dark Overlord who reigns supreme. His very presence brings fear to the bravest warriors.",
	},
}

// knownWeapons lists weapon and class names the assistant understands,
// including Indonesian synonyms. First match wins.
var knownWeapons = []string{
	"sword", "pedang",
	"bow", "busur", "panah",
	"staff", "tongkat",
	"knuckle", "tinju",
	"halberd", "tombak",
	"katana",
	"dual sword", "dual pedang",
	"magic device", "magic",
	"bowgun", "senapan",
	"shield", "perisai", "tank",
}

// DetectBoss scans text for a known boss, matching the display name first and
// the internal id as a fallback. The first boss in vocabulary order wins even
// when several names appear in the same utterance.
func DetectBoss(text string) (Boss, bool) {
	lower := strings.ToLower(text)
	for _, b := range Bosses {
		if strings.Contains(lower, strings.ToLower(b.Name)) {
			return b, true
		}
		if strings.Contains(lower, b.ID) {
			return b, true
		}
	}
	return Boss{}, false
}

// DetectWeapon scans text for a known weapon name or synonym.
func DetectWeapon(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, w := range knownWeapons {
		if strings.Contains(lower, w) {
			return w, true
		}
	}
	return "", false
}

// BossByID looks a boss up by its internal id.
func BossByID(id string) (Boss, bool) {
	for _, b := range Bosses {
		if b.ID == id {
			return b, true
		}
	}
	return Boss{}, false
}
