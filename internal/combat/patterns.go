package combat

import "strings"

// QuickPattern maps keywords heard during battle to an instant canned answer,
// so common situations get a reply without a round-trip to the model.
//
// Keywords must ALL be present (lowercase substring match). Any exclude
// keyword present disqualifies the pattern. When several patterns survive,
// the highest priority wins; equal priorities fall back to table order.
type QuickPattern struct {
	ID              string
	Keywords        []string
	ExcludeKeywords []string
	Response        string
	Priority        int
}

// quickPatterns is the static rule table. Loaded once, never mutated.
// Responses stay in Bahasa Indonesia, same as the assistant's voice.
var quickPatterns = []QuickPattern{
	// AoE and area attacks
	{
		ID:       "aoe-besar",
		Keywords: []string{"aoe", "besar"},
		Response: "Pakai skill immune sekarang! Atau dodge ke belakang boss buat keluar dari area!",
		Priority: 9,
	},
	{
		ID:       "aoe-dodge",
		Keywords: []string{"aoe", "dodge"},
		Response: "Timing dodge-nya pas animasi boss mulai! Kalau gak bisa, pakai iframe skill aja!",
		Priority: 8,
	},
	{
		ID:       "aoe-general",
		Keywords: []string{"aoe"},
		Response: "Jaga jarak dari pusat AoE! Pakai skill iframe atau dodge ke sisi boss!",
		Priority: 5,
	},
	{
		ID:       "serangan-area",
		Keywords: []string{"serangan", "area"},
		Response: "Serangan area itu counter-nya iframe atau reposisi! Gerak ke belakang boss!",
		Priority: 7,
	},

	// Damage issues
	{
		ID:       "damage-berkurang",
		Keywords: []string{"damage", "berkurang"},
		Response: "Cek prorate dan buff kamu! Pastikan buff attack masih aktif dan skill belum prorate!",
		Priority: 9,
	},
	{
		ID:       "damage-kecil",
		Keywords: []string{"damage", "kecil"},
		Response: "Prorate kali! Ganti rotasi skill, pakai yang belum prorate. Cek buff juga!",
		Priority: 9,
	},
	{
		ID:       "damage-turun",
		Keywords: []string{"damage", "turun"},
		Response: "Kemungkinan prorate. Ganti skill ke rotasi kedua! Jangan lupa refresh buff!",
		Priority: 9,
	},
	{
		ID:       "damage-rendah",
		Keywords: []string{"damage", "rendah"},
		Response: "Cek equipment dan buff! Kalau prorate, ganti rotasi skill. Pastikan debuff boss aktif!",
		Priority: 8,
	},
	{
		ID:       "gak-ngefek",
		Keywords: []string{"gak", "ngefek"},
		Response: "Boss mungkin lagi fase immune atau resist. Tunggu fase-nya berubah, atau cek elemen serangan kamu!",
		Priority: 8,
	},

	// HP and survival
	{
		ID:       "hp-dikit",
		Keywords: []string{"hp", "dikit"},
		Response: "Mundur sekarang! Pakai potion atau skill heal! Jangan greedy, survive dulu!",
		Priority: 10,
	},
	{
		ID:       "hp-tipis",
		Keywords: []string{"hp", "tipis"},
		Response: "Jangan nekat! Heal dulu atau pakai consumable! Mending hidup daripada mati!",
		Priority: 10,
	},
	{
		ID:       "mau-mati",
		Keywords: []string{"mau", "mati"},
		Response: "Pakai skill immune atau dodge jauh sekarang! Heal segera, jangan serang dulu!",
		Priority: 10,
	},
	{
		ID:       "sekarat",
		Keywords: []string{"sekarat"},
		Response: "Mundur dan heal! Pakai consumable HP sekarang! Safety first!",
		Priority: 10,
	},
	{
		ID:       "mati-terus",
		Keywords: []string{"mati", "terus"},
		Response: "Kayaknya equipment kurang kuat atau timing dodge belum pas. Coba upgrade armor atau tambah HP consumable!",
		Priority: 8,
	},

	// Boss mechanics
	{
		ID:       "boss-shield",
		Keywords: []string{"shield"},
		Response: "Boss lagi fase shield! Fokus hancurin weak point atau crystal-nya dulu baru DPS!",
		Priority: 9,
	},
	{
		ID:       "boss-hp-gak-berkurang",
		Keywords: []string{"hp", "gak", "berkurang"},
		Response: "Boss mungkin lagi fase immune atau shield! Cari weak point-nya, jangan asal serang!",
		Priority: 9,
	},
	{
		ID:       "boss-rage",
		Keywords: []string{"rage"},
		Response: "Boss lagi rage mode! Fokus dodge dan survive, jangan greedy DPS! Tunggu rage habis!",
		Priority: 9,
	},
	{
		ID:       "boss-enrage",
		Keywords: []string{"enrage"},
		Response: "Enrage timer! Burst DPS sekarang semaksimal mungkin! All-out attack!",
		Priority: 10,
	},

	// Buffs and debuffs
	{
		ID:       "buff-habis",
		Keywords: []string{"buff", "habis"},
		Response: "Refresh buff sekarang! Jangan serang tanpa buff, damage bakal drop parah!",
		Priority: 8,
	},
	{
		ID:       "debuff-kena",
		Keywords: []string{"debuff"},
		Response: "Kena debuff! Pakai cleanse atau consumable anti-debuff kalau punya!",
		Priority: 8,
	},
	{
		ID:              "slow-kena",
		Keywords:        []string{"slow"},
		ExcludeKeywords: []string{"boss"},
		Response:        "Kena slow! Pakai cleanse skill atau tunggu durasi habis, jangan maksa dodge!",
		Priority:        7,
	},
	{
		ID:       "stun-kena",
		Keywords: []string{"stun"},
		Response: "Watch out buat stun! Pakai skill anti-stun sebelum serangan boss yang ada stun-nya!",
		Priority: 8,
	},

	// Prorate, a Toram-specific damage falloff mechanic
	{
		ID:       "prorate",
		Keywords: []string{"prorate"},
		Response: "Skill udah prorate! Ganti ke rotasi skill berikutnya, jangan spam skill yang sama!",
		Priority: 9,
	},
	{
		ID:       "rotasi",
		Keywords: []string{"rotasi"},
		Response: "Waktunya rotasi! Ganti ke set skill kedua biar damage optimal dan hindari prorate!",
		Priority: 7,
	},

	// Combos and skill usage
	{
		ID:       "combo-gagal",
		Keywords: []string{"combo", "gagal"},
		Response: "Tenang, reset combo dan mulai dari awal! Pastikan timing antar skill pas!",
		Priority: 7,
	},
	{
		ID:       "skill-cooldown",
		Keywords: []string{"cooldown"},
		Response: "Skill lagi cooldown! Pakai basic attack atau skill cadangan sambil nunggu!",
		Priority: 7,
	},
	{
		ID:       "mp-habis",
		Keywords: []string{"mp", "habis"},
		Response: "MP habis! Pakai MP consumable sekarang, atau switch ke basic attack dulu!",
		Priority: 8,
	},
	{
		ID:       "sp-habis",
		Keywords: []string{"sp", "habis"},
		Response: "SP abis! Pakai SP consumable atau kurangi pemakaian skill berat!",
		Priority: 8,
	},
}

// MatchQuickPattern returns the best quick response for an utterance, or
// false when no pattern survives. Pure function over the static table.
func MatchQuickPattern(text string) (QuickPattern, bool) {
	lower := strings.ToLower(text)

	var (
		best  QuickPattern
		found bool
	)

	for _, p := range quickPatterns {
		if !allKeywordsPresent(lower, p.Keywords) {
			continue
		}
		if anyKeywordPresent(lower, p.ExcludeKeywords) {
			continue
		}

		// Strict greater keeps the first-listed pattern on equal priority.
		if !found || p.Priority > best.Priority {
			best = p
			found = true
		}
	}

	return best, found
}

func allKeywordsPresent(lower string, kws []string) bool {
	for _, kw := range kws {
		if !strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

func anyKeywordPresent(lower string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
