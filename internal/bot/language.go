package bot

import "strings"

const (
	LANGUAGE_EN = "en"
	LANGUAGE_FR = "fr"
)

// Texts of the notifications, per server language
type texts struct {
	victory           string
	defeat            string
	kda               string
	duration          string
	score             string
	csPerMinute       string
	pings             string
	damage            string
	visionPerMinute   string
	teamRank          string
	queue             string
	placement         string
	level             string
	round             string
	playersEliminated string
	goldLeft          string
	traits            string
	damageToPlayers   string
	dailyTitle        string
	monthlyTitle      string
	games             string
	winrate           string
	timePlayed        string
	averageKDA        string
	averageDamage     string
	averagePlacement  string
	averageLevel      string
	flavorCarry       string
	flavorFeed        string
	flavorFirst       string
	flavorLast        string
	flavorPromotion   string
}

var languages = map[string]texts{
	LANGUAGE_EN: {
		victory:           "Victory",
		defeat:            "Defeat",
		kda:               "KDA",
		duration:          "Duration",
		score:             "Score",
		csPerMinute:       "CS/min",
		pings:             "Pings",
		damage:            "Damage",
		visionPerMinute:   "Vision/min",
		teamRank:          "Team rank",
		queue:             "Queue",
		placement:         "Placement",
		level:             "Level",
		round:             "Round",
		playersEliminated: "Players eliminated",
		goldLeft:          "Gold left",
		traits:            "Main traits",
		damageToPlayers:   "Damage to players",
		dailyTitle:        "Daily recap",
		monthlyTitle:      "Monthly recap",
		games:             "Games",
		winrate:           "Winrate",
		timePlayed:        "Time played",
		averageKDA:        "Average KDA",
		averageDamage:     "Average damage",
		averagePlacement:  "Average placement",
		averageLevel:      "Average level",
		flavorCarry:       "Carried the whole team on their back.",
		flavorFeed:        "The enemy team says thanks for the gold.",
		flavorFirst:       "Flawless lobby domination.",
		flavorLast:        "Someone had to finish last.",
		flavorPromotion:   "New tier unlocked!",
	},
	LANGUAGE_FR: {
		victory:           "Victoire",
		defeat:            "Défaite",
		kda:               "KDA",
		duration:          "Durée",
		score:             "Score",
		csPerMinute:       "CS/min",
		pings:             "Pings",
		damage:            "Dégâts",
		visionPerMinute:   "Vision/min",
		teamRank:          "Rang d'équipe",
		queue:             "File",
		placement:         "Placement",
		level:             "Niveau",
		round:             "Manche",
		playersEliminated: "Joueurs éliminés",
		goldLeft:          "Or restant",
		traits:            "Traits principaux",
		damageToPlayers:   "Dégâts aux joueurs",
		dailyTitle:        "Récap du jour",
		monthlyTitle:      "Récap du mois",
		games:             "Parties",
		winrate:           "Taux de victoire",
		timePlayed:        "Temps de jeu",
		averageKDA:        "KDA moyen",
		averageDamage:     "Dégâts moyens",
		averagePlacement:  "Placement moyen",
		averageLevel:      "Niveau moyen",
		flavorCarry:       "A porté toute l'équipe sur son dos.",
		flavorFeed:        "L'équipe adverse remercie pour l'or.",
		flavorFirst:       "Domination totale du lobby.",
		flavorLast:        "Il fallait bien quelqu'un en dernier.",
		flavorPromotion:   "Nouveau palier débloqué !",
	},
}

func IsLanguage(input string) bool {
	_, ok := languages[strings.ToLower(input)]
	return ok
}

// Unknown languages fall back to english
func textsFor(language string) texts {
	if t, ok := languages[language]; ok {
		return t
	}
	return languages[LANGUAGE_EN]
}
