package score

// One value per stat, in the order of the stat constants
type statLine [numStats]float64

const (
	statKills = iota
	statDeaths
	statAssists
	statKillParticipation
	statCSPerMin
	statGoldPerMin
	statDamagePerMin
	statVisionPerMin
	statObjectiveDamage
	numStats
)

const roleUnknown = "UNKNOWN"

// How much each stat weighs for a role
var weights = map[string]statLine{
	"TOP":       {9, 10, 5, 8, 13, 9, 12, 4, 10},
	"JUNGLE":    {10, 10, 10, 14, 6, 8, 8, 6, 8},
	"MIDDLE":    {12, 10, 6, 10, 12, 8, 14, 4, 4},
	"BOTTOM":    {13, 10, 5, 9, 14, 9, 14, 3, 3},
	"UTILITY":   {4, 10, 16, 16, 1, 5, 8, 18, 2},
	roleUnknown: {10, 10, 9, 10, 9, 9, 12, 6, 5},
}

// What an excellent game looks like for a role
var targets = map[string]statLine{
	"TOP":       {6, 4, 6, 0.50, 7.5, 400, 700, 0.7, 9000},
	"JUNGLE":    {6, 4, 9, 0.65, 6.0, 400, 550, 1.1, 15000},
	"MIDDLE":    {8, 4, 7, 0.60, 8.0, 420, 850, 0.9, 6000},
	"BOTTOM":    {9, 4, 6, 0.60, 8.5, 450, 900, 0.6, 7000},
	"UTILITY":   {2, 5, 14, 0.65, 1.2, 280, 350, 2.4, 1500},
	roleUnknown: {6, 5, 8, 0.55, 6.0, 380, 650, 1.0, 6000},
}

func tablesFor(role string) (statLine, statLine) {
	if _, ok := weights[role]; !ok {
		role = roleUnknown
	}
	return weights[role], targets[role]
}
