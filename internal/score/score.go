// Package score rates a single League game out of 100 against role
// benchmarks, and ranks players inside their team with those scores.
package score

import (
	"math"
	"sort"

	"lpwatch/internal/riotapi"
)

// Games shorter than this are remakes and get no score
const minimumMinutes = 5

const (
	ratioExponent        = 1.2
	deathPenaltyExponent = 1.4
	deathPenaltyFactor   = 0.3
)

// Score of a participant, between 0 and 100
func Score(participant riotapi.Participant, all []riotapi.Participant, durationSeconds int64) int {

	minutes := float64(durationSeconds) / 60
	if minutes < minimumMinutes {
		return 0
	}
	weight, target := tablesFor(participant.TeamPosition)
	return scoreLine(lineOf(participant, all, minutes), weight, target)
}

func lineOf(participant riotapi.Participant, all []riotapi.Participant, minutes float64) statLine {

	teamKills := 0
	for _, other := range all {
		if other.TeamId == participant.TeamId {
			teamKills += other.Kills
		}
	}
	killParticipation := 0.0
	if teamKills > 0 {
		killParticipation = float64(participant.Kills+participant.Assists) / float64(teamKills)
	}

	var line statLine
	line[statKills] = float64(participant.Kills)
	line[statDeaths] = float64(participant.Deaths)
	line[statAssists] = float64(participant.Assists)
	line[statKillParticipation] = killParticipation
	line[statCSPerMin] = float64(participant.CS()) / minutes
	line[statGoldPerMin] = float64(participant.GoldEarned) / minutes
	line[statDamagePerMin] = float64(participant.TotalDamageDealtToChampions) / minutes
	line[statVisionPerMin] = float64(participant.VisionScore) / minutes
	line[statObjectiveDamage] = float64(participant.DamageDealtToObjectives)
	return line
}

// Over performing is not capped. Deaths under the target are rewarded, and
// the excess over it is penalised once, after everything else is summed
func scoreLine(line statLine, weight statLine, target statLine) int {

	total := 0.0
	deathPenalty := 0.0
	for stat := 0; stat < numStats; stat++ {
		value := line[stat]
		if target[stat] <= 0 {
			continue
		}
		if stat == statDeaths {
			if value <= target[stat] {
				ratio := 1 / (1 + value/target[stat])
				total += math.Pow(ratio, ratioExponent) * weight[stat]
			} else {
				deathPenalty += math.Pow(value-target[stat], deathPenaltyExponent) * (weight[stat] * deathPenaltyFactor)
			}
			continue
		}
		ratio := value / target[stat]
		total += math.Pow(ratio, ratioExponent) * weight[stat]
	}

	return int(math.Round(math.Max(0, math.Min(100, total-deathPenalty))))
}

type Rank int

const (
	MVP Rank = iota
	SOLID
	INVISIBLE
	DRAGGED
	ANCHOR
)

// Score of every participant of a game
func Scores(all []riotapi.Participant, durationSeconds int64) map[riotapi.Puuid]int {
	scores := make(map[riotapi.Puuid]int, len(all))
	for _, participant := range all {
		scores[participant.Puuid] = Score(participant, all, durationSeconds)
	}
	return scores
}

// Position of the participant inside their own team, by the scores of the game
func TeamRank(participant riotapi.Participant, all []riotapi.Participant, scores map[riotapi.Puuid]int) Rank {

	type scored struct {
		puuid riotapi.Puuid
		score int
	}
	team := make([]scored, 0, 5)
	for _, other := range all {
		if other.TeamId == participant.TeamId {
			team = append(team, scored{other.Puuid, scores[other.Puuid]})
		}
	}
	sort.SliceStable(team, func(i, j int) bool { return team[i].score > team[j].score })

	position := len(team)
	for i, member := range team {
		if member.puuid == participant.Puuid {
			position = i
			break
		}
	}
	if position > int(ANCHOR) {
		return ANCHOR
	}
	return Rank(position)
}

var labels = map[string][]string{
	"en": {"MVP", "Solid", "Invisible", "Dragged", "Anchor"},
	"fr": {"MVP", "Solide", "Invisible", "Boulet", "Ancre"},
}

func (rank Rank) Label(language string) string {
	texts, ok := labels[language]
	if !ok {
		texts = labels["en"]
	}
	if rank < MVP || int(rank) >= len(texts) {
		return texts[ANCHOR]
	}
	return texts[rank]
}
