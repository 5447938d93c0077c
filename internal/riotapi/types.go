package riotapi

import (
	"fmt"
	"time"
)

type Puuid string

type RiotId struct {
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

func (riotid RiotId) String() string {
	return fmt.Sprintf("%s#%s", riotid.GameName, riotid.TagLine)
}

// The same human has one puuid per api key: League and TFT
// keys live in different riot applications
type Summoner struct {
	RiotId   RiotId
	Puuid    Puuid
	TFTPuuid Puuid
}

type League struct {
	QueueType QueueType `json:"queueType"`
	Tier      string    `json:"tier"`
	Rank      string    `json:"rank"`
	Lps       int       `json:"leaguePoints"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	Winrate   float32   `json:"-"`
}

type Match struct {
	MatchId          string
	QueueId          int
	GameDuration     time.Duration
	GameEndTimestamp int64 // Unix milliseconds
	Participants     []Participant
}

type Participant struct {
	Puuid                       Puuid  `json:"puuid"`
	RiotIdGameName              string `json:"riotIdGameName"`
	RiotIdTagline               string `json:"riotIdTagline"`
	ChampionName                string `json:"championName"`
	TeamId                      int    `json:"teamId"`
	TeamPosition                string `json:"teamPosition"`
	Win                         bool   `json:"win"`
	Kills                       int    `json:"kills"`
	Deaths                      int    `json:"deaths"`
	Assists                     int    `json:"assists"`
	TotalMinionsKilled          int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int    `json:"neutralMinionsKilled"`
	GoldEarned                  int    `json:"goldEarned"`
	TotalDamageDealtToChampions int    `json:"totalDamageDealtToChampions"`
	DamageDealtToObjectives     int    `json:"damageDealtToObjectives"`
	VisionScore                 int    `json:"visionScore"`
	AllInPings                  int    `json:"allInPings"`
	AssistMePings               int    `json:"assistMePings"`
	BaitPings                   int    `json:"baitPings"`
	CommandPings                int    `json:"commandPings"`
	DangerPings                 int    `json:"dangerPings"`
	EnemyMissingPings           int    `json:"enemyMissingPings"`
	EnemyVisionPings            int    `json:"enemyVisionPings"`
	GetBackPings                int    `json:"getBackPings"`
	HoldPings                   int    `json:"holdPings"`
	NeedVisionPings             int    `json:"needVisionPings"`
	OnMyWayPings                int    `json:"onMyWayPings"`
	PushPings                   int    `json:"pushPings"`
	VisionClearedPings          int    `json:"visionClearedPings"`
}

func (p Participant) CS() int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}

func (p Participant) Pings() int {
	return p.AllInPings + p.AssistMePings + p.BaitPings + p.CommandPings + p.DangerPings +
		p.EnemyMissingPings + p.EnemyVisionPings + p.GetBackPings + p.HoldPings +
		p.NeedVisionPings + p.OnMyWayPings + p.PushPings + p.VisionClearedPings
}

func (match *Match) FindParticipant(puuid Puuid) (Participant, bool) {
	for _, participant := range match.Participants {
		if participant.Puuid == puuid {
			return participant, true
		}
	}
	return Participant{}, false
}

type TFTMatch struct {
	MatchId      string
	QueueId      int
	GameLength   time.Duration
	GameDatetime int64 // Unix milliseconds, end of the game
	Participants []TFTParticipant
}

type TFTTrait struct {
	Name        string `json:"name"`
	NumUnits    int    `json:"num_units"`
	Style       int    `json:"style"`
	TierCurrent int    `json:"tier_current"`
}

type TFTParticipant struct {
	Puuid                Puuid      `json:"puuid"`
	Placement            int        `json:"placement"`
	Level                int        `json:"level"`
	LastRound            int        `json:"last_round"`
	TimeEliminated       float64    `json:"time_eliminated"`
	PlayersEliminated    int        `json:"players_eliminated"`
	GoldLeft             int        `json:"gold_left"`
	TotalDamageToPlayers int        `json:"total_damage_to_players"`
	Traits               []TFTTrait `json:"traits"`
}

func (match *TFTMatch) FindParticipant(puuid Puuid) (TFTParticipant, bool) {
	for _, participant := range match.Participants {
		if participant.Puuid == puuid {
			return participant, true
		}
	}
	return TFTParticipant{}, false
}
