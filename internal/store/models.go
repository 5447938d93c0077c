package store

import (
	"time"

	"lpwatch/internal/rank"
	"lpwatch/internal/riotapi"
)

type GameMode string

const (
	MODE_LEAGUE GameMode = "league"
	MODE_TFT    GameMode = "tft"
)

// Per guild configuration
type Server struct {
	GuildId     string
	ChannelId   string
	Language    string
	FlexEnabled bool
	TFTEnabled  bool
	CreatedAt   time.Time
}

// A tracked player inside one guild
type Player struct {
	Id            int64
	GuildId       string
	Puuid         riotapi.Puuid
	TFTPuuid      riotapi.Puuid
	GameName      string
	TagLine       string
	Region        string
	LastGameId    string
	LastTFTGameId string
	CreatedAt     time.Time
}

func (player Player) RiotId() riotapi.RiotId {
	return riotapi.RiotId{GameName: player.GameName, TagLine: player.TagLine}
}

func (player Player) LastGame(mode GameMode) string {
	if mode == MODE_TFT {
		return player.LastTFTGameId
	}
	return player.LastGameId
}

// Rank progress of a player in one queue
type RankState struct {
	Queue       riotapi.QueueType
	Current     rank.Snapshot
	Previous    rank.Snapshot
	Baseline    rank.Snapshot // Rank at the start of the daily window
	DailyWins   int
	DailyLosses int
}

type LeagueGame struct {
	PlayerId int64
	MatchId  string
	Queue    riotapi.QueueType
	EndTime  time.Time
	Duration time.Duration
	Champion string
	Role     string
	Win      bool
	Kills    int
	Deaths   int
	Assists  int
	CS       int
	Damage   int
	Vision   int
	Pings    int
	Score    int
	LPDelta  int
	Before   rank.Snapshot
	After    rank.Snapshot
}

type TFTGame struct {
	PlayerId        int64
	MatchId         string
	Queue           riotapi.QueueType
	EndTime         time.Time
	Duration        time.Duration
	Placement       int
	Level           int
	Traits          []string
	DamageToPlayers int
	LPDelta         int
	Before          rank.Snapshot
	After           rank.Snapshot
}

// Top four is a win in every TFT queue
func (game TFTGame) Win() bool {
	return game.Placement > 0 && game.Placement <= 4
}

// Everything one detected game changes, applied by the store in one go.
// Rank is nil when the game leaves the rank progress untouched, and only
// the record matching the mode is set
type GameUpdate struct {
	PlayerId int64
	Mode     GameMode
	MatchId  string
	Rank     *RankState
	League   *LeagueGame
	TFT      *TFTGame
}
