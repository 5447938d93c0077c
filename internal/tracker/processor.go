// Package tracker detects new games of the tracked players and brings their
// stored rank progress up to date before anyone gets notified.
package tracker

import (
	"context"

	"lpwatch/internal/rank"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/score"
	"lpwatch/internal/store"
)

// Riot endpoints used for League games. Satisfied by *riotapi.RiotApi
type LeagueAPI interface {
	GetLastRankedMatchIds(ctx context.Context, puuid riotapi.Puuid, region string, wantFlex bool) ([]string, error)
	GetMatch(ctx context.Context, matchId string, region string) (riotapi.Match, error)
	GetLeagues(ctx context.Context, puuid riotapi.Puuid, region string) ([]riotapi.League, error)
}

// Riot endpoints used for TFT games. Satisfied by *riotapi.RiotApi
type TFTAPI interface {
	GetLastTFTMatchIds(ctx context.Context, puuid riotapi.Puuid, region string) ([]string, error)
	GetTFTMatch(ctx context.Context, matchId string, region string) (riotapi.TFTMatch, error)
	GetTFTLeagues(ctx context.Context, puuid riotapi.Puuid, region string) ([]riotapi.League, error)
}

// Processor is everything the engine needs to know about one game mode.
// Adding a mode means adding a Processor, the polling loop stays the same
type Processor interface {
	Mode() store.GameMode
	Enabled(server store.Server) bool
	Puuid(player store.Player) riotapi.Puuid
	LastGameId(player store.Player) string
	// Most recent match id, or an empty string when the player has none
	FetchLatest(ctx context.Context, server store.Server, puuid riotapi.Puuid, region string) (string, error)
	// Persist everything about a new game. A nil result means there is
	// nothing to notify, although the last game id has been advanced
	HandleNewGame(ctx context.Context, server store.Server, player store.Player, matchId string) (*GameResult, error)
}

// Notifier delivers the result of a new game to the server's channel
type Notifier interface {
	NotifyGame(ctx context.Context, server store.Server, result GameResult) error
}

type GameResult struct {
	Mode    store.GameMode
	Player  store.Player
	Queue   riotapi.QueueType
	LPDelta int
	Before  rank.Snapshot
	After   rank.Snapshot
	League  *LeagueResult
	TFT     *TFTResult
}

func (result GameResult) Win() bool {
	if result.TFT != nil {
		return result.TFT.Game.Win()
	}
	return result.League != nil && result.League.Game.Win
}

type LeagueResult struct {
	Game     store.LeagueGame
	TeamRank score.Rank
}

type TFTResult struct {
	Game              store.TFTGame
	LastRound         int
	PlayersEliminated int
	GoldLeft          int
}
