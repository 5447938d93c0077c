// Package store persists servers, tracked players, rank progress and game
// history. Failures the bot branches on come back as common.Error values.
package store

import (
	"context"
	"time"

	"lpwatch/internal/riotapi"
)

type Store interface {
	GetServer(ctx context.Context, guildId string) (Server, error)
	UpsertServer(ctx context.Context, server Server) error
	ListServers(ctx context.Context) ([]Server, error)

	AddPlayer(ctx context.Context, player Player) (Player, error)
	GetPlayer(ctx context.Context, guildId string, gameName string, tagLine string) (Player, error)
	ListPlayers(ctx context.Context) ([]Player, error)
	ListPlayersByServer(ctx context.Context, guildId string) ([]Player, error)
	DeletePlayer(ctx context.Context, guildId string, gameName string, tagLine string) error
	UpdatePlayerName(ctx context.Context, playerId int64, gameName string, tagLine string) error
	SetLastGameId(ctx context.Context, playerId int64, mode GameMode, matchId string) error

	GetRanks(ctx context.Context, playerId int64) (map[riotapi.QueueType]RankState, error)
	SaveRank(ctx context.Context, playerId int64, state RankState) error
	ResetDailyBaselines(ctx context.Context, playerIds []int64) error

	AddLeagueGame(ctx context.Context, game LeagueGame) error
	AddTFTGame(ctx context.Context, game TFTGame) error
	ListLeagueGames(ctx context.Context, playerId int64, from time.Time, to time.Time) ([]LeagueGame, error)
	ListTFTGames(ctx context.Context, playerId int64, from time.Time, to time.Time) ([]TFTGame, error)
	PurgeGames(ctx context.Context, before time.Time) (int64, error)

	// Save the rank, insert the record and advance the last game id atomically.
	// A match already recorded for the player only advances the last game id,
	// and reports false
	RecordGame(ctx context.Context, update GameUpdate) (bool, error)

	Close() error
}

const DRIVER_MEMORY = "memory"

// Open builds the store for the configured driver
func Open(driver string, url string) (Store, error) {
	if driver == DRIVER_MEMORY {
		return NewMemoryStore(), nil
	}
	return NewSQLStore(driver, url)
}
