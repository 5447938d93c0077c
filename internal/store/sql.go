package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lpwatch/internal/common"
	"lpwatch/internal/rank"
	"lpwatch/internal/riotapi"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const (
	DRIVER_SQLITE   = "sqlite3"
	DRIVER_POSTGRES = "postgres"
)

// SQLStore implements Store on database/sql, for sqlite and postgres.
// Queries are written with ? placeholders and rebound for postgres
type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewSQLStore(driver string, dsn string) (*SQLStore, error) {

	switch driver {
	case DRIVER_SQLITE:
		// Ensure directory exists
		if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case DRIVER_POSTGRES:
	default:
		return nil, fmt.Errorf("unsupported database driver %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DRIVER_SQLITE {
		// One writer at a time, and a single shared in-memory database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info().Msg(fmt.Sprintf("Opened %s database", driver))
	return s, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate() error {

	autoIncrement := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DRIVER_POSTGRES {
		autoIncrement = "BIGSERIAL PRIMARY KEY"
	}
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS servers (
			guild_id TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT 'en',
			flex_enabled INTEGER NOT NULL DEFAULT 0,
			tft_enabled INTEGER NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS players (
			id ` + autoIncrement + `,
			guild_id TEXT NOT NULL,
			puuid TEXT NOT NULL,
			tft_puuid TEXT NOT NULL DEFAULT '',
			game_name TEXT NOT NULL,
			tag_line TEXT NOT NULL,
			region TEXT NOT NULL,
			last_game_id TEXT NOT NULL DEFAULT '',
			last_tft_game_id TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL,
			UNIQUE (guild_id, puuid)
		)`,
		`CREATE TABLE IF NOT EXISTS ranks (
			player_id BIGINT NOT NULL,
			queue TEXT NOT NULL,
			current_tier TEXT, current_division TEXT, current_lp INTEGER,
			previous_tier TEXT, previous_division TEXT, previous_lp INTEGER,
			baseline_tier TEXT, baseline_division TEXT, baseline_lp INTEGER,
			daily_wins INTEGER NOT NULL DEFAULT 0,
			daily_losses INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (player_id, queue)
		)`,
		`CREATE TABLE IF NOT EXISTS league_games (
			player_id BIGINT NOT NULL,
			match_id TEXT NOT NULL,
			queue TEXT NOT NULL,
			end_time BIGINT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			champion TEXT NOT NULL,
			role TEXT NOT NULL,
			win INTEGER NOT NULL,
			kills INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			assists INTEGER NOT NULL,
			cs INTEGER NOT NULL,
			damage INTEGER NOT NULL,
			vision INTEGER NOT NULL,
			pings INTEGER NOT NULL,
			score INTEGER NOT NULL,
			lp_delta INTEGER NOT NULL,
			before_tier TEXT, before_division TEXT, before_lp INTEGER,
			after_tier TEXT, after_division TEXT, after_lp INTEGER,
			PRIMARY KEY (player_id, match_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tft_games (
			player_id BIGINT NOT NULL,
			match_id TEXT NOT NULL,
			queue TEXT NOT NULL,
			end_time BIGINT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			placement INTEGER NOT NULL,
			level INTEGER NOT NULL,
			traits TEXT NOT NULL,
			damage_to_players INTEGER NOT NULL,
			lp_delta INTEGER NOT NULL,
			before_tier TEXT, before_division TEXT, before_lp INTEGER,
			after_tier TEXT, after_division TEXT, after_lp INTEGER,
			PRIMARY KEY (player_id, match_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_players_guild ON players(guild_id)`,
		`CREATE INDEX IF NOT EXISTS idx_league_games_end ON league_games(player_id, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_tft_games_end ON tft_games(player_id, end_time)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Server operations

func (s *SQLStore) GetServer(ctx context.Context, guildId string) (Server, error) {
	var server Server
	var flex, tft int
	var createdAt int64
	err := s.queryRow(ctx,
		`SELECT guild_id, channel_id, language, flex_enabled, tft_enabled, created_at FROM servers WHERE guild_id = ?`,
		guildId,
	).Scan(&server.GuildId, &server.ChannelId, &server.Language, &flex, &tft, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Server{}, common.NewError(common.KIND_SERVER_NOT_INITIALIZED, "server %s is not initialized", guildId)
	}
	if err != nil {
		return Server{}, storeError(err, "could not read server %s", guildId)
	}
	server.FlexEnabled, server.TFTEnabled = flex != 0, tft != 0
	server.CreatedAt = time.UnixMilli(createdAt)
	return server, nil
}

func (s *SQLStore) UpsertServer(ctx context.Context, server Server) error {
	if server.CreatedAt.IsZero() {
		server.CreatedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO servers (guild_id, channel_id, language, flex_enabled, tft_enabled, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (guild_id) DO UPDATE SET channel_id = excluded.channel_id, language = excluded.language,
		 flex_enabled = excluded.flex_enabled, tft_enabled = excluded.tft_enabled`,
		server.GuildId, server.ChannelId, server.Language, boolToInt(server.FlexEnabled), boolToInt(server.TFTEnabled), server.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return storeError(err, "could not save server %s", server.GuildId)
	}
	return nil
}

func (s *SQLStore) ListServers(ctx context.Context) ([]Server, error) {
	rows, err := s.query(ctx, `SELECT guild_id, channel_id, language, flex_enabled, tft_enabled, created_at FROM servers ORDER BY guild_id`)
	if err != nil {
		return nil, storeError(err, "could not list servers")
	}
	defer rows.Close()

	servers := []Server{}
	for rows.Next() {
		var server Server
		var flex, tft int
		var createdAt int64
		if err := rows.Scan(&server.GuildId, &server.ChannelId, &server.Language, &flex, &tft, &createdAt); err != nil {
			return nil, storeError(err, "could not read server row")
		}
		server.FlexEnabled, server.TFTEnabled = flex != 0, tft != 0
		server.CreatedAt = time.UnixMilli(createdAt)
		servers = append(servers, server)
	}
	return servers, rows.Err()
}

// Player operations

const playerColumns = `id, guild_id, puuid, tft_puuid, game_name, tag_line, region, last_game_id, last_tft_game_id, created_at`

func (s *SQLStore) AddPlayer(ctx context.Context, player Player) (Player, error) {
	if _, err := s.GetServer(ctx, player.GuildId); err != nil {
		return Player{}, err
	}

	var exists int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM players WHERE guild_id = ? AND puuid = ?`, player.GuildId, string(player.Puuid)).Scan(&exists)
	if err != nil {
		return Player{}, storeError(err, "could not check player %s", player.RiotId())
	}
	if exists > 0 {
		return Player{}, common.NewError(common.KIND_PLAYER_ALREADY_EXISTS, "player %s already exists in server %s", player.RiotId(), player.GuildId)
	}

	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now()
	}
	err = s.queryRow(ctx,
		`INSERT INTO players (guild_id, puuid, tft_puuid, game_name, tag_line, region, last_game_id, last_tft_game_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		player.GuildId, string(player.Puuid), string(player.TFTPuuid), player.GameName, player.TagLine, player.Region,
		player.LastGameId, player.LastTFTGameId, player.CreatedAt.UnixMilli(),
	).Scan(&player.Id)
	if err != nil {
		return Player{}, storeError(err, "could not add player %s", player.RiotId())
	}
	return player, nil
}

func (s *SQLStore) GetPlayer(ctx context.Context, guildId string, gameName string, tagLine string) (Player, error) {
	if _, err := s.GetServer(ctx, guildId); err != nil {
		return Player{}, err
	}
	player, err := scanPlayer(s.queryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE guild_id = ? AND LOWER(game_name) = LOWER(?) AND LOWER(tag_line) = LOWER(?)`,
		guildId, gameName, tagLine,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, common.NewError(common.KIND_PLAYER_NOT_FOUND, "player %s#%s not found in server %s", gameName, tagLine, guildId)
	}
	if err != nil {
		return Player{}, storeError(err, "could not read player %s#%s", gameName, tagLine)
	}
	return player, nil
}

func (s *SQLStore) ListPlayers(ctx context.Context) ([]Player, error) {
	return s.listPlayers(ctx, `SELECT `+playerColumns+` FROM players ORDER BY id`)
}

func (s *SQLStore) ListPlayersByServer(ctx context.Context, guildId string) ([]Player, error) {
	if _, err := s.GetServer(ctx, guildId); err != nil {
		return nil, err
	}
	return s.listPlayers(ctx, `SELECT `+playerColumns+` FROM players WHERE guild_id = ? ORDER BY id`, guildId)
}

func (s *SQLStore) DeletePlayer(ctx context.Context, guildId string, gameName string, tagLine string) error {
	player, err := s.GetPlayer(ctx, guildId, gameName, tagLine)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError(err, "could not start transaction")
	}
	defer tx.Rollback()

	for _, statement := range []string{
		`DELETE FROM ranks WHERE player_id = ?`,
		`DELETE FROM league_games WHERE player_id = ?`,
		`DELETE FROM tft_games WHERE player_id = ?`,
		`DELETE FROM players WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, s.rebind(statement), player.Id); err != nil {
			return storeError(err, "could not delete player %s", player.RiotId())
		}
	}
	if err := tx.Commit(); err != nil {
		return storeError(err, "could not delete player %s", player.RiotId())
	}
	return nil
}

func (s *SQLStore) UpdatePlayerName(ctx context.Context, playerId int64, gameName string, tagLine string) error {
	return s.updatePlayer(ctx, playerId, `UPDATE players SET game_name = ?, tag_line = ? WHERE id = ?`, gameName, tagLine, playerId)
}

func (s *SQLStore) SetLastGameId(ctx context.Context, playerId int64, mode GameMode, matchId string) error {
	return s.setLastGameId(ctx, s.db, playerId, mode, matchId)
}

func (s *SQLStore) setLastGameId(ctx context.Context, db execer, playerId int64, mode GameMode, matchId string) error {
	statement := `UPDATE players SET last_game_id = ? WHERE id = ?`
	if mode == MODE_TFT {
		statement = `UPDATE players SET last_tft_game_id = ? WHERE id = ?`
	}
	return s.updatePlayerWith(ctx, db, playerId, statement, matchId, playerId)
}

func (s *SQLStore) updatePlayer(ctx context.Context, playerId int64, statement string, args ...any) error {
	return s.updatePlayerWith(ctx, s.db, playerId, statement, args...)
}

func (s *SQLStore) updatePlayerWith(ctx context.Context, db execer, playerId int64, statement string, args ...any) error {
	result, err := db.ExecContext(ctx, s.rebind(statement), args...)
	if err != nil {
		return storeError(err, "could not update player %d", playerId)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return common.NewError(common.KIND_PLAYER_NOT_FOUND, "player %d not found", playerId)
	}
	return nil
}

func (s *SQLStore) listPlayers(ctx context.Context, query string, args ...any) ([]Player, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, storeError(err, "could not list players")
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, storeError(err, "could not read player row")
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (Player, error) {
	var player Player
	var puuid, tftPuuid string
	var createdAt int64
	err := row.Scan(&player.Id, &player.GuildId, &puuid, &tftPuuid, &player.GameName, &player.TagLine, &player.Region,
		&player.LastGameId, &player.LastTFTGameId, &createdAt)
	if err != nil {
		return Player{}, err
	}
	player.Puuid, player.TFTPuuid = riotapi.Puuid(puuid), riotapi.Puuid(tftPuuid)
	player.CreatedAt = time.UnixMilli(createdAt)
	return player, nil
}

// Rank operations

func (s *SQLStore) GetRanks(ctx context.Context, playerId int64) (map[riotapi.QueueType]RankState, error) {
	rows, err := s.query(ctx,
		`SELECT queue, current_tier, current_division, current_lp, previous_tier, previous_division, previous_lp,
		 baseline_tier, baseline_division, baseline_lp, daily_wins, daily_losses FROM ranks WHERE player_id = ?`,
		playerId,
	)
	if err != nil {
		return nil, storeError(err, "could not read ranks of player %d", playerId)
	}
	defer rows.Close()

	ranks := map[riotapi.QueueType]RankState{}
	for rows.Next() {
		var queue string
		var current, previous, baseline nullSnapshot
		var state RankState
		err := rows.Scan(&queue, &current.tier, &current.division, &current.lp, &previous.tier, &previous.division, &previous.lp,
			&baseline.tier, &baseline.division, &baseline.lp, &state.DailyWins, &state.DailyLosses)
		if err != nil {
			return nil, storeError(err, "could not read rank row")
		}
		state.Queue = riotapi.QueueType(queue)
		state.Current, state.Previous, state.Baseline = current.snapshot(), previous.snapshot(), baseline.snapshot()
		ranks[state.Queue] = state
	}
	return ranks, rows.Err()
}

func (s *SQLStore) SaveRank(ctx context.Context, playerId int64, state RankState) error {
	return s.saveRank(ctx, s.db, playerId, state)
}

func (s *SQLStore) saveRank(ctx context.Context, db execer, playerId int64, state RankState) error {
	args := []any{playerId, string(state.Queue)}
	args = append(args, snapshotArgs(state.Current)...)
	args = append(args, snapshotArgs(state.Previous)...)
	args = append(args, snapshotArgs(state.Baseline)...)
	args = append(args, state.DailyWins, state.DailyLosses)
	_, err := db.ExecContext(ctx, s.rebind(
		`INSERT INTO ranks (player_id, queue, current_tier, current_division, current_lp, previous_tier, previous_division, previous_lp,
		 baseline_tier, baseline_division, baseline_lp, daily_wins, daily_losses) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (player_id, queue) DO UPDATE SET
		 current_tier = excluded.current_tier, current_division = excluded.current_division, current_lp = excluded.current_lp,
		 previous_tier = excluded.previous_tier, previous_division = excluded.previous_division, previous_lp = excluded.previous_lp,
		 baseline_tier = excluded.baseline_tier, baseline_division = excluded.baseline_division, baseline_lp = excluded.baseline_lp,
		 daily_wins = excluded.daily_wins, daily_losses = excluded.daily_losses`),
		args...,
	)
	if err != nil {
		return storeError(err, "could not save %s rank of player %d", state.Queue, playerId)
	}
	return nil
}

func (s *SQLStore) ResetDailyBaselines(ctx context.Context, playerIds []int64) error {
	if len(playerIds) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(playerIds)), ", ")
	args := make([]any, len(playerIds))
	for i, id := range playerIds {
		args[i] = id
	}
	_, err := s.exec(ctx,
		`UPDATE ranks SET baseline_tier = current_tier, baseline_division = current_division, baseline_lp = current_lp,
		 daily_wins = 0, daily_losses = 0 WHERE player_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return storeError(err, "could not reset daily baselines")
	}
	return nil
}

// Game operations

func (s *SQLStore) AddLeagueGame(ctx context.Context, game LeagueGame) error {
	return s.addLeagueGame(ctx, s.db, game)
}

func (s *SQLStore) addLeagueGame(ctx context.Context, db execer, game LeagueGame) error {
	args := []any{game.PlayerId, game.MatchId, string(game.Queue), game.EndTime.UnixMilli(), int64(game.Duration / time.Second),
		game.Champion, game.Role, boolToInt(game.Win), game.Kills, game.Deaths, game.Assists, game.CS, game.Damage, game.Vision,
		game.Pings, game.Score, game.LPDelta}
	args = append(args, snapshotArgs(game.Before)...)
	args = append(args, snapshotArgs(game.After)...)
	_, err := db.ExecContext(ctx, s.rebind(
		`INSERT INTO league_games (player_id, match_id, queue, end_time, duration_seconds, champion, role, win, kills, deaths, assists,
		 cs, damage, vision, pings, score, lp_delta, before_tier, before_division, before_lp, after_tier, after_division, after_lp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		args...,
	)
	if err != nil {
		return storeError(err, "could not record game %s", game.MatchId)
	}
	return nil
}

func (s *SQLStore) AddTFTGame(ctx context.Context, game TFTGame) error {
	return s.addTFTGame(ctx, s.db, game)
}

func (s *SQLStore) addTFTGame(ctx context.Context, db execer, game TFTGame) error {
	args := []any{game.PlayerId, game.MatchId, string(game.Queue), game.EndTime.UnixMilli(), int64(game.Duration / time.Second),
		game.Placement, game.Level, strings.Join(game.Traits, ","), game.DamageToPlayers, game.LPDelta}
	args = append(args, snapshotArgs(game.Before)...)
	args = append(args, snapshotArgs(game.After)...)
	_, err := db.ExecContext(ctx, s.rebind(
		`INSERT INTO tft_games (player_id, match_id, queue, end_time, duration_seconds, placement, level, traits, damage_to_players,
		 lp_delta, before_tier, before_division, before_lp, after_tier, after_division, after_lp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		args...,
	)
	if err != nil {
		return storeError(err, "could not record TFT game %s", game.MatchId)
	}
	return nil
}

func (s *SQLStore) ListLeagueGames(ctx context.Context, playerId int64, from time.Time, to time.Time) ([]LeagueGame, error) {
	rows, err := s.query(ctx,
		`SELECT player_id, match_id, queue, end_time, duration_seconds, champion, role, win, kills, deaths, assists, cs, damage,
		 vision, pings, score, lp_delta, before_tier, before_division, before_lp, after_tier, after_division, after_lp
		 FROM league_games WHERE player_id = ? AND end_time >= ? AND end_time < ? ORDER BY end_time`,
		playerId, from.UnixMilli(), to.UnixMilli(),
	)
	if err != nil {
		return nil, storeError(err, "could not list games of player %d", playerId)
	}
	defer rows.Close()

	games := []LeagueGame{}
	for rows.Next() {
		var game LeagueGame
		var queue string
		var endTime, duration int64
		var win int
		var before, after nullSnapshot
		err := rows.Scan(&game.PlayerId, &game.MatchId, &queue, &endTime, &duration, &game.Champion, &game.Role, &win,
			&game.Kills, &game.Deaths, &game.Assists, &game.CS, &game.Damage, &game.Vision, &game.Pings, &game.Score, &game.LPDelta,
			&before.tier, &before.division, &before.lp, &after.tier, &after.division, &after.lp)
		if err != nil {
			return nil, storeError(err, "could not read game row")
		}
		game.Queue = riotapi.QueueType(queue)
		game.EndTime = time.UnixMilli(endTime)
		game.Duration = time.Duration(duration) * time.Second
		game.Win = win != 0
		game.Before, game.After = before.snapshot(), after.snapshot()
		games = append(games, game)
	}
	return games, rows.Err()
}

func (s *SQLStore) ListTFTGames(ctx context.Context, playerId int64, from time.Time, to time.Time) ([]TFTGame, error) {
	rows, err := s.query(ctx,
		`SELECT player_id, match_id, queue, end_time, duration_seconds, placement, level, traits, damage_to_players, lp_delta,
		 before_tier, before_division, before_lp, after_tier, after_division, after_lp
		 FROM tft_games WHERE player_id = ? AND end_time >= ? AND end_time < ? ORDER BY end_time`,
		playerId, from.UnixMilli(), to.UnixMilli(),
	)
	if err != nil {
		return nil, storeError(err, "could not list TFT games of player %d", playerId)
	}
	defer rows.Close()

	games := []TFTGame{}
	for rows.Next() {
		var game TFTGame
		var queue, traits string
		var endTime, duration int64
		var before, after nullSnapshot
		err := rows.Scan(&game.PlayerId, &game.MatchId, &queue, &endTime, &duration, &game.Placement, &game.Level, &traits,
			&game.DamageToPlayers, &game.LPDelta, &before.tier, &before.division, &before.lp, &after.tier, &after.division, &after.lp)
		if err != nil {
			return nil, storeError(err, "could not read TFT game row")
		}
		game.Queue = riotapi.QueueType(queue)
		game.EndTime = time.UnixMilli(endTime)
		game.Duration = time.Duration(duration) * time.Second
		if traits != "" {
			game.Traits = strings.Split(traits, ",")
		}
		game.Before, game.After = before.snapshot(), after.snapshot()
		games = append(games, game)
	}
	return games, rows.Err()
}

func (s *SQLStore) PurgeGames(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	for _, statement := range []string{
		`DELETE FROM league_games WHERE end_time < ?`,
		`DELETE FROM tft_games WHERE end_time < ?`,
	} {
		result, err := s.exec(ctx, statement, before.UnixMilli())
		if err != nil {
			return total, storeError(err, "could not purge games")
		}
		if affected, err := result.RowsAffected(); err == nil {
			total += affected
		}
	}
	return total, nil
}

func (s *SQLStore) RecordGame(ctx context.Context, update GameUpdate) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, storeError(err, "could not start transaction")
	}
	defer tx.Rollback()

	table := "league_games"
	if update.Mode == MODE_TFT {
		table = "tft_games"
	}
	var count int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM `+table+` WHERE player_id = ? AND match_id = ?`),
		update.PlayerId, update.MatchId).Scan(&count)
	if err != nil {
		return false, storeError(err, "could not look up game %s", update.MatchId)
	}

	recorded := count > 0
	if !recorded {
		if update.Rank != nil {
			if err := s.saveRank(ctx, tx, update.PlayerId, *update.Rank); err != nil {
				return false, err
			}
		}
		if update.League != nil {
			if err := s.addLeagueGame(ctx, tx, *update.League); err != nil {
				return false, err
			}
		}
		if update.TFT != nil {
			if err := s.addTFTGame(ctx, tx, *update.TFT); err != nil {
				return false, err
			}
		}
	}
	if err := s.setLastGameId(ctx, tx, update.PlayerId, update.Mode, update.MatchId); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, storeError(err, "could not record game %s", update.MatchId)
	}
	return !recorded, nil
}

// Helpers

// Satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// Postgres wants numbered placeholders
func (s *SQLStore) rebind(query string) string {
	if s.driver != DRIVER_POSTGRES {
		return query
	}
	var builder strings.Builder
	index := 0
	for _, r := range query {
		if r == '?' {
			index++
			builder.WriteString("$" + strconv.Itoa(index))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

type nullSnapshot struct {
	tier     sql.NullString
	division sql.NullString
	lp       sql.NullInt64
}

func (n nullSnapshot) snapshot() rank.Snapshot {
	var tier, division *string
	var lp *int
	if n.tier.Valid {
		tier = &n.tier.String
	}
	if n.division.Valid {
		division = &n.division.String
	}
	if n.lp.Valid {
		value := int(n.lp.Int64)
		lp = &value
	}
	return rank.FromFields(tier, division, lp)
}

func snapshotArgs(snapshot rank.Snapshot) []any {
	if !snapshot.IsRanked() {
		return []any{nil, nil, nil}
	}
	return []any{snapshot.Tier, snapshot.Division, snapshot.LP}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func storeError(err error, format string, args ...any) error {
	return common.WrapError(common.KIND_GENERIC_DATA_STORE, err, format, args...)
}
