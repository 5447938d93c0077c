package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"lpwatch/internal/common"
	"lpwatch/internal/riotapi"
)

// MemoryStore keeps everything in maps. Used in tests and for dry runs
type MemoryStore struct {
	mu          sync.RWMutex
	servers     map[string]Server
	players     map[int64]Player
	ranks       map[int64]map[riotapi.QueueType]RankState
	leagueGames []LeagueGame
	tftGames    []TFTGame
	nextId      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		servers: make(map[string]Server),
		players: make(map[int64]Player),
		ranks:   make(map[int64]map[riotapi.QueueType]RankState),
		nextId:  1,
	}
}

func (m *MemoryStore) GetServer(ctx context.Context, guildId string) (Server, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	server, ok := m.servers[guildId]
	if !ok {
		return Server{}, common.NewError(common.KIND_SERVER_NOT_INITIALIZED, "server %s is not initialized", guildId)
	}
	return server, nil
}

func (m *MemoryStore) UpsertServer(ctx context.Context, server Server) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.servers[server.GuildId]; ok {
		server.CreatedAt = existing.CreatedAt
	} else if server.CreatedAt.IsZero() {
		server.CreatedAt = time.Now()
	}
	m.servers[server.GuildId] = server
	return nil
}

func (m *MemoryStore) ListServers(ctx context.Context) ([]Server, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	servers := make([]Server, 0, len(m.servers))
	for _, server := range m.servers {
		servers = append(servers, server)
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].GuildId < servers[j].GuildId })
	return servers, nil
}

func (m *MemoryStore) AddPlayer(ctx context.Context, player Player) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.servers[player.GuildId]; !ok {
		return Player{}, common.NewError(common.KIND_SERVER_NOT_INITIALIZED, "server %s is not initialized", player.GuildId)
	}
	for _, existing := range m.players {
		if existing.GuildId == player.GuildId && existing.Puuid == player.Puuid {
			return Player{}, common.NewError(common.KIND_PLAYER_ALREADY_EXISTS, "player %s already exists in server %s", player.RiotId(), player.GuildId)
		}
	}
	player.Id = m.nextId
	m.nextId++
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now()
	}
	m.players[player.Id] = player
	return player, nil
}

func (m *MemoryStore) GetPlayer(ctx context.Context, guildId string, gameName string, tagLine string) (Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.servers[guildId]; !ok {
		return Player{}, common.NewError(common.KIND_SERVER_NOT_INITIALIZED, "server %s is not initialized", guildId)
	}
	for _, player := range m.players {
		if player.GuildId == guildId && sameName(player, gameName, tagLine) {
			return player, nil
		}
	}
	return Player{}, common.NewError(common.KIND_PLAYER_NOT_FOUND, "player %s#%s not found in server %s", gameName, tagLine, guildId)
}

func (m *MemoryStore) ListPlayers(ctx context.Context) ([]Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedPlayers(func(Player) bool { return true }), nil
}

func (m *MemoryStore) ListPlayersByServer(ctx context.Context, guildId string) ([]Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.servers[guildId]; !ok {
		return nil, common.NewError(common.KIND_SERVER_NOT_INITIALIZED, "server %s is not initialized", guildId)
	}
	return m.sortedPlayers(func(player Player) bool { return player.GuildId == guildId }), nil
}

func (m *MemoryStore) DeletePlayer(ctx context.Context, guildId string, gameName string, tagLine string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.servers[guildId]; !ok {
		return common.NewError(common.KIND_SERVER_NOT_INITIALIZED, "server %s is not initialized", guildId)
	}
	for id, player := range m.players {
		if player.GuildId == guildId && sameName(player, gameName, tagLine) {
			delete(m.players, id)
			delete(m.ranks, id)
			m.leagueGames = slices.DeleteFunc(m.leagueGames, func(game LeagueGame) bool { return game.PlayerId == id })
			m.tftGames = slices.DeleteFunc(m.tftGames, func(game TFTGame) bool { return game.PlayerId == id })
			return nil
		}
	}
	return common.NewError(common.KIND_PLAYER_NOT_FOUND, "player %s#%s not found in server %s", gameName, tagLine, guildId)
}

func (m *MemoryStore) UpdatePlayerName(ctx context.Context, playerId int64, gameName string, tagLine string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	player, ok := m.players[playerId]
	if !ok {
		return common.NewError(common.KIND_PLAYER_NOT_FOUND, "player %d not found", playerId)
	}
	player.GameName, player.TagLine = gameName, tagLine
	m.players[playerId] = player
	return nil
}

func (m *MemoryStore) SetLastGameId(ctx context.Context, playerId int64, mode GameMode, matchId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	player, ok := m.players[playerId]
	if !ok {
		return common.NewError(common.KIND_PLAYER_NOT_FOUND, "player %d not found", playerId)
	}
	if mode == MODE_TFT {
		player.LastTFTGameId = matchId
	} else {
		player.LastGameId = matchId
	}
	m.players[playerId] = player
	return nil
}

func (m *MemoryStore) GetRanks(ctx context.Context, playerId int64) (map[riotapi.QueueType]RankState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ranks := make(map[riotapi.QueueType]RankState, len(m.ranks[playerId]))
	for queue, state := range m.ranks[playerId] {
		ranks[queue] = state
	}
	return ranks, nil
}

func (m *MemoryStore) SaveRank(ctx context.Context, playerId int64, state RankState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[playerId]; !ok {
		return common.NewError(common.KIND_PLAYER_NOT_FOUND, "player %d not found", playerId)
	}
	if m.ranks[playerId] == nil {
		m.ranks[playerId] = make(map[riotapi.QueueType]RankState)
	}
	m.ranks[playerId][state.Queue] = state
	return nil
}

func (m *MemoryStore) ResetDailyBaselines(ctx context.Context, playerIds []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, playerId := range playerIds {
		for queue, state := range m.ranks[playerId] {
			state.Baseline = state.Current
			state.DailyWins, state.DailyLosses = 0, 0
			m.ranks[playerId][queue] = state
		}
	}
	return nil
}

func (m *MemoryStore) AddLeagueGame(ctx context.Context, game LeagueGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.leagueGames {
		if existing.PlayerId == game.PlayerId && existing.MatchId == game.MatchId {
			return common.NewError(common.KIND_GENERIC_DATA_STORE, "game %s already recorded for player %d", game.MatchId, game.PlayerId)
		}
	}
	m.leagueGames = append(m.leagueGames, game)
	return nil
}

func (m *MemoryStore) AddTFTGame(ctx context.Context, game TFTGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tftGames {
		if existing.PlayerId == game.PlayerId && existing.MatchId == game.MatchId {
			return common.NewError(common.KIND_GENERIC_DATA_STORE, "TFT game %s already recorded for player %d", game.MatchId, game.PlayerId)
		}
	}
	game.Traits = slices.Clone(game.Traits)
	m.tftGames = append(m.tftGames, game)
	return nil
}

func (m *MemoryStore) ListLeagueGames(ctx context.Context, playerId int64, from time.Time, to time.Time) ([]LeagueGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	games := []LeagueGame{}
	for _, game := range m.leagueGames {
		if game.PlayerId == playerId && inRange(game.EndTime, from, to) {
			games = append(games, game)
		}
	}
	sort.SliceStable(games, func(i, j int) bool { return games[i].EndTime.Before(games[j].EndTime) })
	return games, nil
}

func (m *MemoryStore) ListTFTGames(ctx context.Context, playerId int64, from time.Time, to time.Time) ([]TFTGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	games := []TFTGame{}
	for _, game := range m.tftGames {
		if game.PlayerId == playerId && inRange(game.EndTime, from, to) {
			games = append(games, game)
		}
	}
	sort.SliceStable(games, func(i, j int) bool { return games[i].EndTime.Before(games[j].EndTime) })
	return games, nil
}

func (m *MemoryStore) PurgeGames(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := len(m.leagueGames) + len(m.tftGames)
	m.leagueGames = slices.DeleteFunc(m.leagueGames, func(game LeagueGame) bool { return game.EndTime.Before(before) })
	m.tftGames = slices.DeleteFunc(m.tftGames, func(game TFTGame) bool { return game.EndTime.Before(before) })
	return int64(count - len(m.leagueGames) - len(m.tftGames)), nil
}

func (m *MemoryStore) RecordGame(ctx context.Context, update GameUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	player, ok := m.players[update.PlayerId]
	if !ok {
		return false, common.NewError(common.KIND_PLAYER_NOT_FOUND, "player %d not found", update.PlayerId)
	}

	recorded := false
	if update.Mode == MODE_TFT {
		recorded = slices.ContainsFunc(m.tftGames, func(game TFTGame) bool {
			return game.PlayerId == update.PlayerId && game.MatchId == update.MatchId
		})
	} else {
		recorded = slices.ContainsFunc(m.leagueGames, func(game LeagueGame) bool {
			return game.PlayerId == update.PlayerId && game.MatchId == update.MatchId
		})
	}

	if !recorded {
		if update.Rank != nil {
			if m.ranks[update.PlayerId] == nil {
				m.ranks[update.PlayerId] = make(map[riotapi.QueueType]RankState)
			}
			m.ranks[update.PlayerId][update.Rank.Queue] = *update.Rank
		}
		if update.League != nil {
			m.leagueGames = append(m.leagueGames, *update.League)
		}
		if update.TFT != nil {
			game := *update.TFT
			game.Traits = slices.Clone(game.Traits)
			m.tftGames = append(m.tftGames, game)
		}
	}

	if update.Mode == MODE_TFT {
		player.LastTFTGameId = update.MatchId
	} else {
		player.LastGameId = update.MatchId
	}
	m.players[update.PlayerId] = player
	return !recorded, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) sortedPlayers(keep func(Player) bool) []Player {
	players := []Player{}
	for _, player := range m.players {
		if keep(player) {
			players = append(players, player)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Id < players[j].Id })
	return players
}

func sameName(player Player, gameName string, tagLine string) bool {
	return strings.EqualFold(player.GameName, gameName) && strings.EqualFold(player.TagLine, tagLine)
}

// Half open range [from, to)
func inRange(t time.Time, from time.Time, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
