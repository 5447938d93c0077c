package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lpwatch/internal/common"
	"lpwatch/internal/rank"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/store"
)

var testNow = time.Date(2024, 5, 14, 20, 0, 0, 0, time.Local)

type fakeRiot struct {
	mu           sync.Mutex
	latest       map[riotapi.Puuid]string
	tftLatest    map[riotapi.Puuid]string
	failLatest   map[riotapi.Puuid]bool
	matches      map[string]riotapi.Match
	tftMatches   map[string]riotapi.TFTMatch
	leagues      map[riotapi.Puuid][]riotapi.League
	matchCalls   int
	tftCalls     int
	latestCalls  int
	flexRequests []bool
}

func newFakeRiot() *fakeRiot {
	return &fakeRiot{
		latest:     map[riotapi.Puuid]string{},
		tftLatest:  map[riotapi.Puuid]string{},
		failLatest: map[riotapi.Puuid]bool{},
		matches:    map[string]riotapi.Match{},
		tftMatches: map[string]riotapi.TFTMatch{},
		leagues:    map[riotapi.Puuid][]riotapi.League{},
	}
}

func (f *fakeRiot) GetLastRankedMatchIds(ctx context.Context, puuid riotapi.Puuid, region string, wantFlex bool) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++
	f.flexRequests = append(f.flexRequests, wantFlex)
	if f.failLatest[puuid] {
		return nil, errors.New("riot is down")
	}
	if id, ok := f.latest[puuid]; ok {
		return []string{id}, nil
	}
	return []string{}, nil
}

func (f *fakeRiot) GetMatch(ctx context.Context, matchId string, region string) (riotapi.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchCalls++
	match, ok := f.matches[matchId]
	if !ok {
		return riotapi.Match{}, common.NewError(common.KIND_GAME_DETAIL_NOT_FOUND, "no match %s", matchId)
	}
	return match, nil
}

func (f *fakeRiot) GetLeagues(ctx context.Context, puuid riotapi.Puuid, region string) ([]riotapi.League, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leagues[puuid], nil
}

func (f *fakeRiot) GetLastTFTMatchIds(ctx context.Context, puuid riotapi.Puuid, region string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++
	if id, ok := f.tftLatest[puuid]; ok {
		return []string{id}, nil
	}
	return []string{}, nil
}

func (f *fakeRiot) GetTFTMatch(ctx context.Context, matchId string, region string) (riotapi.TFTMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tftCalls++
	match, ok := f.tftMatches[matchId]
	if !ok {
		return riotapi.TFTMatch{}, common.NewError(common.KIND_GAME_DETAIL_NOT_FOUND, "no TFT match %s", matchId)
	}
	return match, nil
}

func (f *fakeRiot) GetTFTLeagues(ctx context.Context, puuid riotapi.Puuid, region string) ([]riotapi.League, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leagues[puuid], nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	results []GameResult
	// Players whose notifications cannot be delivered
	failFor map[string]bool
}

func (n *fakeNotifier) NotifyGame(ctx context.Context, server store.Server, result GameResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[result.Player.GameName] {
		return errors.New("discord is down")
	}
	n.results = append(n.results, result)
	return nil
}

// Memory store whose next RecordGame calls fail without touching anything
type flakyStore struct {
	*store.MemoryStore
	recordFailures int
}

func (s *flakyStore) RecordGame(ctx context.Context, update store.GameUpdate) (bool, error) {
	if s.recordFailures > 0 {
		s.recordFailures--
		return false, common.NewError(common.KIND_GENERIC_DATA_STORE, "database is locked")
	}
	return s.MemoryStore.RecordGame(ctx, update)
}

type fixture struct {
	riot     *fakeRiot
	store    *store.MemoryStore
	flaky    *flakyStore
	notifier *fakeNotifier
	engine   *Engine
	server   store.Server
}

func newFixture(t *testing.T, server store.Server) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	if err := s.UpsertServer(context.Background(), server); err != nil {
		t.Fatalf("UpsertServer() failed: %v", err)
	}
	flaky := &flakyStore{MemoryStore: s}
	riot := newFakeRiot()
	notifier := &fakeNotifier{failFor: map[string]bool{}}
	pipeline := NewPipeline(flaky)
	pipeline.now = func() time.Time { return testNow }
	engine := NewEngine(flaky, notifier, NewLeagueProcessor(riot, pipeline), NewTFTProcessor(riot, pipeline))
	return &fixture{riot: riot, store: s, flaky: flaky, notifier: notifier, engine: engine, server: server}
}

func (f *fixture) addPlayer(t *testing.T, name string, lastGame string, lastTFTGame string) store.Player {
	t.Helper()
	player, err := f.store.AddPlayer(context.Background(), store.Player{
		GuildId:       f.server.GuildId,
		Puuid:         riotapi.Puuid("lol-" + name),
		TFTPuuid:      riotapi.Puuid("tft-" + name),
		GameName:      name,
		TagLine:       "EUW",
		Region:        "euw1",
		LastGameId:    lastGame,
		LastTFTGameId: lastTFTGame,
	})
	if err != nil {
		t.Fatalf("AddPlayer() failed: %v", err)
	}
	return player
}

func (f *fixture) player(t *testing.T, name string) store.Player {
	t.Helper()
	player, err := f.store.GetPlayer(context.Background(), f.server.GuildId, name, "EUW")
	if err != nil {
		t.Fatalf("GetPlayer() failed: %v", err)
	}
	return player
}

func (f *fixture) poll(t *testing.T) {
	t.Helper()
	if err := f.engine.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() failed: %v", err)
	}
}

func leagueMatch(matchId string, puuid riotapi.Puuid, win bool, end time.Time) riotapi.Match {
	participants := []riotapi.Participant{}
	roles := []string{"TOP", "JUNGLE", "MIDDLE", "BOTTOM", "UTILITY"}
	for team, teamId := range []int{100, 200} {
		for i, role := range roles {
			participant := riotapi.Participant{
				Puuid:                       riotapi.Puuid(fmt.Sprintf("other-%d-%d", teamId, i)),
				TeamId:                      teamId,
				TeamPosition:                role,
				ChampionName:                "Garen",
				Win:                         (team == 0) == win,
				Kills:                       i,
				Deaths:                      3,
				Assists:                     5,
				TotalMinionsKilled:          150,
				GoldEarned:                  10000,
				TotalDamageDealtToChampions: 15000,
				VisionScore:                 20,
			}
			if team == 0 && role == "MIDDLE" {
				participant.Puuid = puuid
				participant.ChampionName = "Ahri"
				participant.Kills = 9
			}
			participants = append(participants, participant)
		}
	}
	return riotapi.Match{
		MatchId:          matchId,
		QueueId:          420,
		GameDuration:     30 * time.Minute,
		GameEndTimestamp: end.UnixMilli(),
		Participants:     participants,
	}
}

func soloLeague(tier string, division string, lp int) riotapi.League {
	return riotapi.League{QueueType: riotapi.QUEUE_SOLO, Tier: tier, Rank: division, Lps: lp}
}

func TestNoNewGame(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1"})
	player := f.addPlayer(t, "Faker", "A", "")
	f.riot.latest[player.Puuid] = "A"

	f.poll(t)
	f.poll(t)

	if f.riot.matchCalls != 0 {
		t.Errorf("expected no match detail calls, got %d", f.riot.matchCalls)
	}
	ranks, _ := f.store.GetRanks(context.Background(), player.Id)
	if len(ranks) != 0 {
		t.Errorf("expected no rank mutation, got %+v", ranks)
	}
	if len(f.notifier.results) != 0 {
		t.Errorf("expected no notifications, got %d", len(f.notifier.results))
	}
}

func TestFirstRunSuppressesNotifications(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1"})
	player := f.addPlayer(t, "Faker", "A", "")
	f.riot.latest[player.Puuid] = "B"
	f.riot.matches["B"] = leagueMatch("B", player.Puuid, true, testNow.Add(-time.Hour))
	f.riot.leagues[player.Puuid] = []riotapi.League{soloLeague("GOLD", "II", 40)}

	if !f.engine.FirstRun() {
		t.Fatalf("engine should start in first run")
	}
	f.poll(t)

	if len(f.notifier.results) != 0 {
		t.Errorf("expected no notifications during first run, got %d", len(f.notifier.results))
	}
	if got := f.player(t, "Faker").LastGameId; got != "B" {
		t.Errorf("expected last game B, got %s", got)
	}
	ranks, _ := f.store.GetRanks(context.Background(), player.Id)
	if ranks[riotapi.QUEUE_SOLO].Current != rank.Ranked("GOLD", "II", 40) {
		t.Errorf("rank not updated during first run: %+v", ranks[riotapi.QUEUE_SOLO])
	}
	if f.engine.FirstRun() {
		t.Errorf("first run should be over after one cycle")
	}
}

func TestSiblingLookupFailure(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1"})
	f.engine.firstRun.Store(false)
	broken := f.addPlayer(t, "Broken", "A", "")
	healthy := f.addPlayer(t, "Healthy", "A", "")
	f.riot.failLatest[broken.Puuid] = true
	f.riot.latest[healthy.Puuid] = "B"
	f.riot.matches["B"] = leagueMatch("B", healthy.Puuid, true, testNow.Add(-time.Hour))

	f.poll(t)

	if f.riot.matchCalls != 1 {
		t.Errorf("expected exactly one handled game, got %d", f.riot.matchCalls)
	}
	if len(f.notifier.results) != 1 || f.notifier.results[0].Player.Id != healthy.Id {
		t.Errorf("expected one notification for the healthy player, got %+v", f.notifier.results)
	}
	if got := f.player(t, "Broken").LastGameId; got != "A" {
		t.Errorf("broken player should keep its last game, got %s", got)
	}
}

func TestHandlerFailureIsolation(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1"})
	f.engine.firstRun.Store(false)
	first := f.addPlayer(t, "First", "A", "")
	second := f.addPlayer(t, "Second", "A", "")
	// No detail for C
	f.riot.latest[first.Puuid] = "C"
	f.riot.latest[second.Puuid] = "B"
	f.riot.matches["B"] = leagueMatch("B", second.Puuid, false, testNow.Add(-time.Hour))

	f.poll(t)

	if got := f.player(t, "First").LastGameId; got != "A" {
		t.Errorf("failed game must not advance the last game id, got %s", got)
	}
	if got := f.player(t, "Second").LastGameId; got != "B" {
		t.Errorf("expected last game B, got %s", got)
	}
	if len(f.notifier.results) != 1 {
		t.Errorf("expected one notification, got %d", len(f.notifier.results))
	}
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "S", ChannelId: "c1", FlexEnabled: false, TFTEnabled: true})
	player := f.addPlayer(t, "P", "A", "T1")
	f.riot.latest[player.Puuid] = "A"
	f.riot.tftLatest[player.TFTPuuid] = "T1"
	f.riot.leagues[player.Puuid] = []riotapi.League{soloLeague("GOLD", "I", 90)}

	// Nothing new while the state catches up
	f.poll(t)
	if err := f.store.SaveRank(context.Background(), player.Id, store.RankState{
		Queue:    riotapi.QUEUE_SOLO,
		Current:  rank.Ranked("GOLD", "I", 90),
		Previous: rank.Ranked("GOLD", "I", 70),
		Baseline: rank.Ranked("GOLD", "I", 50),
	}); err != nil {
		t.Fatalf("SaveRank() failed: %v", err)
	}

	f.riot.latest[player.Puuid] = "B"
	f.riot.matches["B"] = leagueMatch("B", player.Puuid, true, testNow.Add(-time.Hour))
	f.riot.leagues[player.Puuid] = []riotapi.League{soloLeague("PLATINUM", "IV", 15)}
	f.poll(t)

	if f.riot.matchCalls != 1 {
		t.Errorf("League handler should run once, got %d", f.riot.matchCalls)
	}
	if f.riot.tftCalls != 0 {
		t.Errorf("TFT handler should not run, got %d", f.riot.tftCalls)
	}
	for _, flex := range f.riot.flexRequests {
		if flex {
			t.Errorf("flex tracking is off, match ids should be solo only")
		}
	}
	if got := f.player(t, "P").LastGameId; got != "B" {
		t.Errorf("expected last game B, got %s", got)
	}

	ranks, _ := f.store.GetRanks(context.Background(), player.Id)
	state := ranks[riotapi.QUEUE_SOLO]
	if state.Current != rank.Ranked("PLATINUM", "IV", 15) || state.Previous != rank.Ranked("GOLD", "I", 90) {
		t.Errorf("unexpected snapshots %+v", state)
	}
	if state.Baseline != rank.Ranked("GOLD", "I", 50) || state.DailyWins != 1 {
		t.Errorf("unexpected daily state %+v", state)
	}

	if len(f.notifier.results) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.results))
	}
	result := f.notifier.results[0]
	if result.LPDelta != 25 || result.League == nil || result.TFT != nil || !result.Win() {
		t.Errorf("unexpected result %+v", result)
	}
	if result.League.Game.Champion != "Ahri" || result.League.Game.Score <= 0 {
		t.Errorf("unexpected game record %+v", result.League.Game)
	}

	games, _ := f.store.ListLeagueGames(context.Background(), player.Id, testNow.Add(-24*time.Hour), testNow)
	if len(games) != 1 || games[0].LPDelta != 25 {
		t.Errorf("expected one recorded game with +25 LP, got %+v", games)
	}
}

func TestTFT(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1", TFTEnabled: true})
	f.engine.firstRun.Store(false)
	player := f.addPlayer(t, "Tactician", "", "T1")
	end := testNow.Add(-2 * time.Hour)

	// Normal game: skipped over without a record
	f.riot.tftLatest[player.TFTPuuid] = "T2"
	f.riot.tftMatches["T2"] = riotapi.TFTMatch{MatchId: "T2", QueueId: 1090, GameDatetime: end.UnixMilli()}
	f.poll(t)
	if got := f.player(t, "Tactician").LastTFTGameId; got != "T2" {
		t.Errorf("normal game should advance the last id, got %s", got)
	}
	if len(f.notifier.results) != 0 {
		t.Errorf("normal game should not notify")
	}

	// Ranked game
	f.riot.tftLatest[player.TFTPuuid] = "T3"
	f.riot.tftMatches["T3"] = riotapi.TFTMatch{
		MatchId:      "T3",
		QueueId:      1100,
		GameLength:   35 * time.Minute,
		GameDatetime: end.UnixMilli(),
		Participants: []riotapi.TFTParticipant{{
			Puuid:     player.TFTPuuid,
			Placement: 2,
			Level:     8,
			LastRound: 33,
			Traits: []riotapi.TFTTrait{
				{Name: "Bruiser", NumUnits: 2, Style: 1, TierCurrent: 1},
				{Name: "Sorcerer", NumUnits: 6, Style: 3, TierCurrent: 3},
				{Name: "Inactive", NumUnits: 1, Style: 0, TierCurrent: 0},
			},
		}},
	}
	f.riot.leagues[player.TFTPuuid] = []riotapi.League{{QueueType: riotapi.QUEUE_TFT, Tier: "SILVER", Rank: "I", Lps: 30}}
	f.poll(t)

	if len(f.notifier.results) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.results))
	}
	result := f.notifier.results[0]
	if result.TFT == nil || result.TFT.Game.Placement != 2 || !result.Win() || result.TFT.LastRound != 33 {
		t.Errorf("unexpected TFT result %+v", result)
	}
	if len(result.TFT.Game.Traits) != 2 || result.TFT.Game.Traits[0] != "Sorcerer" {
		t.Errorf("unexpected traits %v", result.TFT.Game.Traits)
	}
	// First placement ever: no delta, baseline seeded with the new rank
	ranks, _ := f.store.GetRanks(context.Background(), player.Id)
	state := ranks[riotapi.QUEUE_TFT]
	if result.LPDelta != 0 || state.Baseline != rank.Ranked("SILVER", "I", 30) || state.DailyWins != 1 {
		t.Errorf("unexpected TFT rank state %+v (delta %d)", state, result.LPDelta)
	}
}

func TestTFTDisabled(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1", TFTEnabled: false})
	player := f.addPlayer(t, "Tactician", "A", "T1")
	f.riot.latest[player.Puuid] = "A"
	f.riot.tftLatest[player.TFTPuuid] = "T2"

	f.poll(t)

	if f.riot.tftCalls != 0 || f.player(t, "Tactician").LastTFTGameId != "T1" {
		t.Errorf("TFT should not be polled when disabled")
	}
}

func TestMissingPuuidIsSkipped(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1", TFTEnabled: true})
	_, err := f.store.AddPlayer(context.Background(), store.Player{GuildId: "g1", Puuid: "lol-x", GameName: "NoTFT", TagLine: "EUW", Region: "euw1"})
	if err != nil {
		t.Fatalf("AddPlayer() failed: %v", err)
	}
	f.poll(t)
	// Only the League lookup went out
	if f.riot.latestCalls != 1 {
		t.Errorf("expected one lookup, got %d", f.riot.latestCalls)
	}
}

func TestTallyOutsideWindow(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	s.UpsertServer(ctx, store.Server{GuildId: "g1"})
	player, _ := s.AddPlayer(ctx, store.Player{GuildId: "g1", Puuid: "p", GameName: "P", TagLine: "EUW"})
	pipeline := NewPipeline(s)
	pipeline.now = func() time.Time { return testNow }

	// Yesterday evening is before today's cutoff
	end := testNow.Add(-24 * time.Hour)
	before, after, state, err := pipeline.UpdateRank(ctx, player, riotapi.QUEUE_SOLO, []riotapi.League{soloLeague("GOLD", "II", 40)}, true, end)
	if err != nil {
		t.Fatalf("UpdateRank() failed: %v", err)
	}
	if before.IsRanked() || after != rank.Ranked("GOLD", "II", 40) {
		t.Errorf("unexpected snapshots %v -> %v", before, after)
	}
	if state == nil || state.Current != after {
		t.Fatalf("expected the snapshot shift, got %+v", state)
	}
	if state.DailyWins != 0 || state.DailyLosses != 0 {
		t.Errorf("game outside the window must not count, got %+v", state)
	}
	// Nothing is saved before the game is recorded
	if ranks, _ := s.GetRanks(ctx, player.Id); len(ranks) != 0 {
		t.Errorf("expected no saved rank, got %+v", ranks)
	}

	// Unranked queues leave the state alone
	before, after, state, err = pipeline.UpdateRank(ctx, player, riotapi.QUEUE_ARAM, nil, true, testNow)
	if err != nil || before.IsRanked() || after.IsRanked() || state != nil {
		t.Errorf("unexpected unranked update %v %v %+v %v", before, after, state, err)
	}
}

func TestFailedRecordIsRetried(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1"})
	f.engine.firstRun.Store(false)
	player := f.addPlayer(t, "Faker", "A", "")
	f.riot.latest[player.Puuid] = "B"
	f.riot.matches["B"] = leagueMatch("B", player.Puuid, true, testNow.Add(-time.Hour))
	f.riot.leagues[player.Puuid] = []riotapi.League{soloLeague("GOLD", "II", 40)}
	f.flaky.recordFailures = 1

	f.poll(t)
	if got := f.player(t, "Faker").LastGameId; got != "A" {
		t.Fatalf("failed record must not advance the last game id, got %s", got)
	}
	if ranks, _ := f.store.GetRanks(context.Background(), player.Id); len(ranks) != 0 {
		t.Errorf("failed record must not touch the rank, got %+v", ranks)
	}

	for i := 0; i < 3; i++ {
		f.poll(t)
	}

	if got := f.player(t, "Faker").LastGameId; got != "B" {
		t.Errorf("expected last game B, got %s", got)
	}
	ranks, _ := f.store.GetRanks(context.Background(), player.Id)
	if state := ranks[riotapi.QUEUE_SOLO]; state.DailyWins != 1 || state.Current != rank.Ranked("GOLD", "II", 40) {
		t.Errorf("game should be applied exactly once, got %+v", state)
	}
	games, _ := f.store.ListLeagueGames(context.Background(), player.Id, testNow.Add(-24*time.Hour), testNow)
	if len(games) != 1 {
		t.Errorf("expected one recorded game, got %d", len(games))
	}
	if len(f.notifier.results) != 1 {
		t.Errorf("expected one notification, got %d", len(f.notifier.results))
	}
}

func TestAlreadyRecordedGameOnlyAdvances(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1"})
	f.engine.firstRun.Store(false)
	ctx := context.Background()
	player := f.addPlayer(t, "Faker", "A", "")
	f.riot.latest[player.Puuid] = "B"
	f.riot.matches["B"] = leagueMatch("B", player.Puuid, true, testNow.Add(-time.Hour))
	f.riot.leagues[player.Puuid] = []riotapi.League{soloLeague("GOLD", "II", 40)}

	// Recorded by an earlier run that stopped before the last game id moved
	f.store.AddLeagueGame(ctx, store.LeagueGame{PlayerId: player.Id, MatchId: "B", Queue: riotapi.QUEUE_SOLO, EndTime: testNow.Add(-time.Hour), Win: true})
	f.store.SaveRank(ctx, player.Id, store.RankState{
		Queue:     riotapi.QUEUE_SOLO,
		Current:   rank.Ranked("GOLD", "II", 40),
		Previous:  rank.Ranked("GOLD", "II", 20),
		Baseline:  rank.Ranked("GOLD", "II", 20),
		DailyWins: 1,
	})

	f.poll(t)
	f.poll(t)

	if got := f.player(t, "Faker").LastGameId; got != "B" {
		t.Errorf("expected last game B, got %s", got)
	}
	ranks, _ := f.store.GetRanks(ctx, player.Id)
	if state := ranks[riotapi.QUEUE_SOLO]; state.DailyWins != 1 || state.Previous != rank.Ranked("GOLD", "II", 20) {
		t.Errorf("rank must not be applied twice, got %+v", state)
	}
	if f.riot.matchCalls != 1 {
		t.Errorf("expected one handled game, got %d", f.riot.matchCalls)
	}
	if len(f.notifier.results) != 0 {
		t.Errorf("an already recorded game must not notify again, got %d", len(f.notifier.results))
	}
}

func TestNotificationFailureKeepsState(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1"})
	f.engine.firstRun.Store(false)
	ctx := context.Background()
	muted := f.addPlayer(t, "Muted", "A", "")
	sibling := f.addPlayer(t, "Sibling", "A", "")
	f.riot.latest[muted.Puuid] = "B"
	f.riot.latest[sibling.Puuid] = "C"
	f.riot.matches["B"] = leagueMatch("B", muted.Puuid, false, testNow.Add(-time.Hour))
	f.riot.matches["C"] = leagueMatch("C", sibling.Puuid, true, testNow.Add(-time.Hour))
	f.riot.leagues[muted.Puuid] = []riotapi.League{soloLeague("SILVER", "I", 10)}
	f.riot.leagues[sibling.Puuid] = []riotapi.League{soloLeague("GOLD", "IV", 60)}
	f.notifier.failFor["Muted"] = true

	f.poll(t)

	if got := f.player(t, "Muted").LastGameId; got != "B" {
		t.Errorf("expected last game B despite the failed notification, got %s", got)
	}
	ranks, _ := f.store.GetRanks(ctx, muted.Id)
	if state := ranks[riotapi.QUEUE_SOLO]; state.Current != rank.Ranked("SILVER", "I", 10) || state.DailyLosses != 1 {
		t.Errorf("unexpected rank state %+v", state)
	}
	games, _ := f.store.ListLeagueGames(ctx, muted.Id, testNow.Add(-24*time.Hour), testNow)
	if len(games) != 1 || games[0].MatchId != "B" {
		t.Errorf("expected game B to be recorded, got %+v", games)
	}
	if len(f.notifier.results) != 1 || f.notifier.results[0].Player.Id != sibling.Id {
		t.Errorf("expected the sibling to be notified, got %+v", f.notifier.results)
	}

	// The failed notification is not retried
	f.poll(t)
	if f.riot.matchCalls != 2 || len(f.notifier.results) != 1 {
		t.Errorf("got %d match calls and %d notifications", f.riot.matchCalls, len(f.notifier.results))
	}
}

func TestTFTSpecialModeIsRecordedSilently(t *testing.T) {
	f := newFixture(t, store.Server{GuildId: "g1", ChannelId: "c1", TFTEnabled: true})
	f.engine.firstRun.Store(false)
	player := f.addPlayer(t, "Tactician", "", "T1")
	end := testNow.Add(-time.Hour)
	f.riot.tftLatest[player.TFTPuuid] = "T2"
	f.riot.tftMatches["T2"] = riotapi.TFTMatch{
		MatchId:      "T2",
		QueueId:      1130,
		GameLength:   20 * time.Minute,
		GameDatetime: end.UnixMilli(),
		Participants: []riotapi.TFTParticipant{{Puuid: player.TFTPuuid, Placement: 1, Level: 9}},
	}

	f.poll(t)

	if got := f.player(t, "Tactician").LastTFTGameId; got != "T2" {
		t.Errorf("expected last TFT game T2, got %s", got)
	}
	games, _ := f.store.ListTFTGames(context.Background(), player.Id, testNow.Add(-24*time.Hour), testNow)
	if len(games) != 1 || games[0].Placement != 1 {
		t.Errorf("expected the hyper roll game to be recorded, got %+v", games)
	}
	if len(f.notifier.results) != 0 {
		t.Errorf("special modes must not notify, got %d", len(f.notifier.results))
	}
}

func TestMainTraits(t *testing.T) {
	traits := []riotapi.TFTTrait{
		{Name: "A", NumUnits: 2, Style: 1, TierCurrent: 1},
		{Name: "B", NumUnits: 4, Style: 2, TierCurrent: 2},
		{Name: "C", NumUnits: 3, Style: 2, TierCurrent: 1},
		{Name: "D", NumUnits: 9, Style: 4, TierCurrent: 4},
		{Name: "E", NumUnits: 1, Style: 0, TierCurrent: 0},
	}
	got := MainTraits(traits, 3)
	want := []string{"D", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
	if len(MainTraits(nil, 3)) != 0 {
		t.Errorf("no traits should give an empty list")
	}
}
