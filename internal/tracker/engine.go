package tracker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"lpwatch/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Engine polls every processor for every player of every server.
// During the first cycle after startup state catches up silently
type Engine struct {
	store      store.Store
	notifier   Notifier
	processors []Processor
	firstRun   atomic.Bool
}

func NewEngine(s store.Store, notifier Notifier, processors ...Processor) *Engine {
	engine := &Engine{store: s, notifier: notifier, processors: processors}
	engine.firstRun.Store(true)
	return engine
}

func (engine *Engine) FirstRun() bool {
	return engine.firstRun.Load()
}

// One full cycle over all the servers
func (engine *Engine) Poll(ctx context.Context) error {

	cycle := uuid.New()
	servers, err := engine.store.ListServers(ctx)
	if err != nil {
		return fmt.Errorf("could not list servers: %w", err)
	}
	log.Debug().Msg(fmt.Sprintf("Poll cycle %s over %d servers (first run: %t)", cycle, len(servers), engine.FirstRun()))

	for _, server := range servers {
		if err := ctx.Err(); err != nil {
			return err
		}
		engine.PollServer(ctx, server)
	}

	if engine.firstRun.CompareAndSwap(true, false) {
		log.Info().Msg("First poll cycle finished, notifications are now enabled")
	}
	return nil
}

type latestResult struct {
	playerId int64
	matchId  string
}

func (engine *Engine) PollServer(ctx context.Context, server store.Server) {

	players, err := engine.store.ListPlayersByServer(ctx, server.GuildId)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not list players of server %s: %v", server.GuildId, err))
		return
	}
	if len(players) == 0 {
		return
	}

	for _, processor := range engine.processors {
		if !processor.Enabled(server) {
			continue
		}
		latest := engine.fetchLatest(ctx, processor, server, players)

		// New games are handled one after the other
		for _, player := range players {
			matchId, ok := latest[player.Id]
			if !ok || matchId == "" || matchId == processor.LastGameId(player) {
				continue
			}
			log.Info().Msg(fmt.Sprintf("New %s game %s for player %s in server %s", processor.Mode(), matchId, player.RiotId(), server.GuildId))

			result, err := processor.HandleNewGame(ctx, server, player, matchId)
			if err != nil {
				log.Error().Msg(fmt.Sprintf("Could not handle %s game %s of player %s: %v", processor.Mode(), matchId, player.RiotId(), err))
				continue
			}
			if result == nil || engine.FirstRun() {
				continue
			}
			if err := engine.notifier.NotifyGame(ctx, server, *result); err != nil {
				log.Error().Msg(fmt.Sprintf("Could not notify game %s of player %s: %v", matchId, player.RiotId(), err))
			}
		}
	}
}

// Look up the latest match of every player at the same time.
// A failed lookup only means no match for that player
func (engine *Engine) fetchLatest(ctx context.Context, processor Processor, server store.Server, players []store.Player) map[int64]string {

	results := make(chan latestResult, len(players))
	var wg sync.WaitGroup
	for _, player := range players {

		puuid := processor.Puuid(player)
		if puuid == "" {
			continue
		}

		wg.Add(1)
		go func(ch chan<- latestResult, player store.Player) {

			defer wg.Done()

			matchId, err := processor.FetchLatest(ctx, server, puuid, player.Region)
			if err != nil {
				log.Warn().Msg(fmt.Sprintf("Could not get latest %s match of player %s: %v", processor.Mode(), player.RiotId(), err))
				return
			}
			ch <- latestResult{playerId: player.Id, matchId: matchId}
		}(results, player)
	}
	wg.Wait()
	close(results)

	latest := make(map[int64]string, len(players))
	for result := range results {
		latest[result.playerId] = result.matchId
	}
	return latest
}
