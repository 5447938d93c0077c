package recap

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lpwatch/internal/rank"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/store"

	"github.com/rs/zerolog/log"
)

// Queues covered by the monthly recap
var (
	MonthlyLeagueQueues = []riotapi.QueueType{
		riotapi.QUEUE_SOLO,
		riotapi.QUEUE_FLEX,
		riotapi.QUEUE_NORMAL_DRAFT,
		riotapi.QUEUE_ARAM,
		riotapi.QUEUE_ARENA,
	}
	MonthlyTFTQueues = []riotapi.QueueType{
		riotapi.QUEUE_TFT,
		riotapi.QUEUE_TFT_DOUBLE_UP,
		riotapi.QUEUE_TFT_HYPER_ROLL,
		riotapi.QUEUE_TFT_EVENT,
	}
)

// Progress of one player in one queue since the last daily recap
type DailyEntry struct {
	Player  store.Player
	Queue   riotapi.QueueType
	From    rank.Snapshot
	To      rank.Snapshot
	LPDelta int
	Wins    int
	Losses  int
}

// Publisher delivers recaps to a server's channel
type Publisher interface {
	PublishDaily(ctx context.Context, server store.Server, queue riotapi.QueueType, entries []DailyEntry) error
	PublishLeagueMonthly(ctx context.Context, server store.Server, queue riotapi.QueueType, month time.Time, summaries []LeagueSummary) error
	PublishTFTMonthly(ctx context.Context, server store.Server, queue riotapi.QueueType, month time.Time, summaries []TFTSummary) error
}

type Runner struct {
	store      store.Store
	aggregator *Aggregator
	publisher  Publisher
}

func NewRunner(s store.Store, publisher Publisher) *Runner {
	return &Runner{store: s, aggregator: NewAggregator(s), publisher: publisher}
}

// Rank queues reported daily for a server
func DailyQueues(server store.Server) []riotapi.QueueType {
	queues := []riotapi.QueueType{riotapi.QUEUE_SOLO}
	if server.FlexEnabled {
		queues = append(queues, riotapi.QUEUE_FLEX)
	}
	if server.TFTEnabled {
		queues = append(queues, riotapi.QUEUE_TFT, riotapi.QUEUE_TFT_DOUBLE_UP)
	}
	return queues
}

// Publish the daily progress of every server and start a new day.
// The first failure stops the whole run
func (runner *Runner) Daily(ctx context.Context) error {

	servers, err := runner.store.ListServers(ctx)
	if err != nil {
		return fmt.Errorf("could not list servers: %w", err)
	}

	for _, server := range servers {
		players, err := runner.store.ListPlayersByServer(ctx, server.GuildId)
		if err != nil {
			return fmt.Errorf("could not list players of server %s: %w", server.GuildId, err)
		}
		if len(players) == 0 {
			continue
		}

		entries, err := runner.dailyEntries(ctx, players)
		if err != nil {
			return err
		}
		for _, queue := range DailyQueues(server) {
			if len(entries[queue]) == 0 {
				continue
			}
			if err := runner.publisher.PublishDaily(ctx, server, queue, entries[queue]); err != nil {
				return fmt.Errorf("could not publish daily %s recap of server %s: %w", queue, server.GuildId, err)
			}
		}

		ids := make([]int64, len(players))
		for i, player := range players {
			ids[i] = player.Id
		}
		if err := runner.store.ResetDailyBaselines(ctx, ids); err != nil {
			return fmt.Errorf("could not reset daily baselines of server %s: %w", server.GuildId, err)
		}
		log.Info().Msg(fmt.Sprintf("Daily recap done for server %s", server.GuildId))
	}
	return nil
}

func (runner *Runner) dailyEntries(ctx context.Context, players []store.Player) (map[riotapi.QueueType][]DailyEntry, error) {

	entries := map[riotapi.QueueType][]DailyEntry{}
	for _, player := range players {
		ranks, err := runner.store.GetRanks(ctx, player.Id)
		if err != nil {
			return nil, err
		}
		for queue, state := range ranks {
			if state.DailyWins+state.DailyLosses == 0 {
				continue
			}
			entries[queue] = append(entries[queue], DailyEntry{
				Player:  player,
				Queue:   queue,
				From:    state.Baseline,
				To:      state.Current,
				LPDelta: rank.Delta(state.Baseline, state.Current),
				Wins:    state.DailyWins,
				Losses:  state.DailyLosses,
			})
		}
	}
	for _, queueEntries := range entries {
		sort.SliceStable(queueEntries, func(i, j int) bool { return queueEntries[i].LPDelta > queueEntries[j].LPDelta })
	}
	return entries, nil
}

// Publish the recap of the month before now. A failure only stops the
// remaining queues of that server
func (runner *Runner) Monthly(ctx context.Context, now time.Time) error {

	from, to := PreviousMonth(now)
	servers, err := runner.store.ListServers(ctx)
	if err != nil {
		return fmt.Errorf("could not list servers: %w", err)
	}

	for _, server := range servers {
		if err := runner.monthlyServer(ctx, server, from, to); err != nil {
			log.Error().Msg(fmt.Sprintf("Monthly recap of server %s aborted: %v", server.GuildId, err))
			continue
		}
		log.Info().Msg(fmt.Sprintf("Monthly recap of %s done for server %s", from.Format("2006-01"), server.GuildId))
	}
	return nil
}

func (runner *Runner) monthlyServer(ctx context.Context, server store.Server, from time.Time, to time.Time) error {

	players, err := runner.store.ListPlayersByServer(ctx, server.GuildId)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return nil
	}

	for _, queue := range MonthlyLeagueQueues {
		summaries, err := runner.aggregator.League(ctx, players, from, to, queue)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			continue
		}
		if err := runner.publisher.PublishLeagueMonthly(ctx, server, queue, from, summaries); err != nil {
			return err
		}
	}

	if !server.TFTEnabled {
		return nil
	}
	for _, queue := range MonthlyTFTQueues {
		summaries, err := runner.aggregator.TFT(ctx, players, from, to, queue)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			continue
		}
		if err := runner.publisher.PublishTFTMonthly(ctx, server, queue, from, summaries); err != nil {
			return err
		}
	}
	return nil
}
