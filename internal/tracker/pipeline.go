package tracker

import (
	"context"
	"fmt"
	"time"

	"lpwatch/internal/rank"
	"lpwatch/internal/recap"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/store"

	"github.com/rs/zerolog/log"
)

// Pipeline applies a new game to the stored rank progress of a player.
// A game is only applied once, even when a previous attempt failed midway
type Pipeline struct {
	store store.Store
	now   func() time.Time
}

func NewPipeline(s store.Store) *Pipeline {
	return &Pipeline{store: s, now: time.Now}
}

// Compute the daily tally and the rank snapshots of the queue the game was
// played in, returning the rank before and after the game. The new state is
// nil when the game leaves it untouched, and is only saved by Record
func (pipeline *Pipeline) UpdateRank(ctx context.Context, player store.Player, queue riotapi.QueueType, leagues []riotapi.League, win bool, endTime time.Time) (rank.Snapshot, rank.Snapshot, *store.RankState, error) {

	if !queue.IsRanked() {
		return rank.Unranked(), rank.Unranked(), nil, nil
	}

	ranks, err := pipeline.store.GetRanks(ctx, player.Id)
	if err != nil {
		return rank.Unranked(), rank.Unranked(), nil, err
	}
	state, ok := ranks[queue]
	if !ok {
		state = store.RankState{Queue: queue, Current: rank.Unranked(), Previous: rank.Unranked(), Baseline: rank.Unranked()}
	}
	before := state.Current
	after := rank.Unranked()
	changed := false

	// Daily tally
	if recap.InWindow(endTime.UnixMilli(), pipeline.now()) {
		if win {
			state.DailyWins++
		} else {
			state.DailyLosses++
		}
		changed = true
	}

	// Snapshot shift
	if league, found := findLeague(leagues, queue); found {
		after = rank.Ranked(league.Tier, league.Rank, league.Lps)
		if !state.Baseline.IsRanked() {
			state.Baseline = before
			if !before.IsRanked() {
				state.Baseline = after
			}
		}
		state.Previous = state.Current
		state.Current = after
		changed = true
	} else {
		log.Debug().Msg(fmt.Sprintf("No %s rank entry for player %s", queue, player.RiotId()))
	}

	if !changed {
		return before, after, nil, nil
	}
	return before, after, &state, nil
}

// Last step of a new game: the rank, the record and the match id used as
// de-duplication key are stored together. Reports false when the match was
// already recorded by an earlier attempt
func (pipeline *Pipeline) Record(ctx context.Context, player store.Player, update store.GameUpdate) (bool, error) {
	update.PlayerId = player.Id
	applied, err := pipeline.store.RecordGame(ctx, update)
	if err != nil {
		return false, err
	}
	if !applied {
		log.Warn().Msg(fmt.Sprintf("Game %s of player %s was already recorded", update.MatchId, player.RiotId()))
	}
	return applied, nil
}

// Move past a game that is not recorded
func (pipeline *Pipeline) Advance(ctx context.Context, player store.Player, mode store.GameMode, matchId string) error {
	return pipeline.store.SetLastGameId(ctx, player.Id, mode, matchId)
}

func findLeague(leagues []riotapi.League, queue riotapi.QueueType) (riotapi.League, bool) {
	for _, league := range leagues {
		if league.QueueType == queue {
			return league, true
		}
	}
	return riotapi.League{}, false
}
