package recap

import (
	"context"
	"sort"
	"time"

	"lpwatch/internal/riotapi"
	"lpwatch/internal/store"
)

// Totals shared by every game mode
type Summary struct {
	Player     store.Player
	Queue      riotapi.QueueType
	Games      int
	Wins       int
	Losses     int
	Winrate    float64
	TimePlayed time.Duration
	LPDelta    int
}

type LeagueSummary struct {
	Summary
	AvgKills        float64
	AvgDeaths       float64
	AvgAssists      float64
	AvgDamage       float64
	CSPerMinute     float64
	VisionPerMinute float64
}

type TFTSummary struct {
	Summary
	AvgPlacement float64
	AvgLevel     float64
}

// Aggregator turns the recorded games of a window into per player statistics
type Aggregator struct {
	store store.Store
}

func NewAggregator(s store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// League statistics of the players with at least one game of the queue in
// [from, to), best LP progress first
func (aggregator *Aggregator) League(ctx context.Context, players []store.Player, from time.Time, to time.Time, queue riotapi.QueueType) ([]LeagueSummary, error) {

	summaries := []LeagueSummary{}
	for _, player := range players {
		games, err := aggregator.store.ListLeagueGames(ctx, player.Id, from, to)
		if err != nil {
			return nil, err
		}

		summary := LeagueSummary{Summary: Summary{Player: player, Queue: queue}}
		var kills, deaths, assists, damage, cs, vision int
		for _, game := range games {
			if game.Queue != queue {
				continue
			}
			summary.add(game.Win, game.Duration, game.LPDelta)
			kills += game.Kills
			deaths += game.Deaths
			assists += game.Assists
			damage += game.Damage
			cs += game.CS
			vision += game.Vision
		}
		if summary.Games == 0 {
			continue
		}

		count := float64(summary.Games)
		summary.AvgKills = float64(kills) / count
		summary.AvgDeaths = float64(deaths) / count
		summary.AvgAssists = float64(assists) / count
		summary.AvgDamage = float64(damage) / count
		if minutes := summary.TimePlayed.Minutes(); minutes > 0 {
			summary.CSPerMinute = float64(cs) / minutes
			summary.VisionPerMinute = float64(vision) / minutes
		}
		summary.finish()
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].LPDelta > summaries[j].LPDelta })
	return summaries, nil
}

// TFT statistics of the players with at least one game of the queue in
// [from, to), best LP progress first
func (aggregator *Aggregator) TFT(ctx context.Context, players []store.Player, from time.Time, to time.Time, queue riotapi.QueueType) ([]TFTSummary, error) {

	summaries := []TFTSummary{}
	for _, player := range players {
		games, err := aggregator.store.ListTFTGames(ctx, player.Id, from, to)
		if err != nil {
			return nil, err
		}

		summary := TFTSummary{Summary: Summary{Player: player, Queue: queue}}
		var placements, levels int
		for _, game := range games {
			if game.Queue != queue {
				continue
			}
			summary.add(game.Win(), game.Duration, game.LPDelta)
			placements += game.Placement
			levels += game.Level
		}
		if summary.Games == 0 {
			continue
		}

		summary.AvgPlacement = float64(placements) / float64(summary.Games)
		summary.AvgLevel = float64(levels) / float64(summary.Games)
		summary.finish()
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].LPDelta > summaries[j].LPDelta })
	return summaries, nil
}

func (summary *Summary) add(win bool, duration time.Duration, lpDelta int) {
	summary.Games++
	if win {
		summary.Wins++
	} else {
		summary.Losses++
	}
	summary.TimePlayed += duration
	summary.LPDelta += lpDelta
}

func (summary *Summary) finish() {
	if summary.Games > 0 {
		summary.Winrate = float64(summary.Wins) / float64(summary.Games) * 100
	}
}
