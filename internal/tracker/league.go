package tracker

import (
	"context"
	"fmt"
	"time"

	"lpwatch/internal/common"
	"lpwatch/internal/rank"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/score"
	"lpwatch/internal/store"

	"github.com/rs/zerolog/log"
)

type LeagueProcessor struct {
	api      LeagueAPI
	pipeline *Pipeline
}

func NewLeagueProcessor(api LeagueAPI, pipeline *Pipeline) *LeagueProcessor {
	return &LeagueProcessor{api: api, pipeline: pipeline}
}

func (processor *LeagueProcessor) Mode() store.GameMode {
	return store.MODE_LEAGUE
}

// League games are always tracked
func (processor *LeagueProcessor) Enabled(server store.Server) bool {
	return true
}

func (processor *LeagueProcessor) Puuid(player store.Player) riotapi.Puuid {
	return player.Puuid
}

func (processor *LeagueProcessor) LastGameId(player store.Player) string {
	return player.LastGameId
}

func (processor *LeagueProcessor) FetchLatest(ctx context.Context, server store.Server, puuid riotapi.Puuid, region string) (string, error) {
	matchIds, err := processor.api.GetLastRankedMatchIds(ctx, puuid, region, server.FlexEnabled)
	if err != nil {
		return "", err
	}
	if len(matchIds) == 0 {
		return "", nil
	}
	return matchIds[0], nil
}

func (processor *LeagueProcessor) HandleNewGame(ctx context.Context, server store.Server, player store.Player, matchId string) (*GameResult, error) {

	// Detail and rank entries
	match, err := processor.api.GetMatch(ctx, matchId, player.Region)
	if err != nil {
		return nil, err
	}
	participant, ok := match.FindParticipant(player.Puuid)
	if !ok {
		return nil, common.NewError(common.KIND_GAME_DETAIL_NOT_FOUND, "player %s is not a participant of match %s", player.RiotId(), matchId)
	}
	leagues, err := processor.api.GetLeagues(ctx, player.Puuid, player.Region)
	if err != nil {
		return nil, err
	}

	queue := riotapi.LeagueQueue(match.QueueId)
	endTime := time.UnixMilli(match.GameEndTimestamp)

	// Tally and snapshots
	before, after, state, err := processor.pipeline.UpdateRank(ctx, player, queue, leagues, participant.Win, endTime)
	if err != nil {
		return nil, err
	}

	// Record and last game id
	scores := score.Scores(match.Participants, int64(match.GameDuration/time.Second))
	game := store.LeagueGame{
		PlayerId: player.Id,
		MatchId:  matchId,
		Queue:    queue,
		EndTime:  endTime,
		Duration: match.GameDuration,
		Champion: participant.ChampionName,
		Role:     participant.TeamPosition,
		Win:      participant.Win,
		Kills:    participant.Kills,
		Deaths:   participant.Deaths,
		Assists:  participant.Assists,
		CS:       participant.CS(),
		Damage:   participant.TotalDamageDealtToChampions,
		Vision:   participant.VisionScore,
		Pings:    participant.Pings(),
		Score:    scores[participant.Puuid],
		LPDelta:  rank.Delta(before, after),
		Before:   before,
		After:    after,
	}
	update := store.GameUpdate{Mode: store.MODE_LEAGUE, MatchId: matchId, Rank: state, League: &game}
	applied, err := processor.pipeline.Record(ctx, player, update)
	if err != nil || !applied {
		return nil, err
	}
	log.Info().Msg(fmt.Sprintf("Recorded game %s of player %s (%s, %+d LP)", matchId, player.RiotId(), queue, game.LPDelta))

	return &GameResult{
		Mode:    store.MODE_LEAGUE,
		Player:  player,
		Queue:   queue,
		LPDelta: game.LPDelta,
		Before:  before,
		After:   after,
		League: &LeagueResult{
			Game:     game,
			TeamRank: score.TeamRank(participant, match.Participants, scores),
		},
	}, nil
}
