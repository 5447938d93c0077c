package tracker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lpwatch/internal/common"
	"lpwatch/internal/rank"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/store"

	"github.com/rs/zerolog/log"
)

// Traits shown for a TFT game
const mainTraitsCount = 3

type TFTProcessor struct {
	api      TFTAPI
	pipeline *Pipeline
}

func NewTFTProcessor(api TFTAPI, pipeline *Pipeline) *TFTProcessor {
	return &TFTProcessor{api: api, pipeline: pipeline}
}

func (processor *TFTProcessor) Mode() store.GameMode {
	return store.MODE_TFT
}

func (processor *TFTProcessor) Enabled(server store.Server) bool {
	return server.TFTEnabled
}

func (processor *TFTProcessor) Puuid(player store.Player) riotapi.Puuid {
	return player.TFTPuuid
}

func (processor *TFTProcessor) LastGameId(player store.Player) string {
	return player.LastTFTGameId
}

func (processor *TFTProcessor) FetchLatest(ctx context.Context, server store.Server, puuid riotapi.Puuid, region string) (string, error) {
	matchIds, err := processor.api.GetLastTFTMatchIds(ctx, puuid, region)
	if err != nil {
		return "", err
	}
	if len(matchIds) == 0 {
		return "", nil
	}
	return matchIds[0], nil
}

func (processor *TFTProcessor) HandleNewGame(ctx context.Context, server store.Server, player store.Player, matchId string) (*GameResult, error) {

	match, err := processor.api.GetTFTMatch(ctx, matchId, player.Region)
	if err != nil {
		return nil, err
	}

	// Normal games are only skipped over
	queue := riotapi.TFTQueue(match.QueueId)
	if queue == riotapi.QUEUE_UNKNOWN {
		log.Debug().Msg(fmt.Sprintf("Skipping TFT match %s of player %s in queue %d", matchId, player.RiotId(), match.QueueId))
		return nil, processor.pipeline.Advance(ctx, player, store.MODE_TFT, matchId)
	}

	participant, ok := match.FindParticipant(player.TFTPuuid)
	if !ok {
		return nil, common.NewError(common.KIND_GAME_DETAIL_NOT_FOUND, "player %s is not a participant of TFT match %s", player.RiotId(), matchId)
	}
	leagues, err := processor.api.GetTFTLeagues(ctx, player.TFTPuuid, player.Region)
	if err != nil {
		return nil, err
	}

	endTime := time.UnixMilli(match.GameDatetime)
	game := store.TFTGame{
		PlayerId:        player.Id,
		MatchId:         matchId,
		Queue:           queue,
		EndTime:         endTime,
		Duration:        match.GameLength,
		Placement:       participant.Placement,
		Level:           participant.Level,
		Traits:          MainTraits(participant.Traits, mainTraitsCount),
		DamageToPlayers: participant.TotalDamageToPlayers,
	}

	before, after, state, err := processor.pipeline.UpdateRank(ctx, player, queue, leagues, game.Win(), endTime)
	if err != nil {
		return nil, err
	}
	game.Before, game.After = before, after
	game.LPDelta = rank.Delta(before, after)

	update := store.GameUpdate{Mode: store.MODE_TFT, MatchId: matchId, Rank: state, TFT: &game}
	applied, err := processor.pipeline.Record(ctx, player, update)
	if err != nil || !applied {
		return nil, err
	}
	log.Info().Msg(fmt.Sprintf("Recorded TFT game %s of player %s (%s, placement %d)", matchId, player.RiotId(), queue, game.Placement))

	// Special modes only feed the monthly recaps
	if !queue.IsRanked() {
		return nil, nil
	}

	return &GameResult{
		Mode:    store.MODE_TFT,
		Player:  player,
		Queue:   queue,
		LPDelta: game.LPDelta,
		Before:  before,
		After:   after,
		TFT: &TFTResult{
			Game:              game,
			LastRound:         participant.LastRound,
			PlayersEliminated: participant.PlayersEliminated,
			GoldLeft:          participant.GoldLeft,
		},
	}, nil
}

// Active traits, strongest style first
func MainTraits(traits []riotapi.TFTTrait, count int) []string {
	active := make([]riotapi.TFTTrait, 0, len(traits))
	for _, trait := range traits {
		if trait.TierCurrent > 0 {
			active = append(active, trait)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Style != active[j].Style {
			return active[i].Style > active[j].Style
		}
		return active[i].NumUnits > active[j].NumUnits
	})
	names := []string{}
	for i := 0; i < len(active) && i < count; i++ {
		names = append(names, active[i].Name)
	}
	return names
}
