package riotapi

import (
	"encoding/json"
	"time"
)

func DecodeAccount(data []byte) (RiotId, Puuid, error) {

	var raw struct {
		Puuid    Puuid  `json:"puuid"`
		GameName string `json:"gameName"`
		TagLine  string `json:"tagLine"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return RiotId{}, "", err
	}
	return RiotId{GameName: raw.GameName, TagLine: raw.TagLine}, raw.Puuid, nil
}

func DecodeLeagues(data []byte) ([]League, error) {

	// unmarshal
	var leagues []League
	if err := json.Unmarshal(data, &leagues); err != nil {
		return nil, err
	}

	// winrate
	for i := range leagues {
		games := leagues[i].Wins + leagues[i].Losses
		if games > 0 {
			leagues[i].Winrate = 100.0 * float32(leagues[i].Wins) / float32(games)
		} else {
			leagues[i].Winrate = 0
		}
	}

	return leagues, nil
}

func DecodeMatchIds(data []byte) ([]string, error) {

	var matchIds []string
	if err := json.Unmarshal(data, &matchIds); err != nil {
		return nil, err
	}
	return matchIds, nil
}

func DecodeMatch(data []byte) (Match, error) {

	// unmarshal
	var raw struct {
		Metadata struct {
			MatchId string `json:"matchId"`
		} `json:"metadata"`
		Info struct {
			GameCreation     int64         `json:"gameCreation"`
			GameDuration     int64         `json:"gameDuration"`
			GameEndTimestamp int64         `json:"gameEndTimestamp"`
			QueueId          int           `json:"queueId"`
			Participants     []Participant `json:"participants"`
		} `json:"info"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Match{}, err
	}

	// Old matches lack the end timestamp and give the duration in milliseconds
	duration := raw.Info.GameDuration
	endTimestamp := raw.Info.GameEndTimestamp
	if endTimestamp == 0 {
		duration /= 1000
		endTimestamp = raw.Info.GameCreation + duration*1000
	}

	return Match{
		MatchId:          raw.Metadata.MatchId,
		QueueId:          raw.Info.QueueId,
		GameDuration:     time.Duration(duration) * time.Second,
		GameEndTimestamp: endTimestamp,
		Participants:     raw.Info.Participants,
	}, nil
}

func DecodeTFTMatch(data []byte) (TFTMatch, error) {

	// unmarshal
	var raw struct {
		Metadata struct {
			MatchId string `json:"match_id"`
		} `json:"metadata"`
		Info struct {
			GameDatetime int64            `json:"game_datetime"`
			GameLength   float64          `json:"game_length"`
			QueueId      int              `json:"queue_id"`
			Participants []TFTParticipant `json:"participants"`
		} `json:"info"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return TFTMatch{}, err
	}

	return TFTMatch{
		MatchId:      raw.Metadata.MatchId,
		QueueId:      raw.Info.QueueId,
		GameLength:   time.Duration(raw.Info.GameLength * float64(time.Second)),
		GameDatetime: raw.Info.GameDatetime,
		Participants: raw.Info.Participants,
	}, nil
}
