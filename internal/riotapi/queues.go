package riotapi

type QueueType string

const (
	QUEUE_SOLO           QueueType = "RANKED_SOLO_5x5"
	QUEUE_FLEX           QueueType = "RANKED_FLEX_SR"
	QUEUE_NORMAL_DRAFT   QueueType = "NORMAL_DRAFT"
	QUEUE_ARAM           QueueType = "ARAM"
	QUEUE_ARENA          QueueType = "ARENA"
	QUEUE_TFT            QueueType = "RANKED_TFT"
	QUEUE_TFT_DOUBLE_UP  QueueType = "RANKED_TFT_DOUBLE_UP"
	QUEUE_TFT_HYPER_ROLL QueueType = "TFT_HYPER_ROLL"
	QUEUE_TFT_EVENT      QueueType = "TFT_EVENT"
	QUEUE_UNKNOWN        QueueType = "UNKNOWN"
)

// Queue ids as they appear in match details
var leagueQueueIds = map[int]QueueType{
	420:  QUEUE_SOLO,
	440:  QUEUE_FLEX,
	400:  QUEUE_NORMAL_DRAFT,
	450:  QUEUE_ARAM,
	1700: QUEUE_ARENA,
}

var tftQueueIds = map[int]QueueType{
	1100: QUEUE_TFT,
	1160: QUEUE_TFT_DOUBLE_UP,
	1130: QUEUE_TFT_HYPER_ROLL,
	1150: QUEUE_TFT_EVENT,
	6000: QUEUE_TFT_EVENT,
	6110: QUEUE_TFT_EVENT,
}

var queueNames = map[QueueType]string{
	QUEUE_SOLO:           "Ranked Solo/Duo",
	QUEUE_FLEX:           "Ranked Flex",
	QUEUE_NORMAL_DRAFT:   "Normal Draft",
	QUEUE_ARAM:           "ARAM",
	QUEUE_ARENA:          "Arena",
	QUEUE_TFT:            "Ranked TFT",
	QUEUE_TFT_DOUBLE_UP:  "Double Up",
	QUEUE_TFT_HYPER_ROLL: "Hyper Roll",
	QUEUE_TFT_EVENT:      "TFT Event",
	QUEUE_UNKNOWN:        "Other",
}

func LeagueQueue(queueId int) QueueType {
	if queue, ok := leagueQueueIds[queueId]; ok {
		return queue
	}
	return QUEUE_UNKNOWN
}

func TFTQueue(queueId int) QueueType {
	if queue, ok := tftQueueIds[queueId]; ok {
		return queue
	}
	return QUEUE_UNKNOWN
}

func (queue QueueType) Name() string {
	if name, ok := queueNames[queue]; ok {
		return name
	}
	return string(queue)
}

// Queues with a rank entry attached
func (queue QueueType) IsRanked() bool {
	switch queue {
	case QUEUE_SOLO, QUEUE_FLEX, QUEUE_TFT, QUEUE_TFT_DOUBLE_UP:
		return true
	}
	return false
}

func (queue QueueType) IsTFT() bool {
	switch queue {
	case QUEUE_TFT, QUEUE_TFT_DOUBLE_UP, QUEUE_TFT_HYPER_ROLL, QUEUE_TFT_EVENT:
		return true
	}
	return false
}
