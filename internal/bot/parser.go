package bot

import (
	"fmt"
	"strings"

	"lpwatch/internal/riotapi"

	"github.com/rs/zerolog/log"
)

const (
	COMMAND_INIT = iota
	COMMAND_CHANNEL
	COMMAND_ADD
	COMMAND_REMOVE
	COMMAND_RANK
	COMMAND_TOGGLE
	COMMAND_LANGUAGE
	COMMAND_STATUS
	COMMAND_HELP
)

const (
	PARSEID_OK = iota
	PARSEID_NO_BOT_PREFIX
	PARSEID_NO_COMMAND
	PARSEID_COMMAND_NOT_RECOGNISED
	PARSEID_NO_INPUT
	PARSEID_NOT_A_RIOT_ID
	PARSEID_NOT_A_REGION
	PARSEID_NOT_AN_OPTION
	PARSEID_NOT_A_LANGUAGE
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:             "No command provided",
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_NO_INPUT:               "Command `%s` requires an argument",
	PARSEID_NOT_A_RIOT_ID:          "Input `%s` is not a riot id",
	PARSEID_NOT_A_REGION:           "Input `%s` is not a region",
	PARSEID_NOT_AN_OPTION:          "Input `%s` is not one of `flex`, `tft`",
	PARSEID_NOT_A_LANGUAGE:         "Input `%s` is not one of `en`, `fr`",
}

const (
	OPTION_FLEX = "flex"
	OPTION_TFT  = "tft"
)

// Riot id and region of the player a command refers to
type PlayerArguments struct {
	RiotId riotapi.RiotId
	Region string
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	arguments    interface{}
}

func Parse(prefix string, message string) ParseResult {

	noInput := func(command int, commandString string) ParseResult {
		parseid := PARSEID_NO_INPUT
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}
	invalid := func(command int, parseid int, input string) ParseResult {
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], input)}
	}

	// The message has to start with the bot prefix
	if !strings.HasPrefix(message, prefix) {
		log.Debug().Msg("Reject message not intended for the bot")
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}

	// Get the command if valid
	words := strings.Fields(message[len(prefix):])
	if len(words) == 0 {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	commandString := strings.ToLower(words[0])
	words = words[1:]

	// Match the command
	switch commandString {
	case "init":
		// lpwatch init [language]
		command := COMMAND_INIT
		if len(words) == 0 {
			return ParseResult{command: command, parseid: PARSEID_OK, arguments: LANGUAGE_EN}
		}
		if !IsLanguage(words[0]) {
			return invalid(command, PARSEID_NOT_A_LANGUAGE, words[0])
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: strings.ToLower(words[0])}
	case "channel":
		// lpwatch channel <channel_name>
		command := COMMAND_CHANNEL
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: strings.Join(words, " ")}
	case "add", "rank":
		// lpwatch add <riot_id> <region>
		// lpwatch rank <riot_id> <region>
		command := COMMAND_ADD
		if commandString == "rank" {
			command = COMMAND_RANK
		}
		if len(words) < 2 {
			return noInput(command, commandString)
		}
		region, ok := riotapi.ParseRegion(words[len(words)-1])
		if !ok {
			return invalid(command, PARSEID_NOT_A_REGION, words[len(words)-1])
		}
		result := parseRiotId(command, words[:len(words)-1])
		if result.parseid != PARSEID_OK {
			return result
		}
		result.arguments = PlayerArguments{RiotId: result.arguments.(riotapi.RiotId), Region: region}
		return result
	case "remove":
		// lpwatch remove <riot_id>
		command := COMMAND_REMOVE
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		return parseRiotId(command, words)
	case "toggle":
		// lpwatch toggle flex|tft
		command := COMMAND_TOGGLE
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		option := strings.ToLower(words[0])
		if option != OPTION_FLEX && option != OPTION_TFT {
			return invalid(command, PARSEID_NOT_AN_OPTION, words[0])
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: option}
	case "language":
		// lpwatch language en|fr
		command := COMMAND_LANGUAGE
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		if !IsLanguage(words[0]) {
			return invalid(command, PARSEID_NOT_A_LANGUAGE, words[0])
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: strings.ToLower(words[0])}
	case "status":
		// lpwatch status
		return ParseResult{command: COMMAND_STATUS, parseid: PARSEID_OK}
	case "help":
		// lpwatch help
		return ParseResult{command: COMMAND_HELP, parseid: PARSEID_OK}
	default:
		return invalid(0, PARSEID_COMMAND_NOT_RECOGNISED, commandString)
	}
}

// Game names may contain spaces, tag lines may not
func parseRiotId(command int, words []string) ParseResult {

	// Check if the hashtag is present in the input
	word := strings.Join(words, " ")
	hashtagPos := strings.Index(word, "#")
	if hashtagPos <= 0 || hashtagPos == len(word)-1 {
		parseid := PARSEID_NOT_A_RIOT_ID
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], word)}
	}

	// Prepare syntactically valid riot id
	gameName := strings.TrimSpace(word[:hashtagPos])
	tagLine := strings.ReplaceAll(word[hashtagPos+1:], " ", "")
	return ParseResult{parseid: PARSEID_OK, command: command, arguments: riotapi.RiotId{GameName: gameName, TagLine: tagLine}}
}
