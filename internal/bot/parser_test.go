package bot

import (
	"testing"

	"lpwatch/internal/riotapi"
)

func TestParseRejects(t *testing.T) {
	tests := []struct {
		message string
		parseid int
	}{
		{"hello there", PARSEID_NO_BOT_PREFIX},
		{"lpwatch", PARSEID_NO_COMMAND},
		{"lpwatch   ", PARSEID_NO_COMMAND},
		{"lpwatch dance", PARSEID_COMMAND_NOT_RECOGNISED},
		{"lpwatch add", PARSEID_NO_INPUT},
		{"lpwatch add Faker#KR1", PARSEID_NO_INPUT},
		{"lpwatch add Faker#KR1 mars", PARSEID_NOT_A_REGION},
		{"lpwatch add Faker euw", PARSEID_NOT_A_RIOT_ID},
		{"lpwatch add #KR1 euw", PARSEID_NOT_A_RIOT_ID},
		{"lpwatch add Faker# euw", PARSEID_NOT_A_RIOT_ID},
		{"lpwatch remove", PARSEID_NO_INPUT},
		{"lpwatch remove Faker", PARSEID_NOT_A_RIOT_ID},
		{"lpwatch channel", PARSEID_NO_INPUT},
		{"lpwatch toggle", PARSEID_NO_INPUT},
		{"lpwatch toggle aram", PARSEID_NOT_AN_OPTION},
		{"lpwatch language de", PARSEID_NOT_A_LANGUAGE},
		{"lpwatch init de", PARSEID_NOT_A_LANGUAGE},
	}
	for _, test := range tests {
		result := Parse("lpwatch", test.message)
		if result.parseid != test.parseid {
			t.Errorf("%q: got parse id %d, want %d", test.message, result.parseid, test.parseid)
		}
		if result.parseid != PARSEID_OK && result.parseid != PARSEID_NO_BOT_PREFIX && result.errorMessage == "" {
			t.Errorf("%q: missing error message", test.message)
		}
	}
}

func TestParseAdd(t *testing.T) {
	result := Parse("lpwatch", "lpwatch add Hide on bush#KR1 kr")
	if result.parseid != PARSEID_OK || result.command != COMMAND_ADD {
		t.Fatalf("got %+v", result)
	}
	arguments := result.arguments.(PlayerArguments)
	want := riotapi.RiotId{GameName: "Hide on bush", TagLine: "KR1"}
	if arguments.RiotId != want || arguments.Region != "kr" {
		t.Errorf("got %+v", arguments)
	}

	// Aliases resolve to platform ids
	result = Parse("lpwatch", "lpwatch rank Faker#T1 EUW")
	if result.command != COMMAND_RANK || result.arguments.(PlayerArguments).Region != "euw1" {
		t.Errorf("got %+v", result)
	}
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		message   string
		command   int
		arguments interface{}
	}{
		{"lpwatch init", COMMAND_INIT, LANGUAGE_EN},
		{"lpwatch INIT FR", COMMAND_INIT, LANGUAGE_FR},
		{"lpwatch channel ranked games", COMMAND_CHANNEL, "ranked games"},
		{"lpwatch remove Faker # KR1", COMMAND_REMOVE, riotapi.RiotId{GameName: "Faker", TagLine: "KR1"}},
		{"lpwatch toggle TFT", COMMAND_TOGGLE, OPTION_TFT},
		{"lpwatch toggle flex", COMMAND_TOGGLE, OPTION_FLEX},
		{"lpwatch language fr", COMMAND_LANGUAGE, LANGUAGE_FR},
		{"lpwatch status", COMMAND_STATUS, nil},
		{"lpwatch help", COMMAND_HELP, nil},
	}
	for _, test := range tests {
		result := Parse("lpwatch", test.message)
		if result.parseid != PARSEID_OK {
			t.Errorf("%q: got parse id %d: %s", test.message, result.parseid, result.errorMessage)
			continue
		}
		if result.command != test.command {
			t.Errorf("%q: got command %d, want %d", test.message, result.command, test.command)
		}
		if result.arguments != test.arguments {
			t.Errorf("%q: got arguments %v, want %v", test.message, result.arguments, test.arguments)
		}
	}
}
