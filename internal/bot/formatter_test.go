package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"lpwatch/internal/common"
	"lpwatch/internal/rank"
	"lpwatch/internal/recap"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/score"
	"lpwatch/internal/store"
	"lpwatch/internal/tracker"

	"github.com/bwmarrin/discordgo"
)

func TestStage(t *testing.T) {
	tests := map[int]string{
		0:  "-",
		1:  "1-1",
		4:  "1-4",
		5:  "2-1",
		11: "2-7",
		12: "3-1",
		19: "4-1",
		33: "6-1",
	}
	for round, want := range tests {
		if got := Stage(round); got != want {
			t.Errorf("Stage(%d) = %q, want %q", round, got, want)
		}
	}
}

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n        int
		language string
		want     string
	}{
		{1, LANGUAGE_EN, "1st"},
		{2, LANGUAGE_EN, "2nd"},
		{3, LANGUAGE_EN, "3rd"},
		{4, LANGUAGE_EN, "4th"},
		{11, LANGUAGE_EN, "11th"},
		{12, LANGUAGE_EN, "12th"},
		{21, LANGUAGE_EN, "21st"},
		{1, LANGUAGE_FR, "1er"},
		{2, LANGUAGE_FR, "2e"},
		{8, LANGUAGE_FR, "8e"},
	}
	for _, test := range tests {
		if got := Ordinal(test.n, test.language); got != test.want {
			t.Errorf("Ordinal(%d, %s) = %q, want %q", test.n, test.language, got, test.want)
		}
	}
}

func TestTraitName(t *testing.T) {
	tests := map[string]string{
		"Set10_Spellweaver":   "Spellweaver",
		"TFT9_Ionia":          "TFT9_Ionia",
		"TFTSet11_Heavenly":   "Heavenly",
		"Set9_5_Bastion":      "Bastion",
		"Arcana":              "Arcana",
		"TFTSet13_Ambassador": "Ambassador",
	}
	for trait, want := range tests {
		if got := TraitName(trait); got != want {
			t.Errorf("TraitName(%q) = %q, want %q", trait, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(31*time.Minute + 5*time.Second); got != "31:05" {
		t.Errorf("got %q", got)
	}
	if got := FormatHours(3*time.Hour + 7*time.Minute); got != "3h07" {
		t.Errorf("got %q", got)
	}
}

func TestRankChangeLine(t *testing.T) {
	after := rank.Ranked("PLATINUM", "IV", 15)
	if got := RankChangeLine("Faker", 25, after); got != "**Faker** +25 LP • PLATINUM IV • 15 LP" {
		t.Errorf("got %q", got)
	}
	if got := RankChangeLine("Faker", -18, after); !strings.Contains(got, "-18 LP") {
		t.Errorf("got %q", got)
	}
	if got := RankChangeLine("Faker", 0, rank.Unranked()); got != "**Faker** • Unranked" {
		t.Errorf("got %q", got)
	}
}

func TestFailure(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{common.NewError(common.KIND_SERVER_NOT_INITIALIZED, "guild %s", "1"), "not initialized"},
		{common.NewError(common.KIND_PLAYER_ALREADY_EXISTS, "x"), "already tracked"},
		{common.NewError(common.KIND_PLAYER_NOT_FOUND, "x"), "Player not found"},
		{common.NewError(common.KIND_PLAYER_RANK_INFO_NOT_FOUND, "x"), "Player not found"},
		{errors.New("boom"), "contact the developer"},
	}
	for _, test := range tests {
		responses := Failure("lpwatch", test.err)
		if len(responses) != 1 {
			t.Fatalf("got %d responses", len(responses))
		}
		content := responses[0].(ResponseString).string
		if !strings.Contains(content, test.want) {
			t.Errorf("%v: got %q, want it to contain %q", test.err, content, test.want)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	responses := UnknownCommand("lpwatch", 99)
	if len(responses) != 1 {
		t.Fatalf("got %d responses", len(responses))
	}
	if content := responses[0].(ResponseString).string; !strings.Contains(content, "contact the developer") {
		t.Errorf("got %q", content)
	}
}

func fieldNames(embed discordgo.MessageEmbed) []string {
	names := make([]string, len(embed.Fields))
	for i, field := range embed.Fields {
		names[i] = field.Name
	}
	return names
}

func TestLeagueGameEmbed(t *testing.T) {
	result := tracker.GameResult{
		Mode:    store.MODE_LEAGUE,
		Player:  store.Player{GameName: "Faker", TagLine: "KR1"},
		Queue:   riotapi.QUEUE_SOLO,
		LPDelta: 25,
		Before:  rank.Ranked("GOLD", "I", 90),
		After:   rank.Ranked("PLATINUM", "IV", 15),
		League: &tracker.LeagueResult{
			Game: store.LeagueGame{
				Champion: "Ahri",
				Win:      true,
				Kills:    10, Deaths: 2, Assists: 8,
				CS:       240,
				Damage:   30000,
				Vision:   30,
				Pings:    4,
				Score:    80,
				Duration: 30 * time.Minute,
				EndTime:  time.Date(2024, 5, 14, 20, 0, 0, 0, time.UTC),
			},
			TeamRank: score.MVP,
		},
	}

	embed := GameEmbed(result, LANGUAGE_EN, "https://example.com/Ahri.png")
	want := []string{"KDA", "Duration", "Score", "CS/min", "Pings", "Damage", "Vision/min", "Team rank", "Queue"}
	if got := fieldNames(embed); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got fields %v, want %v", got, want)
	}
	if embed.Color != colorWin {
		t.Errorf("got color %x", embed.Color)
	}
	if embed.Fields[0].Value != "10/2/8" || embed.Fields[3].Value != "8.0" || embed.Fields[6].Value != "1.00" {
		t.Errorf("got values %q %q %q", embed.Fields[0].Value, embed.Fields[3].Value, embed.Fields[6].Value)
	}
	if embed.Fields[7].Value != "MVP" {
		t.Errorf("got team rank %q", embed.Fields[7].Value)
	}
	if embed.Description != "**Faker** +25 LP • PLATINUM IV • 15 LP" {
		t.Errorf("got description %q", embed.Description)
	}
	if embed.Footer == nil || embed.Footer.Text != textsFor(LANGUAGE_EN).flavorPromotion {
		t.Errorf("expected the promotion flavor text")
	}
	if embed.Thumbnail == nil || embed.Thumbnail.URL != "https://example.com/Ahri.png" {
		t.Errorf("expected the champion icon")
	}

	// Same contract in french
	embed = GameEmbed(result, LANGUAGE_FR, "")
	if embed.Fields[1].Name != "Durée" || embed.Thumbnail != nil {
		t.Errorf("got %q", embed.Fields[1].Name)
	}
}

func TestTFTGameEmbed(t *testing.T) {
	result := tracker.GameResult{
		Mode:    store.MODE_TFT,
		Player:  store.Player{GameName: "Faker", TagLine: "KR1"},
		Queue:   riotapi.QUEUE_TFT,
		LPDelta: -20,
		Before:  rank.Ranked("GOLD", "II", 20),
		After:   rank.Ranked("GOLD", "II", 0),
		TFT: &tracker.TFTResult{
			Game: store.TFTGame{
				Placement:       8,
				Level:           7,
				Traits:          []string{"TFTSet11_Heavenly", "Set11_Fated"},
				DamageToPlayers: 12,
				Duration:        25 * time.Minute,
			},
			LastRound:         19,
			PlayersEliminated: 0,
			GoldLeft:          3,
		},
	}

	embed := GameEmbed(result, LANGUAGE_EN, "")
	want := []string{"Placement", "Level", "Round", "Duration", "Players eliminated", "Gold left", "Main traits", "Damage to players", "Queue"}
	if got := fieldNames(embed); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got fields %v, want %v", got, want)
	}
	if embed.Fields[0].Value != "8th" || embed.Fields[2].Value != "4-1" || embed.Fields[6].Value != "Heavenly, Fated" {
		t.Errorf("got values %q %q %q", embed.Fields[0].Value, embed.Fields[2].Value, embed.Fields[6].Value)
	}
	if embed.Color != colorLoss {
		t.Errorf("got color %x", embed.Color)
	}
	if embed.Footer == nil || embed.Footer.Text != textsFor(LANGUAGE_EN).flavorLast {
		t.Errorf("expected the last place flavor text")
	}
}

func TestRecapEmbeds(t *testing.T) {
	players := []store.Player{{GameName: "Faker"}, {GameName: "Caps"}}
	entries := []recap.DailyEntry{
		{Player: players[0], Queue: riotapi.QUEUE_SOLO, From: rank.Ranked("GOLD", "I", 90), To: rank.Ranked("PLATINUM", "IV", 15), LPDelta: 25, Wins: 1},
		{Player: players[1], Queue: riotapi.QUEUE_SOLO, From: rank.Ranked("GOLD", "I", 40), To: rank.Ranked("GOLD", "I", 20), LPDelta: -20, Losses: 1},
	}
	embed := DailyRecapEmbed(riotapi.QUEUE_SOLO, entries, LANGUAGE_EN)
	if len(embed.Fields) != 2 || embed.Fields[0].Name != "Faker +25 LP" || embed.Fields[1].Name != "Caps -20 LP" {
		t.Errorf("got %v", fieldNames(embed))
	}

	summaries := []recap.TFTSummary{
		{Summary: recap.Summary{Player: players[0], Games: 2, Wins: 1, Losses: 1, Winrate: 50, LPDelta: 30}, AvgPlacement: 3.5, AvgLevel: 8},
		{Summary: recap.Summary{Player: players[1], Games: 1, Losses: 1, LPDelta: -10}, AvgPlacement: 7, AvgLevel: 7},
	}
	month := time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local)
	embed = TFTMonthlyEmbed(riotapi.QUEUE_TFT, month, summaries, LANGUAGE_EN)
	if !strings.Contains(embed.Title, "04/2024") {
		t.Errorf("got title %q", embed.Title)
	}
	if embed.Fields[0].Name != "🥇 1. Faker (+30 LP)" || !strings.Contains(embed.Fields[0].Value, "Average placement 3.50") {
		t.Errorf("got %q: %q", embed.Fields[0].Name, embed.Fields[0].Value)
	}

	// Embeds never go past the field limit
	many := make([]recap.DailyEntry, maxEmbedFields+5)
	if embed := DailyRecapEmbed(riotapi.QUEUE_SOLO, many, LANGUAGE_EN); len(embed.Fields) != maxEmbedFields {
		t.Errorf("got %d fields", len(embed.Fields))
	}
}
