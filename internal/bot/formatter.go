package bot

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"lpwatch/internal/common"
	"lpwatch/internal/rank"
	"lpwatch/internal/recap"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/store"
	"lpwatch/internal/tracker"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Use "teal" color for the bot
const color int = 0x008080

const (
	colorWin   int = 0x2ECC71
	colorLoss  int = 0xE74C3C
	colorFirst int = 0xF1C40F
)

// Discord refuses embeds with more fields than this
const maxEmbedFields = 25

func Welcome(prefix string, channelName string) []Response {

	content := fmt.Sprintf("Hi, I will be sending messages to channel %s\n", channelName)
	content += fmt.Sprintf("You can change this anytime by typing \n> `%s channel <channel_name>`", prefix)
	return []Response{ResponseString{content}}
}

func InputNotValid(errorMessage string) []Response {

	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func HelpMessage(prefix string) []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	commands := []struct{ usage, description string }{
		{"init [en|fr]", "Start tracking players in this server, sending messages to this channel"},
		{"channel <new_channel_name>", "Change the channel the bot sends messages to"},
		{"add <riot_id> <region>", "Track a player: a message is sent after each of their ranked games"},
		{"remove <riot_id>", "Stop tracking a player"},
		{"rank <riot_id> <region>", "Print the current rank of the provided player"},
		{"toggle flex|tft", "Turn tracking of ranked flex or TFT games on or off"},
		{"language en|fr", "Change the language of the notifications"},
		{"status", "Print the players currently tracked, and the configuration of this server"},
		{"help", "Print the usage of the different commands"},
	}
	for _, command := range commands {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("`%s %s`", prefix, command.usage),
			Value:  command.description,
			Inline: false,
		})
	}
	return []Response{ResponseEmbed{embed}}
}

// Typed failures map to a handful of messages, everything else asks for help
func Failure(prefix string, err error) []Response {

	var content string
	switch common.KindOf(err) {
	case common.KIND_SERVER_NOT_INITIALIZED:
		content = fmt.Sprintf("This server is not initialized yet, type `%s init` first", prefix)
	case common.KIND_PLAYER_ALREADY_EXISTS:
		content = "This player is already tracked in this server"
	case common.KIND_PLAYER_NOT_FOUND, common.KIND_LAST_MATCH_NOT_FOUND, common.KIND_GAME_DETAIL_NOT_FOUND, common.KIND_PLAYER_RANK_INFO_NOT_FOUND:
		content = "Player not found"
	default:
		content = "Something went wrong, please contact the developer"
	}
	return []Response{ResponseString{content}}
}

// A parsed command without a handler is a bug, the user only gets the generic failure
func UnknownCommand(prefix string, command int) []Response {
	err := fmt.Errorf("command %d is not one of the possible ones", command)
	log.Error().Msg(err.Error())
	return Failure(prefix, err)
}

func ServerInitialized(prefix string, channelName string, language string) []Response {
	content := fmt.Sprintf("Server initialized (language `%s`)\n", language)
	return append([]Response{ResponseString{content}}, Welcome(prefix, channelName)...)
}

func PlayerAdded(riotid riotapi.RiotId, region string) Response {
	return ResponseString{fmt.Sprintf("Player `%s` (%s) is now tracked", riotid, region)}
}

func PlayerRemoved(riotid riotapi.RiotId) []Response {
	return []Response{ResponseString{fmt.Sprintf("Player `%s` is not tracked anymore", riotid)}}
}

func PlayerRank(riotid riotapi.RiotId, leagues []riotapi.League) Response {

	if len(leagues) == 0 {
		return ResponseString{fmt.Sprintf("Player `%s` is not ranked", riotid)}
	}
	embed := discordgo.MessageEmbed{Title: fmt.Sprintf("Current rank of player `%s`", riotid), Color: color}
	for _, league := range leagues {
		name := fmt.Sprintf("**%s**", league.QueueType.Name())
		value := LeagueMessageValue(league)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: false})
	}
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: riotapi.Emblem(leagues[0].Tier)}
	return ResponseEmbed{embed}
}

func LeagueMessageValue(league riotapi.League) string {
	snapshot := rank.Ranked(league.Tier, league.Rank, league.Lps)
	return fmt.Sprintf("%s. WR %d%% (%dW/%dL)", snapshot, int(league.Winrate), league.Wins, league.Losses)
}

func ChannelDoesNotExist(channelName string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Channel `%s` does not exist in this server", channelName)}}
}

func ChannelChanged(channelName string) []Response {
	return []Response{ResponseString{fmt.Sprintf("From now on, I will be sending messages to `%s`", channelName)}}
}

func ToggleChanged(option string, enabled bool) []Response {
	state := "off"
	if enabled {
		state = "on"
	}
	return []Response{ResponseString{fmt.Sprintf("Tracking of `%s` games is now %s", option, state)}}
}

func LanguageChanged(language string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Notifications will now be sent in `%s`", language)}}
}

func StatusMessage(server store.Server, riotids []riotapi.RiotId, channelName string) []Response {

	embed := discordgo.MessageEmbed{Title: "Configuration for this server", Color: color}

	// Players
	value := "None"
	if len(riotids) > 0 {
		names := make([]string, len(riotids))
		for i := range riotids {
			names[i] = riotids[i].String()
		}
		value = strings.Join(names, "\n")
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Players tracked:", Value: value, Inline: false})

	// Channel name
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Channel for notifications:", Value: channelName, Inline: false})

	// Toggles
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Tracking:",
		Value:  fmt.Sprintf("Flex %s, TFT %s, language `%s`", onOff(server.FlexEnabled), onOff(server.TFTEnabled), server.Language),
		Inline: false,
	})

	return []Response{ResponseEmbed{embed}}
}

// Per game notifications

func GameEmbed(result tracker.GameResult, language string, championIcon string) discordgo.MessageEmbed {
	if result.TFT != nil {
		return TFTGameEmbed(result, language)
	}
	return LeagueGameEmbed(result, language, championIcon)
}

func LeagueGameEmbed(result tracker.GameResult, language string, championIcon string) discordgo.MessageEmbed {

	t := textsFor(language)
	game := result.League.Game
	minutes := game.Duration.Minutes()

	outcome, embedColor := t.defeat, colorLoss
	if game.Win {
		outcome, embedColor = t.victory, colorWin
	}

	embed := discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s - %s", outcome, game.Champion),
		Author:      &discordgo.MessageEmbedAuthor{Name: result.Player.RiotId().String()},
		Description: RankChangeLine(result.Player.GameName, result.LPDelta, result.After),
		Color:       embedColor,
		Timestamp:   game.EndTime.Format(time.RFC3339),
	}
	if championIcon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: championIcon}
	}

	addField(&embed, t.kda, fmt.Sprintf("%d/%d/%d", game.Kills, game.Deaths, game.Assists))
	addField(&embed, t.duration, FormatDuration(game.Duration))
	addField(&embed, t.score, fmt.Sprintf("%d/100", game.Score))
	addField(&embed, t.csPerMinute, fmt.Sprintf("%.1f", perMinute(game.CS, minutes)))
	addField(&embed, t.pings, fmt.Sprint(game.Pings))
	addField(&embed, t.damage, fmt.Sprintf("%d (%.0f/min)", game.Damage, perMinute(game.Damage, minutes)))
	addField(&embed, t.visionPerMinute, fmt.Sprintf("%.2f", perMinute(game.Vision, minutes)))
	addField(&embed, t.teamRank, result.League.TeamRank.Label(language))
	addField(&embed, t.queue, result.Queue.Name())

	if flavor := FlavorText(result, language); flavor != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: flavor}
	}
	return embed
}

func TFTGameEmbed(result tracker.GameResult, language string) discordgo.MessageEmbed {

	t := textsFor(language)
	game := result.TFT.Game

	embed := discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s - %s", Medal(game.Placement), Ordinal(game.Placement, language), result.Queue.Name()),
		Author:      &discordgo.MessageEmbedAuthor{Name: result.Player.RiotId().String()},
		Description: RankChangeLine(result.Player.GameName, result.LPDelta, result.After),
		Color:       placementColor(game.Placement),
		Timestamp:   game.EndTime.Format(time.RFC3339),
	}
	if result.After.IsRanked() {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: riotapi.Emblem(result.After.Tier)}
	}

	addField(&embed, t.placement, strings.TrimSpace(fmt.Sprintf("%s %s", Ordinal(game.Placement, language), Medal(game.Placement))))
	addField(&embed, t.level, fmt.Sprint(game.Level))
	addField(&embed, t.round, Stage(result.TFT.LastRound))
	addField(&embed, t.duration, FormatDuration(game.Duration))
	addField(&embed, t.playersEliminated, fmt.Sprint(result.TFT.PlayersEliminated))
	addField(&embed, t.goldLeft, fmt.Sprint(result.TFT.GoldLeft))
	if len(game.Traits) > 0 {
		names := make([]string, len(game.Traits))
		for i, trait := range game.Traits {
			names[i] = TraitName(trait)
		}
		addField(&embed, t.traits, strings.Join(names, ", "))
	}
	addField(&embed, t.damageToPlayers, fmt.Sprint(game.DamageToPlayers))
	addField(&embed, t.queue, result.Queue.Name())

	if flavor := FlavorText(result, language); flavor != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: flavor}
	}
	return embed
}

// "**Faker** +25 LP • PLATINUM IV • 15 LP"
func RankChangeLine(name string, lpDelta int, after rank.Snapshot) string {
	if !after.IsRanked() {
		return fmt.Sprintf("**%s** • %s", name, after)
	}
	return fmt.Sprintf("**%s** %s • %s • %d LP", name, SignedLP(lpDelta), after.Title(), after.LP)
}

func SignedLP(delta int) string {
	return fmt.Sprintf("%+d LP", delta)
}

// Optional closing line, empty when the game was unremarkable
func FlavorText(result tracker.GameResult, language string) string {

	t := textsFor(language)
	if result.Before.IsRanked() && result.After.IsRanked() && result.Before.Tier != result.After.Tier && result.LPDelta > 0 {
		return t.flavorPromotion
	}
	if result.TFT != nil {
		switch result.TFT.Game.Placement {
		case 1:
			return t.flavorFirst
		case 8:
			return t.flavorLast
		}
		return ""
	}
	if result.League != nil {
		game := result.League.Game
		if game.Win && game.Score >= 85 {
			return t.flavorCarry
		}
		if game.Deaths >= 10 {
			return t.flavorFeed
		}
	}
	return ""
}

// Recaps

func DailyRecapEmbed(queue riotapi.QueueType, entries []recap.DailyEntry, language string) discordgo.MessageEmbed {

	t := textsFor(language)
	embed := discordgo.MessageEmbed{Title: fmt.Sprintf("%s - %s", t.dailyTitle, queue.Name()), Color: color}
	for _, entry := range entries {
		if len(embed.Fields) == maxEmbedFields {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s %s", entry.Player.GameName, SignedLP(entry.LPDelta)),
			Value:  fmt.Sprintf("%dW %dL • %s → %s", entry.Wins, entry.Losses, entry.From, entry.To),
			Inline: false,
		})
	}
	return embed
}

func LeagueMonthlyEmbed(queue riotapi.QueueType, month time.Time, summaries []recap.LeagueSummary, language string) discordgo.MessageEmbed {

	t := textsFor(language)
	embed := discordgo.MessageEmbed{Title: fmt.Sprintf("%s %s - %s", t.monthlyTitle, month.Format("01/2006"), queue.Name()), Color: color}
	for i, summary := range summaries {
		if len(embed.Fields) == maxEmbedFields {
			break
		}
		value := summaryLine(t, summary.Summary) + "\n"
		value += fmt.Sprintf("%s %.1f/%.1f/%.1f • %s %.1f\n", t.averageKDA, summary.AvgKills, summary.AvgDeaths, summary.AvgAssists, t.csPerMinute, summary.CSPerMinute)
		value += fmt.Sprintf("%s %.0f • %s %.2f", t.averageDamage, summary.AvgDamage, t.visionPerMinute, summary.VisionPerMinute)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: podiumName(i, summary.Summary), Value: value, Inline: false})
	}
	return embed
}

func TFTMonthlyEmbed(queue riotapi.QueueType, month time.Time, summaries []recap.TFTSummary, language string) discordgo.MessageEmbed {

	t := textsFor(language)
	embed := discordgo.MessageEmbed{Title: fmt.Sprintf("%s %s - %s", t.monthlyTitle, month.Format("01/2006"), queue.Name()), Color: color}
	for i, summary := range summaries {
		if len(embed.Fields) == maxEmbedFields {
			break
		}
		value := summaryLine(t, summary.Summary) + "\n"
		value += fmt.Sprintf("%s %.2f • %s %.1f", t.averagePlacement, summary.AvgPlacement, t.averageLevel, summary.AvgLevel)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: podiumName(i, summary.Summary), Value: value, Inline: false})
	}
	return embed
}

func summaryLine(t texts, summary recap.Summary) string {
	return fmt.Sprintf("%s %d (%dW/%dL) • %s %.0f%% • %s %s",
		t.games, summary.Games, summary.Wins, summary.Losses, t.winrate, summary.Winrate, t.timePlayed, FormatHours(summary.TimePlayed))
}

func podiumName(position int, summary recap.Summary) string {
	name := fmt.Sprintf("%d. %s (%s)", position+1, summary.Player.GameName, SignedLP(summary.LPDelta))
	if medal := Medal(position + 1); medal != "" && position < 3 {
		name = medal + " " + name
	}
	return name
}

// Helpers

func addField(embed *discordgo.MessageEmbed, name string, value string) {
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true})
}

func perMinute(value int, minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	return float64(value) / minutes
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func placementColor(placement int) int {
	switch {
	case placement == 1:
		return colorFirst
	case placement >= 2 && placement <= 4:
		return colorWin
	default:
		return colorLoss
	}
}

// "31:05"
func FormatDuration(d time.Duration) string {
	seconds := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// "12h05"
func FormatHours(d time.Duration) string {
	minutes := int64(d.Round(time.Minute) / time.Minute)
	return fmt.Sprintf("%dh%02d", minutes/60, minutes%60)
}

func Ordinal(n int, language string) string {
	if language == LANGUAGE_FR {
		if n == 1 {
			return "1er"
		}
		return fmt.Sprintf("%de", n)
	}
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func Medal(placement int) string {
	switch placement {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	case 4:
		return "🏅"
	}
	return ""
}

// Rounds are counted from the start of the game: stage one has four of
// them, every later stage seven
func Stage(round int) string {
	if round <= 0 {
		return "-"
	}
	if round <= 4 {
		return fmt.Sprintf("1-%d", round)
	}
	return fmt.Sprintf("%d-%d", (round-5)/7+2, (round-5)%7+1)
}

var setPrefix = regexp.MustCompile(`^(TFT)?Set\d+(_\d+)?_`)

// "Set10_Spellweaver" -> "Spellweaver"
func TraitName(trait string) string {
	return setPrefix.ReplaceAllString(trait, "")
}
