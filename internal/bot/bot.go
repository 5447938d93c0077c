// Package bot connects the tracker and the recaps to Discord: it answers the
// commands typed in the servers and delivers the notifications.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lpwatch/internal/common"
	"lpwatch/internal/config"
	"lpwatch/internal/rank"
	"lpwatch/internal/recap"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/store"
	"lpwatch/internal/tracker"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Time given to a command to reach riot and the database
const commandTimeout = 2 * time.Minute

type Bot struct {
	config  *config.Config
	store   store.Store
	riotapi *riotapi.RiotApi
	engine  *tracker.Engine
	runner  *recap.Runner
	discord *discordgo.Session
}

func New(cfg *config.Config, s store.Store, api *riotapi.RiotApi) (*Bot, error) {

	discord, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	bot := &Bot{config: cfg, store: s, riotapi: api, discord: discord}
	pipeline := tracker.NewPipeline(s)
	bot.engine = tracker.NewEngine(s, bot, tracker.NewLeagueProcessor(api, pipeline), tracker.NewTFTProcessor(api, pipeline))
	bot.runner = recap.NewRunner(s, bot)

	return bot, nil
}

func (bot *Bot) Open() error {
	if err := bot.discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	return nil
}

func (bot *Bot) Close() {
	if err := bot.discord.Close(); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not close discord session: %v", err))
	}
}

func (bot *Bot) Runner() *recap.Runner {
	return bot.runner
}

// Listen to commands and poll until the context is cancelled
func (bot *Bot) Run(ctx context.Context) error {

	// Event handler
	bot.discord.AddHandler(bot.Receive)

	// Open session
	if err := bot.Open(); err != nil {
		return err
	}
	defer bot.Close()

	log.Info().Msg("Starting main loop")
	bot.loop(ctx)
	log.Info().Msg("Main loop stopped")
	return nil
}

// Polling, housekeeping and recaps all run from here, one after the other
func (bot *Bot) loop(ctx context.Context) {

	now := time.Now()
	housekeeping := common.NewTimedExecutor(bot.config.HousekeepingInterval, func() { bot.housekeeping(ctx) })
	daily := common.NewSchedule(now, recap.NextCutoff, func(time.Time) {
		if err := bot.runner.Daily(ctx); err != nil {
			log.Error().Msg(fmt.Sprintf("Daily recap failed: %v", err))
		}
	})
	monthly := common.NewSchedule(now, recap.NextMonth, func(now time.Time) {
		if err := bot.runner.Monthly(ctx, now); err != nil {
			log.Error().Msg(fmt.Sprintf("Monthly recap failed: %v", err))
		}
	})
	log.Info().Msg(fmt.Sprintf("Next daily recap at %s, next monthly recap at %s", daily.Due().Format(time.RFC3339), monthly.Due().Format(time.RFC3339)))

	ticker := time.NewTicker(bot.config.PollInterval)
	defer ticker.Stop()
	for {
		housekeeping.Execute()

		stopwatch := common.NewStopwatch(0)
		stopwatch.Start()
		if err := bot.engine.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Msg(fmt.Sprintf("Poll cycle failed: %v", err))
		}
		log.Debug().Msg(fmt.Sprintf("Poll cycle took %v", stopwatch.TimeStopped()))

		now := time.Now()
		daily.Execute(now)
		monthly.Execute(now)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Refresh renamed players and drop old games
func (bot *Bot) housekeeping(ctx context.Context) {

	log.Info().Msg("Starting housekeeping")
	players, err := bot.store.ListPlayers(ctx)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not list players for housekeeping: %v", err))
		return
	}

	puuids := make(map[riotapi.Puuid]string, len(players))
	for _, player := range players {
		puuids[player.Puuid] = player.Region
	}
	changed := bot.riotapi.Housekeeping(ctx, puuids)
	for _, player := range players {
		riotid, ok := changed[player.Puuid]
		if !ok || riotid == player.RiotId() {
			continue
		}
		if err := bot.store.UpdatePlayerName(ctx, player.Id, riotid.GameName, riotid.TagLine); err != nil {
			log.Error().Msg(fmt.Sprintf("Could not rename player %s to %s: %v", player.RiotId(), riotid, err))
		}
	}

	if bot.config.RetentionDays > 0 {
		purged, err := bot.store.PurgeGames(ctx, time.Now().Add(-bot.config.Retention()))
		if err != nil {
			log.Error().Msg(fmt.Sprintf("Could not purge old games: %v", err))
			return
		}
		log.Info().Msg(fmt.Sprintf("Purged %d games older than %d days", purged, bot.config.RetentionDays))
	}
}

func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {

	// Reject my own messages
	if message.Author == nil || message.Author.ID == discord.State.User.ID {
		return
	}

	// Parse the input provided and call the appropriate function
	prefix := bot.config.CommandPrefix
	parseResult := Parse(prefix, message.Content)
	if parseResult.parseid == PARSEID_NO_BOT_PREFIX {
		return
	}

	// Ignore messages from private channels
	if message.GuildID == "" {
		log.Info().Msg("Ignoring private message")
		bot.sendResponses(message.ChannelID, []Response{ResponseString{"For the time being, I am ignoring private messages"}})
		return
	}

	log.Info().Msg(fmt.Sprintf("Received message: %s", message.Content))
	if parseResult.parseid != PARSEID_OK {
		// The command is invalid input, so it contains an error message
		log.Info().Msg(fmt.Sprintf("Wrong input: '%s'. Reason: %s", message.Content, parseResult.errorMessage))
		bot.sendResponses(message.ChannelID, InputNotValid(parseResult.errorMessage))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var responses []Response
	switch parseResult.command {
	case COMMAND_INIT:
		responses = bot.initialise(ctx, message.GuildID, message.ChannelID, parseResult.arguments.(string))
	case COMMAND_CHANNEL:
		responses = bot.channel(ctx, message.GuildID, parseResult.arguments.(string))
	case COMMAND_ADD:
		responses = bot.add(ctx, message.GuildID, parseResult.arguments.(PlayerArguments))
	case COMMAND_REMOVE:
		responses = bot.remove(ctx, message.GuildID, parseResult.arguments.(riotapi.RiotId))
	case COMMAND_RANK:
		responses = bot.rank(ctx, parseResult.arguments.(PlayerArguments))
	case COMMAND_TOGGLE:
		responses = bot.toggle(ctx, message.GuildID, parseResult.arguments.(string))
	case COMMAND_LANGUAGE:
		responses = bot.language(ctx, message.GuildID, parseResult.arguments.(string))
	case COMMAND_STATUS:
		responses = bot.status(ctx, message.GuildID)
	case COMMAND_HELP:
		responses = HelpMessage(prefix)
	default:
		responses = UnknownCommand(prefix, parseResult.command)
	}
	bot.sendResponses(message.ChannelID, responses)
}

func (bot *Bot) sendResponses(channelId string, responses []Response) {
	for _, response := range responses {
		response.Send(channelId, bot.discord)
	}
}

func (bot *Bot) initialise(ctx context.Context, guildId string, channelId string, language string) []Response {

	server, err := bot.store.GetServer(ctx, guildId)
	if err != nil && !errors.Is(err, common.ErrServerNotInitialized) {
		log.Error().Msg(fmt.Sprintf("Could not read server %s: %v", guildId, err))
		return Failure(bot.config.CommandPrefix, err)
	}
	server.GuildId = guildId
	server.ChannelId = channelId
	server.Language = language

	log.Info().Msg(fmt.Sprintf("Initialising guild %s", guildId))
	if err := bot.store.UpsertServer(ctx, server); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not save server %s: %v", guildId, err))
		return Failure(bot.config.CommandPrefix, err)
	}

	channelName, err := bot.getChannelName(guildId, channelId)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not extract channel name for channel id %s", channelId))
		channelName = channelId
	}
	return ServerInitialized(bot.config.CommandPrefix, channelName, language)
}

func (bot *Bot) channel(ctx context.Context, guildId string, channelName string) []Response {

	server, err := bot.store.GetServer(ctx, guildId)
	if err != nil {
		return Failure(bot.config.CommandPrefix, err)
	}

	// Try to find the id from the channel name
	channelId, err := bot.getChannelId(guildId, channelName)
	if err != nil {
		log.Info().Msg(fmt.Sprintf("Could not extract channel id from channel name %s", channelName))
		return ChannelDoesNotExist(channelName)
	}

	// We have a new channel to send messages to
	log.Info().Msg(fmt.Sprintf("Changing channel used by guild %s to %s", guildId, channelName))
	server.ChannelId = channelId
	if err := bot.store.UpsertServer(ctx, server); err != nil {
		return Failure(bot.config.CommandPrefix, err)
	}
	return ChannelChanged(channelName)
}

func (bot *Bot) add(ctx context.Context, guildId string, arguments PlayerArguments) []Response {

	server, err := bot.store.GetServer(ctx, guildId)
	if err != nil {
		return Failure(bot.config.CommandPrefix, err)
	}

	summoner, err := bot.riotapi.GetSummonerByName(ctx, arguments.RiotId, arguments.Region)
	if err != nil {
		log.Info().Msg(fmt.Sprintf("Puuid not found for riot id %s: %v", arguments.RiotId, err))
		return Failure(bot.config.CommandPrefix, err)
	}

	// Start from the latest games so that old ones are never notified
	player := store.Player{
		GuildId:  guildId,
		Puuid:    summoner.Puuid,
		TFTPuuid: summoner.TFTPuuid,
		GameName: summoner.RiotId.GameName,
		TagLine:  summoner.RiotId.TagLine,
		Region:   arguments.Region,
	}
	if ids, err := bot.riotapi.GetLastRankedMatchIds(ctx, summoner.Puuid, arguments.Region, server.FlexEnabled); err == nil && len(ids) > 0 {
		player.LastGameId = ids[0]
	}
	if summoner.TFTPuuid != "" {
		if ids, err := bot.riotapi.GetLastTFTMatchIds(ctx, summoner.TFTPuuid, arguments.Region); err == nil && len(ids) > 0 {
			player.LastTFTGameId = ids[0]
		}
	}

	player, err = bot.store.AddPlayer(ctx, player)
	if err != nil {
		log.Info().Msg(fmt.Sprintf("Could not add player %s to guild %s: %v", summoner.RiotId, guildId, err))
		return Failure(bot.config.CommandPrefix, err)
	}
	log.Info().Msg(fmt.Sprintf("Player %s has been added to guild %s", player.RiotId(), guildId))

	// Seed the rank progress with the current ranks
	leagues := bot.leagues(ctx, summoner, arguments.Region)
	for _, league := range leagues {
		if !league.QueueType.IsRanked() {
			continue
		}
		snapshot := rank.Ranked(league.Tier, league.Rank, league.Lps)
		state := store.RankState{Queue: league.QueueType, Current: snapshot, Previous: rank.Unranked(), Baseline: snapshot}
		if err := bot.store.SaveRank(ctx, player.Id, state); err != nil {
			log.Error().Msg(fmt.Sprintf("Could not save %s rank of player %s: %v", league.QueueType, player.RiotId(), err))
		}
	}

	return []Response{
		PlayerAdded(player.RiotId(), player.Region),
		PlayerRank(player.RiotId(), leagues),
	}
}

func (bot *Bot) remove(ctx context.Context, guildId string, riotid riotapi.RiotId) []Response {

	log.Info().Msg(fmt.Sprintf("Removing player %s from guild id %s", riotid, guildId))
	if err := bot.store.DeletePlayer(ctx, guildId, riotid.GameName, riotid.TagLine); err != nil {
		log.Info().Msg(fmt.Sprintf("Could not remove player %s: %v", riotid, err))
		return Failure(bot.config.CommandPrefix, err)
	}
	return PlayerRemoved(riotid)
}

func (bot *Bot) rank(ctx context.Context, arguments PlayerArguments) []Response {

	summoner, err := bot.riotapi.GetSummonerByName(ctx, arguments.RiotId, arguments.Region)
	if err != nil {
		log.Info().Msg(fmt.Sprintf("Could not find a puuid for riot id %s", arguments.RiotId))
		return Failure(bot.config.CommandPrefix, err)
	}

	// Send the final message
	log.Info().Msg(fmt.Sprintf("Sending rank of player %s", summoner.RiotId))
	return []Response{PlayerRank(summoner.RiotId, bot.leagues(ctx, summoner, arguments.Region))}
}

// League and TFT rank entries together. Missing ones are left out
func (bot *Bot) leagues(ctx context.Context, summoner riotapi.Summoner, region string) []riotapi.League {
	leagues, err := bot.riotapi.GetLeagues(ctx, summoner.Puuid, region)
	if err != nil {
		log.Info().Msg(fmt.Sprintf("Could not get rank of player %s: %v", summoner.RiotId, err))
	}
	if summoner.TFTPuuid != "" {
		tftLeagues, err := bot.riotapi.GetTFTLeagues(ctx, summoner.TFTPuuid, region)
		if err != nil {
			log.Info().Msg(fmt.Sprintf("Could not get TFT rank of player %s: %v", summoner.RiotId, err))
		}
		leagues = append(leagues, tftLeagues...)
	}
	return leagues
}

func (bot *Bot) toggle(ctx context.Context, guildId string, option string) []Response {

	server, err := bot.store.GetServer(ctx, guildId)
	if err != nil {
		return Failure(bot.config.CommandPrefix, err)
	}
	var enabled bool
	switch option {
	case OPTION_FLEX:
		server.FlexEnabled = !server.FlexEnabled
		enabled = server.FlexEnabled
	case OPTION_TFT:
		server.TFTEnabled = !server.TFTEnabled
		enabled = server.TFTEnabled
	}
	if err := bot.store.UpsertServer(ctx, server); err != nil {
		return Failure(bot.config.CommandPrefix, err)
	}
	log.Info().Msg(fmt.Sprintf("Guild %s toggled %s to %t", guildId, option, enabled))
	return ToggleChanged(option, enabled)
}

func (bot *Bot) language(ctx context.Context, guildId string, language string) []Response {

	server, err := bot.store.GetServer(ctx, guildId)
	if err != nil {
		return Failure(bot.config.CommandPrefix, err)
	}
	server.Language = language
	if err := bot.store.UpsertServer(ctx, server); err != nil {
		return Failure(bot.config.CommandPrefix, err)
	}
	return LanguageChanged(language)
}

func (bot *Bot) status(ctx context.Context, guildId string) []Response {

	server, err := bot.store.GetServer(ctx, guildId)
	if err != nil {
		return Failure(bot.config.CommandPrefix, err)
	}
	players, err := bot.store.ListPlayersByServer(ctx, guildId)
	if err != nil {
		return Failure(bot.config.CommandPrefix, err)
	}

	channelName, err := bot.getChannelName(guildId, server.ChannelId)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not find channel name for channel id %s", server.ChannelId))
		channelName = "(deleted channel)"
	}

	// Create list of player names in this guild
	riotIds := make([]riotapi.RiotId, len(players))
	for i, player := range players {
		riotIds[i] = player.RiotId()
	}
	return StatusMessage(server, riotIds, channelName)
}

// Delivery

// A deleted channel is logged and skipped, it never fails the caller
func (bot *Bot) deliver(server store.Server, embed discordgo.MessageEmbed) error {
	if _, err := bot.discord.Channel(server.ChannelId); err != nil {
		log.Warn().Msg(fmt.Sprintf("Channel %s of guild %s is not available, skipping message: %v", server.ChannelId, server.GuildId, err))
		return nil
	}
	return ResponseEmbed{embed}.Send(server.ChannelId, bot.discord)
}

func (bot *Bot) NotifyGame(ctx context.Context, server store.Server, result tracker.GameResult) error {
	icon := ""
	if result.League != nil {
		icon = bot.riotapi.ChampionIcon(result.League.Game.Champion)
	}
	return bot.deliver(server, GameEmbed(result, server.Language, icon))
}

func (bot *Bot) PublishDaily(ctx context.Context, server store.Server, queue riotapi.QueueType, entries []recap.DailyEntry) error {
	return bot.deliver(server, DailyRecapEmbed(queue, entries, server.Language))
}

func (bot *Bot) PublishLeagueMonthly(ctx context.Context, server store.Server, queue riotapi.QueueType, month time.Time, summaries []recap.LeagueSummary) error {
	return bot.deliver(server, LeagueMonthlyEmbed(queue, month, summaries, server.Language))
}

func (bot *Bot) PublishTFTMonthly(ctx context.Context, server store.Server, queue riotapi.QueueType, month time.Time, summaries []recap.TFTSummary) error {
	return bot.deliver(server, TFTMonthlyEmbed(queue, month, summaries, server.Language))
}

func (bot *Bot) getChannelName(guildid string, channelid string) (string, error) {

	channels, err := bot.discord.GuildChannels(guildid)
	if err != nil {
		return "", fmt.Errorf("could not extract list of channels of guild id %s", guildid)
	}
	for _, ch := range channels {
		if ch.ID == channelid {
			return ch.Name, nil
		}
	}
	return "", fmt.Errorf("no channel name found for channel id %s", channelid)
}

func (bot *Bot) getChannelId(guildid string, channelName string) (string, error) {

	channels, err := bot.discord.GuildChannels(guildid)
	if err != nil {
		return "", fmt.Errorf("could not extract list of channels of guild id %s", guildid)
	}
	for _, ch := range channels {
		if ch.Name == channelName {
			return ch.ID, nil
		}
	}
	return "", fmt.Errorf("no channel id found for channel name %s", channelName)
}
