package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Where responses are delivered. Satisfied by *discordgo.Session
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type ResponseString struct {
	string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

type Response interface {
	Send(channelid string, discord Sender) error
}

func (response ResponseString) Send(channelid string, discord Sender) error {
	if _, err := discord.ChannelMessageSend(channelid, response.string); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not send message to channel %s: %v", channelid, err))
		return err
	}
	return nil
}

func (response ResponseEmbed) Send(channelid string, discord Sender) error {
	if _, err := discord.ChannelMessageSendEmbed(channelid, &response.MessageEmbed); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not send embed to channel %s: %v", channelid, err))
		return err
	}
	return nil
}
