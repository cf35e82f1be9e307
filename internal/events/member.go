package events

import (
	"context"
	"fmt"
	"time"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMemberEvents registers member join and leave handlers
func RegisterMemberEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(makeMemberAdd(client))
	client.Session.AddHandler(makeMemberRemove(client))
}

// welcomeChannel resolves the configured welcome channel, falling back
// to the guild's system channel.
func welcomeChannel(client *discord.ExtendedClient, s *discordgo.Session, guildID string) string {
	settings, err := client.Services.Store.GetGuildSettings(context.Background(), discord.ParseID(guildID))
	if err == nil && settings.WelcomeChannel != 0 {
		return discord.FormatID(settings.WelcomeChannel)
	}
	guild, err := s.Guild(guildID)
	if err != nil {
		return ""
	}
	return guild.SystemChannelID
}

func makeMemberAdd(client *discord.ExtendedClient) func(*discordgo.Session, *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.User.Bot {
			return
		}
		logger.Info(fmt.Sprintf("Member joined: %s in guild %s", m.User.Username, m.GuildID), "Member")

		// First read creates the document with starting coins.
		if _, err := client.Services.Store.GetUser(context.Background(), discord.ParseID(m.User.ID)); err != nil {
			if errors.KindOf(err) != errors.KindNotFound {
				logger.Error(fmt.Sprintf("Failed to provision member %s: %v", m.User.ID, err), "Member")
			}
		}

		channelID := welcomeChannel(client, s, m.GuildID)
		if channelID == "" {
			return
		}
		embed := &discordgo.MessageEmbed{
			Title:       "Welcome!",
			Description: fmt.Sprintf("Say hello to <@%s>! Grab your starting coins with `/coins daily`.", m.User.ID),
			Color:       0x2ecc71,
			Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("128")},
			Timestamp:   time.Now().Format(time.RFC3339),
		}
		if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
			logger.Error(fmt.Sprintf("Failed to send welcome: %v", err), "Member")
		}
	}
}

func makeMemberRemove(client *discord.ExtendedClient) func(*discordgo.Session, *discordgo.GuildMemberRemove) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		logger.Info(fmt.Sprintf("Member left: %s from guild %s", m.User.Username, m.GuildID), "Member")

		settings, err := client.Services.Store.GetGuildSettings(context.Background(), discord.ParseID(m.GuildID))
		if err != nil || settings.LeaveChannel == 0 {
			return
		}
		msg := fmt.Sprintf("**%s** has left the server.", m.User.Username)
		if _, err := s.ChannelMessageSend(discord.FormatID(settings.LeaveChannel), msg); err != nil {
			logger.Debug(fmt.Sprintf("Failed to send leave message: %v", err), "Member")
		}
	}
}
