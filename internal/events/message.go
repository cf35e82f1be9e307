package events

import (
	"context"
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	coalerr "github.com/THEREALVANHEL/coalbot/pkg/errors"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMessageEvents registers the message create handler
func RegisterMessageEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(makeMessageCreate(client))
}

// makeMessageCreate grants chat XP and captures ticket transcripts.
func makeMessageCreate(client *discord.ExtendedClient) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author.Bot || m.GuildID == "" {
			return
		}

		ctx := context.Background()
		userID := discord.ParseID(m.Author.ID)

		// XP per message, silently rate limited to one grant per window.
		xp := int64(len(m.Content) / 10)
		result, err := client.Services.Economy.GrantXP(ctx, userID, xp)
		if err == nil && result.LeveledUp {
			announceLevelUp(client, s, m, result.Level)
		} else if err != nil && coalerr.KindOf(err) != coalerr.KindRateLimited {
			logger.Debug(fmt.Sprintf("XP grant failed for %s: %v", m.Author.ID, err), "Message")
		}

		// Inside a ticket channel every message joins the transcript.
		channelID := discord.ParseID(m.ChannelID)
		if err := client.Services.Tickets.RecordMessage(ctx, channelID, userID, m.Content); err != nil {
			logger.Debug(fmt.Sprintf("Transcript append failed for %s: %v", m.ChannelID, err), "Message")
		}
	}
}

func announceLevelUp(client *discord.ExtendedClient, s *discordgo.Session, m *discordgo.MessageCreate, level int) {
	channelID := m.ChannelID
	settings, err := client.Services.Store.GetGuildSettings(context.Background(), discord.ParseID(m.GuildID))
	if err == nil && settings.LevelingChannel != 0 {
		channelID = discord.FormatID(settings.LevelingChannel)
	}

	msg := fmt.Sprintf("<@%s> reached level **%d**!", m.Author.ID, level)
	if _, err := s.ChannelMessageSend(channelID, msg); err != nil {
		logger.Debug(fmt.Sprintf("Level-up announcement failed: %v", err), "Message")
	}
}
