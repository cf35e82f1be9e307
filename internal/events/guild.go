package events

import (
	"fmt"
	"time"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterGuildEvents registers guild join and leave handlers
func RegisterGuildEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onGuildCreate)
	client.Session.AddHandler(onGuildDelete)
}

// onGuildCreate is called when the bot joins a server. The gateway also
// replays this for existing guilds on startup, which the join-time
// check filters out.
func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.JoinedAt.Compare(time.Now().Add(-10*time.Second)) < 0 {
		return
	}

	logger.Info(fmt.Sprintf("Joined guild %s (%s), %d members", g.Name, g.ID, g.MemberCount), "Guild")

	if g.SystemChannelID == "" {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Thanks for adding me!",
		Description: "I run the community economy and the support ticket system. Start with `/help`.",
		Color:       0x2ecc71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Economy", Value: "`/coins daily` to get started", Inline: true},
			{Name: "Tickets", Value: "`/ticket open` for support", Inline: true},
		},
	}
	if _, err := s.ChannelMessageSendEmbed(g.SystemChannelID, embed); err != nil {
		logger.Error(fmt.Sprintf("Failed to send join message: %v", err), "Guild")
	}
}

// onGuildDelete is called when the bot is removed from a server
func onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	logger.Info("Removed from guild "+g.ID, "Guild")
}
