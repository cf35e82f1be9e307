package events

import (
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient) {
	client.Session.AddHandler(onReady)
}

// onReady is called when the bot successfully connects to Discord
func onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Success(fmt.Sprintf("Connected: %s", r.User.Username), "Ready")
	logger.Info(fmt.Sprintf("Serving %d guilds", len(r.Guilds)), "Ready")

	if err := s.UpdateGameStatus(0, "/help | earning coins"); err != nil {
		logger.Error(fmt.Sprintf("Failed to set presence: %v", err), "Ready")
	}
}
