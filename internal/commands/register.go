// Package commands is the registry for the bot's slash commands,
// organized in subpackages by category.
package commands

import (
	"github.com/THEREALVANHEL/coalbot/internal/commands/economy"
	"github.com/THEREALVANHEL/coalbot/internal/commands/mod"
	"github.com/THEREALVANHEL/coalbot/internal/commands/tickets"
	"github.com/THEREALVANHEL/coalbot/internal/commands/utils"
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient) {
	utils.RegisterUtilCommands(client)
	economy.RegisterEconomyCommands(client)
	tickets.RegisterTicketCommands(client)
	mod.RegisterModCommands(client)
}
