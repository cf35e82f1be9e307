// Package mod - the /mod moderation command group
package mod

import (
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
)

// RegisterModCommands registers the /mod group
func RegisterModCommands(client *discord.ExtendedClient) {
	ch := client.CommandHandler

	group := ch.BuildCommandGroup("mod", "Moderation tools",
		createWarnCommand(),
		createWarningsCommand(),
		createClearWarnsCommand(),
		createKickCommand(),
		createBanCommand(),
	)
	ch.AddGlobalCommand(group)
}
