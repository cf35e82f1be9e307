// Package tickets - the /ticket command group
package tickets

import (
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
)

// RegisterTicketCommands registers the /ticket group
func RegisterTicketCommands(client *discord.ExtendedClient) {
	ch := client.CommandHandler

	group := ch.BuildCommandGroup("ticket", "Open and manage support tickets",
		createOpenCommand(),
		createClaimCommand(),
		createUnclaimCommand(),
		createLockCommand(),
		createUnlockCommand(),
		createCloseCommand(),
		createReopenCommand(),
		createDeleteCommand(),
	)
	ch.AddGlobalCommand(group)
}
