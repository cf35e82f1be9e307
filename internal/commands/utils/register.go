// Package utils - general utility commands
package utils

import (
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
)

// RegisterUtilCommands registers the utility commands
func RegisterUtilCommands(client *discord.ExtendedClient) {
	ch := client.CommandHandler

	for _, cmd := range []*discord.Command{
		createPingCommand(),
		createHelpCommand(),
		createStatsCommand(),
		createCalcCommand(),
		createBackupCommand(),
	} {
		ch.RegisterCommand(cmd)
	}
}
