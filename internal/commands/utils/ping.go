// Package utils - /ping
package utils

import (
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
)

func createPingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Check the bot's latency",
		"util",
		func(ctx *discord.CommandContext) error {
			latency := ctx.Client.Session.HeartbeatLatency().Milliseconds()
			return ctx.Reply(fmt.Sprintf("Pong! Latency: %dms", latency))
		},
	)
}
