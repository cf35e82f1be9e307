// Package events wires the gateway event handlers: member join/leave
// messages, XP grants, ticket transcript capture and the ticket
// button interactions.
package events

import (
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
)

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient) {
	logger.System("Registering bot events...", "Events")

	RegisterReadyEvent(client)
	RegisterGuildEvents(client)
	RegisterMemberEvents(client)
	RegisterMessageEvents(client)
	RegisterInteractionEvents(client)
	RegisterShardEvents(client)

	logger.Success("All events registered", "Events")
}
