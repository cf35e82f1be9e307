package events

import (
	"context"
	"fmt"

	"github.com/THEREALVANHEL/coalbot/internal/router"
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Ticket button custom ids, attached to the staff control row posted in
// each ticket channel.
const (
	ButtonTicketClaim  = "ticket_claim"
	ButtonTicketLock   = "ticket_lock"
	ButtonTicketUnlock = "ticket_unlock"
	ButtonTicketClose  = "ticket_close"
	ButtonTicketReopen = "ticket_reopen"
)

// RegisterInteractionEvents registers the component interaction handler
func RegisterInteractionEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(makeComponentHandler(client))
}

// makeComponentHandler routes the ticket buttons. Slash commands are
// dispatched by the client itself.
func makeComponentHandler(client *discord.ExtendedClient) func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionMessageComponent {
			return
		}

		customID := i.MessageComponentData().CustomID
		ctx := &discord.CommandContext{Session: s, Interaction: i, Client: client}

		svc := client.Services.Tickets
		channelID := ctx.ChannelIDInt()
		member := ctx.TicketMember()
		bg := context.Background()

		var reply string
		var err error
		switch customID {
		case ButtonTicketClaim:
			t, claimErr := svc.Claim(bg, channelID, member)
			err = claimErr
			if err == nil {
				reply = fmt.Sprintf("Ticket claimed by <@%d>.", t.ClaimedBy)
			}
		case ButtonTicketLock:
			_, err = svc.Lock(bg, channelID, member)
			reply = "Ticket locked."
		case ButtonTicketUnlock:
			_, err = svc.Unlock(bg, channelID, member)
			reply = "Ticket unlocked."
		case ButtonTicketClose:
			_, err = svc.Close(bg, channelID, member)
			reply = "Ticket closed. The transcript is saved."
		case ButtonTicketReopen:
			_, err = svc.Reopen(bg, channelID, member)
			reply = "Ticket reopened."
		default:
			logger.Debug("Unhandled component: "+customID, "Interaction")
			return
		}

		if err != nil {
			respond(s, i, router.Translate(err), true)
			return
		}
		respond(s, i, reply, false)
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		logger.Debug(fmt.Sprintf("Component reply failed: %v", err), "Interaction")
	}
}

// TicketControls builds the staff button row for a ticket channel.
func TicketControls() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Claim", Style: discordgo.PrimaryButton, CustomID: ButtonTicketClaim},
				discordgo.Button{Label: "Lock", Style: discordgo.SecondaryButton, CustomID: ButtonTicketLock},
				discordgo.Button{Label: "Unlock", Style: discordgo.SecondaryButton, CustomID: ButtonTicketUnlock},
				discordgo.Button{Label: "Close", Style: discordgo.DangerButton, CustomID: ButtonTicketClose},
			},
		},
	}
}
