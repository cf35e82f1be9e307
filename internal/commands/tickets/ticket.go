// Package tickets - /ticket subcommand handlers
package tickets

import (
	"context"
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func createOpenCommand() *discord.Command {
	return discord.NewCommand(
		"open",
		"Open a support ticket",
		"tickets",
		openHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "category",
			Description: "What the ticket is about",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "General support", Value: "support"},
				{Name: "Report a member", Value: "report"},
				{Name: "Appeal", Value: "appeal"},
				{Name: "Other", Value: "other"},
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "priority",
			Description: "How urgent it is",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Low", Value: "low"},
				{Name: "Medium", Value: "medium"},
				{Name: "High", Value: "high"},
				{Name: "Urgent", Value: "urgent"},
			},
		},
	)
}

func openHandler(ctx *discord.CommandContext) error {
	category := ctx.GetStringOption("category")
	priority := models.TicketPriority(ctx.GetStringOption("priority"))

	t, err := ctx.Client.Services.Tickets.Create(
		context.Background(), ctx.GuildIDInt(), ctx.TicketMember(), category, priority)
	if err != nil {
		return err
	}
	return ctx.ReplyEphemeral(fmt.Sprintf("Your ticket is ready: <#%d>", t.ChannelID))
}

func createClaimCommand() *discord.Command {
	return discord.NewCommand("claim", "Claim this ticket", "tickets", claimHandler)
}

func claimHandler(ctx *discord.CommandContext) error {
	t, err := ctx.Client.Services.Tickets.Claim(context.Background(), ctx.ChannelIDInt(), ctx.TicketMember())
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Ticket claimed by <@%d>.", t.ClaimedBy))
}

func createUnclaimCommand() *discord.Command {
	return discord.NewCommand("unclaim", "Release this ticket back to the queue", "tickets", unclaimHandler)
}

func unclaimHandler(ctx *discord.CommandContext) error {
	_, err := ctx.Client.Services.Tickets.Unclaim(context.Background(), ctx.ChannelIDInt(), ctx.TicketMember())
	if err != nil {
		return err
	}
	return ctx.Reply("Ticket released. Any staff member can claim it.")
}

func createLockCommand() *discord.Command {
	return discord.NewCommand("lock", "Lock the conversation", "tickets", lockHandler)
}

func lockHandler(ctx *discord.CommandContext) error {
	_, err := ctx.Client.Services.Tickets.Lock(context.Background(), ctx.ChannelIDInt(), ctx.TicketMember())
	if err != nil {
		return err
	}
	return ctx.Reply("Ticket locked. The creator cannot reply until it is unlocked.")
}

func createUnlockCommand() *discord.Command {
	return discord.NewCommand("unlock", "Unlock the conversation", "tickets", unlockHandler)
}

func unlockHandler(ctx *discord.CommandContext) error {
	_, err := ctx.Client.Services.Tickets.Unlock(context.Background(), ctx.ChannelIDInt(), ctx.TicketMember())
	if err != nil {
		return err
	}
	return ctx.Reply("Ticket unlocked.")
}

func createCloseCommand() *discord.Command {
	return discord.NewCommand("close", "Close this ticket", "tickets", closeHandler)
}

func closeHandler(ctx *discord.CommandContext) error {
	_, err := ctx.Client.Services.Tickets.Close(context.Background(), ctx.ChannelIDInt(), ctx.TicketMember())
	if err != nil {
		return err
	}
	return ctx.Reply("Ticket closed. The transcript is saved and this channel deletes itself shortly.")
}

func createReopenCommand() *discord.Command {
	return discord.NewCommand("reopen", "Reopen a closed ticket", "tickets", reopenHandler)
}

func reopenHandler(ctx *discord.CommandContext) error {
	t, err := ctx.Client.Services.Tickets.Reopen(context.Background(), ctx.ChannelIDInt(), ctx.TicketMember())
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Ticket reopened for <@%d>.", t.CreatorID))
}

func createDeleteCommand() *discord.Command {
	return discord.NewCommand("delete", "Delete this ticket channel immediately", "tickets", deleteHandler).
		WithUserPermissions(discordgo.PermissionManageChannels)
}

func deleteHandler(ctx *discord.CommandContext) error {
	if err := ctx.Client.Services.Tickets.Delete(context.Background(), ctx.ChannelIDInt(), ctx.TicketMember()); err != nil {
		return err
	}
	// The channel is gone; a reply would fail, so nothing more to do.
	return nil
}
