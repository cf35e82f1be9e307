// Package mod - /mod kick and /mod ban
package mod

import (
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createKickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Kick a member from the server",
		"mod",
		kickHandler,
	).WithUserPermissions(discordgo.PermissionKickMembers).WithOptions(
		userOption("Who to kick"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why they are being kicked",
		},
	)
}

func kickHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("Pick a member to kick.")
	}
	reason := ctx.GetStringOption("reason")

	if err := ctx.Session.GuildMemberDeleteWithReason(ctx.Interaction.GuildID, user.ID, reason); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("**%s** was kicked. Reason: %s", user.Username, orNone(reason)))
}

func createBanCommand() *discord.Command {
	return discord.NewCommand(
		"ban",
		"Ban a member from the server",
		"mod",
		banHandler,
	).WithUserPermissions(discordgo.PermissionBanMembers).WithOptions(
		userOption("Who to ban"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why they are being banned",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "delete-days",
			Description: "Days of messages to delete (0-7)",
		},
	)
}

func banHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("Pick a member to ban.")
	}
	reason := ctx.GetStringOption("reason")
	days := int(ctx.GetIntOption("delete-days"))
	if days < 0 || days > 7 {
		days = 0
	}

	if err := ctx.Session.GuildBanCreateWithReason(ctx.Interaction.GuildID, user.ID, reason, days); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("**%s** was banned. Reason: %s", user.Username, orNone(reason)))
}

func orNone(s string) string {
	if s == "" {
		return "none given"
	}
	return s
}
