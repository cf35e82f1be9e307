// Package mod - /mod warn, /mod warnings and /mod clearwarns
package mod

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/THEREALVANHEL/coalbot/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

func userOption(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: desc,
		Required:    true,
	}
}

func createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Warn a member",
		"mod",
		warnHandler,
	).WithUserPermissions(discordgo.PermissionModerateMembers).WithOptions(
		userOption("Who to warn"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why they are being warned",
			Required:    true,
		},
	)
}

func warnHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("Pick a member to warn.")
	}
	reason := ctx.GetStringOption("reason")

	w := &models.Warning{
		ID:          uuid.NewString(),
		GuildID:     ctx.GuildIDInt(),
		UserID:      discord.ParseID(user.ID),
		ModeratorID: ctx.UserID(),
		Reason:      reason,
		Timestamp:   time.Now().Unix(),
	}
	if err := ctx.Client.Services.Store.AppendWarning(context.Background(), w); err != nil {
		return err
	}

	return ctx.Reply(fmt.Sprintf("**%s** has been warned.\n**Reason:** %s", user.Username, reason))
}

func createWarningsCommand() *discord.Command {
	return discord.NewCommand(
		"warnings",
		"List a member's warnings",
		"mod",
		warningsHandler,
	).WithUserPermissions(discordgo.PermissionModerateMembers).WithOptions(
		userOption("Whose warnings to show"),
	)
}

func warningsHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("Pick a member.")
	}

	warnings, err := ctx.Client.Services.Store.ListWarnings(
		context.Background(), ctx.GuildIDInt(), discord.ParseID(user.ID))
	if err != nil {
		return err
	}
	if len(warnings) == 0 {
		return ctx.ReplyEphemeral(fmt.Sprintf("%s has no warnings.", user.Username))
	}

	var b strings.Builder
	for i, w := range warnings {
		fmt.Fprintf(&b, "%d. %s (by <@%d>, %s)\n",
			i+1, w.Reason, w.ModeratorID, time.Unix(w.Timestamp, 0).Format("2006-01-02"))
	}
	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Warnings for %s", user.Username),
		Description: b.String(),
		Color:       0xe67e22,
	})
}

func createClearWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"clearwarns",
		"Clear a member's warnings",
		"mod",
		clearWarnsHandler,
	).WithUserPermissions(discordgo.PermissionAdministrator).WithOptions(
		userOption("Whose warnings to clear"),
	)
}

func clearWarnsHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("Pick a member.")
	}

	removed, err := ctx.Client.Services.Store.ClearWarnings(
		context.Background(), ctx.GuildIDInt(), discord.ParseID(user.ID))
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Cleared %d warning(s) for %s.", removed, user.Username))
}
