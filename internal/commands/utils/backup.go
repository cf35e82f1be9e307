// Package utils - /backup admin command
package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createBackupCommand() *discord.Command {
	return discord.NewCommand(
		"backup",
		"Take or list database backups",
		"admin",
		backupHandler,
	).AsDev().WithUserPermissions(discordgo.PermissionAdministrator).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "action",
			Description: "What to do",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Take now", Value: "now"},
				{Name: "List", Value: "list"},
			},
		},
	)
}

func backupHandler(ctx *discord.CommandContext) error {
	backups := ctx.Client.Services.Backups

	if ctx.GetStringOption("action") == "now" {
		if err := ctx.Defer(); err != nil {
			return err
		}
		meta, err := backups.Run(context.Background(), "manual")
		if err != nil {
			return err
		}
		return ctx.EditReply(fmt.Sprintf("Backup `%s` written: %d users, %d bytes.",
			meta.BackupID, meta.TotalUsers, meta.BackupSize))
	}

	metas, err := backups.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		return ctx.ReplyEphemeral("No backups on disk yet.")
	}

	var b strings.Builder
	for i, meta := range metas {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "`%s` - %s, %d users\n",
			meta.BackupID, time.Unix(meta.Timestamp, 0).Format(time.RFC822), meta.TotalUsers)
	}
	return ctx.ReplyEphemeral(b.String())
}
