// Package utils - /stats
package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Show bot usage statistics",
		"util",
		statsHandler,
	)
}

func statsHandler(ctx *discord.CommandContext) error {
	services := ctx.Client.Services
	summary := services.Analytics.Summarize()

	users, err := services.Store.CountUsers(context.Background())
	if err != nil {
		users = 0
	}

	top := services.Analytics.TopCommands(5)
	topLines := make([]string, 0, len(top))
	for _, name := range top {
		avg := services.Analytics.AverageLatency(name)
		topLines = append(topLines, fmt.Sprintf("`%s` - %d uses, avg %s",
			name, summary.CommandCounts[name], avg.Round(time.Millisecond)))
	}
	if len(topLines) == 0 {
		topLines = append(topLines, "No commands recorded yet.")
	}

	embed := &discordgo.MessageEmbed{
		Title: "Bot statistics",
		Color: 0x2ecc71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Uptime", Value: summary.Uptime, Inline: true},
			{Name: "Servers", Value: fmt.Sprintf("%d", ctx.Client.GuildCount()), Inline: true},
			{Name: "Known users", Value: fmt.Sprintf("%d", users), Inline: true},
			{Name: "Commands handled", Value: fmt.Sprintf("%d", summary.TotalCommands), Inline: true},
			{Name: "Active today", Value: fmt.Sprintf("%d", summary.ActiveToday), Inline: true},
			{Name: "Top commands", Value: strings.Join(topLines, "\n")},
		},
	}
	return ctx.ReplyEmbed(embed)
}
