// Package utils - /help
package utils

import (
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Show what the bot can do",
		"util",
		helpHandler,
	)
}

func helpHandler(ctx *discord.CommandContext) error {
	embed := &discordgo.MessageEmbed{
		Title: "CoalBot help",
		Color: 0x3498db,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Economy",
				Value: "`/coins balance` `/coins daily` `/coins gamble` `/coins transfer`\n" +
					"`/coins deposit` `/coins withdraw` `/coins savings` `/coins leaderboard`",
			},
			{
				Name:  "Jobs",
				Value: "`/job work` `/job list`",
			},
			{
				Name:  "Shop & pets",
				Value: "`/shop list` `/shop buy` `/pet adopt` `/pet feed` `/pet play` `/pet heal`",
			},
			{
				Name:  "Stocks",
				Value: "`/stocks quote` `/stocks buy` `/stocks sell` `/stocks portfolio`",
			},
			{
				Name:  "Tickets",
				Value: "`/ticket open` and the staff actions inside a ticket channel",
			},
			{
				Name:  "Utility",
				Value: "`/ping` `/stats` `/calc`",
			},
		},
	}
	return ctx.ReplyEmbed(embed)
}
