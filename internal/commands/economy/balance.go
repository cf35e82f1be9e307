// Package economy - /coins balance and /coins leaderboard
package economy

import (
	"context"
	"fmt"
	"strings"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createBalanceCommand() *discord.Command {
	return discord.NewCommand(
		"balance",
		"Show your wallet, bank and savings",
		"economy",
		balanceHandler,
	).WithFeature("economy")
}

func balanceHandler(ctx *discord.CommandContext) error {
	u, err := ctx.Client.Services.Economy.GetUser(context.Background(), ctx.UserID())
	if err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's balance", ctx.User().Username),
		Color: 0xf1c40f,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Wallet", Value: fmt.Sprintf("%d coins", u.Coins), Inline: true},
			{Name: "Bank", Value: fmt.Sprintf("%d coins", u.BankBalance), Inline: true},
			{Name: "Savings", Value: fmt.Sprintf("%d coins", u.SavingsBalance), Inline: true},
			{Name: "Cookies", Value: fmt.Sprintf("%d", u.Cookies), Inline: true},
			{Name: "Level", Value: fmt.Sprintf("%d (%d XP)", u.Level, u.XP), Inline: true},
			{Name: "Daily streak", Value: fmt.Sprintf("%d", u.DailyStreak), Inline: true},
		},
	}
	return ctx.ReplyEmbed(embed)
}

func createLeaderboardCommand() *discord.Command {
	return discord.NewCommand(
		"leaderboard",
		"Show the richest members",
		"economy",
		leaderboardHandler,
	).WithFeature("economy").WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "sort",
			Description: "What to rank by",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Coins", Value: "coins"},
				{Name: "XP", Value: "xp"},
				{Name: "Cookies", Value: "cookies"},
			},
		},
	)
}

func leaderboardHandler(ctx *discord.CommandContext) error {
	sortField := ctx.GetStringOption("sort")
	if sortField == "" {
		sortField = "coins"
	}

	users, err := ctx.Client.Services.Store.TopUsers(context.Background(), sortField, 0, 10)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return ctx.ReplyEphemeral("Nobody is on the board yet.")
	}

	var b strings.Builder
	for i, u := range users {
		var value int64
		switch sortField {
		case "xp":
			value = u.XP
		case "cookies":
			value = u.Cookies
		default:
			value = u.Coins
		}
		fmt.Fprintf(&b, "%d. <@%d> - %d %s\n", i+1, u.UserID, value, sortField)
	}

	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Leaderboard",
		Description: b.String(),
		Color:       0xf1c40f,
	})
}
