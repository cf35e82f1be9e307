// Package economy - /coins deposit, withdraw and savings
package economy

import (
	"context"
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func amountOption(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: desc,
		Required:    true,
		MinValue:    ptrFloat(1),
	}
}

func createDepositCommand() *discord.Command {
	return discord.NewCommand(
		"deposit",
		"Move coins from your wallet into the bank",
		"economy",
		depositHandler,
	).WithFeature("economy").WithOptions(amountOption("How many coins to deposit"))
}

func depositHandler(ctx *discord.CommandContext) error {
	u, err := ctx.Client.Services.Economy.Deposit(context.Background(), ctx.UserID(), ctx.GetIntOption("amount"))
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Deposited. Wallet: %d, bank: %d.", u.Coins, u.BankBalance))
}

func createWithdrawCommand() *discord.Command {
	return discord.NewCommand(
		"withdraw",
		"Move coins from the bank back to your wallet",
		"economy",
		withdrawHandler,
	).WithFeature("economy").WithOptions(amountOption("How many coins to withdraw"))
}

func withdrawHandler(ctx *discord.CommandContext) error {
	u, err := ctx.Client.Services.Economy.Withdraw(context.Background(), ctx.UserID(), ctx.GetIntOption("amount"))
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Withdrawn. Wallet: %d, bank: %d.", u.Coins, u.BankBalance))
}

func createSavingsCommand() *discord.Command {
	return discord.NewCommand(
		"savings",
		"Move coins in or out of your interest-bearing savings",
		"economy",
		savingsHandler,
	).WithFeature("economy").WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "direction",
			Description: "Deposit or withdraw",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Deposit", Value: "deposit"},
				{Name: "Withdraw", Value: "withdraw"},
			},
		},
		amountOption("How many coins to move"),
	)
}

func savingsHandler(ctx *discord.CommandContext) error {
	amount := ctx.GetIntOption("amount")
	eco := ctx.Client.Services.Economy

	if ctx.GetStringOption("direction") == "withdraw" {
		u, err := eco.SavingsWithdraw(context.Background(), ctx.UserID(), amount)
		if err != nil {
			return err
		}
		return ctx.Reply(fmt.Sprintf("Withdrawn from savings. Wallet: %d, savings: %d.", u.Coins, u.SavingsBalance))
	}

	u, err := eco.SavingsDeposit(context.Background(), ctx.UserID(), amount)
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Saved. Wallet: %d, savings: %d.", u.Coins, u.SavingsBalance))
}
