// Package economy - /coins gamble
package economy

import (
	"context"
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createGambleCommand() *discord.Command {
	return discord.NewCommand(
		"gamble",
		"Flip a coin for your stake",
		"economy",
		gambleHandler,
	).WithFeature("economy").WithAction("slots").WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "How many coins to stake",
			Required:    true,
			MinValue:    ptrFloat(1),
		},
	)
}

func gambleHandler(ctx *discord.CommandContext) error {
	amount := ctx.GetIntOption("amount")

	result, err := ctx.Client.Services.Economy.Gamble(context.Background(), ctx.UserID(), amount)
	if err != nil {
		return err
	}

	if result.Won {
		return ctx.Reply(fmt.Sprintf("Heads! You won %d coins. Balance: %d.", result.Amount, result.NewBalance))
	}
	return ctx.Reply(fmt.Sprintf("Tails! You lost %d coins. Balance: %d.", result.Amount, result.NewBalance))
}

func ptrFloat(v float64) *float64 { return &v }
