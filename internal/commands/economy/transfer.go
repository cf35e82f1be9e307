// Package economy - /coins transfer
package economy

import (
	"context"
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createTransferCommand() *discord.Command {
	return discord.NewCommand(
		"transfer",
		"Send coins to another member",
		"economy",
		transferHandler,
	).WithFeature("economy").WithAction("transfer").WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "recipient",
			Description: "Who receives the coins",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "How many coins to send",
			Required:    true,
			MinValue:    ptrFloat(1),
		},
	)
}

func transferHandler(ctx *discord.CommandContext) error {
	recipient := ctx.GetUserOption("recipient")
	if recipient == nil {
		return ctx.ReplyEphemeral("Pick a recipient.")
	}
	amount := ctx.GetIntOption("amount")

	srcID := ctx.UserID()
	dstID := discord.ParseID(recipient.ID)

	if err := ctx.Client.Services.Security.VerifyTransfer(srcID, dstID, amount); err != nil {
		return err
	}
	if err := ctx.Client.Services.Economy.Transfer(context.Background(), srcID, dstID, amount, recipient.Bot); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Sent %d coins to %s.", amount, recipient.Username))
}
