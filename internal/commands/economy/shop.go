// Package economy - /shop list and /shop buy
package economy

import (
	"context"
	"fmt"
	"strings"

	ecosvc "github.com/THEREALVANHEL/coalbot/internal/economy"
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createShopListCommand() *discord.Command {
	return discord.NewCommand(
		"list",
		"Browse the shop",
		"economy",
		shopListHandler,
	).WithFeature("economy")
}

func shopListHandler(ctx *discord.CommandContext) error {
	var b strings.Builder
	for _, item := range ecosvc.ShopItems() {
		fmt.Fprintf(&b, "**%s** (`%s`) - %d coins", item.Name, item.ID, item.Price)
		if item.Duration > 0 {
			fmt.Fprintf(&b, ", lasts %s", item.Duration)
		}
		b.WriteString("\n")
	}

	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Shop",
		Description: b.String(),
		Color:       0x9b59b6,
	})
}

func createBuyCommand() *discord.Command {
	return discord.NewCommand(
		"buy",
		"Buy an item from the shop",
		"economy",
		buyHandler,
	).WithFeature("economy").WithAction("buy").WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "item",
			Description: "The item id, see /shop list",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "quantity",
			Description: "How many to buy",
			MinValue:    ptrFloat(1),
		},
	)
}

func buyHandler(ctx *discord.CommandContext) error {
	itemID := ctx.GetStringOption("item")
	quantity := ctx.GetIntOption("quantity")
	if quantity == 0 {
		quantity = 1
	}

	u, err := ctx.Client.Services.Economy.Buy(context.Background(), ctx.UserID(), itemID, quantity)
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Bought %d x %s. Wallet: %d coins.", quantity, itemID, u.Coins))
}
