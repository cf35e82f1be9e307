// Package economy - the /stocks subcommands
package economy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func symbolOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "symbol",
		Description: "The stock symbol",
		Required:    true,
	}
}

func sharesOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "shares",
		Description: "How many shares",
		Required:    true,
		MinValue:    ptrFloat(1),
	}
}

func createQuoteCommand() *discord.Command {
	return discord.NewCommand(
		"quote",
		"Show today's market prices",
		"economy",
		quoteHandler,
	).WithFeature("stocks")
}

func quoteHandler(ctx *discord.CommandContext) error {
	eco := ctx.Client.Services.Economy
	symbols := eco.StockSymbols()
	sort.Strings(symbols)

	var b strings.Builder
	for _, sym := range symbols {
		price, err := eco.Quote(sym)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "**%s** - %.2f coins\n", sym, price)
	}

	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Market",
		Description: b.String(),
		Color:       0x3498db,
	})
}

func createStockBuyCommand() *discord.Command {
	return discord.NewCommand(
		"buy",
		"Buy shares at today's price",
		"economy",
		stockBuyHandler,
	).WithFeature("stocks").WithAction("buy").WithOptions(symbolOption(), sharesOption())
}

func stockBuyHandler(ctx *discord.CommandContext) error {
	symbol := strings.ToUpper(ctx.GetStringOption("symbol"))
	shares := ctx.GetIntOption("shares")

	result, err := ctx.Client.Services.Economy.StockBuy(context.Background(), ctx.UserID(), symbol, shares)
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Bought %d %s at %.2f for %d coins. You hold %d shares (avg %.2f).",
		result.Shares, result.Symbol, result.Price, result.Total, result.Holding.Shares, result.Holding.AvgPrice))
}

func createStockSellCommand() *discord.Command {
	return discord.NewCommand(
		"sell",
		"Sell shares at today's price",
		"economy",
		stockSellHandler,
	).WithFeature("stocks").WithOptions(symbolOption(), sharesOption())
}

func stockSellHandler(ctx *discord.CommandContext) error {
	symbol := strings.ToUpper(ctx.GetStringOption("symbol"))
	shares := ctx.GetIntOption("shares")

	result, err := ctx.Client.Services.Economy.StockSell(context.Background(), ctx.UserID(), symbol, shares)
	if err != nil {
		return err
	}
	ctx.Client.Services.Security.RecordGain(ctx.UserID(), result.Total)

	msg := fmt.Sprintf("Sold %d %s at %.2f for %d coins.", result.Shares, result.Symbol, result.Price, result.Total)
	switch {
	case result.Profit > 0:
		msg += fmt.Sprintf(" Profit: %d coins.", result.Profit)
	case result.Profit < 0:
		msg += fmt.Sprintf(" Loss: %d coins.", -result.Profit)
	}
	return ctx.Reply(msg)
}

func createPortfolioCommand() *discord.Command {
	return discord.NewCommand(
		"portfolio",
		"Show your holdings and their value",
		"economy",
		portfolioHandler,
	).WithFeature("stocks")
}

func portfolioHandler(ctx *discord.CommandContext) error {
	eco := ctx.Client.Services.Economy
	u, err := eco.GetUser(context.Background(), ctx.UserID())
	if err != nil {
		return err
	}
	if len(u.Portfolio) == 0 {
		return ctx.ReplyEphemeral("You don't own any shares. Try /stocks buy.")
	}

	symbols := make([]string, 0, len(u.Portfolio))
	for sym := range u.Portfolio {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var b strings.Builder
	for _, sym := range symbols {
		h := u.Portfolio[sym]
		fmt.Fprintf(&b, "**%s** - %d shares, avg %.2f\n", sym, h.Shares, h.AvgPrice)
	}

	value, err := eco.PortfolioValue(context.Background(), ctx.UserID())
	if err == nil {
		fmt.Fprintf(&b, "\nMarket value: %d coins", value)
	}

	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s's portfolio", ctx.User().Username),
		Description: b.String(),
		Color:       0x3498db,
	})
}
