// Package economy - the /coins, /job, /stocks and /pet command groups
package economy

import (
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
)

// RegisterEconomyCommands registers the economy command groups
func RegisterEconomyCommands(client *discord.ExtendedClient) {
	ch := client.CommandHandler

	coins := ch.BuildCommandGroup("coins", "Wallet, bank and daily rewards",
		createBalanceCommand(),
		createDailyCommand(),
		createGambleCommand(),
		createTransferCommand(),
		createDepositCommand(),
		createWithdrawCommand(),
		createSavingsCommand(),
		createLeaderboardCommand(),
	)
	ch.AddGlobalCommand(coins)

	job := ch.BuildCommandGroup("job", "Work shifts and career progression",
		createWorkCommand(),
		createJobListCommand(),
	)
	ch.AddGlobalCommand(job)

	shop := ch.BuildCommandGroup("shop", "Browse and buy items",
		createShopListCommand(),
		createBuyCommand(),
	)
	ch.AddGlobalCommand(shop)

	stocks := ch.BuildCommandGroup("stocks", "Trade the community market",
		createQuoteCommand(),
		createStockBuyCommand(),
		createStockSellCommand(),
		createPortfolioCommand(),
	)
	ch.AddGlobalCommand(stocks)

	pet := ch.BuildCommandGroup("pet", "Adopt and care for a companion",
		createAdoptCommand(),
		createFeedCommand(),
		createPlayCommand(),
		createHealCommand(),
	)
	ch.AddGlobalCommand(pet)
}
