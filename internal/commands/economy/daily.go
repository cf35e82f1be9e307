// Package economy - /coins daily
package economy

import (
	"context"
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
)

func createDailyCommand() *discord.Command {
	return discord.NewCommand(
		"daily",
		"Claim your daily cookie",
		"economy",
		dailyHandler,
	).WithFeature("economy").WithAction("daily")
}

func dailyHandler(ctx *discord.CommandContext) error {
	result, err := ctx.Client.Services.Economy.ClaimDaily(context.Background(), ctx.UserID())
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("You claimed %d cookie(s)! Streak: %d days. Total cookies: %d.",
		result.Reward, result.Streak, result.TotalCookies)
	if result.WeeklyBonus {
		msg += " Weekly streak bonus included!"
	}
	return ctx.Reply(msg)
}
