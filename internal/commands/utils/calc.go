// Package utils - /calc
package utils

import (
	"fmt"
	"math"

	"github.com/THEREALVANHEL/coalbot/internal/calc"
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createCalcCommand() *discord.Command {
	return discord.NewCommand(
		"calc",
		"Evaluate an arithmetic expression",
		"util",
		calcHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "expression",
			Description: "For example: (2 + 3) * 4",
			Required:    true,
		},
	)
}

func calcHandler(ctx *discord.CommandContext) error {
	expr := ctx.GetStringOption("expression")

	result, err := calc.Eval(expr)
	if err != nil {
		return err
	}

	if result == math.Trunc(result) && math.Abs(result) < 1e15 {
		return ctx.Reply(fmt.Sprintf("`%s` = **%d**", expr, int64(result)))
	}
	return ctx.Reply(fmt.Sprintf("`%s` = **%g**", expr, result))
}
