// Package economy - the /pet subcommands
package economy

import (
	"context"
	"fmt"

	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createAdoptCommand() *discord.Command {
	return discord.NewCommand(
		"adopt",
		"Adopt a pet",
		"economy",
		adoptHandler,
	).WithFeature("pets").WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: "What to call your pet",
			Required:    true,
		},
	)
}

func adoptHandler(ctx *discord.CommandContext) error {
	name := ctx.GetStringOption("name")
	pet, err := ctx.Client.Services.Economy.AdoptPet(context.Background(), ctx.UserID(), name)
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Welcome home, %s! Feed it and play with it to level it up.", pet.Name))
}

func createFeedCommand() *discord.Command {
	return discord.NewCommand(
		"feed",
		"Feed your pet (uses one pet food)",
		"economy",
		feedHandler,
	).WithFeature("pets")
}

func feedHandler(ctx *discord.CommandContext) error {
	pet, err := ctx.Client.Services.Economy.FeedPet(context.Background(), ctx.UserID())
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("%s ate well. Hunger: %d/100, health: %d/100.", pet.Name, pet.Hunger, pet.Health))
}

func createPlayCommand() *discord.Command {
	return discord.NewCommand(
		"play",
		"Play with your pet",
		"economy",
		playHandler,
	).WithFeature("pets")
}

func playHandler(ctx *discord.CommandContext) error {
	result, err := ctx.Client.Services.Economy.PlayWithPet(context.Background(), ctx.UserID())
	if err != nil {
		return err
	}

	pet := result.Pet
	msg := fmt.Sprintf("%s had fun and gained %d exp. Happiness: %d/100.", pet.Name, result.ExpGained, pet.Happiness)
	if result.LeveledUp {
		msg += fmt.Sprintf(" %s reached level %d!", pet.Name, pet.Level)
	}
	return ctx.Reply(msg)
}

func createHealCommand() *discord.Command {
	return discord.NewCommand(
		"heal",
		"Heal your pet (uses one pet medicine)",
		"economy",
		healHandler,
	).WithFeature("pets")
}

func healHandler(ctx *discord.CommandContext) error {
	pet, err := ctx.Client.Services.Economy.HealPet(context.Background(), ctx.UserID())
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("%s is back to full health (%d/%d HP).", pet.Name, pet.HP, pet.MaxHP))
}
