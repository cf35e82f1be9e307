// Package economy - /job work and /job list
package economy

import (
	"context"
	"fmt"
	"strings"

	ecosvc "github.com/THEREALVANHEL/coalbot/internal/economy"
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createWorkCommand() *discord.Command {
	return discord.NewCommand(
		"work",
		"Work a shift at a job",
		"economy",
		workHandler,
	).WithFeature("economy").WithAction("work").WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "job",
			Description:  "Which job to work",
			Required:     true,
			Autocomplete: true,
		},
	).WithAutoComplete(workAutoComplete)
}

func workHandler(ctx *discord.CommandContext) error {
	jobName := ctx.GetStringOption("job")

	result, err := ctx.Client.Services.Economy.Work(context.Background(), ctx.UserID(), jobName)
	if err != nil {
		return err
	}

	if !result.Success {
		return ctx.Reply(fmt.Sprintf("The %s shift went badly, no pay this time. Your streak reset.", result.Job.Name))
	}

	ctx.Client.Services.Security.RecordGain(ctx.UserID(), result.Pay+result.StreakBonus)

	msg := fmt.Sprintf("You earned %d coins as a %s.", result.Pay, result.Job.Name)
	if result.StreakBonus > 0 {
		msg += fmt.Sprintf(" Streak bonus: +%d (streak %d).", result.StreakBonus, result.WorkStreak)
	}
	if result.Promotion != "" {
		msg += fmt.Sprintf(" The %s tier is now open to you!", result.Promotion)
	}
	return ctx.Reply(msg)
}

func workAutoComplete(ctx *discord.CommandContext) {
	u, err := ctx.Client.Services.Economy.GetUser(context.Background(), ctx.UserID())
	if err != nil {
		return
	}

	jobs := ecosvc.AvailableJobs(u.SuccessfulWorks)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(jobs))
	typed := strings.ToLower(ctx.GetStringOption("job"))
	for _, j := range jobs {
		if typed != "" && !strings.Contains(j.Name, typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%d-%d coins)", j.Name, j.MinPay, j.MaxPay),
			Value: j.Name,
		})
		if len(choices) == 25 {
			break
		}
	}

	_ = ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}

func createJobListCommand() *discord.Command {
	return discord.NewCommand(
		"list",
		"Show the jobs your experience unlocks",
		"economy",
		jobListHandler,
	).WithFeature("economy")
}

func jobListHandler(ctx *discord.CommandContext) error {
	u, err := ctx.Client.Services.Economy.GetUser(context.Background(), ctx.UserID())
	if err != nil {
		return err
	}

	jobs := ecosvc.AvailableJobs(u.SuccessfulWorks)
	var b strings.Builder
	for _, j := range jobs {
		fmt.Fprintf(&b, "**%s** (%s tier) - %d to %d coins\n", j.Name, j.Tier, j.MinPay, j.MaxPay)
	}
	if next := ecosvc.NextTier(u.JobTier); next != "" {
		fmt.Fprintf(&b, "\nNext tier: %s at %d successful shifts (you have %d).",
			next, ecosvc.TierThreshold(next), u.SuccessfulWorks)
	}

	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Available jobs",
		Description: b.String(),
		Color:       0x2ecc71,
	})
}
