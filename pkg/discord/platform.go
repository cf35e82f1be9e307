package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// SessionPlatform implements the ticket service's platform operations
// on top of a discordgo session.
type SessionPlatform struct {
	session *discordgo.Session
}

// NewSessionPlatform wraps a session.
func NewSessionPlatform(session *discordgo.Session) *SessionPlatform {
	return &SessionPlatform{session: session}
}

// CreateTicketChannel creates a private text channel visible to the
// creator and the bot.
func (p *SessionPlatform) CreateTicketChannel(_ context.Context, guildID, categoryID int64, name string, creatorID int64) (int64, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   FormatID(guildID), // @everyone shares the guild id
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    FormatID(creatorID),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
		},
	}

	data := discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	}
	if categoryID != 0 {
		data.ParentID = FormatID(categoryID)
	}

	ch, err := p.session.GuildChannelCreateComplex(FormatID(guildID), data)
	if err != nil {
		return 0, err
	}
	return ParseID(ch.ID), nil
}

// RenameChannel renames a channel.
func (p *SessionPlatform) RenameChannel(_ context.Context, channelID int64, name string) error {
	_, err := p.session.ChannelEdit(FormatID(channelID), &discordgo.ChannelEdit{Name: name})
	return err
}

// SetSendPermission toggles a member's send permission on a channel.
func (p *SessionPlatform) SetSendPermission(_ context.Context, channelID, userID int64, allow bool) error {
	var allowBits, denyBits int64
	allowBits = discordgo.PermissionViewChannel
	if allow {
		allowBits |= discordgo.PermissionSendMessages
	} else {
		denyBits = discordgo.PermissionSendMessages
	}
	return p.session.ChannelPermissionSet(
		FormatID(channelID), FormatID(userID),
		discordgo.PermissionOverwriteTypeMember, allowBits, denyBits)
}

// SetViewPermission toggles a member's visibility on a channel.
func (p *SessionPlatform) SetViewPermission(_ context.Context, channelID, userID int64, allow bool) error {
	var allowBits, denyBits int64
	if allow {
		allowBits = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
	} else {
		denyBits = discordgo.PermissionViewChannel
	}
	return p.session.ChannelPermissionSet(
		FormatID(channelID), FormatID(userID),
		discordgo.PermissionOverwriteTypeMember, allowBits, denyBits)
}

// DeleteChannel deletes a channel.
func (p *SessionPlatform) DeleteChannel(_ context.Context, channelID int64) error {
	_, err := p.session.ChannelDelete(FormatID(channelID))
	return err
}

// SendMessage posts a message to a channel.
func (p *SessionPlatform) SendMessage(_ context.Context, channelID int64, content string) error {
	_, err := p.session.ChannelMessageSend(FormatID(channelID), content)
	return err
}

// Notify sends a direct message to a user; used by the job sweep.
func (p *SessionPlatform) Notify(_ context.Context, userID int64, message string) error {
	dm, err := p.session.UserChannelCreate(FormatID(userID))
	if err != nil {
		return err
	}
	_, err = p.session.ChannelMessageSend(dm.ID, message)
	return err
}
