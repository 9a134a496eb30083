// Package chat defines the platform-neutral view of the community server the
// bot talks to.
package chat

import (
	"context"
	"errors"
	"io"
)

var (
	ErrTimeout         = errors.New("timed out waiting for a reply")
	ErrChannelNotFound = errors.New("channel not found")
)

type User struct {
	ID   string
	Name string
	Bot  bool
}

func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

type Attachment struct {
	Filename    string
	URL         string
	ContentType string
	Size        int
}

type Message struct {
	ID          string
	ChannelID   string
	ChannelName string
	GuildID     string
	Author      User
	Content     string
	Attachments []Attachment
}

// Member is a guild member as seen on join.
type Member struct {
	User        User
	GuildID     string
	DisplayName string
}

// Names returns the identities a contact name can match against.
func (m Member) Names() []string {
	names := []string{m.User.Name}
	if m.DisplayName != "" && m.DisplayName != m.User.Name {
		names = append(names, m.DisplayName)
	}
	return names
}

type Channel struct {
	ID   string
	Name string
}

type Invite struct {
	Code    string
	Uses    int
	Inviter string
}

// Platform is the subset of the chat service the bot needs.
type Platform interface {
	Send(ctx context.Context, channelID, content string) error
	SendFile(ctx context.Context, channelID, content, filename string, r io.Reader) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	Typing(ctx context.Context, channelID string) error
	ChannelByName(ctx context.Context, guildID, name string) (Channel, error)
	Invites(ctx context.Context, guildID string) ([]Invite, error)
	Download(ctx context.Context, att Attachment, w io.Writer) error
	BotUserID() string
}

// EventHandler receives gateway events. Each call runs on its own goroutine.
type EventHandler interface {
	// HandleReady fires on connect, on resume and for each available guild.
	HandleReady(ctx context.Context, guildIDs []string)
	HandleMemberJoin(ctx context.Context, member Member)
	HandleMessage(ctx context.Context, msg Message)
	HandleDisconnect(ctx context.Context)
}
