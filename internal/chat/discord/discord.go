// Package discord adapts a discordgo session to the chat interfaces.
package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/chat"
)

const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildInvites

type Platform struct {
	session *discordgo.Session
	logger  *zap.Logger
}

func New(token string, logger *zap.Logger) (*Platform, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = Intents

	return &Platform{session: session, logger: logger}, nil
}

// Run connects to the gateway, feeds events to handler and blocks until ctx
// is done.
func (p *Platform) Run(ctx context.Context, handler chat.EventHandler) error {
	p.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		handler.HandleReady(ctx, guildIDs(r.Guilds))
	})
	// A resumed session gets no Ready, so snapshots dropped on disconnect
	// are rebuilt here and as guilds become available.
	p.session.AddHandler(func(s *discordgo.Session, _ *discordgo.Resumed) {
		handler.HandleReady(ctx, stateGuildIDs(s.State))
	})
	p.session.AddHandler(func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		if g.Guild == nil {
			return
		}
		handler.HandleReady(ctx, []string{g.ID})
	})
	p.session.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.Member == nil || m.Member.User == nil {
			return
		}
		handler.HandleMemberJoin(ctx, toMember(m.Member))
	})
	p.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Message == nil || m.Author == nil {
			return
		}
		handler.HandleMessage(ctx, toMessage(m.Message, p.channelName(m.ChannelID)))
	})
	p.session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		handler.HandleDisconnect(ctx)
	})

	if err := p.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	p.logger.Info("connected to discord", zap.String("bot_user", p.BotUserID()))

	<-ctx.Done()

	if err := p.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	return nil
}

func (p *Platform) Send(ctx context.Context, channelID, content string) error {
	_, err := p.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return err
}

func (p *Platform) SendFile(ctx context.Context, channelID, content, filename string, r io.Reader) error {
	_, err := p.session.ChannelFileSendWithMessage(channelID, content, filename, r, discordgo.WithContext(ctx))
	return err
}

func (p *Platform) React(ctx context.Context, channelID, messageID, emoji string) error {
	return p.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (p *Platform) Typing(ctx context.Context, channelID string) error {
	return p.session.ChannelTyping(channelID, discordgo.WithContext(ctx))
}

func (p *Platform) ChannelByName(ctx context.Context, guildID, name string) (chat.Channel, error) {
	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return chat.Channel{}, fmt.Errorf("list channels: %w", err)
	}
	return findTextChannel(channels, name)
}

func (p *Platform) Invites(ctx context.Context, guildID string) ([]chat.Invite, error) {
	invites, err := p.session.GuildInvites(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}

	out := make([]chat.Invite, 0, len(invites))
	for _, inv := range invites {
		if inv == nil {
			continue
		}
		item := chat.Invite{Code: inv.Code, Uses: inv.Uses}
		if inv.Inviter != nil {
			item.Inviter = inv.Inviter.Username
		}
		out = append(out, item)
	}
	return out, nil
}

func (p *Platform) Download(ctx context.Context, att chat.Attachment, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
	if err != nil {
		return err
	}

	client := p.session.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", att.Filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: http %d", att.Filename, resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", att.Filename, err)
	}
	return nil
}

func (p *Platform) BotUserID() string {
	if p.session.State == nil || p.session.State.User == nil {
		return ""
	}
	return p.session.State.User.ID
}

func (p *Platform) channelName(channelID string) string {
	if p.session.State != nil {
		if ch, err := p.session.State.Channel(channelID); err == nil {
			return ch.Name
		}
	}
	ch, err := p.session.Channel(channelID)
	if err != nil {
		p.logger.Debug("channel lookup failed", zap.String("channel_id", channelID), zap.Error(err))
		return ""
	}
	return ch.Name
}

func guildIDs(guilds []*discordgo.Guild) []string {
	ids := make([]string, 0, len(guilds))
	for _, g := range guilds {
		if g != nil {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

func stateGuildIDs(state *discordgo.State) []string {
	if state == nil {
		return nil
	}
	state.RLock()
	defer state.RUnlock()
	return guildIDs(state.Guilds)
}

func findTextChannel(channels []*discordgo.Channel, name string) (chat.Channel, error) {
	for _, ch := range channels {
		if ch == nil || ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if ch.Name == name {
			return chat.Channel{ID: ch.ID, Name: ch.Name}, nil
		}
	}
	return chat.Channel{}, fmt.Errorf("%w: %s", chat.ErrChannelNotFound, name)
}

func toUser(u *discordgo.User) chat.User {
	if u == nil {
		return chat.User{}
	}
	return chat.User{ID: u.ID, Name: u.Username, Bot: u.Bot}
}

func toMember(m *discordgo.Member) chat.Member {
	display := m.Nick
	if display == "" && m.User != nil {
		display = m.User.GlobalName
	}
	if display == "" && m.User != nil {
		display = m.User.Username
	}
	return chat.Member{
		User:        toUser(m.User),
		GuildID:     m.GuildID,
		DisplayName: display,
	}
}

func toMessage(m *discordgo.Message, channelName string) chat.Message {
	msg := chat.Message{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		ChannelName: channelName,
		GuildID:     m.GuildID,
		Author:      toUser(m.Author),
		Content:     m.Content,
	}
	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		msg.Attachments = append(msg.Attachments, chat.Attachment{
			Filename:    a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return msg
}
