// Package chattest provides an in-memory chat.Platform for tests.
package chattest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/spigell/careermate/internal/chat"
)

type Sent struct {
	ChannelID string
	Content   string
	Filename  string
	File      []byte
}

type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

type Platform struct {
	mu        sync.Mutex
	channels  map[string][]chat.Channel
	invites   map[string][]chat.Invite
	files     map[string][]byte
	sent      []Sent
	reactions []Reaction

	BotID     string
	InviteErr error
}

func New() *Platform {
	return &Platform{
		channels: make(map[string][]chat.Channel),
		invites:  make(map[string][]chat.Invite),
		files:    make(map[string][]byte),
		BotID:    "bot",
	}
}

func (p *Platform) AddChannel(guildID, id, name string) chat.Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := chat.Channel{ID: id, Name: name}
	p.channels[guildID] = append(p.channels[guildID], ch)
	return ch
}

func (p *Platform) SetInvites(guildID string, invites []chat.Invite) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invites[guildID] = invites
}

// AddFile serves data for attachments whose URL is url.
func (p *Platform) AddFile(url string, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files[url] = data
}

func (p *Platform) Send(_ context.Context, channelID, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, Sent{ChannelID: channelID, Content: content})
	return nil
}

func (p *Platform) SendFile(_ context.Context, channelID, content, filename string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, Sent{ChannelID: channelID, Content: content, Filename: filename, File: data})
	return nil
}

func (p *Platform) React(_ context.Context, channelID, messageID, emoji string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reactions = append(p.reactions, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

func (p *Platform) Typing(context.Context, string) error {
	return nil
}

func (p *Platform) ChannelByName(_ context.Context, guildID, name string) (chat.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.channels[guildID] {
		if ch.Name == name {
			return ch, nil
		}
	}
	return chat.Channel{}, fmt.Errorf("%w: %s", chat.ErrChannelNotFound, name)
}

func (p *Platform) Invites(_ context.Context, guildID string) ([]chat.Invite, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.InviteErr != nil {
		return nil, p.InviteErr
	}
	return append([]chat.Invite(nil), p.invites[guildID]...), nil
}

func (p *Platform) Download(_ context.Context, att chat.Attachment, w io.Writer) error {
	p.mu.Lock()
	data, ok := p.files[att.URL]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("no file at %s", att.URL)
	}
	_, err := io.Copy(w, bytes.NewReader(data))
	return err
}

func (p *Platform) BotUserID() string {
	return p.BotID
}

// Sent returns a copy of everything sent so far.
func (p *Platform) Sent() []Sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Sent(nil), p.sent...)
}

// Messages returns the text content sent to channelID.
func (p *Platform) Messages(channelID string) []string {
	var out []string
	for _, s := range p.Sent() {
		if s.ChannelID == channelID {
			out = append(out, s.Content)
		}
	}
	return out
}

func (p *Platform) Reactions() []Reaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Reaction(nil), p.reactions...)
}

// WaitForPending blocks until w has at least n pending waits.
func WaitForPending(t *testing.T, w *chat.Waiter, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for w.Pending() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d pending waits, got %d", n, w.Pending())
		}
		time.Sleep(time.Millisecond)
	}
}
