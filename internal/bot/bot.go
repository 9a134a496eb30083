// Package bot routes gateway events to the onboarding, intake and command
// handlers.
package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/chat"
	"github.com/spigell/careermate/internal/commands"
	"github.com/spigell/careermate/internal/intake"
	"github.com/spigell/careermate/internal/logger"
	"github.com/spigell/careermate/internal/onboarding"
	"github.com/spigell/careermate/internal/session"
)

// Bot implements chat.EventHandler.
type Bot struct {
	platform   chat.Platform
	waiter     *chat.Waiter
	state      *session.State
	onboarding *onboarding.Engine
	intake     *intake.Engine
	registry   *commands.Registry
	deps       commands.Deps
	logger     *zap.Logger
}

type Options struct {
	Platform   chat.Platform
	Waiter     *chat.Waiter
	State      *session.State
	Onboarding *onboarding.Engine
	Intake     *intake.Engine
	Registry   *commands.Registry
	Commands   commands.Deps
	Logger     *zap.Logger
}

func New(opts Options) *Bot {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		platform:   opts.Platform,
		waiter:     opts.Waiter,
		state:      opts.State,
		onboarding: opts.Onboarding,
		intake:     opts.Intake,
		registry:   opts.Registry,
		deps:       opts.Commands,
		logger:     log,
	}
}

var _ chat.EventHandler = (*Bot)(nil)

func (b *Bot) HandleReady(ctx context.Context, guildIDs []string) {
	defer b.guard("ready")

	b.logger.Info("snapshotting invites", zap.Int("guilds", len(guildIDs)))
	b.onboarding.SnapshotInvites(ctx, guildIDs)
}

func (b *Bot) HandleMemberJoin(ctx context.Context, member chat.Member) {
	defer b.guard("member_join")

	if _, err := b.onboarding.HandleJoin(ctx, member); err != nil {
		logger.WithMember(b.logger, member.User.Name, member.GuildID, "").
			Error("member join handling failed", zap.Error(err))
	}
}

func (b *Bot) HandleMessage(ctx context.Context, msg chat.Message) {
	defer b.guard("message")

	if msg.Author.ID == b.platform.BotUserID() {
		return
	}

	// Conversation waits apply their own author filters.
	b.waiter.Dispatch(msg)

	if msg.Author.Bot {
		return
	}

	handled, err := b.registry.Dispatch(ctx, b.deps, msg)
	if err != nil {
		logger.WithMember(b.logger, msg.Author.Name, msg.GuildID, msg.ChannelID).
			Error("command failed", zap.Error(err))
	}
	if handled {
		return
	}

	b.intake.HandleApply(ctx, msg)
}

func (b *Bot) HandleDisconnect(context.Context) {
	b.logger.Warn("gateway disconnected, resetting session state")
	b.state.Reset()
}

func (b *Bot) guard(event string) {
	if r := recover(); r != nil {
		b.logger.Error("event handler panicked", zap.String("event", event), zap.Any("panic", r))
	}
}
