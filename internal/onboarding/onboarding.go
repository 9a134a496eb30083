// Package onboarding reacts to members joining the community server.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/chat"
	"github.com/spigell/careermate/internal/contacts"
	"github.com/spigell/careermate/internal/logger"
	"github.com/spigell/careermate/internal/session"
	"github.com/spigell/careermate/internal/utils"
)

// FollowUp continues with a matched student or alumnus. It blocks until done.
type FollowUp func(ctx context.Context, member chat.Member)

type Config struct {
	ServerName      string        `mapstructure:"server-name"`
	WelcomeChannels []string      `mapstructure:"welcome-channels"`
	FollowUpDelay   time.Duration `mapstructure:"follow-up-delay"`
	CommandPrefix   string        `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		ServerName:      "CareerMate Discord",
		WelcomeChannels: []string{"general", "college-community"},
		FollowUpDelay:   10 * time.Second,
		CommandPrefix:   "!",
	}
}

// Result describes what a join produced.
type Result struct {
	Invite   *chat.Invite
	Matched  bool
	Contact  contacts.Contact
	FollowUp bool
}

type Engine struct {
	platform chat.Platform
	store    contacts.Store
	state    *session.State
	followUp FollowUp
	cfg      Config
	logger   *zap.Logger
}

func New(platform chat.Platform, store contacts.Store, state *session.State, followUp FollowUp, cfg Config, log *zap.Logger) *Engine {
	def := DefaultConfig()
	if cfg.ServerName == "" {
		cfg.ServerName = def.ServerName
	}
	if cfg.WelcomeChannels == nil {
		cfg.WelcomeChannels = def.WelcomeChannels
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = def.CommandPrefix
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		platform: platform,
		store:    store,
		state:    state,
		followUp: followUp,
		cfg:      cfg,
		logger:   log,
	}
}

// SnapshotInvites records the current invite usage of every guild.
func (e *Engine) SnapshotInvites(ctx context.Context, guildIDs []string) {
	for _, id := range guildIDs {
		invites, err := e.platform.Invites(ctx, id)
		if err != nil {
			e.logger.Warn("failed to snapshot invites", zap.String(logger.FieldGuild, id), zap.Error(err))
			continue
		}
		e.state.Invites.Snapshot(id, invites)
	}
}

// HandleJoin welcomes the member, attributes the invite, marks a matching
// contact as joined and runs the follow-up for students and alumni.
func (e *Engine) HandleJoin(ctx context.Context, member chat.Member) (Result, error) {
	log := logger.WithMember(e.logger, member.User.Name, member.GuildID, "")
	log.Info("member joined", zap.String("display_name", member.DisplayName))

	e.welcome(ctx, member, log)

	var res Result
	res.Invite = e.attributeInvite(ctx, member.GuildID, log)

	_, err := contacts.Update(ctx, e.store, func(list []contacts.Contact) (bool, error) {
		i := MatchContact(list, member.Names()...)
		if i < 0 {
			return false, nil
		}
		list[i].Status = contacts.Joined
		res.Matched = true
		res.Contact = list[i]
		return true, nil
	})
	if err != nil {
		return res, fmt.Errorf("mark contact joined: %w", err)
	}

	if !res.Matched {
		log.Info("no contact matched")
		return res, nil
	}
	log.Info("contact marked as joined",
		zap.String("contact", res.Contact.Name),
		zap.String("category", string(res.Contact.Category)),
	)

	switch res.Contact.Category.Normalize() {
	case contacts.Student, contacts.Alumni:
	default:
		log.Info("no follow-up for contact category", zap.String("category", string(res.Contact.Category)))
		return res, nil
	}

	if e.followUp == nil {
		return res, nil
	}
	if err := utils.WaitFor(ctx, e.cfg.FollowUpDelay); err != nil {
		return res, err
	}
	res.FollowUp = true
	e.followUp(ctx, member)
	return res, nil
}

func (e *Engine) welcome(ctx context.Context, member chat.Member, log *zap.Logger) {
	text := fmt.Sprintf("🎉 Welcome %s to **%s**!\n\n👉 Type `%shelp` to see all available commands and get started.",
		member.User.Mention(), e.cfg.ServerName, e.cfg.CommandPrefix)

	for _, name := range e.cfg.WelcomeChannels {
		ch, err := e.platform.ChannelByName(ctx, member.GuildID, name)
		if errors.Is(err, chat.ErrChannelNotFound) {
			continue
		}
		if err != nil {
			log.Warn("welcome channel lookup failed", zap.String("channel", name), zap.Error(err))
			continue
		}
		if err := e.platform.Send(ctx, ch.ID, text); err != nil {
			log.Warn("failed to send welcome", zap.String("channel", name), zap.Error(err))
		}
	}
}

func (e *Engine) attributeInvite(ctx context.Context, guildID string, log *zap.Logger) *chat.Invite {
	invites, err := e.platform.Invites(ctx, guildID)
	if err != nil {
		log.Warn("failed to check invites", zap.Error(err))
		return nil
	}

	used, ok := e.state.Invites.Diff(guildID, invites)
	if !ok {
		log.Debug("no invite attributed")
		return nil
	}
	log.Info("invite attributed", zap.String("code", used.Code), zap.String("inviter", used.Inviter), zap.Int("uses", used.Uses))
	return &used
}
