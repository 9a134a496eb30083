// Package intake runs the career-assistance conversation with a member.
package intake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spigell/careermate/internal/ai"
	"github.com/spigell/careermate/internal/chat"
	"github.com/spigell/careermate/internal/extract"
	"github.com/spigell/careermate/internal/logger"
	"github.com/spigell/careermate/internal/utils"
)

type State int

const (
	AwaitIntent State = iota
	AwaitResumeOrRole
	AwaitVolunteerResponse
	Done
)

func (s State) String() string {
	switch s {
	case AwaitIntent:
		return "await_intent"
	case AwaitResumeOrRole:
		return "await_resume_or_role"
	case AwaitVolunteerResponse:
		return "await_volunteer_response"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome records how a conversation ended.
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeNoIntent    Outcome = "no_intent"
	OutcomeNoRole      Outcome = "no_role"
	OutcomeEmptyResume Outcome = "empty_resume"
	OutcomeRelayed     Outcome = "relayed"
	OutcomeFallback    Outcome = "fallback"
)

const (
	IntentInternship = "internship"
	IntentJob        = "job"
)

// Request is the career request collected during a conversation.
type Request struct {
	Member    chat.User
	GuildID   string
	ChannelID string
	Intent    string
	Role      string
	Volunteer string
	Reply     string
	Outcome   Outcome
}

// Conversation is the state machine for one member in one channel.
type Conversation struct {
	engine *Engine
	state  State
	direct bool
	req    Request
	logger *zap.Logger
}

func (c *Conversation) State() State {
	return c.state
}

func (c *Conversation) Request() Request {
	return c.req
}

// Run drives the conversation to Done. Timeouts end it normally; the
// returned error is reserved for failures.
func (c *Conversation) Run(ctx context.Context) (Request, error) {
	for c.state != Done {
		var err error
		switch c.state {
		case AwaitIntent:
			err = c.awaitIntent(ctx)
		case AwaitResumeOrRole:
			err = c.awaitResumeOrRole(ctx)
		case AwaitVolunteerResponse:
			err = c.awaitVolunteer(ctx)
		default:
			err = fmt.Errorf("unknown state %s", c.state)
		}
		if err != nil {
			return c.req, fmt.Errorf("%s: %w", c.state, err)
		}
	}
	return c.req, nil
}

func (c *Conversation) finish(outcome Outcome) {
	c.req.Outcome = outcome
	c.state = Done
	c.logger.Info("career intake finished", zap.String("outcome", string(outcome)))
}

func (c *Conversation) say(ctx context.Context, content string) error {
	return c.engine.platform.Send(ctx, c.req.ChannelID, content)
}

func (c *Conversation) awaitIntent(ctx context.Context) error {
	if err := c.say(ctx, intentPrompt(c.req.Member.Mention())); err != nil {
		return err
	}

	from := chat.FromAuthorIn(c.req.Member.ID, c.req.ChannelID)
	msg, err := c.engine.waiter.Wait(ctx, c.engine.cfg.Timeout, func(m chat.Message) bool {
		return from(m) && parseIntent(m.Content) != ""
	})
	if errors.Is(err, chat.ErrTimeout) {
		c.finish(OutcomeNoIntent)
		return c.say(ctx, noIntentNotice(c.req.Member.Mention()))
	}
	if err != nil {
		return err
	}

	c.req.Intent = parseIntent(msg.Content)
	c.state = AwaitResumeOrRole
	return nil
}

func (c *Conversation) awaitResumeOrRole(ctx context.Context) error {
	mention := c.req.Member.Mention()
	timeoutSec := int(c.engine.cfg.Timeout / time.Second)
	if err := c.say(ctx, resumePrompt(mention, c.direct, timeoutSec)); err != nil {
		return err
	}

	msg, err := c.engine.waiter.Wait(ctx, c.engine.cfg.Timeout, chat.FromAuthorIn(c.req.Member.ID, c.req.ChannelID))
	if errors.Is(err, chat.ErrTimeout) {
		c.finish(OutcomeNoRole)
		return c.say(ctx, noRoleNotice(mention, c.direct))
	}
	if err != nil {
		return err
	}

	if len(msg.Attachments) == 0 {
		role := TitleRole(msg.Content)
		if role == "" {
			c.finish(OutcomeNoRole)
			return c.say(ctx, noRoleNotice(mention, c.direct))
		}
		c.req.Role = role
		c.state = AwaitVolunteerResponse
		return nil
	}

	text, err := c.engine.resumeText(ctx, msg.Attachments[0])
	if err != nil {
		c.logger.Warn("resume extraction failed", zap.Error(err))
		c.finish(OutcomeEmptyResume)
		if errors.Is(err, extract.ErrUnsupported) {
			return c.say(ctx, unsupportedNotice)
		}
		return c.say(ctx, emptyResumeNotice)
	}
	if text == "" {
		c.finish(OutcomeEmptyResume)
		return c.say(ctx, emptyResumeNotice)
	}

	answer, err := c.engine.llm.GenerateContent(ctx, rolePrompt(utils.Head(text, c.engine.cfg.ResumeChars)))
	if err != nil {
		return fmt.Errorf("suggest role: %w", err)
	}
	c.req.Role = FirstLine(answer)
	c.state = AwaitVolunteerResponse
	return nil
}

func (c *Conversation) awaitVolunteer(ctx context.Context) error {
	if err := c.say(ctx, roleSelected(c.req.Role, c.req.Intent)); err != nil {
		return err
	}

	volunteers, err := c.engine.platform.ChannelByName(ctx, c.req.GuildID, c.engine.cfg.VolunteerChannel)
	if err != nil {
		c.logger.Warn("volunteer channel unavailable, sending links", zap.Error(err))
		return c.sendFallback(ctx)
	}

	broadcast := volunteerBroadcast(c.req.Member.Name, c.req.Intent, c.req.Role)
	if err := c.engine.platform.Send(ctx, volunteers.ID, broadcast); err != nil {
		return fmt.Errorf("broadcast to volunteers: %w", err)
	}

	botID := c.engine.platform.BotUserID()
	human := chat.HumanIn(volunteers.ID)
	reply, err := c.engine.waiter.Wait(ctx, c.engine.cfg.Timeout, func(m chat.Message) bool {
		return human(m) && m.Author.ID != botID
	})
	if errors.Is(err, chat.ErrTimeout) {
		return c.sendFallback(ctx)
	}
	if err != nil {
		return err
	}

	c.req.Volunteer = reply.Author.Name
	c.req.Reply = reply.Content
	c.finish(OutcomeRelayed)
	return c.say(ctx, relay(c.req.Member.Mention(), reply.Author.Name, reply.Content))
}

func (c *Conversation) sendFallback(ctx context.Context) error {
	c.finish(OutcomeFallback)
	return c.say(ctx, fallback(c.req.Member.Mention(), c.req.Role, c.req.Intent))
}

// Config tunes the conversation.
type Config struct {
	CommunityChannel string        `mapstructure:"community-channel"`
	VolunteerChannel string        `mapstructure:"volunteer-channel"`
	Timeout          time.Duration `mapstructure:"timeout"`
	ResumeChars      int           `mapstructure:"resume-chars"`
	TempDir          string        `mapstructure:"temp-dir"`
}

func DefaultConfig() Config {
	return Config{
		CommunityChannel: "college-community",
		VolunteerChannel: "alumni-requests",
		Timeout:          60 * time.Second,
		ResumeChars:      3000,
	}
}

// Engine starts conversations and shares the collaborators between them.
type Engine struct {
	platform  chat.Platform
	waiter    *chat.Waiter
	llm       ai.Generator
	extractor *extract.Extractor
	cfg       Config
	logger    *zap.Logger
}

func New(platform chat.Platform, waiter *chat.Waiter, llm ai.Generator, extractor *extract.Extractor, cfg Config, log *zap.Logger) *Engine {
	def := DefaultConfig()
	if cfg.CommunityChannel == "" {
		cfg.CommunityChannel = def.CommunityChannel
	}
	if cfg.VolunteerChannel == "" {
		cfg.VolunteerChannel = def.VolunteerChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ResumeChars <= 0 {
		cfg.ResumeChars = def.ResumeChars
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		platform:  platform,
		waiter:    waiter,
		llm:       llm,
		extractor: extractor,
		cfg:       cfg,
		logger:    log,
	}
}

func (e *Engine) CommunityChannel() string {
	return e.cfg.CommunityChannel
}

// Begin creates a conversation that first asks for the intent.
func (e *Engine) Begin(member chat.User, guildID, channelID string) *Conversation {
	return e.newConversation(member, guildID, channelID, AwaitIntent, "")
}

// BeginWithIntent creates a conversation whose intent is already known.
func (e *Engine) BeginWithIntent(member chat.User, guildID, channelID, intent string) *Conversation {
	c := e.newConversation(member, guildID, channelID, AwaitResumeOrRole, intent)
	c.direct = true
	return c
}

func (e *Engine) newConversation(member chat.User, guildID, channelID string, state State, intent string) *Conversation {
	return &Conversation{
		engine: e,
		state:  state,
		req: Request{
			Member:    member,
			GuildID:   guildID,
			ChannelID: channelID,
			Intent:    intent,
		},
		logger: logger.WithMember(e.logger, member.Name, guildID, channelID),
	}
}

// StartForMember runs a full conversation in the guild's community channel.
// It blocks until the conversation ends.
func (e *Engine) StartForMember(ctx context.Context, member chat.Member) {
	ch, err := e.platform.ChannelByName(ctx, member.GuildID, e.cfg.CommunityChannel)
	if err != nil {
		e.logger.Warn("community channel unavailable, skipping career intake",
			zap.String(logger.FieldMember, member.User.Name), zap.Error(err))
		return
	}
	e.Run(ctx, e.Begin(member.User, member.GuildID, ch.ID))
}

// HandleApply starts a conversation when msg asks to apply for an
// internship or job in the community channel. It reports whether one was
// started; the conversation runs on its own goroutine.
func (e *Engine) HandleApply(ctx context.Context, msg chat.Message) bool {
	if msg.Author.Bot || msg.ChannelName != e.cfg.CommunityChannel {
		return false
	}
	intent := ApplyIntent(msg.Content)
	if intent == "" {
		return false
	}
	go e.Run(ctx, e.BeginWithIntent(msg.Author, msg.GuildID, msg.ChannelID, intent))
	return true
}

// Run executes c, recovering panics so one conversation cannot take the bot
// down. Failures are logged and end the conversation silently.
func (e *Engine) Run(ctx context.Context, c *Conversation) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("career intake panicked", zap.Any("panic", r), zap.Stringer("state", c.state))
		}
	}()

	c.logger.Info("career intake started", zap.Stringer("state", c.state))
	if _, err := c.Run(ctx); err != nil {
		c.logger.Error("career intake failed", zap.Error(err))
	}
}

func (e *Engine) resumeText(ctx context.Context, att chat.Attachment) (string, error) {
	if !extract.Supported(att.Filename) {
		return "", fmt.Errorf("%w: %s", extract.ErrUnsupported, att.Filename)
	}

	path := filepath.Join(e.cfg.TempDir, uuid.NewString()+strings.ToLower(filepath.Ext(att.Filename)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(path)

	if err := e.platform.Download(ctx, att, f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return e.extractor.File(ctx, path)
}

func parseIntent(content string) string {
	switch strings.ToLower(strings.TrimSpace(content)) {
	case IntentInternship:
		return IntentInternship
	case IntentJob:
		return IntentJob
	}
	return ""
}

// ApplyIntent returns the intent named by a free-form "apply" message, or ""
// when the message is not an application request. Internship wins when both
// are mentioned.
func ApplyIntent(content string) string {
	lower := strings.ToLower(content)
	if !strings.Contains(lower, "apply") {
		return ""
	}
	switch {
	case strings.Contains(lower, IntentInternship):
		return IntentInternship
	case strings.Contains(lower, IntentJob):
		return IntentJob
	}
	return ""
}

// TitleRole trims and title-cases a typed role.
func TitleRole(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// FirstLine returns the first line of an LLM answer without markdown
// emphasis or quotes.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, " \t\r*\"'`")
}
