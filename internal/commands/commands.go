// Package commands implements the prefixed chat commands.
package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/ai"
	"github.com/spigell/careermate/internal/chat"
	"github.com/spigell/careermate/internal/contacts"
	"github.com/spigell/careermate/internal/extract"
	"github.com/spigell/careermate/internal/session"
)

// Command represents a single chat command.
type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Disable(reason string)
	IsEnabled() bool

	Handle(ctx context.Context, deps Deps, req Request) error
}

// Deps aggregates dependencies shared across all commands.
type Deps struct {
	Platform  chat.Platform
	Store     contacts.Store
	LLM       ai.Generator
	Extractor *extract.Extractor
	Resumes   *session.Resumes
	Logger    *zap.Logger
	Config    Config
}

// Config contains settings consumed by the commands.
type Config struct {
	Prefix         string   `mapstructure:"prefix"`
	InviteLink     string   `mapstructure:"-"`
	ResumeChannels []string `mapstructure:"resume-channels"`
	ResumeDir      string   `mapstructure:"resume-dir"`
	TempDir        string   `mapstructure:"temp-dir"`
	ResumeChars    int      `mapstructure:"resume-chars"`
	Disabled       []string `mapstructure:"disabled"`
}

func DefaultConfig() Config {
	return Config{
		Prefix:         "!",
		ResumeChannels: []string{"resume_analyser", "college-community"},
		ResumeDir:      "resumes",
		TempDir:        os.TempDir(),
		ResumeChars:    3000,
	}
}

// Request is an invocation of a command.
type Request struct {
	Message chat.Message
	Name    string
	Args    string
}

// Status represents runtime information about a command.
type Status struct {
	Name        string
	Aliases     []string
	Description string
	Enabled     bool
	Reason      string
}

// base carries the bookkeeping shared by every command.
type base struct {
	name        string
	aliases     []string
	description string
	disabled    bool
	reason      string
}

func (b *base) Name() string        { return b.name }
func (b *base) Aliases() []string   { return b.aliases }
func (b *base) Description() string { return b.description }
func (b *base) IsEnabled() bool     { return !b.disabled }

func (b *base) Disable(reason string) {
	b.disabled = true
	b.reason = reason
}

func (b *base) Status() Status {
	return Status{
		Name:        b.name,
		Aliases:     b.aliases,
		Description: b.description,
		Enabled:     !b.disabled,
		Reason:      b.reason,
	}
}

type statusProvider interface {
	Status() Status
}

// Registry resolves message content to commands.
type Registry struct {
	prefix   string
	commands []Command
	index    map[string]Command
}

func NewRegistry(prefix string) *Registry {
	if prefix == "" {
		prefix = "!"
	}
	return &Registry{prefix: prefix, index: make(map[string]Command)}
}

func (r *Registry) Prefix() string {
	return r.prefix
}

// Register adds commands. Later registrations win on name clashes.
func (r *Registry) Register(cmds ...Command) {
	for _, cmd := range cmds {
		r.commands = append(r.commands, cmd)
		r.index[strings.ToLower(cmd.Name())] = cmd
		for _, alias := range cmd.Aliases() {
			r.index[strings.ToLower(alias)] = cmd
		}
	}
}

// DisableByName marks the named command as disabled while keeping it registered.
func (r *Registry) DisableByName(name, reason string) {
	if cmd, ok := r.index[strings.ToLower(name)]; ok {
		cmd.Disable(reason)
	}
}

// Parse splits content into a known command and its arguments.
func (r *Registry) Parse(content string) (Command, Request, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, r.prefix) {
		return nil, Request{}, false
	}

	rest := strings.TrimPrefix(content, r.prefix)
	name, args, _ := strings.Cut(rest, " ")
	if i := strings.IndexAny(name, "\n\t"); i >= 0 {
		name, args = name[:i], rest[i:]
	}

	cmd, ok := r.index[strings.ToLower(name)]
	if !ok {
		return nil, Request{}, false
	}
	return cmd, Request{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}, true
}

// Dispatch runs the command named by msg, if any. It reports whether msg
// was a command.
func (r *Registry) Dispatch(ctx context.Context, deps Deps, msg chat.Message) (bool, error) {
	cmd, req, ok := r.Parse(msg.Content)
	if !ok {
		return false, nil
	}
	req.Message = msg

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	deps.Logger = log.With(zap.String("command", cmd.Name()), zap.String("author", msg.Author.Name))

	if !cmd.IsEnabled() {
		deps.Logger.Info("command disabled")
		return true, nil
	}

	deps.Logger.Debug("running command", zap.String("args", req.Args))
	if err := cmd.Handle(ctx, deps, req); err != nil {
		return true, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return true, nil
}

// Describe returns status entries for the registered commands in
// registration order.
func (r *Registry) Describe() []Status {
	statuses := make([]Status, 0, len(r.commands))
	for _, cmd := range r.commands {
		if reporter, ok := cmd.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}
		statuses = append(statuses, Status{
			Name:        cmd.Name(),
			Aliases:     cmd.Aliases(),
			Description: cmd.Description(),
			Enabled:     cmd.IsEnabled(),
		})
	}
	return statuses
}

// Default builds the registry with every command.
func Default(cfg Config) *Registry {
	r := NewRegistry(cfg.Prefix)
	r.Register(
		NewGreeting(),
		NewHelp(r),
		NewStatus(),
		NewInvite(),
		NewBot(),
		NewAskFile(),
		NewResume(),
		NewResumeRole(),
	)
	for _, name := range cfg.Disabled {
		r.DisableByName(name, "disabled in configuration")
	}
	return r
}
