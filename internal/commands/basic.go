package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/careermate/internal/contacts"
)

type greetingCommand struct{ base }

// NewGreeting answers hello, hi, hii and hey.
func NewGreeting() Command {
	return &greetingCommand{base{
		name:        "hello",
		aliases:     []string{"hi", "hii", "hey"},
		description: "Greet the bot 👋",
	}}
}

func (c *greetingCommand) Handle(ctx context.Context, deps Deps, req Request) error {
	word := "Hello"
	switch req.Name {
	case "hi":
		word = "Hi"
	case "hii":
		word = "Hii"
	}
	return deps.Platform.Send(ctx, req.Message.ChannelID,
		fmt.Sprintf("👋 %s, %s! I'm your CareerMate bot.", word, req.Message.Author.Mention()))
}

type inviteCommand struct{ base }

func NewInvite() Command {
	return &inviteCommand{base{name: "invite", description: "Get the server invite link 📩"}}
}

func (c *inviteCommand) Handle(ctx context.Context, deps Deps, req Request) error {
	link := strings.TrimSpace(deps.Config.InviteLink)
	if link == "" {
		return deps.Platform.Send(ctx, req.Message.ChannelID, "⚠️ No invite link is configured.")
	}
	return deps.Platform.Send(ctx, req.Message.ChannelID, "📩 Here’s your invite link: "+link)
}

type statusCommand struct{ base }

func NewStatus() Command {
	return &statusCommand{base{name: "status", description: "Show how many contacts have joined 📊"}}
}

func (c *statusCommand) Handle(ctx context.Context, deps Deps, req Request) error {
	list, err := deps.Store.Load(ctx)
	if err != nil {
		_ = deps.Platform.Send(ctx, req.Message.ChannelID, "⚠️ Contact list is unavailable right now.")
		return fmt.Errorf("load contacts: %w", err)
	}

	counts := contacts.Count(list)
	return deps.Platform.Send(ctx, req.Message.ChannelID, fmt.Sprintf(
		"📊 Status:\n👥 Total: %d\n✅ Joined: %d\n⏳ Pending: %d", counts.Total, counts.Joined, counts.Pending))
}

type helpCommand struct {
	base
	registry *Registry
}

// NewHelp lists the enabled commands of registry.
func NewHelp(registry *Registry) Command {
	return &helpCommand{
		base:     base{name: "help", description: "Show this help menu ℹ️"},
		registry: registry,
	}
}

func (c *helpCommand) Handle(ctx context.Context, deps Deps, req Request) error {
	return deps.Platform.Send(ctx, req.Message.ChannelID, HelpText(c.registry))
}

// HelpText renders the help menu from the registry.
func HelpText(r *Registry) string {
	var b strings.Builder
	b.WriteString("👋 **Welcome to CareerMate Discord Help Menu**\n\n")
	b.WriteString("📌 **Available Commands:**\n")
	for _, st := range r.Describe() {
		if !st.Enabled {
			continue
		}
		names := "`" + r.Prefix() + st.Name + "`"
		for _, alias := range st.Aliases {
			names += ", `" + r.Prefix() + alias + "`"
		}
		fmt.Fprintf(&b, "• %s – %s\n", names, st.Description)
	}
	b.WriteString("• `want to apply for internship/job` – get matched with alumni for an internship or job 💼\n")
	return b.String()
}
