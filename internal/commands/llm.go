package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/extract"
)

const answerHeader = "🧠 CareerMate:\n"

type botCommand struct{ base }

// NewBot forwards free text to the LLM.
func NewBot() Command {
	return &botCommand{base{name: "bot", description: "Ask any question to the bot 🧠"}}
}

func (c *botCommand) Handle(ctx context.Context, deps Deps, req Request) error {
	channel := req.Message.ChannelID
	if req.Args == "" {
		return deps.Platform.Send(ctx, channel, fmt.Sprintf("💬 Ask me something, e.g. `%sbot how do I prepare for interviews?`", deps.Config.Prefix))
	}

	_ = deps.Platform.Typing(ctx, channel)
	response, err := deps.LLM.GenerateContent(ctx, req.Args)
	if err != nil {
		_ = deps.Platform.Send(ctx, channel, llmFailedNotice)
		return fmt.Errorf("generate answer: %w", err)
	}
	return answer(ctx, deps.Platform, channel, answerHeader, response, "response.txt")
}

type askFileCommand struct{ base }

// NewAskFile answers based on the text of an attached file.
func NewAskFile() Command {
	return &askFileCommand{base{name: "askfile", description: "Ask the bot about an attached file 📎"}}
}

func (c *askFileCommand) Handle(ctx context.Context, deps Deps, req Request) error {
	msg := req.Message
	if len(msg.Attachments) == 0 {
		return deps.Platform.Send(ctx, msg.ChannelID, attachFileNotice)
	}

	att := msg.Attachments[0]
	if !uploadAllowed(att.Filename) {
		return deps.Platform.Send(ctx, msg.ChannelID, unsupportedNotice)
	}

	path, err := download(ctx, deps.Platform, att, deps.Config.TempDir, "")
	if err != nil {
		return fmt.Errorf("download attachment: %w", err)
	}
	defer os.Remove(path)

	text, err := fileText(ctx, deps.Extractor, path)
	if errors.Is(err, extract.ErrUnsupported) {
		return deps.Platform.Send(ctx, msg.ChannelID, unsupportedNotice)
	}
	if err != nil {
		deps.Logger.Warn("file extraction failed", zap.Error(err))
	}
	if strings.TrimSpace(text) == "" {
		return deps.Platform.Send(ctx, msg.ChannelID, emptyFileNotice)
	}

	prompt := text
	if req.Args != "" {
		prompt = req.Args + "\n\n" + text
	}

	_ = deps.Platform.Typing(ctx, msg.ChannelID)
	response, err := deps.LLM.GenerateContent(ctx, prompt)
	if err != nil {
		_ = deps.Platform.Send(ctx, msg.ChannelID, llmFailedNotice)
		return fmt.Errorf("generate answer: %w", err)
	}
	return answer(ctx, deps.Platform, msg.ChannelID, answerHeader, response, "file_response.txt")
}
