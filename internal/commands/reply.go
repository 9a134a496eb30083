package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spigell/careermate/internal/chat"
	"github.com/spigell/careermate/internal/extract"
)

// MessageLimit is the longest message the platform accepts.
const MessageLimit = 2000

const (
	attachFileNotice   = "📎 Please attach a file!"
	unsupportedNotice  = "⚠️ Only .pdf, .docx, or image files are supported."
	emptyFileNotice    = "⚠️ Could not extract text from the file."
	emptyResumeNotice  = "⚠️ Could not extract text from the resume."
	llmFailedNotice    = "⚠️ CareerMate could not answer right now. Please try again later."
	longResponseNotice = "📎 Response too long, see file:"
)

var uploadExtensions = []string{".pdf", ".docx", ".png", ".jpg", ".jpeg", ".txt"}

// uploadAllowed reports whether filename may be uploaded to a command.
func uploadAllowed(filename string) bool {
	return slices.Contains(uploadExtensions, strings.ToLower(filepath.Ext(filename)))
}

// answer sends header+body, or a file named filename when the message would
// exceed MessageLimit.
func answer(ctx context.Context, p chat.Platform, channelID, header, body, filename string) error {
	text := header + body
	if utf8.RuneCountInString(text) <= MessageLimit {
		return p.Send(ctx, channelID, text)
	}
	return p.SendFile(ctx, channelID, longResponseNotice, filename, strings.NewReader(body))
}

// download stores att under dir with a unique name and returns its path.
func download(ctx context.Context, p chat.Platform, att chat.Attachment, dir, prefix string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare %s: %w", dir, err)
	}

	path := filepath.Join(dir, prefix+uuid.NewString()+strings.ToLower(filepath.Ext(att.Filename)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := p.Download(ctx, att, f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// fileText extracts text, mapping unsupported formats to ErrUnsupported.
func fileText(ctx context.Context, x *extract.Extractor, path string) (string, error) {
	if x == nil {
		x = extract.New(nil)
	}
	return x.File(ctx, path)
}

func inResumeChannel(cfg Config, msg chat.Message) bool {
	return slices.Contains(cfg.ResumeChannels, msg.ChannelName)
}
