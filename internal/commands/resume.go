package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/extract"
	"github.com/spigell/careermate/internal/utils"
)

const reviewedEmoji = "✅"

type resumeCommand struct{ base }

// NewResume reviews an attached resume section by section.
func NewResume() Command {
	return &resumeCommand{base{name: "resume", description: "Upload your resume for AI review and suggestions 💼"}}
}

func (c *resumeCommand) Handle(ctx context.Context, deps Deps, req Request) error {
	msg := req.Message
	if !inResumeChannel(deps.Config, msg) {
		deps.Logger.Debug("resume command outside resume channels", zap.String("channel", msg.ChannelName))
		return nil
	}
	if len(msg.Attachments) == 0 {
		return deps.Platform.Send(ctx, msg.ChannelID, "📎 Please attach a resume (.pdf, .docx, or image)!")
	}

	att := msg.Attachments[0]
	if !uploadAllowed(att.Filename) {
		return deps.Platform.Send(ctx, msg.ChannelID, unsupportedNotice)
	}

	path, err := download(ctx, deps.Platform, att, deps.Config.TempDir, "")
	if err != nil {
		return fmt.Errorf("download resume: %w", err)
	}
	defer os.Remove(path)

	_ = deps.Platform.Typing(ctx, msg.ChannelID)

	text, err := fileText(ctx, deps.Extractor, path)
	if errors.Is(err, extract.ErrUnsupported) {
		return deps.Platform.Send(ctx, msg.ChannelID, unsupportedNotice)
	}
	if err != nil {
		deps.Logger.Warn("resume extraction failed", zap.Error(err))
	}
	if strings.TrimSpace(text) == "" {
		return deps.Platform.Send(ctx, msg.ChannelID, emptyResumeNotice)
	}

	review, err := deps.LLM.GenerateContent(ctx, reviewPrompt(utils.Head(text, deps.Config.ResumeChars)))
	if err != nil {
		_ = deps.Platform.Send(ctx, msg.ChannelID, "⚠️ Error analyzing resume: "+err.Error())
		return fmt.Errorf("review resume: %w", err)
	}

	header := fmt.Sprintf("📄 **Resume Review for `%s`**\n\n", msg.Author.Name)
	if err := answer(ctx, deps.Platform, msg.ChannelID, header, review, "resume_review.txt"); err != nil {
		return err
	}
	return deps.Platform.React(ctx, msg.ChannelID, msg.ID, reviewedEmoji)
}

func reviewPrompt(text string) string {
	return `You are a professional resume reviewer.

Analyze the resume below and provide:

1. Score (0–100) for each section:
   - Objective
   - Experience
   - Projects
   - Skills
   - Education
   - Certifications

2. Overall Score (0–100)

3. Best Recommended Role (1 job title only)

4. Key Strengths (3 bullet points)

5. Key Weaknesses (3 bullet points)

6. Suggestions to improve each section

Resume:
` + text + "\n"
}

type resumeRoleCommand struct{ base }

// NewResumeRole suggests roles for an attached or previously uploaded resume.
func NewResumeRole() Command {
	return &resumeRoleCommand{base{name: "resume-role", description: "Get job/internship role recommendations from your resume 🔍"}}
}

func (c *resumeRoleCommand) Handle(ctx context.Context, deps Deps, req Request) error {
	msg := req.Message
	if !inResumeChannel(deps.Config, msg) {
		deps.Logger.Debug("resume-role command outside resume channels", zap.String("channel", msg.ChannelName))
		return nil
	}
	_ = deps.Platform.Typing(ctx, msg.ChannelID)

	var path string
	switch {
	case len(msg.Attachments) > 0:
		att := msg.Attachments[0]
		if !uploadAllowed(att.Filename) {
			return deps.Platform.Send(ctx, msg.ChannelID, unsupportedNotice)
		}
		saved, err := download(ctx, deps.Platform, att, deps.Config.ResumeDir, msg.Author.ID+"_")
		if err != nil {
			return fmt.Errorf("download resume: %w", err)
		}
		path = saved
		if deps.Resumes != nil {
			deps.Resumes.Remember(msg.Author.ID, path)
		}
	default:
		remembered, ok := "", false
		if deps.Resumes != nil {
			remembered, ok = deps.Resumes.Lookup(msg.Author.ID)
		}
		if !ok {
			return deps.Platform.Send(ctx, msg.ChannelID,
				fmt.Sprintf("📎 Please upload your resume as a file attachment when using `%sresume-role`.", deps.Config.Prefix))
		}
		path = remembered
	}

	text, err := fileText(ctx, deps.Extractor, path)
	if err != nil {
		deps.Logger.Warn("resume extraction failed", zap.Error(err))
	}
	if strings.TrimSpace(text) == "" {
		return deps.Platform.Send(ctx, msg.ChannelID, "⚠️ Couldn't extract content from your resume.")
	}

	response, err := deps.LLM.GenerateContent(ctx, rolesPrompt(utils.Head(text, deps.Config.ResumeChars)))
	if err != nil {
		_ = deps.Platform.Send(ctx, msg.ChannelID, fmt.Sprintf("⚠️ Error while processing the resume: `%v`", err))
		return fmt.Errorf("suggest roles: %w", err)
	}

	roles := ParseRoles(response)
	if len(roles) == 0 {
		return deps.Platform.Send(ctx, msg.ChannelID, "⚠️ No roles identified from the resume.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 **Top Recommended Roles for You, %s:**\n", msg.Author.Mention())
	for i, role := range roles {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("🔹 " + role)
	}
	return deps.Platform.Send(ctx, msg.ChannelID, b.String())
}

func rolesPrompt(text string) string {
	return "From the resume text below, list 3 to 5 most suitable job roles for this user. " +
		"Return the roles as a comma-separated list only, without any explanation.\n\n" +
		"Resume:\n" + text
}

// ParseRoles splits a comma-separated answer into trimmed, non-empty roles.
func ParseRoles(response string) []string {
	var roles []string
	for _, part := range strings.Split(response, ",") {
		if role := strings.TrimSpace(part); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
