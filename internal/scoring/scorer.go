// Package scoring rates resumes section by section with an LLM.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/ai"
	"github.com/spigell/careermate/internal/utils"
)

const defaultMaxLogLength = 200

type Scorer struct {
	llm       ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(llm ai.Generator, maxLogLength int, logger *zap.Logger) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{llm: llm, logger: logger, maxLogLen: maxLogLength}
}

// Score asks the model for section scores. One attempt, no retries.
func (s *Scorer) Score(ctx context.Context, resume string) (*Report, error) {
	resume = strings.TrimSpace(resume)
	if resume == "" {
		return nil, errors.New("resume text is empty")
	}

	raw, err := s.llm.GenerateContent(ctx, buildPrompt(resume))
	if err != nil {
		return nil, fmt.Errorf("score resume: %w", err)
	}

	report, err := parseReport(raw)
	if err != nil {
		s.logger.Warn("unparsable scoring response",
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Debug("resume scored", zap.Float64("overall", report.Overall))
	return report, nil
}

func buildPrompt(resume string) string {
	var b strings.Builder
	b.WriteString("You are a professional resume reviewer. Analyze the following resume and return scores in valid JSON.\n\n")
	b.WriteString("Resume:\n")
	b.WriteString(resume)
	b.WriteString("\n\nReturn only JSON in this format:\n{\n")
	for _, section := range Sections {
		fmt.Fprintf(&b, "  %q: 0-100,\n", section)
	}
	b.WriteString("  \"Overall\": 0-100,\n  \"Suggestions\": {\n")
	for i, section := range Sections {
		sep := ","
		if i == len(Sections)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %q: \"...\"%s\n", section, sep)
	}
	b.WriteString("  }\n}\n")
	return b.String()
}
