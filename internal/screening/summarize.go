package screening

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hartono/hr-screener/internal/logger"

	"go.uber.org/zap"
)

const (
	// minResumeLength is the shortest resume worth summarizing at all.
	minResumeLength = 100
	// minSummaryLength is the shortest model output accepted as a summary.
	minSummaryLength = 50
	// maxFallbackSkills caps the skill list produced by the fallback.
	maxFallbackSkills = 5

	// InsufficientSummary is returned for resumes too short to summarize.
	InsufficientSummary = "Not enough resume information to build a summary."
)

// contentGenerator is the language-model capability consumed by the screening
// components. Every call is treated as fallible.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

const summaryPromptTemplate = `Produce a CONCISE and TIDY summary of the resume below. Focus on the main points using a structured format:
1. Work Experience (company, role, duration, key achievements)
2. Technical Skills (programming languages, tools, frameworks)
3. Education (degree, university, year, GPA if present)
4. Certifications (if any)
5. Language Ability (if any)

Use bullet points and a consistent format.
Drop duplicated or irrelevant information.

Resume:
%s

Tidy Summary:`

// Summarizer condenses resume text into a structured summary. The model-based
// summary is best effort; the deterministic fallback guarantees a non-empty
// result for every resume long enough to summarize.
type Summarizer struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewSummarizer(generator contentGenerator, log *zap.Logger) *Summarizer {
	if log == nil {
		log = zap.NewNop()
	}

	return &Summarizer{generator: generator, logger: log}
}

// Summarize returns a condensed summary of the resume text. Resumes shorter
// than the minimum length produce a fixed message without invoking the model.
func (s *Summarizer) Summarize(ctx context.Context, resumeText string) string {
	if len(resumeText) < minResumeLength {
		return InsufficientSummary
	}

	output, err := s.generator.GenerateContent(ctx, fmt.Sprintf(summaryPromptTemplate, resumeText))
	if err != nil {
		s.logger.Warn("model summarization failed, using fallback", zap.Error(err))
		return simpleSummarize(resumeText)
	}

	output = strings.TrimSpace(output)
	if len(output) < minSummaryLength || containsFailureKeyword(output) {
		s.logger.Warn("model summary unusable, using fallback",
			zap.Int("summary_length", len(output)),
		)
		return simpleSummarize(resumeText)
	}

	s.logger.Debug("resume summarized",
		zap.Int("summary_length", len(output)),
		zap.String("summary_preview", logger.Truncate(output, 120)),
	)

	return output
}

func containsFailureKeyword(summary string) bool {
	lower := strings.ToLower(summary)
	return strings.Contains(lower, "failed") || strings.Contains(lower, "unable")
}

var (
	experiencePattern = regexp.MustCompile(`(?i)experience.*?(\d+\+?\s*years?)`)
	skillPattern      = regexp.MustCompile(`(?i)(python|sql|machine learning|deep learning|tensorflow|pandas|numpy|scikit)`)
	educationPattern  = regexp.MustCompile(`(?i)education.*?(bachelor|master|phd|doctorate|diploma)`)
)

// simpleSummarize is the deterministic fallback summarizer: it surfaces an
// experience duration, a known-skill intersection and an education level as
// bullet lines.
func simpleSummarize(resumeText string) string {
	var builder strings.Builder
	builder.WriteString("Summary:\n")

	if match := experiencePattern.FindString(resumeText); match != "" {
		builder.WriteString(fmt.Sprintf("• Experience: %s\n", match))
	}

	if skills := uniqueSkills(resumeText); len(skills) > 0 {
		builder.WriteString(fmt.Sprintf("• Skills: %s\n", strings.Join(skills, ", ")))
	}

	if match := educationPattern.FindString(resumeText); match != "" {
		builder.WriteString(fmt.Sprintf("• Education: %s\n", match))
	}

	return builder.String()
}

// uniqueSkills returns the title-cased known skills found in the text, first
// occurrence order, capped at maxFallbackSkills.
func uniqueSkills(resumeText string) []string {
	matches := skillPattern.FindAllString(resumeText, -1)
	seen := make(map[string]bool, len(matches))
	skills := make([]string, 0, maxFallbackSkills)

	for _, match := range matches {
		skill := titleWords(match)
		if seen[skill] {
			continue
		}
		seen[skill] = true

		skills = append(skills, skill)
		if len(skills) == maxFallbackSkills {
			break
		}
	}

	return skills
}
