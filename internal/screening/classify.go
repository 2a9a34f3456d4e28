package screening

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Verdict is the classifier's fitness category, ordered by desirability.
type Verdict string

const (
	StrongFit Verdict = "STRONG_FIT"
	Fit       Verdict = "FIT"
	WeakFit   Verdict = "WEAK_FIT"
)

const classifyPromptTemplate = `You are an expert recruiter. Compare the resume below against the provided job description. Rate the match based on how well the qualifications, experience and skills in the resume meet the job requirements. Reply with EXACTLY ONE of these words: 'STRONG_FIT', 'FIT' or 'WEAK_FIT'.

Do NOT use any word other than those three options.

Job Description: %s

Resume:
%s

Fit Rating:`

// Classifier maps a job description and resume text onto a fit verdict.
// Classification errors bias toward Fit, never toward rejection: a rejection
// triggers an irreversible applicant-facing reply.
type Classifier struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewClassifier(generator contentGenerator, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}

	return &Classifier{generator: generator, logger: log}
}

// Classify invokes the model with a closed-vocabulary prompt and maps the
// response to a verdict. Unparseable output and invocation failures both
// default to Fit.
func (c *Classifier) Classify(ctx context.Context, jobDescription, resumeText string) Verdict {
	prompt := fmt.Sprintf(classifyPromptTemplate, jobDescription, resumeText)

	output, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		c.logger.Warn("screening model call failed, defaulting to FIT", zap.Error(err))
		return Fit
	}

	verdict := ParseVerdict(output)
	c.logger.Debug("resume screened",
		zap.String("raw_response", strings.TrimSpace(output)),
		zap.String("verdict", string(verdict)),
	)

	return verdict
}

// ParseVerdict maps raw model output onto a verdict. WEAK_FIT is tested before
// the plain FIT token because the latter is a substring of both other tokens.
func ParseVerdict(raw string) Verdict {
	output := strings.ToUpper(strings.TrimSpace(raw))

	switch {
	case strings.Contains(output, string(StrongFit)):
		return StrongFit
	case strings.Contains(output, string(WeakFit)):
		return WeakFit
	case strings.Contains(output, string(Fit)):
		return Fit
	default:
		return Fit
	}
}
