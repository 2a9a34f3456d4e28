package screening

import (
	"context"
	"regexp"
	"strings"

	"github.com/hartono/hr-screener/internal/logger"

	"go.uber.org/zap"
)

// EmailInvalid marks a candidate whose email address could not be extracted or
// did not parse as a syntactically valid address. It is never empty so that
// downstream gates can branch on it safely.
const EmailInvalid = "invalid"

// Outcome tags the result of one identity extraction.
type Outcome int

const (
	// IdentityFound means a resume was extracted and normalized. The email
	// field may still hold the invalid sentinel.
	IdentityFound Outcome = iota
	// IdentityNoAttachment means the message carried no PDF attachment.
	IdentityNoAttachment
	// IdentityExtractionFailed means the PDF attachment could not be decoded
	// or its text could not be extracted.
	IdentityExtractionFailed
	// IdentityEmptyText means the PDF produced no text after trimming.
	IdentityEmptyText
)

func (o Outcome) String() string {
	switch o {
	case IdentityFound:
		return "found"
	case IdentityNoAttachment:
		return "no-attachment"
	case IdentityExtractionFailed:
		return "extraction-failed"
	case IdentityEmptyText:
		return "empty-text"
	default:
		return "unknown"
	}
}

// Identity is the extracted applicant information for one message. It is
// immutable once produced; all failure modes are encoded in Outcome rather
// than raised as errors.
type Identity struct {
	Outcome    Outcome
	Name       string
	Email      string
	ResumeText string
}

// HasResume reports whether extraction produced usable resume text.
func (i Identity) HasResume() bool {
	return i.Outcome == IdentityFound && strings.TrimSpace(i.ResumeText) != ""
}

// EmailValid reports whether the extracted email is a real address rather than
// a sentinel.
func (i Identity) EmailValid() bool {
	return i.Email != "" && i.Email != EmailInvalid
}

// Attachment describes one attachment part of a mail message.
type Attachment struct {
	ID       string
	Filename string
	MimeType string
}

// MailSource provides message attachments for extraction.
type MailSource interface {
	Attachments(ctx context.Context, messageID string) ([]Attachment, error)
	AttachmentData(ctx context.Context, messageID, attachmentID string) ([]byte, error)
}

// TextExtractor converts attachment bytes into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// Extractor derives candidate identity from the first PDF attachment of a
// message using ordered heuristic patterns.
type Extractor struct {
	mail   MailSource
	pdf    TextExtractor
	logger *zap.Logger
}

func NewExtractor(mail MailSource, pdf TextExtractor, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}

	return &Extractor{mail: mail, pdf: pdf, logger: log}
}

const pdfMimeType = "application/pdf"

// Name detection patterns, ordered by specificity. The first match wins; ties
// never resolve by score.
var namePatterns = []*regexp.Regexp{
	// Explicit "name:"-labeled field.
	regexp.MustCompile(`(?i)name[:\s]*([A-Za-z\s]+)(?:\n|$)`),
	// Two capitalized words on the first line.
	regexp.MustCompile(`(?m)^([A-Z][a-z]+\s+[A-Z][a-z]+)(?:\n|$)`),
	// Two capitalized words immediately preceding an email address.
	regexp.MustCompile(`([A-Z][a-z]+\s+[A-Z][a-z]+)\s+[\w@.+]+@`),
	// An all-caps line at the text start.
	regexp.MustCompile(`(?m)^([A-Z\s]+)(?:\n|$)`),
}

var (
	trailingJunk    = regexp.MustCompile(`[\d\W_]+$`)
	emailRemainder  = regexp.MustCompile(`@\S+`)
	alphabeticLine  = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailAddress    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	nonLetterSplits = regexp.MustCompile(`[^a-zA-Z]+`)
)

// Extract derives applicant identity from the given message. It never returns
// an error; every failure mode is encoded in the returned Identity.
func (e *Extractor) Extract(ctx context.Context, messageID string) Identity {
	attachments, err := e.mail.Attachments(ctx, messageID)
	if err != nil {
		e.logger.Warn("fetching message attachments",
			zap.String(logger.FieldMessageID, messageID),
			zap.Error(err),
		)
		return failedIdentity(IdentityExtractionFailed)
	}

	var pdfAttachment *Attachment
	for i := range attachments {
		if attachments[i].MimeType == pdfMimeType && attachments[i].Filename != "" {
			pdfAttachment = &attachments[i]
			break
		}
	}

	if pdfAttachment == nil {
		return failedIdentity(IdentityNoAttachment)
	}

	data, err := e.mail.AttachmentData(ctx, messageID, pdfAttachment.ID)
	if err != nil {
		e.logger.Warn("downloading pdf attachment",
			zap.String(logger.FieldMessageID, messageID),
			zap.String("filename", pdfAttachment.Filename),
			zap.Error(err),
		)
		return failedIdentity(IdentityExtractionFailed)
	}

	text, err := e.pdf.Extract(data)
	if err != nil {
		e.logger.Warn("extracting pdf text",
			zap.String(logger.FieldMessageID, messageID),
			zap.String("filename", pdfAttachment.Filename),
			zap.Error(err),
		)
		return failedIdentity(IdentityExtractionFailed)
	}

	if strings.TrimSpace(text) == "" {
		return failedIdentity(IdentityEmptyText)
	}

	resumeText := NormalizeResumeText(text)

	name := NormalizeName(extractName(resumeText))
	email := extractEmail(resumeText)

	if name == NameUnknown && email != EmailInvalid {
		name = nameFromLocalPart(email)
	}

	e.logger.Debug("applicant identity extracted",
		zap.String(logger.FieldMessageID, messageID),
		zap.String(logger.FieldCandidate, name),
		zap.String(logger.FieldEmail, email),
		logger.ResumePreview(resumeText),
	)

	return Identity{Outcome: IdentityFound, Name: name, Email: email, ResumeText: resumeText}
}

func failedIdentity(outcome Outcome) Identity {
	return Identity{Outcome: outcome, Name: NameUnknown, Email: EmailInvalid}
}

// extractName runs the ordered name patterns over the normalized text. A match
// with at least two tokens wins outright; a single token longer than three
// characters is extended with the following line when that line is alphabetic
// only. When no pattern produces a usable name the raw first line is used if
// it is alphabetic and has two or more tokens.
func extractName(text string) string {
	candidate := ""

	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		name := strings.TrimSpace(match[1])
		name = strings.TrimSpace(trailingJunk.ReplaceAllString(name, ""))
		name = strings.TrimSpace(emailRemainder.ReplaceAllString(name, ""))

		tokens := strings.Fields(name)
		switch {
		case len(tokens) >= 2:
			return name
		case len(tokens) == 1 && len(tokens[0]) > 3:
			return extendSingleToken(text, tokens[0])
		case len(tokens) == 1 && candidate == "":
			candidate = name
		}
	}

	if candidate != "" {
		return candidate
	}

	firstLine := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if alphabeticLine.MatchString(firstLine) && len(strings.Fields(firstLine)) >= 2 {
		return firstLine
	}

	return NameUnknown
}

// extendSingleToken appends the line following the token's occurrence when
// that line contains only letters and whitespace.
func extendSingleToken(text, token string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, token) || i+1 >= len(lines) {
			continue
		}

		next := strings.TrimSpace(lines[i+1])
		if next != "" && alphabeticLine.MatchString(next) {
			return token + " " + next
		}
		break
	}

	return token
}

func extractEmail(text string) string {
	email := strings.TrimSpace(emailAddress.FindString(text))
	if email == "" {
		return EmailInvalid
	}

	if strings.Contains(email, " ") || !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return EmailInvalid
	}

	return email
}

// nameFromLocalPart derives a readable name from the local part of a valid
// email address.
func nameFromLocalPart(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	words := strings.Fields(nonLetterSplits.ReplaceAllString(local, " "))
	if len(words) == 0 {
		return NameUnknown
	}

	return titleWords(strings.Join(words, " "))
}
