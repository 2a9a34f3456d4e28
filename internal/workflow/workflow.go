// Package workflow drives one screening batch: discover unread application
// emails, extract and validate each applicant, classify and summarize the
// resume, then schedule an interview or reject. Every discovered item reaches
// a terminal state and is marked read exactly once, whatever happens while
// processing it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hartono/hr-screener/internal/logger"
	"github.com/hartono/hr-screener/internal/scheduling"
	"github.com/hartono/hr-screener/internal/screening"
	"github.com/hartono/hr-screener/internal/utils"

	"go.uber.org/zap"
)

// MailService is the mailbox surface consumed by the runner.
type MailService interface {
	ListUnread(ctx context.Context, query string) ([]string, error)
	MarkRead(ctx context.Context, messageID string) error
	Send(ctx context.Context, to, subject, body string) error
}

// CalendarService creates interview events.
type CalendarService interface {
	CreateEvent(ctx context.Context, title, description string, start, end time.Time, attendees []string) error
}

// SheetService records candidate dispositions.
type SheetService interface {
	CanConnect(ctx context.Context) bool
	Append(ctx context.Context, row []string) error
}

// IdentityExtractor derives applicant identity from one message.
type IdentityExtractor interface {
	Extract(ctx context.Context, messageID string) screening.Identity
}

// Classifier rates a resume against the job description.
type Classifier interface {
	Classify(ctx context.Context, jobDescription, resumeText string) screening.Verdict
}

// Summarizer condenses resume text for the spreadsheet record.
type Summarizer interface {
	Summarize(ctx context.Context, resumeText string) string
}

// SlotFinder locates the next free interview slot.
type SlotFinder interface {
	Next(ctx context.Context) (time.Time, error)
}

// Deps bundles the collaborators of one runner.
type Deps struct {
	Mail       MailService
	Calendar   CalendarService
	Sheets     SheetService
	Extractor  IdentityExtractor
	Classifier Classifier
	Summarizer Summarizer
	Slots      SlotFinder
}

// Config carries the per-run screening parameters.
type Config struct {
	SubjectFilter  string
	JobTitle       string
	JobDescription string
	CompanyEmail   string
	Location       *time.Location

	// PauseBetweenItems spaces out consecutive items to stay inside provider
	// rate limits. Zero disables pacing.
	PauseBetweenItems time.Duration
}

// Options are per-invocation overrides, used by the HTTP trigger.
type Options struct {
	JobDescription string `mapstructure:"job_description"`
}

// RunSummary is the sole result of one batch. It is always produced, even
// when the run aborts early.
type RunSummary struct {
	Message   string `json:"summary_message"`
	Processed int    `json:"processed_count"`
	Scheduled int    `json:"scheduled_count"`
	Rejected  int    `json:"rejected_count"`
}

const (
	dispositionRejected  = "Rejected"
	dispositionScheduled = "Interview Scheduled"

	// maxSummaryRunes bounds the resume summary stored per spreadsheet row.
	maxSummaryRunes  = 10000
	truncationMarker = "... [truncated]"

	fallbackSlotHour = 10

	noSheetsMessage = "Could not connect to Google Sheets. Check the spreadsheet ID and sharing permissions."
	noMailMessage   = "No new job application emails were found."

	rejectionSubject = "Job Application Update"
	rejectionBody    = "Hello %s,\n\n" +
		"Thank you for your interest in joining our team. After reviewing your application, " +
		"we are sorry to inform you that we are unable to move forward with your application at this time.\n\n" +
		"We appreciate your time and effort. We wish you every success in the future!\n\n" +
		"Best regards,\nThe HR Team"

	inviteSubject = "Interview Invitation for the %s Position"
	inviteBody    = "Hello %s,\n\n" +
		"Thank you for your application. We would like to invite you to an interview for the %s position on:\n\n" +
		"Date: %s\n\n" +
		"We will send the meeting link separately.\n\n" +
		"Best regards,\nThe HR Team"
)

// Runner executes screening batches sequentially.
type Runner struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewRunner(deps Deps, cfg Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.FixedZone("WIB", 7*60*60)
	}

	return &Runner{deps: deps, cfg: cfg, logger: log, now: time.Now}
}

// Run executes one batch with the configured job description.
func (r *Runner) Run(ctx context.Context) *RunSummary {
	return r.RunWith(ctx, Options{})
}

// RunWith executes one batch. The spreadsheet connectivity probe is a hard
// precondition: without it the run returns a zero-count summary before any
// mailbox access. After that point no single item can abort the batch.
func (r *Runner) RunWith(ctx context.Context, opts Options) *RunSummary {
	if !r.deps.Sheets.CanConnect(ctx) {
		r.logger.Error("spreadsheet connectivity probe failed, aborting run")
		return &RunSummary{Message: noSheetsMessage}
	}

	jobDescription := r.cfg.JobDescription
	if opts.JobDescription != "" {
		jobDescription = opts.JobDescription
	}

	query := fmt.Sprintf("subject:%q is:unread", r.cfg.SubjectFilter)
	ids, err := r.deps.Mail.ListUnread(ctx, query)
	if err != nil {
		r.logger.Error("listing unread application emails", zap.Error(err))
		return &RunSummary{Message: fmt.Sprintf("Listing job application emails failed: %v", err)}
	}

	if len(ids) == 0 {
		return &RunSummary{Message: noMailMessage}
	}

	r.logger.Info("starting screening batch", zap.Int("emails", len(ids)))

	summary := &RunSummary{}
	for i, id := range ids {
		r.processItem(ctx, id, jobDescription, summary)

		if i < len(ids)-1 {
			if err := utils.WaitFor(ctx, r.cfg.PauseBetweenItems); err != nil {
				r.logger.Warn("batch pacing interrupted", zap.Error(err))
				break
			}
		}
	}

	summary.Message = fmt.Sprintf(
		"Screening run complete. Emails processed: %d. Interviews scheduled: %d. Rejected: %d.",
		summary.Processed, summary.Scheduled, summary.Rejected,
	)
	r.logger.Info("screening batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("scheduled", summary.Scheduled),
		zap.Int("rejected", summary.Rejected),
	)

	return summary
}

// processItem takes one message from discovery to a terminal disposition. The
// message is marked read on every path, including panics; mark-read failures
// are logged and never retried.
func (r *Runner) processItem(ctx context.Context, messageID, jobDescription string, summary *RunSummary) {
	defer func() {
		if err := r.deps.Mail.MarkRead(ctx, messageID); err != nil {
			r.logger.Warn("marking message read",
				zap.String(logger.FieldMessageID, messageID),
				zap.Error(err),
			)
		}
	}()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic while processing message",
				zap.String(logger.FieldMessageID, messageID),
				zap.Any("panic", rec),
			)
		}
	}()

	identity := r.deps.Extractor.Extract(ctx, messageID)
	log := logger.WithFields(r.logger, logger.CandidateFields(messageID, identity.Name, identity.Email)...)

	if !identity.EmailValid() {
		log.Info("skipping message without a valid applicant email",
			zap.String("outcome", identity.Outcome.String()),
		)
		summary.Rejected++
		return
	}

	if !identity.HasResume() {
		log.Info("skipping message without extractable resume text",
			zap.String("outcome", identity.Outcome.String()),
		)
		summary.Rejected++
		return
	}

	summary.Processed++

	verdict := r.deps.Classifier.Classify(ctx, jobDescription, identity.ResumeText)
	resumeSummary := r.deps.Summarizer.Summarize(ctx, identity.ResumeText)
	log.Info("resume screened", zap.String("verdict", string(verdict)))

	if verdict == screening.WeakFit {
		r.reject(ctx, log, identity, resumeSummary)
		summary.Rejected++
		return
	}

	slot, err := r.deps.Slots.Next(ctx)
	switch {
	case errors.Is(err, scheduling.ErrNoSlot):
		log.Warn("no free interview slot in the lookahead window")
		summary.Rejected++
		return
	case err != nil:
		slot = r.fallbackSlot()
		log.Warn("slot search failed, falling back to tomorrow morning",
			zap.Time("slot", slot),
			zap.Error(err),
		)
	}

	if err := r.schedule(ctx, log, identity, slot, resumeSummary); err != nil {
		log.Warn("scheduling interview failed", zap.Error(err))
		summary.Rejected++
		return
	}

	summary.Scheduled++
}

// reject records a weak-fit candidate and sends the rejection reply. Record
// and mail failures are logged only; the disposition stands either way.
func (r *Runner) reject(ctx context.Context, log *zap.Logger, identity screening.Identity, resumeSummary string) {
	log.Info("rejecting candidate")

	r.appendRecord(ctx, log, identity, "", dispositionRejected, resumeSummary)

	body := fmt.Sprintf(rejectionBody, identity.Name)
	if err := r.deps.Mail.Send(ctx, identity.Email, rejectionSubject, body); err != nil {
		log.Warn("sending rejection email", zap.Error(err))
	}
}

// schedule creates the calendar event, then records the candidate and sends
// the invite. Only event creation is load-bearing; record and mail failures
// after it are logged only.
func (r *Runner) schedule(ctx context.Context, log *zap.Logger, identity screening.Identity, slot time.Time, resumeSummary string) error {
	title := fmt.Sprintf("Interview with %s", identity.Name)
	description := fmt.Sprintf("%s position interview with %s", r.cfg.JobTitle, identity.Name)

	attendees := []string{identity.Email}
	if r.cfg.CompanyEmail != "" {
		attendees = append(attendees, r.cfg.CompanyEmail)
	}

	if err := r.deps.Calendar.CreateEvent(ctx, title, description, slot, slot.Add(time.Hour), attendees); err != nil {
		return fmt.Errorf("creating calendar event: %w", err)
	}

	log.Info("interview scheduled", zap.Time("slot", slot))

	r.appendRecord(ctx, log, identity, slot.Format("2006-01-02 15:04 MST"), dispositionScheduled, resumeSummary)

	body := fmt.Sprintf(inviteBody, identity.Name, r.cfg.JobTitle, slot.Format("2 January 2006 at 15:04 MST"))
	subject := fmt.Sprintf(inviteSubject, r.cfg.JobTitle)
	if err := r.deps.Mail.Send(ctx, identity.Email, subject, body); err != nil {
		log.Warn("sending interview invite", zap.Error(err))
	}

	return nil
}

func (r *Runner) appendRecord(ctx context.Context, log *zap.Logger, identity screening.Identity, schedule, label, resumeSummary string) {
	row := []string{identity.Name, identity.Email, schedule, label, truncateSummary(resumeSummary)}
	if err := r.deps.Sheets.Append(ctx, row); err != nil {
		log.Warn("appending candidate record", zap.Error(err))
	}
}

// fallbackSlot is tomorrow 10:00 in the office zone, used when the calendar
// cannot be consulted at all.
func (r *Runner) fallbackSlot() time.Time {
	tomorrow := r.now().In(r.cfg.Location).AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), fallbackSlotHour, 0, 0, 0, r.cfg.Location)
}

func truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSummaryRunes {
		return s
	}

	return string(runes[:maxSummaryRunes]) + truncationMarker
}
