package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/recurring-service/internal/config"
	"github.com/Dan9191/recurring-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendBatchReport emails the operator a summary of a batch run that had failures
func (s *Sender) SendBatchReport(report models.BatchReport) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.NotifyEmail}
	e.Subject = fmt.Sprintf("Recurring batch: %d of %d due schedules failed", len(report.Failures), report.Due)
	e.Text = []byte(formatBatchReport(report))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send batch report to %s: %v", s.cfg.NotifyEmail, err)
		return fmt.Errorf("failed to send batch report: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.NotifyEmail, e.Subject)
	return nil
}

func formatBatchReport(report models.BatchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch run started %s and finished %s.\n\n",
		report.StartedAt.Format("2006-01-02 15:04:05"), report.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Evaluated: %d\nDue: %d\nFired: %d\nFailed: %d\n",
		report.Evaluated, report.Due, report.Fired, len(report.Failures))
	if len(report.Failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, f := range report.Failures {
			fmt.Fprintf(&b, "  - schedule %s (owner %s): %s\n", f.ScheduleID, f.OwnerID, f.Error)
		}
	}
	b.WriteString("\nRecurring Service")
	return b.String()
}
