package email

import (
	"errors"
	"io"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/recurring-service/internal/config"
	"github.com/Dan9191/recurring-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

func testReport() models.BatchReport {
	start := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	return models.BatchReport{
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Evaluated:  10,
		Due:        3,
		Fired:      2,
		Failures:   []models.FireFailure{{ScheduleID: "s-1", OwnerID: "owner-1", Error: "database is locked"}},
	}
}

func TestSendBatchReport(t *testing.T) {
	cfg := config.Default()
	cfg.SMTPHost = "smtp.example.com"
	cfg.SenderEmail = "bot@example.com"
	cfg.NotifyEmail = "ops@example.com"
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var sent *email.Email
	var gotAddr string
	s := NewSender(cfg, logger)
	s.send = func(e *email.Email, addr string, _ smtp.Auth) error {
		sent, gotAddr = e, addr
		return nil
	}

	if err := s.SendBatchReport(testReport()); err != nil {
		t.Fatalf("SendBatchReport() error: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q, want smtp.example.com:587", gotAddr)
	}
	if len(sent.To) != 1 || sent.To[0] != "ops@example.com" {
		t.Errorf("To = %v, want [ops@example.com]", sent.To)
	}
	if sent.Subject != "Recurring batch: 1 of 3 due schedules failed" {
		t.Errorf("Subject = %q", sent.Subject)
	}
	if !strings.Contains(string(sent.Text), "schedule s-1 (owner owner-1): database is locked") {
		t.Errorf("body does not list the failure:\n%s", sent.Text)
	}
}

func TestSendBatchReport_Error(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := NewSender(config.Default(), logger)
	s.send = func(*email.Email, string, smtp.Auth) error { return errors.New("connection refused") }

	if err := s.SendBatchReport(testReport()); err == nil {
		t.Fatal("expected error when SMTP delivery fails")
	}
}
