package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/krsx/book-api/jobs"
	_ "github.com/krsx/book-api/testing"
)

type fakeSender struct {
	sent []jobs.SendEmailPayload
	err  error
}

func (f *fakeSender) Send(to []string, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, jobs.SendEmailPayload{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func TestSendEmailHandler(t *testing.T) {
	sender := &fakeSender{}
	handler := jobs.NewSendEmailHandler(sender, slog.Default())

	task, err := jobs.NewSendEmailTask(jobs.SendEmailPayload{
		To:      []string{"reader@example.com"},
		Subject: "Email Verification",
		Body:    "<h1>Verify Your Email</h1>",
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := handler.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one delivery, got %d", len(sender.sent))
	}
	if sender.sent[0].Subject != "Email Verification" {
		t.Fatalf("unexpected subject %q", sender.sent[0].Subject)
	}
}

func TestSendEmailHandlerMalformedPayload(t *testing.T) {
	handler := jobs.NewSendEmailHandler(&fakeSender{}, slog.Default())
	task := asynq.NewTask(jobs.TaskTypeSendEmail, []byte("not json"))

	if err := handler.Handle(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestSendEmailHandlerEmptyRecipients(t *testing.T) {
	handler := jobs.NewSendEmailHandler(&fakeSender{}, slog.Default())
	task, err := jobs.NewSendEmailTask(jobs.SendEmailPayload{Subject: "x"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := handler.Handle(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestSendEmailHandlerDeliveryFailureRetries(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	handler := jobs.NewSendEmailHandler(sender, slog.Default())

	task, err := jobs.NewSendEmailTask(jobs.SendEmailPayload{To: []string{"reader@example.com"}, Subject: "x"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	err = handler.Handle(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected a retryable error, got %v", err)
	}
}
