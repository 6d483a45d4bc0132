package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/krsx/book-api/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// EmailSender delivers a single message; the worker owns the SMTP client.
type EmailSender interface {
	Send(to []string, subject, htmlBody string) error
}

// SendEmailHandler processes TaskTypeSendEmail tasks.
type SendEmailHandler struct {
	sender  EmailSender
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewSendEmailHandler constructs the handler.
func NewSendEmailHandler(sender EmailSender, logger *slog.Logger) *SendEmailHandler {
	return &SendEmailHandler{sender: sender, logger: logger}
}

// WithMetrics attaches job instrumentation.
func (h *SendEmailHandler) WithMetrics(m *jobmetrics.Metrics) *SendEmailHandler {
	h.metrics = m
	return h
}

// Handle delivers the email. A malformed payload is never retried.
func (h *SendEmailHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.To) == 0 {
		return asynq.SkipRetry
	}
	tracker := h.metrics.Track(TaskTypeSendEmail)
	if err := tracker.End(h.sender.Send(payload.To, payload.Subject, payload.Body)); err != nil {
		h.logger.Warn("send email",
			slog.String("subject", payload.Subject),
			slog.Any("error", err))
		return err
	}
	h.logger.Info("email sent",
		slog.String("subject", payload.Subject),
		slog.Int("recipients", len(payload.To)))
	return nil
}
