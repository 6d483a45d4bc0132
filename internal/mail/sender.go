// Package mail delivers transactional email over SMTP. Delivery runs in the
// background worker, never on a request path.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender sends HTML emails through a single SMTP endpoint (Mailpit in
// development).
type Sender struct {
	addr string
	from string
}

// NewSender constructs a Sender for the given SMTP host and port.
func NewSender(host string, port int, from string) *Sender {
	return &Sender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
}

// Send delivers one HTML message to the listed recipients.
func (s *Sender) Send(to []string, subject, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(s.addr, nil, s.from, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
