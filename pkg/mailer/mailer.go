// Package mailer provides the outbound email collaborator. Delivery is
// decoupled from the request path: the AMQP implementation enqueues jobs
// onto a durable queue and a consumer drains them.
package mailer

import "log"

// Mailer is the contract the auth flow depends on.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// EmailJob is the JSON payload published per outbound email.
type EmailJob struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
}

// LogMailer is the zero-config fallback used when no broker is configured.
// It records the email instead of delivering it.
type LogMailer struct{}

// NewLogMailer creates a LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send logs the email and reports success.
func (m *LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("mailer: would send %q to %s (%d bytes)", subject, to, len(htmlBody))
	return nil
}
