package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Publisher is the live fanout side of alerting, satisfied by the Redis
// finding cache.
type Publisher interface {
	PublishAlert(ctx context.Context, subject, body string) error
}

// NotifierConfig configures the alert fanout. Email is optional: with no
// recipients the notifier only publishes to the live channel.
type NotifierConfig struct {
	SMTPAddr   string
	Sender     string
	Recipients []string

	Publisher Publisher
	Logger    *logrus.Logger
}

// Notifier delivers pump-and-dump alerts. Delivery is best effort: a failed
// channel is logged and never interrupts the analysis cycle.
type Notifier struct {
	smtpAddr   string
	sender     string
	recipients []string
	publisher  Publisher
	logger     *logrus.Logger

	// sendMail is swappable for tests.
	sendMail func(addr, from string, to []string, msg []byte) error
}

func NewNotifier(cfg NotifierConfig) *Notifier {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Notifier{
		smtpAddr:   cfg.SMTPAddr,
		sender:     cfg.Sender,
		recipients: cfg.Recipients,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		sendMail: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Notify fans the alert out to every configured channel.
func (n *Notifier) Notify(ctx context.Context, subject, body string) {
	if n.publisher != nil {
		if err := n.publisher.PublishAlert(ctx, subject, body); err != nil {
			n.logger.WithError(err).Warn("Failed to publish alert")
		}
	}

	if len(n.recipients) == 0 {
		return
	}
	if err := n.sendEmail(subject, body); err != nil {
		n.logger.WithError(err).WithField("recipients", len(n.recipients)).Warn("Failed to send alert email")
		return
	}
	n.logger.WithFields(logrus.Fields{
		"subject":    subject,
		"recipients": len(n.recipients),
	}).Info("Alert email sent")
}

func (n *Notifier) sendEmail(subject, body string) error {
	msg := buildMessage(n.sender, n.recipients, subject, body)
	if err := n.sendMail(n.smtpAddr, n.sender, n.recipients, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(sender string, recipients []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// Subject builds the standard alert subject line for a token.
func Subject(tokenAddress string, confidence float64) string {
	return fmt.Sprintf("PUMP AND DUMP ALERT: %s (Confidence: %.2f)", tokenAddress, confidence)
}
