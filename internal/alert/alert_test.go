package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	subject string
	body    string
	calls   int
	err     error
}

func (p *capturePublisher) PublishAlert(_ context.Context, subject, body string) error {
	p.calls++
	p.subject = subject
	p.body = body
	return p.err
}

func TestNotify_PublishesAndEmails(t *testing.T) {
	pub := &capturePublisher{}
	n := NewNotifier(NotifierConfig{
		SMTPAddr:   "localhost:25",
		Sender:     "alerts@pump-monitor.local",
		Recipients: []string{"ops@example.com", "sec@example.com"},
		Publisher:  pub,
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	n.sendMail = func(addr, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	n.Notify(context.Background(), "subject line", "alert body")

	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, "subject line", pub.subject)
	assert.Equal(t, "alert body", pub.body)

	assert.Equal(t, "localhost:25", gotAddr)
	assert.Equal(t, "alerts@pump-monitor.local", gotFrom)
	require.Len(t, gotTo, 2)
	assert.Contains(t, string(gotMsg), "Subject: subject line")
	assert.Contains(t, string(gotMsg), "To: ops@example.com, sec@example.com")
	assert.Contains(t, string(gotMsg), "\r\n\r\nalert body")
}

func TestNotify_NoRecipientsSkipsEmail(t *testing.T) {
	pub := &capturePublisher{}
	n := NewNotifier(NotifierConfig{Publisher: pub})

	emailed := false
	n.sendMail = func(string, string, []string, []byte) error {
		emailed = true
		return nil
	}

	n.Notify(context.Background(), "s", "b")

	assert.Equal(t, 1, pub.calls)
	assert.False(t, emailed)
}

func TestNotify_FailuresDoNotPropagate(t *testing.T) {
	pub := &capturePublisher{err: errors.New("redis down")}
	n := NewNotifier(NotifierConfig{
		Recipients: []string{"ops@example.com"},
		Publisher:  pub,
	})
	n.sendMail = func(string, string, []string, []byte) error {
		return errors.New("smtp down")
	}

	// Notify returns nothing; both failures are swallowed.
	n.Notify(context.Background(), "s", "b")
	assert.Equal(t, 1, pub.calls)
}

func TestNotify_NilPublisher(t *testing.T) {
	n := NewNotifier(NotifierConfig{})
	n.Notify(context.Background(), "s", "b")
}

func TestSubject(t *testing.T) {
	assert.Equal(t,
		"PUMP AND DUMP ALERT: TokenXYZ (Confidence: 0.85)",
		Subject("TokenXYZ", 0.85))
}
