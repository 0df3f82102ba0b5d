package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/smtp"
	"net/textproto"
	"testing"
	"time"

	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/pkg/retry"

	gomail "github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockEmailLog struct {
	created  []*Email
	status   EmailStatus
	attempts int
}

func (m *MockEmailLog) Create(ctx context.Context, email *Email) error {
	m.created = append(m.created, email)
	return nil
}

func (m *MockEmailLog) UpdateStatus(ctx context.Context, id primitive.ObjectID, status EmailStatus, attempts int, errorMsg string) error {
	m.status, m.attempts = status, attempts
	return nil
}

func newTestMailer(send sendFunc) (*SMTPMailer, *MockEmailLog) {
	log := &MockEmailLog{}
	return &SMTPMailer{
		cfg:    &config.Config{SMTPHost: "localhost", SMTPPort: 1025, MailFrom: "no-reply@example.com"},
		log:    log,
		logger: zap.NewNop(),
		policy: retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond},
		send:   send,
		now:    func() time.Time { return time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC) },
	}, log
}

func reportMessage() Message {
	return Message{
		To:      []string{"hr@example.com", "cfo@example.com"},
		Subject: "Scheduled report: Headcount",
		Text:    "Find the scheduled report attached.",
		Attachments: []Attachment{
			{Filename: "Headcount.pdf", Content: []byte("%PDF-1.3 fake")},
		},
	}
}

func TestComposeProducesReadableMIME(t *testing.T) {
	raw, err := Compose("no-reply@example.com", reportMessage(), time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	r, err := gomail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := r.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Scheduled report: Headcount", subject)

	to, err := r.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 2)
	assert.Equal(t, "cfo@example.com", to[1].Address)

	var text string
	var filename string
	var attachment []byte
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *gomail.InlineHeader:
			body, _ := io.ReadAll(p.Body)
			text = string(body)
		case *gomail.AttachmentHeader:
			filename, _ = h.Filename()
			attachment, _ = io.ReadAll(p.Body)
		}
	}

	assert.Equal(t, "Find the scheduled report attached.", text)
	assert.Equal(t, "Headcount.pdf", filename)
	assert.Equal(t, []byte("%PDF-1.3 fake"), attachment)
}

func TestSendMailRetriesTransientFailures(t *testing.T) {
	calls := 0
	mailer, log := newTestMailer(func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		assert.Equal(t, "localhost:1025", addr)
		if calls == 1 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, mailer.SendMail(context.Background(), reportMessage()))
	assert.Equal(t, 2, calls)
	require.Len(t, log.created, 1)
	assert.Equal(t, []string{"Headcount.pdf"}, log.created[0].Attachments)
	assert.Equal(t, EmailSent, log.status)
	assert.Equal(t, 2, log.attempts)
}

func TestSendMailLogsRetryNumbers(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	mailer, _ := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection reset")
	})
	mailer.policy = deliveryPolicy(2, zap.New(core))
	mailer.policy.BaseDelay = time.Millisecond

	require.Error(t, mailer.SendMail(context.Background(), reportMessage()))

	entries := observed.FilterMessage("Mail delivery failed, retrying").All()
	require.Len(t, entries, 2)
	assert.EqualValues(t, 1, entries[0].ContextMap()["attempt"])
	assert.EqualValues(t, 2, entries[1].ContextMap()["attempt"])
}

func TestSendMailStopsOnPermanentRejection(t *testing.T) {
	calls := 0
	mailer, log := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return &textproto.Error{Code: 550, Msg: "mailbox unavailable"}
	})

	err := mailer.SendMail(context.Background(), reportMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailbox unavailable")
	assert.Equal(t, 1, calls)
	assert.Equal(t, EmailFailed, log.status)
}

func TestSendMailSurfacesExhaustion(t *testing.T) {
	mailer, log := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("timeout")
	})

	err := mailer.SendMail(context.Background(), reportMessage())
	require.Error(t, err)
	assert.Equal(t, 3, log.attempts)
}

func TestSendMailRequiresRecipients(t *testing.T) {
	mailer, _ := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("must not send")
		return nil
	})
	assert.Error(t, mailer.SendMail(context.Background(), Message{Subject: "x"}))
}
