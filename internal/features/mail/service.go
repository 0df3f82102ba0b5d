package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/pkg/retry"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Mailer delivers one message. Errors are returned to the caller after retries are exhausted.
type Mailer interface {
	SendMail(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg    *config.Config
	log    EmailLog
	logger *zap.Logger
	policy retry.Policy
	send   sendFunc
	now    func() time.Time
}

func NewSMTPMailer(cfg *config.Config, log EmailLog, logger *zap.Logger) Mailer {
	return &SMTPMailer{
		cfg:    cfg,
		log:    log,
		logger: logger,
		policy: deliveryPolicy(cfg.MailMaxRetries, logger),
		send:   smtp.SendMail,
		now:    time.Now,
	}
}

func deliveryPolicy(maxRetries int, logger *zap.Logger) retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxRetries = maxRetries
	policy.OnRetry = func(_ string, attempt int, delay time.Duration, err error) {
		logger.Warn("Mail delivery failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}
	return policy
}

func (m *SMTPMailer) SendMail(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mail has no recipients")
	}

	raw, err := Compose(m.cfg.MailFrom, msg, m.now())
	if err != nil {
		return fmt.Errorf("failed to compose mail: %w", err)
	}

	record := &Email{
		ID:      primitive.NewObjectID(),
		From:    m.cfg.MailFrom,
		To:      msg.To,
		Subject: msg.Subject,
		Status:  EmailQueued,
	}
	for _, att := range msg.Attachments {
		record.Attachments = append(record.Attachments, att.Filename)
	}
	if m.log != nil {
		_ = m.log.Create(ctx, record)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	attempts := 0
	_, err = retry.Do(ctx, m.policy, nil, func(ctx context.Context, _ string) (struct{}, error) {
		attempts++
		if err := m.send(addr, auth, m.cfg.MailFrom, msg.To, raw); err != nil {
			return struct{}{}, classify(err)
		}
		return struct{}{}, nil
	})

	status, errMsg := EmailSent, ""
	if err != nil {
		status, errMsg = EmailFailed, err.Error()
	}
	if m.log != nil {
		_ = m.log.UpdateStatus(ctx, record.ID, status, attempts, errMsg)
	}

	if err != nil {
		return fmt.Errorf("failed to send mail to %v: %w", msg.To, err)
	}
	m.logger.Info("Mail sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// SMTP 5xx replies will not succeed on retry.
func classify(err error) error {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) && protoErr.Code >= 500 {
		return retry.Permanent(err)
	}
	return err
}
