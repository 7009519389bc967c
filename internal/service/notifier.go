package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-mail/mail/v2"
)

const (
	ReminderSubject = "This is a reminder that you have an active game!"
	reminderBody    = "Hello %s, go become a champion in Tic Tac Toe!"
)

const sendTimeout = 10 * time.Second

// Notifier - delivers reminders to players with unfinished games.
type Notifier interface {
	SendReminder(ctx context.Context, email, name string) error
}

func ReminderBody(name string) string {
	return fmt.Sprintf(reminderBody, name)
}

type mailSender interface {
	DialAndSend(m ...*mail.Message) error
}

type SMTPNotifier struct {
	logger *slog.Logger
	sender mailSender
	from   string
}

func NewSMTPNotifier(logger *slog.Logger, host string, port int, username, password, from string) *SMTPNotifier {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = sendTimeout

	return newSMTPNotifier(logger, dialer, from)
}

func newSMTPNotifier(logger *slog.Logger, sender mailSender, from string) *SMTPNotifier {
	return &SMTPNotifier{
		logger: logger.With("component", "smtp_notifier"),
		sender: sender,
		from:   from,
	}
}

func (that *SMTPNotifier) SendReminder(ctx context.Context, email, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := that.buildReminder(email, name)

	if err := that.sender.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send reminder to %s: %w", email, err)
	}

	that.logger.Debug("reminder sent", "player", name, "email", email)

	return nil
}

func (that *SMTPNotifier) buildReminder(email, name string) *mail.Message {
	message := mail.NewMessage()
	message.SetHeader("From", that.from)
	message.SetHeader("To", email)
	message.SetHeader("Subject", ReminderSubject)
	message.SetBody("text/plain", ReminderBody(name))

	return message
}

// LogNotifier - writes reminders to the log instead of mailing them. Used when no SMTP host is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With("component", "log_notifier"),
	}
}

func (that *LogNotifier) SendReminder(_ context.Context, email, name string) error {
	that.logger.Info("reminder",
		"to", email,
		"subject", ReminderSubject,
		"body", ReminderBody(name),
	)

	return nil
}
