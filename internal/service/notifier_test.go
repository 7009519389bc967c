package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-league/testing/suite"
)

type mockSender struct {
	mock.Mock
}

func (that *mockSender) DialAndSend(m ...*mail.Message) error {
	args := that.Called(m)
	return args.Error(0)
}

func TestSMTPNotifier_SendReminder(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends the reminder to the player", func(t *testing.T) {
		// Given: a sender that accepts everything
		sender := &mockSender{}
		sender.On("DialAndSend", mock.Anything).Return(nil).Once()

		notifier := newSMTPNotifier(suite.NewLogger(), sender, "league@example.com")

		// When: alice is reminded
		err := notifier.SendReminder(ctx, "alice@example.com", "alice")

		// Then: one message with the reminder headers went out
		require.NoError(t, err)
		sender.AssertExpectations(t)

		messages := sender.Calls[0].Arguments.Get(0).([]*mail.Message)
		require.Len(t, messages, 1)
		assert.Equal(t, []string{"league@example.com"}, messages[0].GetHeader("From"))
		assert.Equal(t, []string{"alice@example.com"}, messages[0].GetHeader("To"))
		assert.Equal(t, []string{ReminderSubject}, messages[0].GetHeader("Subject"))

		var body bytes.Buffer
		_, err = messages[0].WriteTo(&body)
		require.NoError(t, err)
		assert.Contains(t, body.String(), "Hello alice, go become a champion in Tic Tac Toe!")
	})

	t.Run("Wraps delivery failures", func(t *testing.T) {
		errRefused := errors.New("connection refused")

		sender := &mockSender{}
		sender.On("DialAndSend", mock.Anything).Return(errRefused).Once()

		notifier := newSMTPNotifier(suite.NewLogger(), sender, "league@example.com")

		err := notifier.SendReminder(ctx, "bob@example.com", "bob")

		require.ErrorIs(t, err, errRefused)
		assert.Contains(t, err.Error(), "bob@example.com")
	})

	t.Run("Does not dial with a cancelled context", func(t *testing.T) {
		sender := &mockSender{}
		notifier := newSMTPNotifier(suite.NewLogger(), sender, "league@example.com")

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := notifier.SendReminder(cancelled, "bob@example.com", "bob")

		require.ErrorIs(t, err, context.Canceled)
		sender.AssertNotCalled(t, "DialAndSend", mock.Anything)
	})
}

func TestLogNotifier_SendReminder(t *testing.T) {
	var out bytes.Buffer
	notifier := NewLogNotifier(slog.New(slog.NewJSONHandler(&out, nil)))

	err := notifier.SendReminder(context.Background(), "carol@example.com", "carol")

	require.NoError(t, err)
	assert.Contains(t, out.String(), `"to":"carol@example.com"`)
	assert.Contains(t, out.String(), ReminderSubject)
	assert.Contains(t, out.String(), "Hello carol")
}
