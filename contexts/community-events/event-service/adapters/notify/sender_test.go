package notifyadapter

import (
	"context"
	"errors"
	"testing"

	"communitypulse/contexts/community-events/event-service/ports"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisQueueSenderPushesJSON(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	mock.ExpectRPush(DefaultQueueKey,
		`{"kind":"rsvp_confirmation","channel":"sms","recipient":"555-0101","body":"RSVP confirmed","event_id":"event-1","rsvp_id":"rsvp-1"}`,
	).SetVal(1)

	sender := NewRedisQueueSender(client, "")
	err := sender.Send(context.Background(), ports.Notification{
		Kind:      "rsvp_confirmation",
		Channel:   ports.ChannelSMS,
		Recipient: "555-0101",
		Body:      "RSVP confirmed",
		EventID:   "event-1",
		RSVPID:    "rsvp-1",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisQueueSenderWrapsErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	mock.Regexp().ExpectRPush("custom:queue", `.*`).SetErr(errors.New("connection refused"))

	sender := NewRedisQueueSender(client, "custom:queue")
	err := sender.Send(context.Background(), ports.Notification{Channel: ports.ChannelEmail, Recipient: "a@example.com"})
	assert.ErrorContains(t, err, "queue email notification")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogSenderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, LogSender{}.Send(ctx, ports.Notification{}), context.Canceled)
	assert.NoError(t, LogSender{}.Send(context.Background(), ports.Notification{Kind: "event_reminder"}))
}
