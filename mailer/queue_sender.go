package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageQueue is satisfied by pkg/aws.SQSSender.
type MessageQueue interface {
	SendMessage(ctx context.Context, body string) error
}

// QueuedEmail is the message a notification consumer picks up.
type QueuedEmail struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// QueueSender hands emails to a notification queue instead of sending them.
type QueueSender struct {
	queue MessageQueue
}

func NewQueueSender(queue MessageQueue) *QueueSender {
	return &QueueSender{queue: queue}
}

func (s *QueueSender) SendEmail(ctx context.Context, to, subject, body string) (SendResult, error) {
	msg := QueuedEmail{ID: uuid.NewString(), To: to, Subject: subject, Body: body}
	b, err := json.Marshal(msg)
	if err != nil {
		return SendResult{}, fmt.Errorf("marshal email: %w", err)
	}
	if err := s.queue.SendMessage(ctx, string(b)); err != nil {
		return SendResult{}, fmt.Errorf("enqueue email: %w", err)
	}
	return SendResult{MessageID: msg.ID, SentAt: time.Now()}, nil
}
