package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoDestination is returned when the target queue is not configured.
var ErrNoDestination = errors.New("messaging: destination queue not configured")

type Producer struct {
	sender             MessageSender
	attendanceQueueURL string
	deadLetterQueueURL string
}

func NewProducer(sender MessageSender, attendanceQueueURL, deadLetterQueueURL string) *Producer {
	return &Producer{
		sender:             sender,
		attendanceQueueURL: attendanceQueueURL,
		deadLetterQueueURL: deadLetterQueueURL,
	}
}

func NewSQSProducer(client SQSClient, attendanceQueueURL, deadLetterQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, attendanceQueueURL, deadLetterQueueURL)
}

var (
	_ EventPublisher = (*Producer)(nil)
	_ DeadLetterSink = (*Producer)(nil)
)

// PublishAttendance sends an attendance event envelope.
func (p *Producer) PublishAttendance(ctx context.Context, envelope EventEnvelope) error {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("messaging.event_type", envelope.EventType),
			attribute.String("messaging.event_id", envelope.EventID),
		)
		if sc := span.SpanContext(); sc.HasTraceID() {
			envelope.Metadata.TraceID = sc.TraceID().String()
		}
	}
	return p.publish(ctx, p.attendanceQueueURL, envelope)
}

// SendDeadLetter parks an unprocessable inbound event for manual inspection.
func (p *Producer) SendDeadLetter(ctx context.Context, dl DeadLetter) error {
	if err := p.publish(ctx, p.deadLetterQueueURL, dl); err != nil {
		return err
	}
	log.Ctx(ctx).Warn().Str("dead_letter_id", dl.ID).Str("topic", dl.Topic).Str("reason", dl.Reason).Msg("Event routed to dead-letter queue")
	return nil
}

func (p *Producer) publish(ctx context.Context, destination string, body interface{}) error {
	if destination == "" {
		return ErrNoDestination
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
