package messaging

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// EventPublisher defines the output port for publishing attendance events.
type EventPublisher interface {
	PublishAttendance(ctx context.Context, envelope EventEnvelope) error
}

// DeadLetterSink receives inbound events that could not be applied.
type DeadLetterSink interface {
	SendDeadLetter(ctx context.Context, dl DeadLetter) error
}

// MessageSender defines the interface for sending raw messages to a messaging system.
type MessageSender interface {
	SendMessage(ctx context.Context, destination string, body []byte) error
}

// SQSClient defines the interface for the AWS SQS client.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}
