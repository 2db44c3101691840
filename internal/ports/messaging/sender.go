package messaging

import (
	"context"
	"strings"

	"attendance.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

// SQSSender implements MessageSender for AWS SQS.
type SQSSender struct {
	client SQSClient
}

func NewSQSSender(client SQSClient) *SQSSender {
	return &SQSSender{client: client}
}

func (s *SQSSender) SendMessage(ctx context.Context, destination string, body []byte) error {
	// Inject trace context into message attributes
	attributes := telemetry.InjectTraceContext(ctx)

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(destination),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attributes,
	}
	// FIFO queues require a group and a deduplication id.
	if strings.HasSuffix(destination, ".fifo") {
		input.MessageGroupId = aws.String("attendance")
		input.MessageDeduplicationId = aws.String(uuid.NewString())
	}

	_, err := s.client.SendMessage(ctx, input)
	return err
}
