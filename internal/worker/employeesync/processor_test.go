package employeesync

import (
	"context"
	"testing"

	"attendance.service/internal/ports/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

func TestProcessor_AppliesEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p := NewProcessor(messaging.TopicEmployeeCreated, f.handlers)

	retry, delay, err := p.Process(context.Background(), types.Message{
		MessageId: aws.String("m-1"),
		Body:      aws.String(createdJohn),
	})
	if retry || delay != 0 || err != nil {
		t.Fatalf("expected clean consume, got %v %d %v", retry, delay, err)
	}
	if rec := f.get(t, 1); rec.Email != "john.doe@company.com" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestProcessor_MalformedBodyIsDeadLettered(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p := NewProcessor(messaging.TopicEmployeeUpdated, f.handlers)

	retry, _, err := p.Process(context.Background(), types.Message{
		MessageId: aws.String("m-2"),
		Body:      aws.String(`{"data": `),
	})
	if retry || err != nil {
		t.Fatalf("malformed bodies must be consumed, got %v %v", retry, err)
	}

	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	if len(f.sink.letters) != 1 {
		t.Fatalf("expected one dead letter, got %d", len(f.sink.letters))
	}
	dl := f.sink.letters[0]
	if dl.Reason != ReasonMalformedPayload || dl.Topic != messaging.TopicEmployeeUpdated || dl.MessageID != "m-2" || dl.Payload != `{"data": ` {
		t.Fatalf("unexpected dead letter %+v", dl)
	}
}
