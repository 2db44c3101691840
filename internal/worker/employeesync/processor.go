package employeesync

import (
	"context"

	"attendance.service/internal/worker"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
)

// Processor feeds the messages of one lifecycle topic to the handlers.
// It never asks for a retry: every message is consumed exactly once from the
// queue's point of view, and failures go to the dead-letter sink.
type Processor struct {
	topic    string
	handlers *Handlers
}

func NewProcessor(topic string, handlers *Handlers) *Processor {
	return &Processor{topic: topic, handlers: handlers}
}

var _ worker.Processor = (*Processor)(nil)

func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	body := []byte(aws.ToString(msg.Body))
	ev, err := DecodeEvent(p.topic, aws.ToString(msg.MessageId), body)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("topic", p.topic).Msg("Failed to decode employee event")
		p.handlers.deadLetter(ctx, ev, ReasonMalformedPayload, err)
		return false, 0, nil
	}

	p.handlers.Handle(ctx, ev)
	return false, 0, nil
}
