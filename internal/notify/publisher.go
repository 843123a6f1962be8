package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// Publisher delivers status-change events.
type Publisher interface {
	PublishStatusChange(ctx context.Context, e StatusChanged) error
}

// SendMessageAPI is the subset of the SQS client used by the publisher.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type sqsPublisher struct {
	client   SendMessageAPI
	queueURL string
	logger   zerolog.Logger
}

// NewSQSPublisher returns a Publisher bound to a queue URL.
func NewSQSPublisher(client SendMessageAPI, queueURL string, logger zerolog.Logger) Publisher {
	return &sqsPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger.With().Str("component", "sqs-publisher").Logger(),
	}
}

// PublishStatusChange sends e as a JSON body. event_type and pharmacy_id are sent as
// string message attributes so consumers can filter without decoding the body.
func (p *sqsPublisher) PublishStatusChange(ctx context.Context, e StatusChanged) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal status change event: %w", err)
	}

	attributes := map[string]string{
		"event_type":  EventTypeStatusChanged,
		"pharmacy_id": e.PharmacyID,
		"order_kind":  string(e.OrderKind),
	}
	msgAttrs := make(map[string]sqstypes.MessageAttributeValue, len(attributes))
	for k, v := range attributes {
		if v == "" {
			continue
		}
		msgAttrs[k] = sqstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: msgAttrs,
	})
	if err != nil {
		evt := p.logger.Error().Err(err).Str("order_id", e.OrderID)
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			evt = evt.Str("aws_error_code", apiErr.ErrorCode())
		}
		evt.Msg("failed to send status change message")
		return fmt.Errorf("failed to send status change message: %w", err)
	}

	p.logger.Debug().
		Str("order_id", e.OrderID).
		Str("pharmacy_id", e.PharmacyID).
		Str("message_id", aws.ToString(out.MessageId)).
		Msg("status change published")
	return nil
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishStatusChange(context.Context, StatusChanged) error {
	return nil
}
