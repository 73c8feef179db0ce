// Package sqs implements the messaging contract on top of AWS SQS.
package sqs

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/mailrelay-systems/mailrelay-stack/common/messaging"
)

// sqsAPI is the subset of the SQS client the queue uses. Narrow so tests can
// fake it.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error)
}

// Queue is an SQS-backed messaging.Queue.
type Queue struct {
	client      sqsAPI
	queueURL    string
	queueURLPtr *string
}

// New creates a Queue bound to the given queue URL.
func New(client sqsAPI, queueURL string) *Queue {
	q := &Queue{
		client:   client,
		queueURL: queueURL,
	}
	q.queueURLPtr = &q.queueURL
	return q
}

// Enqueue sends one message body and returns the SQS message ID.
func (q *Queue) Enqueue(ctx context.Context, body []byte) (string, error) {
	out, err := q.client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    q.queueURLPtr,
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return "", fmt.Errorf("sqs send message: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

// Receive long-polls SQS for up to max messages. Wait is truncated to whole
// seconds; SQS caps long polling at 20s.
func (q *Queue) Receive(ctx context.Context, max int32, wait time.Duration) ([]messaging.Message, error) {
	waitSeconds := int32(wait / time.Second)
	if waitSeconds > 20 {
		waitSeconds = 20
	}

	out, err := q.client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:              q.queueURLPtr,
		MaxNumberOfMessages:   max,
		WaitTimeSeconds:       waitSeconds,
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, fmt.Errorf("sqs receive message: %w", err)
	}

	msgs := make([]messaging.Message, 0, len(out.Messages))
	for i := range out.Messages {
		m := &out.Messages[i]
		msgs = append(msgs, messaging.Message{
			ID:            aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          []byte(aws.ToString(m.Body)),
		})
	}
	return msgs, nil
}

// Delete acknowledges a message by receipt handle.
func (q *Queue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      q.queueURLPtr,
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("sqs delete message: %w", err)
	}
	return nil
}
