package sqs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

//
// Fakes
//

type fakeSQSAPI struct {
	sendIn  *awssqs.SendMessageInput
	sendOut *awssqs.SendMessageOutput
	sendErr error

	recvIn  *awssqs.ReceiveMessageInput
	recvOut *awssqs.ReceiveMessageOutput
	recvErr error

	delIn  *awssqs.DeleteMessageInput
	delErr error
}

func (f *fakeSQSAPI) SendMessage(_ context.Context, in *awssqs.SendMessageInput, _ ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error) {
	f.sendIn = in
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sendOut, nil
}

func (f *fakeSQSAPI) ReceiveMessage(_ context.Context, in *awssqs.ReceiveMessageInput, _ ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error) {
	f.recvIn = in
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	if f.recvOut == nil {
		return &awssqs.ReceiveMessageOutput{}, nil
	}
	return f.recvOut, nil
}

func (f *fakeSQSAPI) DeleteMessage(_ context.Context, in *awssqs.DeleteMessageInput, _ ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error) {
	f.delIn = in
	if f.delErr != nil {
		return nil, f.delErr
	}
	return &awssqs.DeleteMessageOutput{}, nil
}

const queueURL = "https://sqs.us-east-1.amazonaws.com/123/test-queue"

func TestEnqueue(t *testing.T) {
	fake := &fakeSQSAPI{
		sendOut: &awssqs.SendMessageOutput{MessageId: aws.String("id-1")},
	}
	q := New(fake, queueURL)

	id, err := q.Enqueue(context.Background(), []byte(`{"k":"v"}`))
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if id != "id-1" {
		t.Errorf("Enqueue() id = %q, want id-1", id)
	}
	if got := aws.ToString(fake.sendIn.QueueUrl); got != queueURL {
		t.Errorf("QueueUrl = %q, want %q", got, queueURL)
	}
	if got := aws.ToString(fake.sendIn.MessageBody); got != `{"k":"v"}` {
		t.Errorf("MessageBody = %q", got)
	}
}

func TestEnqueue_Error(t *testing.T) {
	fake := &fakeSQSAPI{sendErr: errors.New("boom")}
	q := New(fake, queueURL)

	if _, err := q.Enqueue(context.Background(), []byte("body")); err == nil {
		t.Error("Expected error from Enqueue")
	}
}

func TestReceive(t *testing.T) {
	fake := &fakeSQSAPI{
		recvOut: &awssqs.ReceiveMessageOutput{
			Messages: []sqstypes.Message{
				{
					MessageId:     aws.String("m1"),
					ReceiptHandle: aws.String("rh1"),
					Body:          aws.String(`{"a":1}`),
				},
				{
					MessageId:     aws.String("m2"),
					ReceiptHandle: aws.String("rh2"),
					Body:          aws.String(`{"b":2}`),
				},
			},
		},
	}
	q := New(fake, queueURL)

	msgs, err := q.Receive(context.Background(), 10, 20*time.Second)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Receive() returned %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[0].ReceiptHandle != "rh1" || string(msgs[0].Body) != `{"a":1}` {
		t.Errorf("Unexpected first message: %+v", msgs[0])
	}
	if fake.recvIn.MaxNumberOfMessages != 10 {
		t.Errorf("MaxNumberOfMessages = %d, want 10", fake.recvIn.MaxNumberOfMessages)
	}
	if fake.recvIn.WaitTimeSeconds != 20 {
		t.Errorf("WaitTimeSeconds = %d, want 20", fake.recvIn.WaitTimeSeconds)
	}
}

func TestReceive_WaitCappedAtTwentySeconds(t *testing.T) {
	fake := &fakeSQSAPI{}
	q := New(fake, queueURL)

	if _, err := q.Receive(context.Background(), 1, 90*time.Second); err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if fake.recvIn.WaitTimeSeconds != 20 {
		t.Errorf("WaitTimeSeconds = %d, want capped 20", fake.recvIn.WaitTimeSeconds)
	}
}

func TestReceive_Empty(t *testing.T) {
	fake := &fakeSQSAPI{}
	q := New(fake, queueURL)

	msgs, err := q.Receive(context.Background(), 10, time.Second)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Expected no messages, got %d", len(msgs))
	}
}

func TestDelete(t *testing.T) {
	fake := &fakeSQSAPI{}
	q := New(fake, queueURL)

	if err := q.Delete(context.Background(), "rh1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := aws.ToString(fake.delIn.ReceiptHandle); got != "rh1" {
		t.Errorf("ReceiptHandle = %q, want rh1", got)
	}
	if got := aws.ToString(fake.delIn.QueueUrl); got != queueURL {
		t.Errorf("QueueUrl = %q, want %q", got, queueURL)
	}
}

func TestDelete_Error(t *testing.T) {
	fake := &fakeSQSAPI{delErr: errors.New("gone")}
	q := New(fake, queueURL)

	if err := q.Delete(context.Background(), "rh1"); err == nil {
		t.Error("Expected error from Delete")
	}
}
