package queue

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSender struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSender) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSClientSend(t *testing.T) {
	fake := &fakeSender{}
	client := &SQSClient{client: fake, queueURL: "https://sqs.example/queue"}

	if err := client.Send(context.Background(), NewContractMessage("a-1", "r-1", time.Now())); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if aws.ToString(fake.input.QueueUrl) != "https://sqs.example/queue" {
		t.Fatalf("unexpected queue url %q", aws.ToString(fake.input.QueueUrl))
	}
	if body := aws.ToString(fake.input.MessageBody); !strings.Contains(body, `"kind":"contract_analysis"`) || !strings.Contains(body, `"analysisId":"a-1"`) {
		t.Fatalf("unexpected body %s", body)
	}

	fake.err = errors.New("throttled")
	if err := client.Send(context.Background(), Message{}); err == nil || !strings.Contains(err.Error(), "sqs send message") {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestNewSQSClientRequiresURL(t *testing.T) {
	if _, err := NewSQSClient(context.Background(), " ", ""); err == nil {
		t.Fatalf("expected error for missing queue url")
	}
}
