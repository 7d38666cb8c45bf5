package worker

import (
	"context"
	"testing"

	"github.com/grabhealth-next/internal/queue"

	"github.com/hibiken/asynq"
)

func TestConsumerHandlesNilReceiverAndTask(t *testing.T) {
	var consumer *Consumer

	if err := consumer.handleCommissionSettle(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer commission settle should be a no-op, got %v", err)
	}
	if err := consumer.handleBookingReminder(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer booking reminder should be a no-op, got %v", err)
	}
	if err := consumer.handleOrderTimeoutCancel(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer order timeout cancel should be a no-op, got %v", err)
	}

	consumer.Register(nil)
}

func TestConsumerRejectsMalformedPayload(t *testing.T) {
	consumer := NewConsumer(nil)
	task := asynq.NewTask(queue.TaskCommissionSettle, []byte("not-json"))

	if err := consumer.handleCommissionSettle(context.Background(), task); err == nil {
		t.Fatalf("malformed payload should return error for retry visibility")
	}
}

func TestConsumerSkipsZeroIDPayloads(t *testing.T) {
	consumer := NewConsumer(nil)

	settle := asynq.NewTask(queue.TaskCommissionSettle, []byte(`{"order_id":0}`))
	if err := consumer.handleCommissionSettle(context.Background(), settle); err != nil {
		t.Fatalf("zero order id should be dropped without error, got %v", err)
	}

	reminder := asynq.NewTask(queue.TaskBookingReminder, []byte(`{"booking_id":0}`))
	if err := consumer.handleBookingReminder(context.Background(), reminder); err != nil {
		t.Fatalf("zero booking id should be dropped without error, got %v", err)
	}

	cancel := asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte(`{"order_id":0}`))
	if err := consumer.handleOrderTimeoutCancel(context.Background(), cancel); err != nil {
		t.Fatalf("zero order id should be dropped without error, got %v", err)
	}
}
