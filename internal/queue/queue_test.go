package queue

import (
	"context"
	"testing"
	"time"
)

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: TypeRefresh, Body: []byte(`{"reason":"rename batch"}`)}
	got, err := deserialize(serialize(msg))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Type != msg.Type || string(got.Body) != string(msg.Body) {
		t.Fatalf("round trip changed message: %+v", got)
	}
}

func TestDeserializeWithoutSeparator(t *testing.T) {
	got, err := deserialize("just a body")
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Type != "" || string(got.Body) != "just a body" {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestInMemoryPublishConsume(t *testing.T) {
	q := NewInMemory(2)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := q.Publish(ctx, Message{Type: TypeRefresh}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	select {
	case msg := <-msgs:
		if msg.Type != TypeRefresh {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-ctx.Done():
		t.Fatal("message never delivered")
	}
}

func TestInMemoryPublishHonorsContext(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := q.Publish(ctx, Message{Type: TypeRefresh}); err == nil {
		t.Fatal("publish to a full queue should fail once the context expires")
	}
}
