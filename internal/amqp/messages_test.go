package amqp

import (
	"context"
	"testing"
	"time"
)

func TestLedgerEventMessage_RoundTrip(t *testing.T) {
	msg := NewLedgerEventMessage("rec-1", ActionValidated)
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := LedgerEventMessageFromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.RecordID != "rec-1" || got.Action != ActionValidated {
		t.Errorf("decoded = %+v", got)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("timestamp not set: %v", got.Timestamp)
	}
}

func TestNilClient_PublishIsNoOp(t *testing.T) {
	var c *Client
	if err := c.PublishLedgerEvent(context.Background(), "rec-1", ActionCreated); err != nil {
		t.Errorf("nil client publish = %v, want nil", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil client close = %v, want nil", err)
	}
}
