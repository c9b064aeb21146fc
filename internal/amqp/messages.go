package amqp

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionValidated Action = "validated"
	ActionDeleted   Action = "deleted"
)

// LedgerEventMessage is the lightweight event published per accepted
// ledger write. Consumers fetch the full record from the store.
type LedgerEventMessage struct {
	RecordID  string    `json:"record_id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(recordID string, action Action) *LedgerEventMessage {
	return &LedgerEventMessage{
		RecordID:  recordID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
