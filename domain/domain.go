package domain

import "encoding/json"

// Envelope is the wire frame for every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode wraps a payload in an envelope of the given type and marshals it.
func Encode(msgType string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Data: raw})
}

// Connection is one client's transport session. The relay core never
// outlives it and never closes it on its own behalf.
type Connection interface {
	Send(data []byte) error
	Close() error
}

type MessageHandler interface {
	Handle(conn Connection, data []byte)
	HandleClose(conn Connection)
}
