package ws

import "encoding/json"

// Event is the wire frame for both push channels: a named event plus a
// JSON payload. Clients dispatch on Event.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func marshalEvent(name string, data interface{}) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	frame, err := json.Marshal(Event{Event: name, Data: raw})
	if err != nil {
		return nil
	}
	return frame
}
