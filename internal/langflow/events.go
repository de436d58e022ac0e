package langflow

import (
	"encoding/json"
	"io"
)

// Event names used by the engine's streamed run endpoint.
const (
	EventAddMessage = "add_message"
	EventToken      = "token"
	EventEnd        = "end"
	EventError      = "error"
)

// StreamEvent is one newline-delimited JSON object from a streamed run.
// Data is kept raw so payloads pass through untouched.
type StreamEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Chunk returns the text fragment carried by a token event.
func (e StreamEvent) Chunk() string {
	var data struct {
		Chunk string `json:"chunk"`
	}
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return ""
	}
	return data.Chunk
}

// ErrorText returns the message carried by an upstream error event,
// falling back to the raw payload.
func (e StreamEvent) ErrorText() string {
	var data struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(e.Data, &data); err == nil && data.Error != "" {
		return data.Error
	}
	return string(e.Data)
}

// EventStream reads engine events off a streamed run response.
type EventStream struct {
	dec  *json.Decoder
	body io.ReadCloser
}

// NewEventStream wraps a newline-delimited JSON event stream.
func NewEventStream(body io.ReadCloser) *EventStream {
	return &EventStream{dec: json.NewDecoder(body), body: body}
}

// Recv returns the next event, or io.EOF once the stream is exhausted.
func (s *EventStream) Recv() (StreamEvent, error) {
	var ev StreamEvent
	if err := s.dec.Decode(&ev); err != nil {
		return StreamEvent{}, err
	}
	return ev, nil
}

// Close releases the underlying response body.
func (s *EventStream) Close() error {
	return s.body.Close()
}
