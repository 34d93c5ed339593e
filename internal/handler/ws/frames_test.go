package ws

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/event"
)

func TestMarshalEventEnvelope(t *testing.T) {
	ev := event.NewMessageRead(7, 42)
	data, err := marshalEvent(ev)
	if err != nil {
		t.Fatalf("marshalEvent: %v", err)
	}

	var frame struct {
		Event   string `json:"event"`
		ID      string `json:"id"`
		SentAt  int64  `json:"sent_at"`
		Payload struct {
			MessageID int64 `json:"messageId"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	if frame.Event != event.NameMessageRead {
		t.Errorf("event = %q, want %q", frame.Event, event.NameMessageRead)
	}
	if frame.ID != ev.GetID() || frame.SentAt != ev.GetOccurredAt() {
		t.Errorf("envelope metadata = (%q, %d)", frame.ID, frame.SentAt)
	}
	if frame.Payload.MessageID != 42 {
		t.Errorf("payload messageId = %d, want 42", frame.Payload.MessageID)
	}
}

func TestInboundFrameDecoding(t *testing.T) {
	raw := []byte(`{"event":"send_message","payload":{"receiverId":5,"content":"hi"}}`)

	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if frame.Event != frameSendMessage {
		t.Fatalf("event = %q", frame.Event)
	}

	var payload sendMessagePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ReceiverID != 5 || payload.Content != "hi" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestInboundFrameUnknownEventStillParses(t *testing.T) {
	raw := []byte(`{"event":"future_thing","payload":{"x":1}}`)

	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if frame.Event != "future_thing" {
		t.Errorf("event = %q", frame.Event)
	}
}
