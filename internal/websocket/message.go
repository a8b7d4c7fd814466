package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeFolderCreated MessageType = "folder_created"
	TypeFolderUpdated MessageType = "folder_updated"
	TypeFolderDeleted MessageType = "folder_deleted"
	TypeNoteCreated   MessageType = "note_created"
	TypeNoteUpdated   MessageType = "note_updated"
	TypeNoteDeleted   MessageType = "note_deleted"
	TypeImagesChanged MessageType = "images_changed"
	TypePing          MessageType = "ping"
	TypePong          MessageType = "pong"
	TypeError         MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ChangePayload identifies the resource a mutation touched. NoteID is zero for folder events.
type ChangePayload struct {
	FolderID int64 `json:"folderId"`
	NoteID   int64 `json:"noteId,omitempty"`
	Version  int64 `json:"version,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
