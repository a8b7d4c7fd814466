package service

import "boardshoot-server/internal/websocket"

// EventPublisher pushes change notifications to a user's open connections.
type EventPublisher interface {
	Publish(userID int64, msgType websocket.MessageType, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(int64, websocket.MessageType, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
