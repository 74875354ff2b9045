package events

import "encoding/json"

type EventType string

const (
	TypeUserUpdate EventType = "user_update"
)

// Envelope is the frame pushed to subscribers over the notification channel.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// UserUpdateEvent describes the post-mutation state of a user. It echoes the
// changed fields of the originating request; credentials are never part of it.
type UserUpdateEvent struct {
	UserID string         `json:"id"`
	Data   UserUpdateData `json:"data"`
}

type UserUpdateData struct {
	Username *string `json:"username,omitempty"`
}

func NewUserUpdateEvent(userID string, username *string) UserUpdateEvent {
	return UserUpdateEvent{
		UserID: userID,
		Data:   UserUpdateData{Username: username},
	}
}
