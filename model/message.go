package model

import "time"

// Message is a chat message as delivered by the external chat transport.
// It is read-only to this service and always arrives by value.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	AuthorID  string    `json:"author_id"`
	ChannelID string    `json:"channel_id"`
	CreatedAt time.Time `json:"created_at"`
}
